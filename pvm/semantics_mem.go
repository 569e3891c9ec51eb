// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

package pvm

func init() {
	registerExec(OpStoreImmU8, storeImmAbs(1))
	registerExec(OpStoreImmU16, storeImmAbs(2))
	registerExec(OpStoreImmU32, storeImmAbs(4))
	registerExec(OpStoreImmU64, storeImmAbs(8))

	registerExec(OpLoadImm, execLoadImm)
	registerExec(OpLoadImm64, execLoadImm)
	registerExec(OpLoadU8, loadAbs(1, false))
	registerExec(OpLoadI8, loadAbs(1, true))
	registerExec(OpLoadU16, loadAbs(2, false))
	registerExec(OpLoadI16, loadAbs(2, true))
	registerExec(OpLoadU32, loadAbs(4, false))
	registerExec(OpLoadI32, loadAbs(4, true))
	registerExec(OpLoadU64, loadAbs(8, false))
	registerExec(OpStoreU8, storeAbs(1))
	registerExec(OpStoreU16, storeAbs(2))
	registerExec(OpStoreU32, storeAbs(4))
	registerExec(OpStoreU64, storeAbs(8))

	registerExec(OpStoreImmIndU8, storeImmInd(1))
	registerExec(OpStoreImmIndU16, storeImmInd(2))
	registerExec(OpStoreImmIndU32, storeImmInd(4))
	registerExec(OpStoreImmIndU64, storeImmInd(8))

	registerExec(OpStoreIndU8, storeInd(1))
	registerExec(OpStoreIndU16, storeInd(2))
	registerExec(OpStoreIndU32, storeInd(4))
	registerExec(OpStoreIndU64, storeInd(8))
	registerExec(OpLoadIndU8, loadInd(1, false))
	registerExec(OpLoadIndI8, loadInd(1, true))
	registerExec(OpLoadIndU16, loadInd(2, false))
	registerExec(OpLoadIndI16, loadInd(2, true))
	registerExec(OpLoadIndU32, loadInd(4, false))
	registerExec(OpLoadIndI32, loadInd(4, true))
	registerExec(OpLoadIndU64, loadInd(8, false))

	registerExec(OpSbrk, execSbrk)
}

// loadValue reads size bytes at addr and widens to 64 bits, sign-extending
// if signed, zero-extending otherwise.
func loadValue(mem *Memory, addr uint32, size int, signed bool) (uint64, Status) {
	b, st := mem.Read(addr, uint32(size))
	if st.Kind != Continue {
		return 0, st
	}
	v := leUint(b, size)
	if signed {
		v = signExtend(v, size)
	}
	return v, statusContinue()
}

func storeValue(mem *Memory, addr uint32, value uint64, size int) Status {
	buf := make([]byte, size)
	putLE(buf, value, size)
	return mem.Write(addr, buf)
}

// storeImmAbs implements store_imm_u{8,16,32,64}: write vy (truncated to
// size) to the absolute address vx (spec.md §4.3, two-imm shape).
func storeImmAbs(size int) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
		st := storeValue(mem, uint32(o.Vx), o.Vy, size)
		return st, fallthroughPC
	}
}

// execLoadImm serves both load_imm (reg+imm, a 32-bit sign-extended vx) and
// load_imm_64 (reg+ext-imm, a raw 64-bit vx): both shapes leave the full
// width already materialized in o.Vx, so ra's assignment is identical.
func execLoadImm(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
	regs[o.Ra] = o.Vx
	return statusContinue(), fallthroughPC
}

// loadAbs implements load_u*/load_i*: the decoded vx is the absolute
// address; ra only names the destination register and does not participate
// in the address (spec.md §4.3 reg+imm shape).
func loadAbs(size int, signed bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
		v, st := loadValue(mem, uint32(o.Vx), size, signed)
		if st.Kind != Continue {
			return st, fallthroughPC
		}
		regs[o.Ra] = v
		return st, fallthroughPC
	}
}

func storeAbs(size int) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
		st := storeValue(mem, uint32(o.Vx), regs[o.Ra], size)
		return st, fallthroughPC
	}
}

// storeImmInd implements store_imm_ind_u{8,16,32,64}: address = registers[ra]+vx,
// value = vy truncated to size (spec.md §4.3 reg+two-imm shape).
func storeImmInd(size int) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
		addr := uint32(regs[o.Ra] + o.Vx)
		st := storeValue(mem, addr, o.Vy, size)
		return st, fallthroughPC
	}
}

// storeInd/loadInd implement the two-reg+imm indirect family: address =
// registers[rb]+vx; the value register is ra.
func storeInd(size int) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
		addr := uint32(regs[o.Rb] + o.Vx)
		st := storeValue(mem, addr, regs[o.Ra], size)
		return st, fallthroughPC
	}
}

func loadInd(size int, signed bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
		addr := uint32(regs[o.Rb] + o.Vx)
		v, st := loadValue(mem, addr, size, signed)
		if st.Kind != Continue {
			return st, fallthroughPC
		}
		regs[o.Ra] = v
		return st, fallthroughPC
	}
}

// execSbrk implements sbrk(rd, ra): grant WRITE over
// [heap_break, heap_break+registers[ra]), advance heap_break, and write the
// new value into rd (spec.md §4.3 "Memory break").
func execSbrk(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
	req := uint32(regs[o.Ra])
	regs[o.Rd] = uint64(mem.Sbrk(req))
	return statusContinue(), fallthroughPC
}
