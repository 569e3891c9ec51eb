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

// ExecFunc performs one opcode's semantic action. regs and mem are mutated
// in place. fallthroughPC is pc+1+skip(pc), the PC a non-branching or
// not-taken instruction resumes at; terminator handlers that do not branch
// return it verbatim. The returned uint32 is the next PC when status is
// Continue; for any other status the block executor passes it up unchanged,
// and the engines use it as the resume point after a serviced HOST call and
// as the PC of the termination record (spec.md §9: "static array of
// (decode_fn, execute_fn, gas, is_terminator) records").
type ExecFunc func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32)

// opExec is the process-global dispatch table, indexed by opcode number.
// Each semantics_*.go file populates its slice of this array from its own
// init().
var opExec [256]ExecFunc

func registerExec(op Opcode, fn ExecFunc) {
	opExec[op] = fn
}

// dispatch runs the opcode at pc: decode its operands according to its
// table shape, then invoke its registered ExecFunc. Unknown opcodes PANIC
// (spec.md §6: "any unknown opcode ⇒ PANIC on dispatch").
func dispatch(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc uint32) (Status, uint32, int64) {
	op := prog.OpcodeAt(pc)
	info := opcodeInfo[op]
	if info == nil {
		return statusPanic("unknown opcode %d at pc=0x%08x", op, pc), pc, 0
	}
	fn := opExec[op]
	if fn == nil {
		return statusPanic("opcode %d (%s) has no registered handler", op, info.Name), pc, 0
	}
	skip := prog.Skip(pc)
	o := decodeOperands(info.Shape, prog.Bytes, pc, skip)
	fallthroughPC := pc + 1 + uint32(skip)
	st, nextPC := fn(regs, mem, prog, pc, fallthroughPC, o)
	return st, nextPC, info.Gas
}
