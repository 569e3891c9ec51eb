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
	registerExec(OpTrap, execTrap)
	registerExec(OpFallthrough, execFallthrough)
	registerExec(OpEcalli, execEcalli)
	registerExec(OpJump, execJump)
	registerExec(OpJumpInd, execJumpInd)
	registerExec(OpLoadImmJump, execLoadImmJump)

	registerExec(OpBranchEqImm, branchImm(func(a, b uint64) bool { return a == b }, false))
	registerExec(OpBranchNeImm, branchImm(func(a, b uint64) bool { return a != b }, false))
	registerExec(OpBranchLtUImm, branchImm(func(a, b uint64) bool { return a < b }, false))
	registerExec(OpBranchLeUImm, branchImm(func(a, b uint64) bool { return a <= b }, false))
	registerExec(OpBranchGeUImm, branchImm(func(a, b uint64) bool { return a >= b }, false))
	registerExec(OpBranchGtUImm, branchImm(func(a, b uint64) bool { return a > b }, false))
	registerExec(OpBranchLtSImm, branchImm(func(a, b int64) bool { return a < b }, true))
	registerExec(OpBranchLeSImm, branchImm(func(a, b int64) bool { return a <= b }, true))
	registerExec(OpBranchGeSImm, branchImm(func(a, b int64) bool { return a >= b }, true))
	registerExec(OpBranchGtSImm, branchImm(func(a, b int64) bool { return a > b }, true))

	registerExec(OpBranchEq, branchReg(func(a, b uint64) bool { return a == b }, false))
	registerExec(OpBranchNe, branchReg(func(a, b uint64) bool { return a != b }, false))
	registerExec(OpBranchLtU, branchReg(func(a, b uint64) bool { return a < b }, false))
	registerExec(OpBranchLtS, branchReg(func(a, b int64) bool { return a < b }, true))
	registerExec(OpBranchGeU, branchReg(func(a, b uint64) bool { return a >= b }, false))
	registerExec(OpBranchGeS, branchReg(func(a, b int64) bool { return a >= b }, true))

	registerExec(OpLoadImmJumpInd, execLoadImmJumpInd)
}

func execTrap(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
	return statusPanic("trap"), fallthroughPC
}

func execFallthrough(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
	return statusContinue(), fallthroughPC
}

func execEcalli(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
	return statusHost(o.Vx), fallthroughPC
}

func execJump(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
	return prog.branch(pc, uint32(o.Vx), true, fallthroughPC)
}

func execJumpInd(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
	a := regs[o.Ra] + o.Vx
	st, target := prog.djump(uint64(uint32(a)))
	if st.Kind != Continue {
		return st, fallthroughPC
	}
	return st, target
}

func execLoadImmJump(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
	regs[o.Ra] = o.Vx
	return prog.branch(pc, uint32(o.Vy), true, fallthroughPC)
}

func execLoadImmJumpInd(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
	regs[o.Ra] = o.Vx
	a := regs[o.Rb] + o.Vy
	st, target := prog.djump(uint64(uint32(a)))
	if st.Kind != Continue {
		return st, fallthroughPC
	}
	return st, target
}

// branchImm builds an ExecFunc for the reg+imm+offset branch_*_imm family:
// compare registers[ra] against the decoded immediate vx, branch to vy if
// the comparison holds. T is uint64 for unsigned comparisons or int64 for
// signed; vx and registers[ra] are already full-width two's-complement bit
// patterns, so casting is all that's needed to switch interpretation.
func branchImm[T uint64 | int64](cmp func(a, b T) bool, signed bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
		cond := cmp(T(regs[o.Ra]), T(o.Vx))
		return prog.branch(pc, uint32(o.Vy), cond, fallthroughPC)
	}
}

// branchReg builds an ExecFunc for the two-reg+offset branch_* family:
// compare registers[ra] against registers[rb], branch to vx (the only
// offset field in this shape) if the comparison holds.
func branchReg[T uint64 | int64](cmp func(a, b T) bool, signed bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fallthroughPC uint32, o Operands) (Status, uint32) {
		cond := cmp(T(regs[o.Ra]), T(regs[o.Rb]))
		return prog.branch(pc, uint32(o.Vx), cond, fallthroughPC)
	}
}
