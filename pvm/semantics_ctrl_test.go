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

import "testing"

func TestExecJump(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	var regs [RegisterCount]uint64

	st, next := execJump(&regs, nil, prog, 0, 1, Operands{Vx: 4})
	if st.Kind != Continue || next != 4 {
		t.Errorf("jump(4) = (%v, %d); want (CONTINUE, 4)", st, next)
	}

	st, _ = execJump(&regs, nil, prog, 0, 1, Operands{Vx: 99})
	if st.Kind != Panic {
		t.Errorf("jump(99) status = %v; want PANIC (not a basic-block entry)", st)
	}
}

func TestExecJumpInd(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	var regs [RegisterCount]uint64
	regs[0] = 0

	// djump index = a/AddrAlignment - 1; a=2 -> index 0 -> JumpTable[0]=4.
	st, next := execJumpInd(&regs, nil, prog, 0, 1, Operands{Ra: 0, Vx: 2})
	if st.Kind != Continue || next != 4 {
		t.Errorf("jump_ind(a=2) = (%v, %d); want (CONTINUE, 4)", st, next)
	}

	st, next = execJumpInd(&regs, nil, prog, 0, 1, Operands{Ra: 0, Vx: uint64(haltSentinel)})
	if st.Kind != Halt {
		t.Errorf("jump_ind(haltSentinel) status = %v; want HALT", st)
	}
	if next != 1 {
		t.Errorf("jump_ind(haltSentinel) fallthrough target = %d; want 1 (caller's fallthroughPC on non-CONTINUE)", next)
	}
}

func TestExecLoadImmJump(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	var regs [RegisterCount]uint64

	st, next := execLoadImmJump(&regs, nil, prog, 0, 1, Operands{Ra: 3, Vx: 0xABCD, Vy: 4})
	if st.Kind != Continue || next != 4 {
		t.Errorf("load_imm_jump = (%v, %d); want (CONTINUE, 4)", st, next)
	}
	if regs[3] != 0xABCD {
		t.Errorf("regs[3] = %#x; want 0xABCD", regs[3])
	}
}

func TestExecLoadImmJumpInd(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	var regs [RegisterCount]uint64
	regs[5] = 0

	st, next := execLoadImmJumpInd(&regs, nil, prog, 0, 1, Operands{Ra: 3, Rb: 5, Vx: 0x42, Vy: 2})
	if st.Kind != Continue || next != 4 {
		t.Errorf("load_imm_jump_ind = (%v, %d); want (CONTINUE, 4)", st, next)
	}
	if regs[3] != 0x42 {
		t.Errorf("regs[3] = %#x; want 0x42", regs[3])
	}
}

func TestBranchImmFamily(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	var regs [RegisterCount]uint64
	regs[1] = 10

	o := Operands{Ra: 1, Vx: 10, Vy: 4}
	st, next := opExec[OpBranchEqImm](&regs, nil, prog, 0, 1, o)
	if st.Kind != Continue || next != 4 {
		t.Errorf("branch_eq_imm(10 == 10) = (%v, %d); want (CONTINUE, 4)", st, next)
	}

	st, next = opExec[OpBranchNeImm](&regs, nil, prog, 0, 1, o)
	if st.Kind != Continue || next != 1 {
		t.Errorf("branch_ne_imm(10 == 10) = (%v, %d); want (CONTINUE, 1) (falls through)", st, next)
	}
}

func TestBranchImmSignedComparisonUsesTwosComplement(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	var regs [RegisterCount]uint64
	regs[1] = ^uint64(0) // -1

	// Unsigned: -1's bit pattern is the largest uint64, so it is NOT < 0.
	o := Operands{Ra: 1, Vx: 0, Vy: 4}
	if st, next := opExec[OpBranchLtUImm](&regs, nil, prog, 0, 1, o); st.Kind != Continue || next != 1 {
		t.Errorf("branch_lt_u_imm(-1bits < 0) = (%v, %d); want (CONTINUE, 1) (unsigned: not less)", st, next)
	}
	// Signed: -1 < 0 is true.
	if st, next := opExec[OpBranchLtSImm](&regs, nil, prog, 0, 1, o); st.Kind != Continue || next != 4 {
		t.Errorf("branch_lt_s_imm(-1 < 0) = (%v, %d); want (CONTINUE, 4) (signed: less)", st, next)
	}
}

func TestBranchRegFamily(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	var regs [RegisterCount]uint64
	regs[1], regs[2] = 5, 9

	o := Operands{Ra: 1, Rb: 2, Vx: 4}
	if st, next := opExec[OpBranchLtU](&regs, nil, prog, 0, 1, o); st.Kind != Continue || next != 4 {
		t.Errorf("branch_lt_u(5 < 9) = (%v, %d); want (CONTINUE, 4)", st, next)
	}
	if st, next := opExec[OpBranchGeU](&regs, nil, prog, 0, 1, o); st.Kind != Continue || next != 1 {
		t.Errorf("branch_ge_u(5 >= 9) = (%v, %d); want (CONTINUE, 1)", st, next)
	}
}

func TestExecTrapAndFallthrough(t *testing.T) {
	var regs [RegisterCount]uint64
	st, next := execTrap(&regs, nil, nil, 3, 4, Operands{})
	if st.Kind != Panic || next != 4 {
		t.Errorf("trap = (%v, %d); want (PANIC, 4)", st, next)
	}

	st, next = execFallthrough(&regs, nil, nil, 3, 4, Operands{})
	if st.Kind != Continue || next != 4 {
		t.Errorf("fallthrough = (%v, %d); want (CONTINUE, 4)", st, next)
	}
}

func TestExecEcalli(t *testing.T) {
	var regs [RegisterCount]uint64
	st, next := execEcalli(&regs, nil, nil, 3, 4, Operands{Vx: 7})
	if st.Kind != Host || st.Index != 7 || next != 4 {
		t.Errorf("ecalli = (%v, %d); want (HOST index=7, 4)", st, next)
	}
}
