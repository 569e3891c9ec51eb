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

import (
	"bytes"
	"testing"
)

// blobWithJumpTable is four FALLTHROUGHs followed by a TRAP, with a single
// one-byte jump-table entry pointing at pc=4 (the TRAP). Every position is
// an opcode (bitmap = 0x1F) and, since FALLTHROUGH is itself a terminator,
// every position is also a basic-block entry.
var blobWithJumpTable = []byte{
	0x01, 0x01, 0x05, // j_len=1, z=1, c_len=5
	0x04,                                            // jump table: [4]
	byte(OpFallthrough), byte(OpFallthrough), byte(OpFallthrough), byte(OpFallthrough), byte(OpTrap),
	0x1F, // bitmap: all 5 positions are opcodes
}

func TestDecodeProgramWithJumpTable(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	if len(prog.JumpTable) != 1 || prog.JumpTable[0] != 4 {
		t.Fatalf("JumpTable = %v; want [4]", prog.JumpTable)
	}
	if !bytes.Equal(prog.Bytes, []byte{1, 1, 1, 1, 0}) {
		t.Errorf("Bytes = %v; want [1 1 1 1 0]", prog.Bytes)
	}
	for pc := uint32(0); pc < 5; pc++ {
		if !prog.IsBasicBlockEntry(pc) {
			t.Errorf("pc %d should be a basic-block entry (fallthrough/trap are both terminators)", pc)
		}
		if prog.Skip(pc) != 0 {
			t.Errorf("Skip(%d) = %d; want 0 (every opcode here takes ShapeNone)", pc, prog.Skip(pc))
		}
	}
}

func TestProgramEncodeRoundTrip(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	got := prog.Encode()
	if !bytes.Equal(got, blobWithJumpTable) {
		t.Errorf("Encode() = %#v; want %#v", got, blobWithJumpTable)
	}

	// Decoding the re-encoded blob must reproduce the same structure.
	reDecoded := decodeTestProgram(t, got)
	if !bytes.Equal(reDecoded.Bytes, prog.Bytes) {
		t.Errorf("round-tripped Bytes = %v; want %v", reDecoded.Bytes, prog.Bytes)
	}
	if len(reDecoded.JumpTable) != len(prog.JumpTable) || reDecoded.JumpTable[0] != prog.JumpTable[0] {
		t.Errorf("round-tripped JumpTable = %v; want %v", reDecoded.JumpTable, prog.JumpTable)
	}
}

func TestProgramBranch(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)

	// cond=false always falls through, even to an invalid target.
	if st, next := prog.branch(0, 99, false, 1); st.Kind != Continue || next != 1 {
		t.Errorf("branch(cond=false) = (%v, %d); want (CONTINUE, 1)", st, next)
	}

	// target == pc (self-branch) falls through regardless of cond.
	if st, next := prog.branch(2, 2, true, 3); st.Kind != Continue || next != 3 {
		t.Errorf("branch(self) = (%v, %d); want (CONTINUE, 3)", st, next)
	}

	// cond=true to a valid basic-block entry takes the branch.
	if st, next := prog.branch(0, 4, true, 1); st.Kind != Continue || next != 4 {
		t.Errorf("branch(valid target) = (%v, %d); want (CONTINUE, 4)", st, next)
	}

	// cond=true to a target that is not a basic-block entry PANICs.
	if st, _ := prog.branch(0, 99, true, 1); st.Kind != Panic {
		t.Errorf("branch(invalid target) status = %v; want PANIC", st)
	}
}

func TestProgramDjump(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)

	if st, _ := prog.djump(haltSentinel); st.Kind != Halt {
		t.Errorf("djump(haltSentinel) = %v; want HALT", st)
	}
	if st, _ := prog.djump(0); st.Kind != Panic {
		t.Errorf("djump(0) = %v; want PANIC (zero address)", st)
	}
	if st, _ := prog.djump(1); st.Kind != Panic {
		t.Errorf("djump(1) = %v; want PANIC (misaligned)", st)
	}
	if st, dest := prog.djump(2); st.Kind != Continue || dest != 4 {
		t.Errorf("djump(2) = (%v, %d); want (CONTINUE, 4)", st, dest)
	}
	if st, _ := prog.djump(4); st.Kind != Panic {
		t.Errorf("djump(4) = %v; want PANIC (index 1 out of bounds for a 1-entry table)", st)
	}
}

func TestProgramDjumpDestinationNotBlockEntry(t *testing.T) {
	prog := decodeTestProgram(t, blobWithJumpTable)
	prog.JumpTable[0] = 99 // not a valid basic-block entry
	if st, _ := prog.djump(2); st.Kind != Panic {
		t.Errorf("djump to non-entry destination = %v; want PANIC", st)
	}
}
