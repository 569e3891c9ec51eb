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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestExecuteDefaultsToInterpreter(t *testing.T) {
	prog := decodeTestProgram(t, blobTrapOnly)
	inv := &Invocation{Program: prog, PC: 0, Memory: NewMemory()}

	rec := Execute("", inv, 10, nil)
	if rec.Status.Kind != Panic {
		t.Errorf("status = %v; want PANIC (trap), got default backend", rec.Status)
	}
}

// TestExecuteBackendsAreObservationallyEquivalent runs the same program on
// both back-ends and checks they reach the same terminal status, pc, and gas
// remaining, per pvm.go's equivalence contract.
func TestExecuteBackendsAreObservationallyEquivalent(t *testing.T) {
	prog := decodeTestProgram(t, blobFallthroughThenTrap)

	newInv := func() *Invocation {
		return &Invocation{Program: prog, PC: 0, Memory: NewMemory()}
	}

	interp := Execute(BackendInterpreter, newInv(), 10, nil)
	rec := Execute(BackendRecompiler, newInv(), 10, nil)

	// Caller differs by construction (each backend captures its own call
	// stack), so it's excluded from the equivalence check.
	if diff := cmp.Diff(interp.Status, rec.Status, cmpopts.IgnoreFields(Status{}, "Caller")); diff != "" {
		t.Errorf("recompiler status diverges from interpreter (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(interp.Regs, rec.Regs); diff != "" {
		t.Errorf("recompiler regs diverge from interpreter (-want +got):\n%s", diff)
	}
	if rec.PC != interp.PC {
		t.Errorf("recompiler PC = %d; want %d (interpreter)", rec.PC, interp.PC)
	}
	if rec.GasRemain != interp.GasRemain {
		t.Errorf("recompiler GasRemain = %d; want %d (interpreter)", rec.GasRemain, interp.GasRemain)
	}
}

// blobStoreToUnmappedPage is store_imm_u8(addr=0x1000, value=0xAB) followed
// by TRAP. lx=2 (address bytes), ly=1 (value byte): skip(0) = lx+ly+1 = 4,
// so TRAP sits at byte 5. Address 0x1000 is never granted any access, so
// the store always faults.
var blobStoreToUnmappedPage = []byte{
	0x00, 0x01, 0x06,
	byte(OpStoreImmU8), 0x02, 0x00, 0x10, 0xAB,
	byte(OpTrap),
	0x21,
}

// TestRecompilerPageFaultReportsRealAddress exercises the recompiler's host
// signal/trap plane directly: the store below lands on a page the mmap'd
// arena has never granted access to, so the host itself raises the fault.
// The reported address must match what the software-checked interpreter
// reports for the identical access, not a hardcoded zero.
func TestRecompilerPageFaultReportsRealAddress(t *testing.T) {
	prog := decodeTestProgram(t, blobStoreToUnmappedPage)

	newInv := func() *Invocation {
		return &Invocation{Program: prog, PC: 0, Memory: NewMemory()}
	}

	interp := Execute(BackendInterpreter, newInv(), 10, nil)
	if interp.Status.Kind != PageFault {
		t.Fatalf("interpreter status = %v; want PAGE_FAULT", interp.Status)
	}
	if interp.Status.Addr != 0x1000 {
		t.Fatalf("interpreter fault addr = %#x; want %#x", interp.Status.Addr, 0x1000)
	}

	rec := Execute(BackendRecompiler, newInv(), 10, nil)
	if rec.Status.Kind != PageFault {
		t.Fatalf("recompiler status = %v; want PAGE_FAULT", rec.Status)
	}
	if rec.Status.Addr != interp.Status.Addr {
		t.Errorf("recompiler fault addr = %#x; want %#x (interpreter's, not 0)", rec.Status.Addr, interp.Status.Addr)
	}
}
