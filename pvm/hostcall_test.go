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

func TestDispatcherUnknownIndexPanics(t *testing.T) {
	d := NewDispatcher(1)
	var regs [RegisterCount]uint64
	gas := int64(10)
	st := d.Dispatch(99, &regs, nil, &gas)
	if st.Kind != Panic {
		t.Errorf("status = %v; want PANIC (no registered handler)", st)
	}
}

func TestDispatcherChargesGasBeforeHandler(t *testing.T) {
	d := NewDispatcher(3)
	called := false
	d.Register(1, -1, func(regs *[RegisterCount]uint64, mem *Memory) Status {
		called = true
		return statusContinue()
	})

	var regs [RegisterCount]uint64
	gas := int64(10)
	st := d.Dispatch(1, &regs, nil, &gas)
	if st.Kind != Continue {
		t.Fatalf("status = %v; want CONTINUE", st)
	}
	if !called {
		t.Errorf("handler was not invoked")
	}
	if gas != 7 {
		t.Errorf("gas = %d; want 7 (10 - defaultGas 3)", gas)
	}
}

func TestDispatcherOutOfGasDoesNotCallHandler(t *testing.T) {
	d := NewDispatcher(5)
	called := false
	d.Register(1, -1, func(regs *[RegisterCount]uint64, mem *Memory) Status {
		called = true
		return statusContinue()
	})

	var regs [RegisterCount]uint64
	gas := int64(3)
	st := d.Dispatch(1, &regs, nil, &gas)
	if st.Kind != OutOfGas {
		t.Errorf("status = %v; want OUT_OF_GAS", st)
	}
	if called {
		t.Errorf("handler must not run once gas is exhausted")
	}
	if gas != -2 {
		t.Errorf("gas = %d; want -2 (3 - 5, charged even though it goes negative)", gas)
	}
}

func TestDispatcherRegisterPerIndexGasOverride(t *testing.T) {
	d := NewDispatcher(100)
	d.Register(1, 1, func(regs *[RegisterCount]uint64, mem *Memory) Status { return statusContinue() })

	var regs [RegisterCount]uint64
	gas := int64(10)
	d.Dispatch(1, &regs, nil, &gas)
	if gas != 9 {
		t.Errorf("gas = %d; want 9 (per-index cost 1, not defaultGas 100)", gas)
	}
}

func TestDispatcherSetGasOverridesWithoutTouchingHandler(t *testing.T) {
	d := NewDispatcher(100)
	d.Register(1, -1, func(regs *[RegisterCount]uint64, mem *Memory) Status { return statusContinue() })
	d.SetGas(1, 4)

	var regs [RegisterCount]uint64
	gas := int64(10)
	d.Dispatch(1, &regs, nil, &gas)
	if gas != 6 {
		t.Errorf("gas = %d; want 6 (SetGas override of 4, not defaultGas 100)", gas)
	}
}

func TestHostSHA3RoundTrip(t *testing.T) {
	d := NewDispatcher(0)
	RegisterDemoHandlers(d)

	mem := NewMemory()
	mem.AlterAccessibility(0, PageSize, AccessWrite)
	input := []byte("hello pvm")
	mem.Write(0, input)

	var regs [RegisterCount]uint64
	regs[8] = 0               // input address
	regs[9] = uint64(len(input)) // input length
	regs[10] = 100            // output address

	gas := int64(10)
	st := d.Dispatch(HostIndexSHA3, &regs, mem, &gas)
	if st.Kind != Continue {
		t.Fatalf("status = %v; want CONTINUE", st)
	}
	if regs[7] != SentinelOK {
		t.Errorf("r7 = %#x; want SentinelOK", regs[7])
	}
	digest, st := mem.Read(100, 32)
	if st.Kind != Continue {
		t.Fatalf("digest read status = %v; want CONTINUE", st)
	}
	allZero := true
	for _, b := range digest {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Errorf("digest was not written")
	}
}

func TestHostSHA3OutOfBoundsInputSetsSentinel(t *testing.T) {
	d := NewDispatcher(0)
	RegisterDemoHandlers(d)

	mem := NewMemory() // nothing mapped
	var regs [RegisterCount]uint64
	regs[8], regs[9], regs[10] = 0, 16, 100

	gas := int64(10)
	st := d.Dispatch(HostIndexSHA3, &regs, mem, &gas)
	if st.Kind != Continue {
		t.Fatalf("status = %v; want CONTINUE (semantic failure, not a trap)", st)
	}
	if regs[7] != SentinelOOB {
		t.Errorf("r7 = %#x; want SentinelOOB", regs[7])
	}
}
