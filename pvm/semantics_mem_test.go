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

func TestStoreImmAbsAndLoadAbs(t *testing.T) {
	mem := NewMemory()
	mem.AlterAccessibility(0, PageSize, AccessWrite)
	var regs [RegisterCount]uint64

	st, _ := storeImmAbs(2)(&regs, mem, nil, 0, 1, Operands{Vx: 100, Vy: 0xBEEF})
	if st.Kind != Continue {
		t.Fatalf("store_imm_u16 status = %v; want CONTINUE", st)
	}

	st, _ = loadAbs(2, false)(&regs, mem, nil, 0, 1, Operands{Ra: 3, Vx: 100})
	if st.Kind != Continue {
		t.Fatalf("load_u16 status = %v; want CONTINUE", st)
	}
	if regs[3] != 0xBEEF {
		t.Errorf("regs[3] = %#x; want 0xBEEF", regs[3])
	}
}

func TestLoadAbsSignExtendsNarrowNegativeValue(t *testing.T) {
	mem := NewMemory()
	mem.AlterAccessibility(0, PageSize, AccessWrite)
	var regs [RegisterCount]uint64

	storeImmAbs(1)(&regs, mem, nil, 0, 1, Operands{Vx: 0, Vy: 0xFF}) // -1 as i8

	st, _ := loadAbs(1, true)(&regs, mem, nil, 0, 1, Operands{Ra: 0, Vx: 0})
	if st.Kind != Continue {
		t.Fatalf("load_i8 status = %v; want CONTINUE", st)
	}
	if regs[0] != ^uint64(0) {
		t.Errorf("load_i8(0xFF) = %#x; want all-ones (-1 sign-extended)", regs[0])
	}

	st, _ = loadAbs(1, false)(&regs, mem, nil, 0, 1, Operands{Ra: 1, Vx: 0})
	if st.Kind != Continue {
		t.Fatalf("load_u8 status = %v; want CONTINUE", st)
	}
	if regs[1] != 0xFF {
		t.Errorf("load_u8(0xFF) = %#x; want 0xFF (zero-extended)", regs[1])
	}
}

func TestStoreAndLoadIndirect(t *testing.T) {
	mem := NewMemory()
	mem.AlterAccessibility(0, PageSize, AccessWrite)
	var regs [RegisterCount]uint64
	regs[2] = 50 // base register (rb)
	regs[1] = 0xDEADBEEF

	st, _ := storeInd(4)(&regs, mem, nil, 0, 1, Operands{Ra: 1, Rb: 2, Vx: 10})
	if st.Kind != Continue {
		t.Fatalf("store_ind_u32 status = %v; want CONTINUE", st)
	}

	st, _ = loadInd(4, false)(&regs, mem, nil, 0, 1, Operands{Ra: 3, Rb: 2, Vx: 10})
	if st.Kind != Continue {
		t.Fatalf("load_ind_u32 status = %v; want CONTINUE", st)
	}
	if regs[3] != 0xDEADBEEF {
		t.Errorf("regs[3] = %#x; want 0xDEADBEEF (addr = rb+vx = 60)", regs[3])
	}
}

func TestStoreImmIndirect(t *testing.T) {
	mem := NewMemory()
	mem.AlterAccessibility(0, PageSize, AccessWrite)
	var regs [RegisterCount]uint64
	regs[2] = 20

	st, _ := storeImmInd(8)(&regs, mem, nil, 0, 1, Operands{Ra: 2, Vx: 5, Vy: 0x1122334455667788})
	if st.Kind != Continue {
		t.Fatalf("store_imm_ind_u64 status = %v; want CONTINUE", st)
	}

	got, st := mem.Read(25, 8)
	if st.Kind != Continue {
		t.Fatalf("Read status = %v; want CONTINUE", st)
	}
	if leUint(got, 8) != 0x1122334455667788 {
		t.Errorf("stored value = %#x; want 0x1122334455667788", leUint(got, 8))
	}
}

func TestLoadStoreFaultsOnUnmappedPage(t *testing.T) {
	mem := NewMemory()
	var regs [RegisterCount]uint64
	st, _ := loadAbs(4, false)(&regs, mem, nil, 0, 1, Operands{Ra: 0, Vx: 0})
	if st.Kind != PageFault {
		t.Errorf("load_u32 on unmapped page status = %v; want PAGE_FAULT", st)
	}
}

func TestExecSbrk(t *testing.T) {
	mem := NewMemory()
	mem.SetHeapBreak(0)
	var regs [RegisterCount]uint64
	regs[5] = PageSize // ra: requested growth

	st, _ := execSbrk(&regs, mem, nil, 0, 1, Operands{Ra: 5, Rd: 6})
	if st.Kind != Continue {
		t.Fatalf("sbrk status = %v; want CONTINUE", st)
	}
	if regs[6] != PageSize {
		t.Errorf("regs[rd] = %d; want %d (new heap_break)", regs[6], PageSize)
	}
	if !mem.IsAccessible(0, PageSize, AccessWrite) {
		t.Errorf("sbrk-granted region should be writable")
	}
}
