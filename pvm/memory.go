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
	lru "github.com/hashicorp/golang-lru"
)

// AccessMode is a page's permission state (spec.md §4.2). WRITE implies
// READ for access checks; it is not a separate bit in this model.
type AccessMode uint8

const (
	AccessNone AccessMode = iota
	AccessRead
	AccessWrite
)

const hotCacheSize = 8

type pageEntry struct {
	mode AccessMode
	data *[PageSize]byte
}

// Memory is a sparse, paged, 32-bit address space (spec.md §3/§4.2). Pages
// are allocated lazily: a page with a permission grant but no writes yet
// has no backing array and reads as all zero.
type Memory struct {
	pages     map[uint32]*pageEntry
	heapBreak uint32
	hot       *lru.Cache // page number -> *pageEntry; fast-paths repeat single-page access
	arena     *arena     // non-nil only for recompiler-backed memory
}

// NewMemory returns an empty memory with every page inaccessible and
// heap_break at 0.
func NewMemory() *Memory {
	hot, _ := lru.New(hotCacheSize)
	return &Memory{pages: make(map[uint32]*pageEntry), hot: hot}
}

// NewMappedMemory returns an empty memory backed by a real mmap'd host
// allocation, page-protected with mprotect as permissions are granted
// (spec.md §4.6 "memory mapping"). Used by the recompiler back-end.
func NewMappedMemory() (*Memory, error) {
	m := NewMemory()
	a, err := newArena()
	if err != nil {
		return nil, err
	}
	m.arena = a
	return m, nil
}

// Close releases the host mapping backing m, if any.
func (m *Memory) Close() error {
	if m.arena == nil {
		return nil
	}
	return m.arena.close()
}

func pageNumber(addr uint32) uint32 { return addr / PageSize }

func (m *Memory) entry(page uint32) *pageEntry {
	if v, ok := m.hot.Get(page); ok {
		return v.(*pageEntry)
	}
	e, ok := m.pages[page]
	if !ok {
		return nil
	}
	m.hot.Add(page, e)
	return e
}

func (m *Memory) entryOrCreate(page uint32) *pageEntry {
	if e := m.entry(page); e != nil {
		return e
	}
	e := &pageEntry{mode: AccessNone}
	m.pages[page] = e
	m.hot.Add(page, e)
	return e
}

// touchedPages returns the inclusive range of page numbers [addr, addr+length).
func touchedPages(addr, length uint32) (first, last uint32) {
	if length == 0 {
		p := pageNumber(addr)
		return p, p
	}
	return pageNumber(addr), pageNumber(addr + length - 1)
}

// IsAccessible is a pure query: does every page touched by [addr, addr+length)
// satisfy mode (spec.md §4.2)?
func (m *Memory) IsAccessible(addr, length uint32, mode AccessMode) bool {
	if length == 0 {
		return true
	}
	first, last := touchedPages(addr, length)
	for p := first; p <= last; p++ {
		e := m.entry(p)
		cur := AccessNone
		if e != nil {
			cur = e.mode
		}
		switch mode {
		case AccessRead:
			if cur != AccessRead && cur != AccessWrite {
				return false
			}
		case AccessWrite:
			if cur != AccessWrite {
				return false
			}
		}
		if p == ^uint32(0) {
			break // avoid overflow on the final page of the address space
		}
	}
	return true
}

// Read returns length bytes starting at addr, or a PAGE_FAULT status if any
// touched page lacks READ (spec.md §4.2: "any page without READ|WRITE
// faults"). Unmapped-but-permitted pages read as zero.
//
// When m is arena-backed (the recompiler's mapped memory), this goes
// straight through the host mmap'd window instead of the software
// permission check: a mode violation reaches the host as a real page
// fault, caught by the recompiler's signal/trap plane (spec.md §4.6)
// rather than rejected here.
func (m *Memory) Read(addr, length uint32) ([]byte, Status) {
	if length == 0 {
		return nil, statusContinue()
	}
	if m.arena != nil {
		return append([]byte(nil), m.arena.guestSlice(addr, length)...), statusContinue()
	}
	if !m.IsAccessible(addr, length, AccessRead) {
		return nil, statusPageFault(addr)
	}
	out := make([]byte, length)
	for i := uint32(0); i < length; i++ {
		a := addr + i
		e := m.entry(pageNumber(a))
		if e == nil || e.data == nil {
			continue
		}
		out[i] = e.data[a%PageSize]
	}
	return out, statusContinue()
}

// Write stores data at addr. All touched pages must have WRITE or the
// access faults with no partial effect (spec.md invariant: "Memory access
// spanning two pages... otherwise the full access faults"). Arena-backed
// memory enforces this the same way Read does: through the real mprotect
// state of the mmap'd window, not a software pre-check.
func (m *Memory) Write(addr uint32, data []byte) Status {
	if len(data) == 0 {
		return statusContinue()
	}
	if m.arena != nil {
		copy(m.arena.guestSlice(addr, uint32(len(data))), data)
		return statusContinue()
	}
	if !m.IsAccessible(addr, uint32(len(data)), AccessWrite) {
		return statusPageFault(addr)
	}
	for i, b := range data {
		a := addr + uint32(i)
		e := m.entryOrCreate(pageNumber(a))
		if e.data == nil {
			e.data = &[PageSize]byte{}
		}
		e.data[a%PageSize] = b
	}
	return statusContinue()
}

// AlterAccessibility sets the permission of every page touched by
// [addr, addr+length) to mode.
func (m *Memory) AlterAccessibility(addr, length uint32, mode AccessMode) {
	if length == 0 {
		return
	}
	first, last := touchedPages(addr, length)
	for p := first; ; p++ {
		e := m.entryOrCreate(p)
		e.mode = mode
		if p == last {
			break
		}
	}
	if m.arena != nil {
		if err := m.arena.protect(first, last, mode); err != nil {
			panic(err) // mprotect failure on a host-owned mapping is not recoverable
		}
	}
}

// ZeroMemoryRange clears the contents of count pages starting at page
// number start, leaving their permissions untouched.
func (m *Memory) ZeroMemoryRange(start, count uint32) {
	for i := uint32(0); i < count; i++ {
		if e, ok := m.pages[start+i]; ok {
			e.data = nil
		}
	}
}

// HeapBreak returns the current heap_break value.
func (m *Memory) HeapBreak() uint32 { return m.heapBreak }

// SetHeapBreak sets heap_break directly; used by the code loader to seed
// the initial value for a service invocation.
func (m *Memory) SetHeapBreak(v uint32) { m.heapBreak = v }

// Sbrk grants WRITE over [heap_break, heap_break+n) and advances heap_break
// by n, returning the new value (spec.md §4.3 "Memory break").
func (m *Memory) Sbrk(n uint32) uint32 {
	m.AlterAccessibility(m.heapBreak, n, AccessWrite)
	m.heapBreak += n
	return m.heapBreak
}
