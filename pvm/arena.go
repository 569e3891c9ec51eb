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

//go:build !windows

package pvm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// vmContextSize is the portion of the host mapping reserved ahead of guest
// address 0, mirroring the VM-context record the recompiler keeps
// alongside guest memory (spec.md §4.6: "one additional host register
// holds a pointer to the VM-context record").
const vmContextSize = PageSize

// arena is a single anonymous host mapping covering the VM-context record
// followed immediately by the full 4 GiB guest address space, protected
// page-by-page with mprotect as the guest grants permissions.
type arena struct {
	buf []byte
}

func newArena() (*arena, error) {
	buf, err := unix.Mmap(-1, 0, vmContextSize+AddressSpaceSize, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return &arena{buf: buf}, nil
}

func (a *arena) close() error {
	return unix.Munmap(a.buf)
}

// guestSlice returns the host slice backing guest range [addr, addr+length).
func (a *arena) guestSlice(addr, length uint32) []byte {
	start := vmContextSize + uint64(addr)
	return a.buf[start : start+uint64(length)]
}

// faultToGuestAddr translates a host pointer a runtime fault reported
// (see faultAddresser in pvm/recompiler.go) back into the guest address it
// corresponds to, if it falls inside this arena's mapping at all.
func (a *arena) faultToGuestAddr(hostAddr uintptr) (uint32, bool) {
	base := uintptr(unsafe.Pointer(&a.buf[0]))
	if hostAddr < base || hostAddr >= base+uintptr(len(a.buf)) {
		return 0, false
	}
	offset := hostAddr - base
	if offset < vmContextSize {
		return 0, false
	}
	return uint32(offset - vmContextSize), true
}

func prot(mode AccessMode) int {
	switch mode {
	case AccessWrite:
		return unix.PROT_READ | unix.PROT_WRITE
	case AccessRead:
		return unix.PROT_READ
	default:
		return unix.PROT_NONE
	}
}

// protect applies mode to every page in [first, last] via mprotect.
func (a *arena) protect(first, last uint32, mode AccessMode) error {
	p := prot(mode)
	for page := first; ; page++ {
		start := vmContextSize + uint64(page)*PageSize
		if err := unix.Mprotect(a.buf[start:start+PageSize], p); err != nil {
			return err
		}
		if page == last {
			return nil
		}
	}
}
