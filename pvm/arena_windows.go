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

//go:build windows

package pvm

import "fmt"

// arena has no Windows implementation; the recompiler back-end is
// unix-only (spec.md §4.6 relies on mmap/mprotect/SIGSEGV, none of which
// this core emulates on Windows).
type arena struct{}

func newArena() (*arena, error) {
	return nil, fmt.Errorf("pvm: recompiler back-end requires a unix host")
}

func (a *arena) close() error { return nil }

func (a *arena) guestSlice(addr, length uint32) []byte { return nil }

func (a *arena) protect(first, last uint32, mode AccessMode) error { return nil }

func (a *arena) faultToGuestAddr(hostAddr uintptr) (uint32, bool) { return 0, false }
