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

import "fmt"

// Code is the outer container a service invocation is built from:
// read-only data, read-write data, a count of extra heap pages, a
// requested stack size, and the PVM program blob itself (spec.md §6
// "Service invocation layout").
type Code struct {
	ReadOnly  []byte
	ReadWrite []byte

	// ExtraHeapPages (z) is a count of whole pages appended as writable
	// heap directly after the read-write zone's own data pages, on top
	// of whatever total_page_size(len(ReadWrite)) already covers.
	ExtraHeapPages uint32

	// StackSize (s) is the size in bytes of the writable stack region
	// placed at the top of the address space, below the argument zone.
	StackSize uint32

	Program []byte
}

// ErrMalformedCode is returned by DecodeCodeContainer on a truncated
// container.
var ErrMalformedCode = fmt.Errorf("pvm: malformed code container")

// codeHeaderSize is the combined width, in bytes, of the five fixed-width
// fields: o_len, w_len, z and s at the front of the container, and c_len
// between w_bytes and c_bytes. It is the size of the smallest valid container.
const codeHeaderSize = 3 + 3 + 2 + 3 + 4

// DecodeCodeContainer parses the outer container: o_len (u24-LE),
// w_len (u24-LE), z (u16-LE), s (u24-LE), o_bytes, w_bytes, c_len (u32-LE),
// c_bytes — fixed-width fields throughout, no varints.
func DecodeCodeContainer(b []byte) (*Code, error) {
	if len(b) < codeHeaderSize {
		return nil, ErrMalformedCode
	}
	off := 0
	oLen := leUint(b[off:], 3)
	off += 3
	wLen := leUint(b[off:], 3)
	off += 3
	z := leUint(b[off:], 2)
	off += 2
	s := leUint(b[off:], 3)
	off += 3

	dataEnd := uint64(off) + oLen + wLen
	if dataEnd+4 > uint64(len(b)) || dataEnd < uint64(off) {
		return nil, ErrMalformedCode
	}

	c := &Code{ExtraHeapPages: uint32(z), StackSize: uint32(s)}
	c.ReadOnly = append([]byte(nil), b[off:off+int(oLen)]...)
	off += int(oLen)
	c.ReadWrite = append([]byte(nil), b[off:off+int(wLen)]...)
	off += int(wLen)

	cLen := leUint(b[off:], 4)
	off += 4
	need := uint64(off) + cLen
	if need > uint64(len(b)) || need < uint64(off) {
		return nil, ErrMalformedCode
	}
	c.Program = append([]byte(nil), b[off:off+int(cLen)]...)
	return c, nil
}

// EncodeCodeContainer serializes c back to the wire format
// DecodeCodeContainer accepts.
func (c *Code) EncodeCodeContainer() []byte {
	out := make([]byte, codeHeaderSize-4) // c_len is appended after w_bytes
	putLE(out[0:], uint64(len(c.ReadOnly)), 3)
	putLE(out[3:], uint64(len(c.ReadWrite)), 3)
	putLE(out[6:], uint64(c.ExtraHeapPages), 2)
	putLE(out[8:], uint64(c.StackSize), 3)
	out = append(out, c.ReadOnly...)
	out = append(out, c.ReadWrite...)
	cLen := make([]byte, 4)
	putLE(cLen, uint64(len(c.Program)), 4)
	out = append(out, cLen...)
	out = append(out, c.Program...)
	return out
}

// Invocation is the fully materialized starting state for one service
// execution: a decoded program, initial registers, and populated memory.
type Invocation struct {
	Program *Program
	PC      uint32
	Regs    [RegisterCount]uint64
	Memory  *Memory
}

// BuildInvocation decodes c.Program and lays out memory and the initial
// register file exactly as spec.md §6 specifies: o at Z_Z, w at
// 2·Z_Z + zone_round(|o|) (one Z_Z gap after o's zone), args at the top of
// the address space below the init zone, and a stack region below that.
func BuildInvocation(c *Code, args []byte) (*Invocation, error) {
	prog, err := DecodeProgram(c.Program)
	if err != nil {
		return nil, err
	}

	mem := NewMemory()
	argAddr, stackTop, err := buildInitialMemory(mem, c, args)
	if err != nil {
		return nil, err
	}

	var regs [RegisterCount]uint64
	regs[0] = uint64(haltSentinel)
	regs[1] = uint64(stackTop)
	regs[7] = uint64(argAddr)
	regs[8] = uint64(len(args))

	return &Invocation{Program: prog, PC: 0, Regs: regs, Memory: mem}, nil
}

// buildInitialMemory populates mem with the four service-invocation
// regions (read-only data, read-write data plus its extra heap pages,
// argument bytes, and the stack) at the exact offsets
// tsrkit_pvm/interpreter/memory.py's from_pc classmethod computes, and
// returns the argument-zone address and the stack-top address the
// initial register file needs.
func buildInitialMemory(mem *Memory, c *Code, args []byte) (argAddr, stackTop uint32, err error) {
	oAddr := uint32(InitZoneSize)
	oPages := uint32(totalPageSize(uint64(len(c.ReadOnly))))
	if len(c.ReadOnly) > 0 {
		// Seed the contents while the pages are writable, then drop them
		// to read-only.
		mem.AlterAccessibility(oAddr, oPages, AccessWrite)
		if st := mem.Write(oAddr, c.ReadOnly); st.Kind != Continue {
			return 0, 0, fmt.Errorf("pvm: read-only data does not fit: %s", st)
		}
		mem.AlterAccessibility(oAddr, oPages, AccessRead)
	}

	wAddr := 2*uint32(InitZoneSize) + uint32(totalZoneSize(uint64(len(c.ReadOnly))))
	wGrant := uint32(totalPageSize(uint64(len(c.ReadWrite)))) + c.ExtraHeapPages*PageSize
	if wGrant > 0 {
		mem.AlterAccessibility(wAddr, wGrant, AccessWrite)
	}
	if len(c.ReadWrite) > 0 {
		if st := mem.Write(wAddr, c.ReadWrite); st.Kind != Continue {
			return 0, 0, fmt.Errorf("pvm: read-write data does not fit: %s", st)
		}
	}
	mem.SetHeapBreak(wAddr + wGrant)

	argAddr = uint32(AddressSpaceSize - InitZoneSize - InitDataSize)
	if len(args) > 0 {
		argPages := uint32(totalPageSize(uint64(len(args))))
		mem.AlterAccessibility(argAddr, argPages, AccessWrite)
		if st := mem.Write(argAddr, args); st.Kind != Continue {
			return 0, 0, fmt.Errorf("pvm: argument data does not fit: %s", st)
		}
		mem.AlterAccessibility(argAddr, argPages, AccessRead)
	}

	stackTop = uint32(AddressSpaceSize - 2*InitZoneSize - InitDataSize)
	if c.StackSize > 0 {
		stackPages := uint32(totalPageSize(uint64(c.StackSize)))
		stackBottom := stackTop - stackPages
		mem.AlterAccessibility(stackBottom, stackPages, AccessWrite)
	}

	return argAddr, stackTop, nil
}
