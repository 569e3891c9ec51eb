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
	mapset "github.com/deckarep/golang-set"
)

// Program is a decoded, immutable program blob (spec.md §3). Once built it
// is process-shareable: many invocations may execute the same *Program
// concurrently.
type Program struct {
	Bytes     []byte   // instruction_set
	JumpTable []uint32 // decoded jump-table entries
	bitmap    []byte   // raw offset_bitmask as read; Encode rebuilds it from isOpcode

	skip         []int  // skip(pc) for opcode positions; -1 otherwise
	isOpcode     []bool // bitAt(bitmap, pc) memoized per byte position
	bitmaskIndex []int  // rank among opcode positions; -1 otherwise
	basicBlocks  mapset.Set
}

// DecodeProgram parses a program blob per spec.md §6's byte layout.
func DecodeProgram(blob []byte) (*Program, error) {
	off := 0
	jLen, n, err := readVarint(blob, off)
	if err != nil {
		return nil, err
	}
	off += n

	if off >= len(blob) {
		return nil, ErrMalformedVarint
	}
	z := int(blob[off])
	off++
	if z < 1 || z > 4 {
		return nil, ErrMalformedVarint
	}

	cLen, n, err := readVarint(blob, off)
	if err != nil {
		return nil, err
	}
	off += n

	jumpTable := make([]uint32, jLen)
	for i := range jumpTable {
		jumpTable[i] = uint32(leUint(sliceFrom(blob, off), z))
		off += z
	}

	instr := sliceFrom(blob, off)
	if uint64(len(instr)) > cLen {
		instr = instr[:cLen]
	}
	off += len(instr)

	bitmapLen := (int(cLen) + 7) / 8
	bitmap := sliceFrom(blob, off)
	if len(bitmap) > bitmapLen {
		bitmap = bitmap[:bitmapLen]
	}

	p := &Program{Bytes: instr, JumpTable: jumpTable, bitmap: bitmap}
	p.index()
	return p, nil
}

func sliceFrom(b []byte, off int) []byte {
	if off >= len(b) {
		return nil
	}
	return b[off:]
}

// index computes isOpcode, skip, bitmaskIndex and basicBlocks in a single
// forward pass, per spec.md §4.1.
func (p *Program) index() {
	n := len(p.Bytes)
	p.isOpcode = make([]bool, n)
	p.skip = make([]int, n)
	p.bitmaskIndex = make([]int, n)
	p.basicBlocks = mapset.NewSet()

	opcodePositions := make([]int, 0, n)
	for i := 0; i < n; i++ {
		p.skip[i] = -1
		p.bitmaskIndex[i] = -1
		if bitAt(p.bitmap, i) {
			p.isOpcode[i] = true
			opcodePositions = append(opcodePositions, i)
		}
	}

	for rank, pos := range opcodePositions {
		p.bitmaskIndex[pos] = rank
		next := n
		if rank+1 < len(opcodePositions) {
			next = opcodePositions[rank+1]
		}
		s := next - pos - 1
		if s > MaxSkip {
			s = MaxSkip
		}
		if s < 0 {
			s = 0
		}
		p.skip[pos] = s
	}

	prevTerminator := true // the first opcode position is always an entry
	for _, pos := range opcodePositions {
		if prevTerminator {
			p.basicBlocks.Add(uint32(pos))
		}
		prevTerminator = isTerminating(p.Bytes[pos])
	}
}

// Skip returns skip(pc); callers must only call this for opcode positions.
func (p *Program) Skip(pc uint32) int {
	if int(pc) >= len(p.skip) {
		return 0
	}
	return p.skip[pc]
}

// IsOpcode reports whether pc is an opcode position.
func (p *Program) IsOpcode(pc uint32) bool {
	return int(pc) < len(p.isOpcode) && p.isOpcode[pc]
}

// IsBasicBlockEntry reports whether pc ∈ basic_blocks (spec.md §3).
func (p *Program) IsBasicBlockEntry(pc uint32) bool {
	return p.basicBlocks.Contains(pc)
}

// BitmaskIndex returns the rank of pc among opcode positions, used to
// address the JIT's native-address table. Returns -1 if pc is not an
// opcode position.
func (p *Program) BitmaskIndex(pc uint32) int {
	if int(pc) >= len(p.bitmaskIndex) {
		return -1
	}
	return p.bitmaskIndex[pc]
}

// OpcodeAt returns the opcode byte at pc, or 0 if out of range.
func (p *Program) OpcodeAt(pc uint32) byte {
	if int(pc) >= len(p.Bytes) {
		return 0
	}
	return p.Bytes[pc]
}

// branch resolves a conditional or unconditional branch from pc. When cond
// is false it falls through to the next opcode (the caller supplies that as
// fallbackPC). When cond is true, target must be a basic-block entry or the
// branch PANICs (spec.md §8 property 3); a self-branch (target == pc) also
// falls through, matching the "jump(vx): if vx == pc, fall through" rule
// applied uniformly to every branch/jump form.
func (p *Program) branch(pc, target uint32, cond bool, fallbackPC uint32) (Status, uint32) {
	if !cond {
		return statusContinue(), fallbackPC
	}
	if target == pc {
		return statusContinue(), fallbackPC
	}
	if !p.IsBasicBlockEntry(target) {
		return statusPanic("branch target 0x%08x is not a basic-block entry", target), pc
	}
	return statusContinue(), target
}

// djump resolves an indirect-jump address a per spec.md §3/§4.3: the
// special halt sentinel, then the `a≠0, even, in-range, valid destination`
// chain, PANIC on any violation.
func (p *Program) djump(a uint64) (Status, uint32) {
	if a == haltSentinel {
		return statusHalt(), 0
	}
	if a == 0 || a%AddrAlignment != 0 {
		return statusPanic("indirect jump target 0x%x is zero or misaligned", a), 0
	}
	idx := a/AddrAlignment - 1
	if idx >= uint64(len(p.JumpTable)) {
		return statusPanic("indirect jump index %d out of bounds (table len %d)", idx, len(p.JumpTable)), 0
	}
	dest := p.JumpTable[idx]
	if !p.IsBasicBlockEntry(dest) {
		return statusPanic("indirect jump destination 0x%08x is not a basic-block entry", dest), 0
	}
	return statusContinue(), dest
}

// Encode serializes p back to the wire format of spec.md §6, choosing the
// smallest jump-table entry width that fits every entry. Used to exercise
// the round-trip invariant (spec.md §8 property 5).
func (p *Program) Encode() []byte {
	z := 1
	for _, v := range p.JumpTable {
		for z < 4 && v >= 1<<(8*z) {
			z++
		}
	}
	out := putVarint(nil, uint64(len(p.JumpTable)))
	out = append(out, byte(z))
	out = putVarint(out, uint64(len(p.Bytes)))
	for _, v := range p.JumpTable {
		buf := make([]byte, z)
		putLE(buf, uint64(v), z)
		out = append(out, buf...)
	}
	out = append(out, p.Bytes...)
	bits := make([]bool, len(p.Bytes))
	for i := range bits {
		bits[i] = p.isOpcode[i]
	}
	out = append(out, packBitmap(bits)...)
	return out
}
