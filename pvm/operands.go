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

// Operands is the decoded argument tuple for one instruction. Not every
// field is meaningful for every shape; the block compiler decodes according
// to the opcode's OperandShape and the execute function for that opcode
// knows which fields it reads.
type Operands struct {
	Ra, Rb, Rd uint8
	Lx, Ly     int
	Vx, Vy     uint64
}

// readLE reads n (0..8) little-endian bytes from data starting at idx,
// treating any byte at or past len(data) as zero. This is the "reading past
// the instruction bytes yields zero" tolerance of spec.md §4.1.
func readLE(data []byte, idx, n int) uint64 {
	var v uint64
	for i := n - 1; i >= 0; i-- {
		var b byte
		if p := idx + i; p >= 0 && p < len(data) {
			b = data[p]
		}
		v = v<<8 | uint64(b)
	}
	return v
}

func byteAt(data []byte, idx int) byte {
	if idx < 0 || idx >= len(data) {
		return 0
	}
	return data[idx]
}

func min4(l int) int {
	if l < 0 {
		return 0
	}
	if l > 4 {
		return 4
	}
	return l
}

// pcTarget adds the sign-extended n-byte pattern raw to pc, modulo 2^32, and
// returns the result widened to uint64 for storage in Operands.
func pcTarget(pc uint32, raw uint64, n int) uint64 {
	return uint64(uint32(int64(pc) + toSigned(raw, n)))
}

// decodeOperands dispatches to the shape-specific decoder for op's shape.
// data is the full instruction-byte stream; pc is the opcode's position;
// skip is skip(pc) as precomputed by the program decoder.
func decodeOperands(shape OperandShape, data []byte, pc uint32, skip int) Operands {
	switch shape {
	case ShapeNone:
		return decodeNone()
	case ShapeImm:
		return decodeImm(data, pc, skip)
	case ShapeOffset:
		return decodeOffset(data, pc, skip)
	case ShapeRegImm:
		return decodeRegImm(data, pc, skip)
	case ShapeRegExtImm:
		return decodeRegExtImm(data, pc, skip)
	case ShapeRegImmOffset:
		return decodeRegImmOffset(data, pc, skip)
	case ShapeRegTwoImm:
		return decodeRegTwoImm(data, pc, skip)
	case ShapeTwoImm:
		return decodeTwoImm(data, pc, skip)
	case ShapeTwoReg:
		return decodeTwoReg(data, pc)
	case ShapeTwoRegImm:
		return decodeTwoRegImm(data, pc, skip)
	case ShapeTwoRegOffset:
		return decodeTwoRegOffset(data, pc, skip)
	case ShapeTwoRegTwoImm:
		return decodeTwoRegTwoImm(data, pc, skip)
	case ShapeThreeReg:
		return decodeThreeReg(data, pc)
	default:
		return Operands{}
	}
}

func decodeNone() Operands { return Operands{} }

// one imm: lx = min(4,L); vx = sign_ext(read(pc+1, lx))
func decodeImm(data []byte, pc uint32, skip int) Operands {
	lx := min4(skip)
	raw := readLE(data, int(pc)+1, lx)
	return Operands{Lx: lx, Vx: signExtend(raw, lx)}
}

// one offset: lx = min(4,L); vx = pc + sign_ext(read(pc+1, lx))
func decodeOffset(data []byte, pc uint32, skip int) Operands {
	lx := min4(skip)
	raw := readLE(data, int(pc)+1, lx)
	return Operands{Lx: lx, Vx: pcTarget(pc, raw, lx)}
}

// reg+imm: ra = byte[pc+1] & 0xF; lx = min(4, max(0,L-1)); vx = sign_ext(read(pc+2, lx))
func decodeRegImm(data []byte, pc uint32, skip int) Operands {
	ra := clamp12(byteAt(data, int(pc)+1) & 0xF)
	lx := min4(max0(skip - 1))
	raw := readLE(data, int(pc)+2, lx)
	return Operands{Ra: ra, Lx: lx, Vx: signExtend(raw, lx)}
}

// reg+ext_imm: ra = byte[pc+1] & 0xF; vx = zero_ext(read(pc+2, 8))
func decodeRegExtImm(data []byte, pc uint32, skip int) Operands {
	ra := clamp12(byteAt(data, int(pc)+1) & 0xF)
	raw := readLE(data, int(pc)+2, 8)
	return Operands{Ra: ra, Lx: 8, Vx: raw}
}

// reg+imm+offset: ra = byte[pc+1]&0xF; lx = min(4,(byte[pc+1]>>4)&7);
// ly = max(0, L-lx-1); vx = sign_ext(read(pc+2,lx)); vy = pc + sign_ext(read(pc+2+lx,ly))
func decodeRegImmOffset(data []byte, pc uint32, skip int) Operands {
	b1 := byteAt(data, int(pc)+1)
	ra := clamp12(b1 & 0xF)
	lx := min4(int((b1 >> 4) & 7))
	ly := max0(skip - lx - 1)
	rawX := readLE(data, int(pc)+2, lx)
	rawY := readLE(data, int(pc)+2+lx, ly)
	return Operands{
		Ra: ra, Lx: lx, Ly: ly,
		Vx: signExtend(rawX, lx),
		Vy: pcTarget(pc, rawY, ly),
	}
}

// reg+two imm: identical to reg+imm+offset except vy is also sign-extended,
// not added to pc (spec.md §4.3).
func decodeRegTwoImm(data []byte, pc uint32, skip int) Operands {
	b1 := byteAt(data, int(pc)+1)
	ra := clamp12(b1 & 0xF)
	lx := min4(int((b1 >> 4) & 7))
	ly := max0(skip - lx - 1)
	rawX := readLE(data, int(pc)+2, lx)
	rawY := readLE(data, int(pc)+2+lx, ly)
	return Operands{
		Ra: ra, Lx: lx, Ly: ly,
		Vx: signExtend(rawX, lx),
		Vy: signExtend(rawY, ly),
	}
}

// two imm: lx = min(4, byte[pc+1]); ly = max(0, L-lx-1); vx, vy = sign_ext
func decodeTwoImm(data []byte, pc uint32, skip int) Operands {
	lx := min4(int(byteAt(data, int(pc)+1)))
	ly := max0(skip - lx - 1)
	rawX := readLE(data, int(pc)+2, lx)
	rawY := readLE(data, int(pc)+2+lx, ly)
	return Operands{
		Lx: lx, Ly: ly,
		Vx: signExtend(rawX, lx),
		Vy: signExtend(rawY, ly),
	}
}

// two reg: rd = low nibble, ra = high nibble (of byte[pc+1])
func decodeTwoReg(data []byte, pc uint32) Operands {
	b1 := byteAt(data, int(pc)+1)
	return Operands{Rd: clamp12(b1 & 0xF), Ra: clamp12((b1 >> 4) & 0xF)}
}

// two reg+imm: ra=low, rb=high, lx=min(4,max(0,L-1)), vx sign-ext
func decodeTwoRegImm(data []byte, pc uint32, skip int) Operands {
	b1 := byteAt(data, int(pc)+1)
	ra := clamp12(b1 & 0xF)
	rb := clamp12((b1 >> 4) & 0xF)
	lx := min4(max0(skip - 1))
	raw := readLE(data, int(pc)+2, lx)
	return Operands{Ra: ra, Rb: rb, Lx: lx, Vx: signExtend(raw, lx)}
}

// two reg+offset: same as two reg+imm but vx = pc + sign_ext(...)
func decodeTwoRegOffset(data []byte, pc uint32, skip int) Operands {
	b1 := byteAt(data, int(pc)+1)
	ra := clamp12(b1 & 0xF)
	rb := clamp12((b1 >> 4) & 0xF)
	lx := min4(max0(skip - 1))
	raw := readLE(data, int(pc)+2, lx)
	return Operands{Ra: ra, Rb: rb, Lx: lx, Vx: pcTarget(pc, raw, lx)}
}

// two reg+two imm: ra, rb from byte[pc+1]; lx = byte[pc+2] & 7;
// ly = max(0, L-lx-2). vy is a plain sign-extended immediate: the one
// opcode in this shape (load_imm_jump_ind) adds it to a register value,
// not to pc, before validating the indirect-jump target.
func decodeTwoRegTwoImm(data []byte, pc uint32, skip int) Operands {
	b1 := byteAt(data, int(pc)+1)
	ra := clamp12(b1 & 0xF)
	rb := clamp12((b1 >> 4) & 0xF)
	lx := int(byteAt(data, int(pc)+2) & 7)
	ly := max0(skip - lx - 2)
	rawX := readLE(data, int(pc)+3, lx)
	rawY := readLE(data, int(pc)+3+lx, ly)
	return Operands{
		Ra: ra, Rb: rb, Lx: lx, Ly: ly,
		Vx: signExtend(rawX, lx),
		Vy: signExtend(rawY, ly),
	}
}

// three reg: ra = nibble0, rb = nibble1, rd = byte[pc+2] & 0xF
func decodeThreeReg(data []byte, pc uint32) Operands {
	b1 := byteAt(data, int(pc)+1)
	rd := clamp12(byteAt(data, int(pc)+2) & 0xF)
	return Operands{Ra: clamp12(b1 & 0xF), Rb: clamp12((b1 >> 4) & 0xF), Rd: rd}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
