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

import "math/bits"

func init() {
	registerExec(OpMoveReg, func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		regs[o.Rd] = regs[o.Ra]
		return statusContinue(), fpc
	})
	registerExec(OpCountSetBits64, twoRegUnary(func(v uint64) uint64 { return uint64(bits.OnesCount64(v)) }))
	registerExec(OpCountSetBits32, twoRegUnary(func(v uint64) uint64 { return uint64(bits.OnesCount32(uint32(v))) }))
	registerExec(OpLeadingZeroBits64, twoRegUnary(func(v uint64) uint64 { return uint64(bits.LeadingZeros64(v)) }))
	registerExec(OpLeadingZeroBits32, twoRegUnary(func(v uint64) uint64 { return uint64(bits.LeadingZeros32(uint32(v))) }))
	registerExec(OpTrailingZeroBits64, twoRegUnary(func(v uint64) uint64 { return uint64(bits.TrailingZeros64(v)) }))
	registerExec(OpTrailingZeroBits32, twoRegUnary(func(v uint64) uint64 { return uint64(bits.TrailingZeros32(uint32(v))) }))
	registerExec(OpSignExtend8, twoRegUnary(func(v uint64) uint64 { return uint64(int64(int8(v))) }))
	registerExec(OpSignExtend16, twoRegUnary(func(v uint64) uint64 { return uint64(int64(int16(v))) }))
	registerExec(OpZeroExtend16, twoRegUnary(func(v uint64) uint64 { return v & 0xFFFF }))
	registerExec(OpReverseBytes, twoRegUnary(bits.ReverseBytes64))

	registerExec(OpAddImm32, regImm32(func(a, b uint32) uint32 { return a + b }))
	registerExec(OpAndImm, regImm64(func(a, b uint64) uint64 { return a & b }))
	registerExec(OpXorImm, regImm64(func(a, b uint64) uint64 { return a ^ b }))
	registerExec(OpOrImm, regImm64(func(a, b uint64) uint64 { return a | b }))
	registerExec(OpMulImm32, regImm32(func(a, b uint32) uint32 { return a * b }))
	registerExec(OpSetLtUImm, setCmpImm(func(a, b uint64) bool { return a < b }))
	registerExec(OpSetLtSImm, setCmpImmS(func(a, b int64) bool { return a < b }))
	registerExec(OpShloLImm32, shiftImm32(false, false))
	registerExec(OpShloRImm32, shiftImm32(true, false))
	registerExec(OpSharRImm32, shiftImm32(true, true))
	registerExec(OpNegAddImm32, regImm32(func(a, b uint32) uint32 { return b - a }))
	registerExec(OpSetGtUImm, setCmpImm(func(a, b uint64) bool { return a > b }))
	registerExec(OpSetGtSImm, setCmpImmS(func(a, b int64) bool { return a > b }))
	registerExec(OpShloLImmAlt32, shiftImmAlt32(false, false))
	registerExec(OpShloRImmAlt32, shiftImmAlt32(true, false))
	registerExec(OpSharRImmAlt32, shiftImmAlt32(true, true))
	registerExec(OpCmovIzImm, cmovImm(true))
	registerExec(OpCmovNzImm, cmovImm(false))
	registerExec(OpAddImm64, regImm64(func(a, b uint64) uint64 { return a + b }))
	registerExec(OpMulImm64, regImm64(func(a, b uint64) uint64 { return a * b }))
	registerExec(OpShloLImm64, shiftImm64(false, false))
	registerExec(OpShloRImm64, shiftImm64(true, false))
	registerExec(OpSharRImm64, shiftImm64(true, true))
	registerExec(OpNegAddImm64, regImm64(func(a, b uint64) uint64 { return b - a }))
	registerExec(OpShloLImmAlt64, shiftImmAlt64(false, false))
	registerExec(OpShloRImmAlt64, shiftImmAlt64(true, false))
	registerExec(OpSharRImmAlt64, shiftImmAlt64(true, true))
	registerExec(OpRotR64Imm, rotImm64(false))
	registerExec(OpRotR64ImmAlt, rotImm64(true))
	registerExec(OpRotR32Imm, rotImm32(false))
	registerExec(OpRotR32ImmAlt, rotImm32(true))

	registerExec(OpAdd32, threeReg32(func(a, b uint32) uint32 { return a + b }))
	registerExec(OpSub32, threeReg32(func(a, b uint32) uint32 { return a - b }))
	registerExec(OpMul32, threeReg32(func(a, b uint32) uint32 { return a * b }))
	registerExec(OpDivU32, divU32)
	registerExec(OpDivS32, divS32)
	registerExec(OpRemU32, remU32)
	registerExec(OpRemS32, remS32)
	registerExec(OpShloL32, threeRegShift32(false, false))
	registerExec(OpShloR32, threeRegShift32(true, false))
	registerExec(OpSharR32, threeRegShift32(true, true))
	registerExec(OpAdd64, threeReg64(func(a, b uint64) uint64 { return a + b }))
	registerExec(OpSub64, threeReg64(func(a, b uint64) uint64 { return a - b }))
	registerExec(OpMul64, threeReg64(func(a, b uint64) uint64 { return a * b }))
	registerExec(OpDivU64, divU64)
	registerExec(OpDivS64, divS64)
	registerExec(OpRemU64, remU64)
	registerExec(OpRemS64, remS64)
	registerExec(OpShloL64, threeRegShift64(false, false))
	registerExec(OpShloR64, threeRegShift64(true, false))
	registerExec(OpSharR64, threeRegShift64(true, true))
	registerExec(OpAnd, threeReg64(func(a, b uint64) uint64 { return a & b }))
	registerExec(OpXor, threeReg64(func(a, b uint64) uint64 { return a ^ b }))
	registerExec(OpOr, threeReg64(func(a, b uint64) uint64 { return a | b }))
	registerExec(OpMulUpperSS, threeReg64(mulUpperSS))
	registerExec(OpMulUpperUU, threeReg64(func(a, b uint64) uint64 { hi, _ := bits.Mul64(a, b); return hi }))
	registerExec(OpMulUpperSU, threeReg64(mulUpperSU))
	registerExec(OpSetLtU, setCmpReg(func(a, b uint64) bool { return a < b }))
	registerExec(OpSetLtS, setCmpRegS(func(a, b int64) bool { return a < b }))
	registerExec(OpCmovIz, cmovReg(true))
	registerExec(OpCmovNz, cmovReg(false))
	registerExec(OpRotL64, threeRegShift64Fn(func(v uint64, n uint) uint64 { return bits.RotateLeft64(v, int(n)) }))
	registerExec(OpRotL32, threeRegShift32Fn(func(v uint32, n uint) uint32 { return bits.RotateLeft32(v, int(n)) }))
	registerExec(OpRotR64, threeRegShift64Fn(func(v uint64, n uint) uint64 { return bits.RotateLeft64(v, -int(n)) }))
	registerExec(OpRotR32, threeRegShift32Fn(func(v uint32, n uint) uint32 { return bits.RotateLeft32(v, -int(n)) }))
	registerExec(OpAndInv, threeReg64(func(a, b uint64) uint64 { return a &^ b }))
	registerExec(OpOrInv, threeReg64(func(a, b uint64) uint64 { return a | ^b }))
	registerExec(OpXnor, threeReg64(func(a, b uint64) uint64 { return ^(a ^ b) }))
	registerExec(OpMax, threeRegS(func(a, b int64) int64 {
		if a > b {
			return a
		}
		return b
	}))
	registerExec(OpMaxU, threeReg64(func(a, b uint64) uint64 {
		if a > b {
			return a
		}
		return b
	}))
	registerExec(OpMin, threeRegS(func(a, b int64) int64 {
		if a < b {
			return a
		}
		return b
	}))
	registerExec(OpMinU, threeReg64(func(a, b uint64) uint64 {
		if a < b {
			return a
		}
		return b
	}))
}

func put32(v uint32) uint64 { return uint64(int64(int32(v))) }

// twoRegUnary builds the TwoReg (rd, ra) bit-manipulation family.
func twoRegUnary(fn func(v uint64) uint64) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		regs[o.Rd] = fn(regs[o.Ra])
		return statusContinue(), fpc
	}
}

// regImm32/regImm64 build the TwoRegImm ALU-immediate family: registers[ra]
// = fn(registers[rb], vx), dest=ra, src=rb (spec.md §4.3 two reg+imm shape).
func regImm32(fn func(a, b uint32) uint32) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		regs[o.Ra] = put32(fn(uint32(regs[o.Rb]), uint32(o.Vx)))
		return statusContinue(), fpc
	}
}

func regImm64(fn func(a, b uint64) uint64) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		regs[o.Ra] = fn(regs[o.Rb], o.Vx)
		return statusContinue(), fpc
	}
}

func setCmpImm(cmp func(a, b uint64) bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		if cmp(regs[o.Rb], o.Vx) {
			regs[o.Ra] = 1
		} else {
			regs[o.Ra] = 0
		}
		return statusContinue(), fpc
	}
}

func setCmpImmS(cmp func(a, b int64) bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		if cmp(int64(regs[o.Rb]), int64(o.Vx)) {
			regs[o.Ra] = 1
		} else {
			regs[o.Ra] = 0
		}
		return statusContinue(), fpc
	}
}

func cmovImm(onZero bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		isZero := regs[o.Rb] == 0
		if isZero == onZero {
			regs[o.Ra] = o.Vx
		}
		return statusContinue(), fpc
	}
}

// shiftImm32/64 implement shlo_l/shlo_r/shar_r _imm: operand=registers[rb],
// amount=vx masked to width-1. shiftImmAlt32/64 swap the two per spec.md
// §4.3's "_alt" convention.
func shiftImm32(right, arith bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		n := uint(o.Vx) & 31
		regs[o.Ra] = put32(shift32(uint32(regs[o.Rb]), n, right, arith))
		return statusContinue(), fpc
	}
}

func shiftImmAlt32(right, arith bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		n := uint(regs[o.Rb]) & 31
		regs[o.Ra] = put32(shift32(uint32(o.Vx), n, right, arith))
		return statusContinue(), fpc
	}
}

func shiftImm64(right, arith bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		n := uint(o.Vx) & 63
		regs[o.Ra] = shift64(regs[o.Rb], n, right, arith)
		return statusContinue(), fpc
	}
}

func shiftImmAlt64(right, arith bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		n := uint(regs[o.Rb]) & 63
		regs[o.Ra] = shift64(o.Vx, n, right, arith)
		return statusContinue(), fpc
	}
}

func shift32(v uint32, n uint, right, arith bool) uint32 {
	if !right {
		return v << n
	}
	if arith {
		return uint32(int32(v) >> n)
	}
	return v >> n
}

func shift64(v uint64, n uint, right, arith bool) uint64 {
	if !right {
		return v << n
	}
	if arith {
		return uint64(int64(v) >> n)
	}
	return v >> n
}

// rotImm32/64 implement rot_r_{32,64}_imm[_alt]: non-alt rotates
// registers[rb] by vx; alt rotates vx by registers[rb].
func rotImm32(alt bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		var v uint32
		var n uint
		if alt {
			v, n = uint32(o.Vx), uint(regs[o.Rb])&31
		} else {
			v, n = uint32(regs[o.Rb]), uint(o.Vx)&31
		}
		regs[o.Ra] = put32(bits.RotateLeft32(v, -int(n)))
		return statusContinue(), fpc
	}
}

func rotImm64(alt bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		var v uint64
		var n uint
		if alt {
			v, n = o.Vx, uint(regs[o.Rb])&63
		} else {
			v, n = regs[o.Rb], uint(o.Vx)&63
		}
		regs[o.Ra] = bits.RotateLeft64(v, -int(n))
		return statusContinue(), fpc
	}
}

// threeReg32/64 build the ThreeReg (rd, ra, rb) ALU family: registers[rd] =
// fn(registers[ra], registers[rb]).
func threeReg32(fn func(a, b uint32) uint32) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		regs[o.Rd] = put32(fn(uint32(regs[o.Ra]), uint32(regs[o.Rb])))
		return statusContinue(), fpc
	}
}

func threeReg64(fn func(a, b uint64) uint64) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		regs[o.Rd] = fn(regs[o.Ra], regs[o.Rb])
		return statusContinue(), fpc
	}
}

func threeRegS(fn func(a, b int64) int64) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		regs[o.Rd] = uint64(fn(int64(regs[o.Ra]), int64(regs[o.Rb])))
		return statusContinue(), fpc
	}
}

func threeRegShift32(right, arith bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		n := uint(regs[o.Rb]) & 31
		regs[o.Rd] = put32(shift32(uint32(regs[o.Ra]), n, right, arith))
		return statusContinue(), fpc
	}
}

func threeRegShift64(right, arith bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		n := uint(regs[o.Rb]) & 63
		regs[o.Rd] = shift64(regs[o.Ra], n, right, arith)
		return statusContinue(), fpc
	}
}

func threeRegShift32Fn(fn func(v uint32, n uint) uint32) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		n := uint(regs[o.Rb]) & 31
		regs[o.Rd] = put32(fn(uint32(regs[o.Ra]), n))
		return statusContinue(), fpc
	}
}

func threeRegShift64Fn(fn func(v uint64, n uint) uint64) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		n := uint(regs[o.Rb]) & 63
		regs[o.Rd] = fn(regs[o.Ra], n)
		return statusContinue(), fpc
	}
}

func setCmpReg(cmp func(a, b uint64) bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		if cmp(regs[o.Ra], regs[o.Rb]) {
			regs[o.Rd] = 1
		} else {
			regs[o.Rd] = 0
		}
		return statusContinue(), fpc
	}
}

func setCmpRegS(cmp func(a, b int64) bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		if cmp(int64(regs[o.Ra]), int64(regs[o.Rb])) {
			regs[o.Rd] = 1
		} else {
			regs[o.Rd] = 0
		}
		return statusContinue(), fpc
	}
}

func cmovReg(onZero bool) ExecFunc {
	return func(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
		isZero := regs[o.Ra] == 0
		if isZero == onZero {
			regs[o.Rd] = regs[o.Rb]
		}
		return statusContinue(), fpc
	}
}

// mulUpperSS/mulUpperSU compute the upper 64 bits of a 128-bit signed*signed
// or signed*unsigned product via the standard unsigned-high correction
// (the same trick used for RISC-V mulh/mulhsu lowering).
func mulUpperSS(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	if int64(a) < 0 {
		hi -= b
	}
	if int64(b) < 0 {
		hi -= a
	}
	return hi
}

func mulUpperSU(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	if int64(a) < 0 {
		hi -= b
	}
	return hi
}

const int32Min = uint32(1) << 31
const int64Min = uint64(1) << 63

func divU32(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
	a, b := uint32(regs[o.Ra]), uint32(regs[o.Rb])
	var r uint32
	if b == 0 {
		r = 0xFFFFFFFF
	} else {
		r = a / b
	}
	regs[o.Rd] = put32(r)
	return statusContinue(), fpc
}

func divS32(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
	a, b := int32(regs[o.Ra]), int32(regs[o.Rb])
	var r int32
	switch {
	case b == 0:
		r = -1
	case uint32(a) == int32Min && b == -1:
		r = a
	default:
		r = a / b
	}
	regs[o.Rd] = put32(uint32(r))
	return statusContinue(), fpc
}

func remU32(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
	a, b := uint32(regs[o.Ra]), uint32(regs[o.Rb])
	var r uint32
	if b == 0 {
		r = a
	} else {
		r = a % b
	}
	regs[o.Rd] = put32(r)
	return statusContinue(), fpc
}

func remS32(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
	a, b := int32(regs[o.Ra]), int32(regs[o.Rb])
	var r int32
	switch {
	case b == 0:
		r = a
	case uint32(a) == int32Min && b == -1:
		r = 0
	default:
		r = a % b
	}
	regs[o.Rd] = put32(uint32(r))
	return statusContinue(), fpc
}

func divU64(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
	a, b := regs[o.Ra], regs[o.Rb]
	if b == 0 {
		regs[o.Rd] = ^uint64(0)
	} else {
		regs[o.Rd] = a / b
	}
	return statusContinue(), fpc
}

func divS64(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
	a, b := int64(regs[o.Ra]), int64(regs[o.Rb])
	switch {
	case b == 0:
		regs[o.Rd] = ^uint64(0)
	case uint64(a) == int64Min && b == -1:
		regs[o.Rd] = uint64(a)
	default:
		regs[o.Rd] = uint64(a / b)
	}
	return statusContinue(), fpc
}

func remU64(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
	a, b := regs[o.Ra], regs[o.Rb]
	if b == 0 {
		regs[o.Rd] = a
	} else {
		regs[o.Rd] = a % b
	}
	return statusContinue(), fpc
}

// remS64 implements the width-correct INT_MIN/-1 rule (DESIGN.md Open
// Question decision 1): the original source's 64-bit handler mistakenly
// guards against the 32-bit INT_MIN; this uses the 64-bit one instead.
func remS64(regs *[RegisterCount]uint64, mem *Memory, prog *Program, pc, fpc uint32, o Operands) (Status, uint32) {
	a, b := int64(regs[o.Ra]), int64(regs[o.Rb])
	switch {
	case b == 0:
		regs[o.Rd] = uint64(a)
	case uint64(a) == int64Min && b == -1:
		regs[o.Rd] = 0
	default:
		regs[o.Rd] = uint64(a % b)
	}
	return statusContinue(), fpc
}
