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

// Opcode identifies one of the closed set of PVM instructions. The numeric
// values are part of the wire contract: spec.md §6 requires implementations
// to preserve them exactly.
type Opcode uint8

// OperandShape is one of the thirteen closed operand encodings an opcode may
// use (spec.md §3, §4.3).
type OperandShape uint8

const (
	ShapeNone            OperandShape = iota // no-args
	ShapeImm                                 // one immediate
	ShapeOffset                               // one offset
	ShapeRegImm                              // one register + one immediate
	ShapeRegExtImm                           // one register + one 8-byte immediate
	ShapeRegImmOffset                        // one register + one immediate + one offset
	ShapeRegTwoImm                           // one register + two immediates
	ShapeTwoImm                              // two immediates
	ShapeTwoReg                              // two registers
	ShapeTwoRegImm                           // two registers + one immediate
	ShapeTwoRegOffset                        // two registers + one offset
	ShapeTwoRegTwoImm                        // two registers + two immediates
	ShapeThreeReg                            // three registers
)

// opInfo is one dispatch record: everything about an opcode except its
// execute function, which lives in the opExec table in isa.go (operands
// are decoded by shape, in operands.go).
type opInfo struct {
	Name       string
	Shape      OperandShape
	Gas        int64
	Terminator bool
}

// Opcode numbering, exhaustive (spec.md §6). Values and names are grounded
// on the thirteen operand-shape tables of the original interpreter.
const (
	OpTrap        Opcode = 0
	OpFallthrough Opcode = 1

	OpEcalli Opcode = 10

	OpLoadImm64 Opcode = 20

	OpStoreImmU8  Opcode = 30
	OpStoreImmU16 Opcode = 31
	OpStoreImmU32 Opcode = 32
	OpStoreImmU64 Opcode = 33

	OpJump Opcode = 40

	OpJumpInd Opcode = 50
	OpLoadImm Opcode = 51
	OpLoadU8  Opcode = 52
	OpLoadI8  Opcode = 53
	OpLoadU16 Opcode = 54
	OpLoadI16 Opcode = 55
	OpLoadU32 Opcode = 56
	OpLoadI32 Opcode = 57
	OpLoadU64 Opcode = 58
	OpStoreU8  Opcode = 59
	OpStoreU16 Opcode = 60
	OpStoreU32 Opcode = 61
	OpStoreU64 Opcode = 62

	OpStoreImmIndU8  Opcode = 70
	OpStoreImmIndU16 Opcode = 71
	OpStoreImmIndU32 Opcode = 72
	OpStoreImmIndU64 Opcode = 73

	OpLoadImmJump    Opcode = 80
	OpBranchEqImm    Opcode = 81
	OpBranchNeImm    Opcode = 82
	OpBranchLtUImm   Opcode = 83
	OpBranchLeUImm   Opcode = 84
	OpBranchGeUImm   Opcode = 85
	OpBranchGtUImm   Opcode = 86
	OpBranchLtSImm   Opcode = 87
	OpBranchLeSImm   Opcode = 88
	OpBranchGeSImm   Opcode = 89
	OpBranchGtSImm   Opcode = 90

	OpMoveReg           Opcode = 100
	OpSbrk              Opcode = 101
	OpCountSetBits64    Opcode = 102
	OpCountSetBits32    Opcode = 103
	OpLeadingZeroBits64 Opcode = 104
	OpLeadingZeroBits32 Opcode = 105
	OpTrailingZeroBits64 Opcode = 106
	OpTrailingZeroBits32 Opcode = 107
	OpSignExtend8        Opcode = 108
	OpSignExtend16       Opcode = 109
	OpZeroExtend16       Opcode = 110
	OpReverseBytes       Opcode = 111

	OpStoreIndU8  Opcode = 120
	OpStoreIndU16 Opcode = 121
	OpStoreIndU32 Opcode = 122
	OpStoreIndU64 Opcode = 123
	OpLoadIndU8   Opcode = 124
	OpLoadIndI8   Opcode = 125
	OpLoadIndU16  Opcode = 126
	OpLoadIndI16  Opcode = 127
	OpLoadIndU32  Opcode = 128
	OpLoadIndI32  Opcode = 129
	OpLoadIndU64  Opcode = 130

	OpAddImm32        Opcode = 131
	OpAndImm          Opcode = 132
	OpXorImm          Opcode = 133
	OpOrImm           Opcode = 134
	OpMulImm32        Opcode = 135
	OpSetLtUImm       Opcode = 136
	OpSetLtSImm       Opcode = 137
	OpShloLImm32      Opcode = 138
	OpShloRImm32      Opcode = 139
	OpSharRImm32      Opcode = 140
	OpNegAddImm32     Opcode = 141
	OpSetGtUImm       Opcode = 142
	OpSetGtSImm       Opcode = 143
	OpShloLImmAlt32   Opcode = 144
	OpShloRImmAlt32   Opcode = 145
	OpSharRImmAlt32   Opcode = 146
	OpCmovIzImm       Opcode = 147
	OpCmovNzImm       Opcode = 148
	OpAddImm64        Opcode = 149
	OpMulImm64        Opcode = 150
	OpShloLImm64      Opcode = 151
	OpShloRImm64      Opcode = 152
	OpSharRImm64      Opcode = 153
	OpNegAddImm64     Opcode = 154
	OpShloLImmAlt64   Opcode = 155
	OpShloRImmAlt64   Opcode = 156
	OpSharRImmAlt64   Opcode = 157
	OpRotR64Imm       Opcode = 158
	OpRotR64ImmAlt    Opcode = 159
	OpRotR32Imm       Opcode = 160
	OpRotR32ImmAlt    Opcode = 161

	OpBranchEq   Opcode = 170
	OpBranchNe   Opcode = 171
	OpBranchLtU  Opcode = 172
	OpBranchLtS  Opcode = 173
	OpBranchGeU  Opcode = 174
	OpBranchGeS  Opcode = 175

	OpLoadImmJumpInd Opcode = 180

	OpAdd32      Opcode = 190
	OpSub32      Opcode = 191
	OpMul32      Opcode = 192
	OpDivU32     Opcode = 193
	OpDivS32     Opcode = 194
	OpRemU32     Opcode = 195
	OpRemS32     Opcode = 196
	OpShloL32    Opcode = 197
	OpShloR32    Opcode = 198
	OpSharR32    Opcode = 199
	OpAdd64      Opcode = 200
	OpSub64      Opcode = 201
	OpMul64      Opcode = 202
	OpDivU64     Opcode = 203
	OpDivS64     Opcode = 204
	OpRemU64     Opcode = 205
	OpRemS64     Opcode = 206
	OpShloL64    Opcode = 207
	OpShloR64    Opcode = 208
	OpSharR64    Opcode = 209
	OpAnd        Opcode = 210
	OpXor        Opcode = 211
	OpOr         Opcode = 212
	OpMulUpperSS Opcode = 213
	OpMulUpperUU Opcode = 214
	OpMulUpperSU Opcode = 215
	OpSetLtU     Opcode = 216
	OpSetLtS     Opcode = 217
	OpCmovIz     Opcode = 218
	OpCmovNz     Opcode = 219
	OpRotL64     Opcode = 220
	OpRotL32     Opcode = 221
	OpRotR64     Opcode = 222
	OpRotR32     Opcode = 223
	OpAndInv     Opcode = 224
	OpOrInv      Opcode = 225
	OpXnor       Opcode = 226
	OpMax        Opcode = 227
	OpMaxU       Opcode = 228
	OpMin        Opcode = 229
	OpMinU       Opcode = 230
)

// opcodeInfo is the process-global, sparse table of (name, shape, gas,
// terminator) keyed by opcode number. Unassigned entries are nil; dispatch
// on a nil entry is a PANIC (spec.md §6: "any unknown opcode ⇒ PANIC").
var opcodeInfo = buildOpcodeInfo()

func buildOpcodeInfo() [256]*opInfo {
	var t [256]*opInfo
	reg := func(op Opcode, name string, shape OperandShape, gas int64, term bool) {
		t[op] = &opInfo{Name: name, Shape: shape, Gas: gas, Terminator: term}
	}

	reg(OpTrap, "trap", ShapeNone, 1, true)
	reg(OpFallthrough, "fallthrough", ShapeNone, 1, true)

	reg(OpEcalli, "ecalli", ShapeImm, 1, false)

	reg(OpLoadImm64, "load_imm_64", ShapeRegExtImm, 1, false)

	reg(OpStoreImmU8, "store_imm_u8", ShapeTwoImm, 1, false)
	reg(OpStoreImmU16, "store_imm_u16", ShapeTwoImm, 1, false)
	reg(OpStoreImmU32, "store_imm_u32", ShapeTwoImm, 1, false)
	reg(OpStoreImmU64, "store_imm_u64", ShapeTwoImm, 1, false)

	reg(OpJump, "jump", ShapeOffset, 1, true)

	reg(OpJumpInd, "jump_ind", ShapeRegImm, 1, true)
	reg(OpLoadImm, "load_imm", ShapeRegImm, 1, false)
	reg(OpLoadU8, "load_u8", ShapeRegImm, 1, false)
	reg(OpLoadI8, "load_i8", ShapeRegImm, 1, false)
	reg(OpLoadU16, "load_u16", ShapeRegImm, 1, false)
	reg(OpLoadI16, "load_i16", ShapeRegImm, 1, false)
	reg(OpLoadU32, "load_u32", ShapeRegImm, 1, false)
	reg(OpLoadI32, "load_i32", ShapeRegImm, 1, false)
	reg(OpLoadU64, "load_u64", ShapeRegImm, 1, false)
	reg(OpStoreU8, "store_u8", ShapeRegImm, 1, false)
	reg(OpStoreU16, "store_u16", ShapeRegImm, 1, false)
	reg(OpStoreU32, "store_u32", ShapeRegImm, 1, false)
	reg(OpStoreU64, "store_u64", ShapeRegImm, 1, false)

	reg(OpStoreImmIndU8, "store_imm_ind_u8", ShapeRegTwoImm, 1, false)
	reg(OpStoreImmIndU16, "store_imm_ind_u16", ShapeRegTwoImm, 1, false)
	reg(OpStoreImmIndU32, "store_imm_ind_u32", ShapeRegTwoImm, 1, false)
	reg(OpStoreImmIndU64, "store_imm_ind_u64", ShapeRegTwoImm, 1, false)

	reg(OpLoadImmJump, "load_imm_jump", ShapeRegImmOffset, 1, true)
	reg(OpBranchEqImm, "branch_eq_imm", ShapeRegImmOffset, 1, true)
	reg(OpBranchNeImm, "branch_ne_imm", ShapeRegImmOffset, 1, true)
	reg(OpBranchLtUImm, "branch_lt_u_imm", ShapeRegImmOffset, 1, true)
	reg(OpBranchLeUImm, "branch_le_u_imm", ShapeRegImmOffset, 1, true)
	reg(OpBranchGeUImm, "branch_ge_u_imm", ShapeRegImmOffset, 1, true)
	reg(OpBranchGtUImm, "branch_gt_u_imm", ShapeRegImmOffset, 1, true)
	reg(OpBranchLtSImm, "branch_lt_s_imm", ShapeRegImmOffset, 1, true)
	reg(OpBranchLeSImm, "branch_le_s_imm", ShapeRegImmOffset, 1, true)
	reg(OpBranchGeSImm, "branch_ge_s_imm", ShapeRegImmOffset, 1, true)
	reg(OpBranchGtSImm, "branch_gt_s_imm", ShapeRegImmOffset, 1, true)

	reg(OpMoveReg, "move_reg", ShapeTwoReg, 1, false)
	reg(OpSbrk, "sbrk", ShapeTwoReg, 1, false)
	reg(OpCountSetBits64, "count_set_bits_64", ShapeTwoReg, 1, false)
	reg(OpCountSetBits32, "count_set_bits_32", ShapeTwoReg, 1, false)
	reg(OpLeadingZeroBits64, "leading_zero_bits_64", ShapeTwoReg, 1, false)
	reg(OpLeadingZeroBits32, "leading_zero_bits_32", ShapeTwoReg, 1, false)
	reg(OpTrailingZeroBits64, "trailing_zero_bits_64", ShapeTwoReg, 1, false)
	reg(OpTrailingZeroBits32, "trailing_zero_bits_32", ShapeTwoReg, 1, false)
	reg(OpSignExtend8, "sign_extend_8", ShapeTwoReg, 1, false)
	reg(OpSignExtend16, "sign_extend_16", ShapeTwoReg, 1, false)
	reg(OpZeroExtend16, "zero_extend_16", ShapeTwoReg, 1, false)
	reg(OpReverseBytes, "reverse_bytes", ShapeTwoReg, 1, false)

	reg(OpStoreIndU8, "store_ind_u8", ShapeTwoRegImm, 1, false)
	reg(OpStoreIndU16, "store_ind_u16", ShapeTwoRegImm, 1, false)
	reg(OpStoreIndU32, "store_ind_u32", ShapeTwoRegImm, 1, false)
	reg(OpStoreIndU64, "store_ind_u64", ShapeTwoRegImm, 1, false)
	reg(OpLoadIndU8, "load_ind_u8", ShapeTwoRegImm, 1, false)
	reg(OpLoadIndI8, "load_ind_i8", ShapeTwoRegImm, 1, false)
	reg(OpLoadIndU16, "load_ind_u16", ShapeTwoRegImm, 1, false)
	reg(OpLoadIndI16, "load_ind_i16", ShapeTwoRegImm, 1, false)
	reg(OpLoadIndU32, "load_ind_u32", ShapeTwoRegImm, 1, false)
	reg(OpLoadIndI32, "load_ind_i32", ShapeTwoRegImm, 1, false)
	reg(OpLoadIndU64, "load_ind_u64", ShapeTwoRegImm, 1, false)
	reg(OpAddImm32, "add_imm_32", ShapeTwoRegImm, 1, false)
	reg(OpAndImm, "and_imm", ShapeTwoRegImm, 1, false)
	reg(OpXorImm, "xor_imm", ShapeTwoRegImm, 1, false)
	reg(OpOrImm, "or_imm", ShapeTwoRegImm, 1, false)
	reg(OpMulImm32, "mul_imm_32", ShapeTwoRegImm, 1, false)
	reg(OpSetLtUImm, "set_lt_u_imm", ShapeTwoRegImm, 1, false)
	reg(OpSetLtSImm, "set_lt_s_imm", ShapeTwoRegImm, 1, false)
	reg(OpShloLImm32, "shlo_l_imm_32", ShapeTwoRegImm, 1, false)
	reg(OpShloRImm32, "shlo_r_imm_32", ShapeTwoRegImm, 1, false)
	reg(OpSharRImm32, "shar_r_imm_32", ShapeTwoRegImm, 1, false)
	reg(OpNegAddImm32, "neg_add_imm_32", ShapeTwoRegImm, 1, false)
	reg(OpSetGtUImm, "set_gt_u_imm", ShapeTwoRegImm, 1, false)
	reg(OpSetGtSImm, "set_gt_s_imm", ShapeTwoRegImm, 1, false)
	reg(OpShloLImmAlt32, "shlo_l_imm_alt_32", ShapeTwoRegImm, 1, false)
	reg(OpShloRImmAlt32, "shlo_r_imm_alt_32", ShapeTwoRegImm, 1, false)
	reg(OpSharRImmAlt32, "shar_r_imm_alt_32", ShapeTwoRegImm, 1, false)
	reg(OpCmovIzImm, "cmov_iz_imm", ShapeTwoRegImm, 1, false)
	reg(OpCmovNzImm, "cmov_nz_imm", ShapeTwoRegImm, 1, false)
	reg(OpAddImm64, "add_imm_64", ShapeTwoRegImm, 1, false)
	reg(OpMulImm64, "mul_imm_64", ShapeTwoRegImm, 1, false)
	reg(OpShloLImm64, "shlo_l_imm_64", ShapeTwoRegImm, 1, false)
	reg(OpShloRImm64, "shlo_r_imm_64", ShapeTwoRegImm, 1, false)
	reg(OpSharRImm64, "shar_r_imm_64", ShapeTwoRegImm, 1, false)
	reg(OpNegAddImm64, "neg_add_imm_64", ShapeTwoRegImm, 1, false)
	reg(OpShloLImmAlt64, "shlo_l_imm_alt_64", ShapeTwoRegImm, 1, false)
	reg(OpShloRImmAlt64, "shlo_r_imm_alt_64", ShapeTwoRegImm, 1, false)
	reg(OpSharRImmAlt64, "shar_r_imm_alt_64", ShapeTwoRegImm, 1, false)
	reg(OpRotR64Imm, "rot_r_64_imm", ShapeTwoRegImm, 1, false)
	reg(OpRotR64ImmAlt, "rot_r_64_imm_alt", ShapeTwoRegImm, 1, false)
	reg(OpRotR32Imm, "rot_r_32_imm", ShapeTwoRegImm, 1, false)
	reg(OpRotR32ImmAlt, "rot_r_32_imm_alt", ShapeTwoRegImm, 1, false)

	reg(OpBranchEq, "branch_eq", ShapeTwoRegOffset, 1, true)
	reg(OpBranchNe, "branch_ne", ShapeTwoRegOffset, 1, true)
	reg(OpBranchLtU, "branch_lt_u", ShapeTwoRegOffset, 1, true)
	reg(OpBranchLtS, "branch_lt_s", ShapeTwoRegOffset, 1, true)
	reg(OpBranchGeU, "branch_ge_u", ShapeTwoRegOffset, 1, true)
	reg(OpBranchGeS, "branch_ge_s", ShapeTwoRegOffset, 1, true)

	reg(OpLoadImmJumpInd, "load_imm_jump_ind", ShapeTwoRegTwoImm, 1, true)

	reg(OpAdd32, "add_32", ShapeThreeReg, 1, false)
	reg(OpSub32, "sub_32", ShapeThreeReg, 1, false)
	reg(OpMul32, "mul_32", ShapeThreeReg, 1, false)
	reg(OpDivU32, "div_u_32", ShapeThreeReg, 1, false)
	reg(OpDivS32, "div_s_32", ShapeThreeReg, 1, false)
	reg(OpRemU32, "rem_u_32", ShapeThreeReg, 1, false)
	reg(OpRemS32, "rem_s_32", ShapeThreeReg, 1, false)
	reg(OpShloL32, "shlo_l_32", ShapeThreeReg, 1, false)
	reg(OpShloR32, "shlo_r_32", ShapeThreeReg, 1, false)
	reg(OpSharR32, "shar_r_32", ShapeThreeReg, 1, false)
	reg(OpAdd64, "add_64", ShapeThreeReg, 1, false)
	reg(OpSub64, "sub_64", ShapeThreeReg, 1, false)
	reg(OpMul64, "mul_64", ShapeThreeReg, 1, false)
	reg(OpDivU64, "div_u_64", ShapeThreeReg, 1, false)
	reg(OpDivS64, "div_s_64", ShapeThreeReg, 1, false)
	reg(OpRemU64, "rem_u_64", ShapeThreeReg, 1, false)
	reg(OpRemS64, "rem_s_64", ShapeThreeReg, 1, false)
	reg(OpShloL64, "shlo_l_64", ShapeThreeReg, 1, false)
	reg(OpShloR64, "shlo_r_64", ShapeThreeReg, 1, false)
	reg(OpSharR64, "shar_r_64", ShapeThreeReg, 1, false)
	reg(OpAnd, "and", ShapeThreeReg, 1, false)
	reg(OpXor, "xor", ShapeThreeReg, 1, false)
	reg(OpOr, "or", ShapeThreeReg, 1, false)
	reg(OpMulUpperSS, "mul_upper_s_s", ShapeThreeReg, 1, false)
	reg(OpMulUpperUU, "mul_upper_u_u", ShapeThreeReg, 1, false)
	reg(OpMulUpperSU, "mul_upper_s_u", ShapeThreeReg, 1, false)
	reg(OpSetLtU, "set_lt_u", ShapeThreeReg, 1, false)
	reg(OpSetLtS, "set_lt_s", ShapeThreeReg, 1, false)
	reg(OpCmovIz, "cmov_iz", ShapeThreeReg, 1, false)
	reg(OpCmovNz, "cmov_nz", ShapeThreeReg, 1, false)
	reg(OpRotL64, "rot_l_64", ShapeThreeReg, 1, false)
	reg(OpRotL32, "rot_l_32", ShapeThreeReg, 1, false)
	reg(OpRotR64, "rot_r_64", ShapeThreeReg, 1, false)
	reg(OpRotR32, "rot_r_32", ShapeThreeReg, 1, false)
	reg(OpAndInv, "and_inv", ShapeThreeReg, 1, false)
	reg(OpOrInv, "or_inv", ShapeThreeReg, 1, false)
	reg(OpXnor, "xnor", ShapeThreeReg, 1, false)
	reg(OpMax, "max", ShapeThreeReg, 1, false)
	reg(OpMaxU, "max_u", ShapeThreeReg, 1, false)
	reg(OpMin, "min", ShapeThreeReg, 1, false)
	reg(OpMinU, "min_u", ShapeThreeReg, 1, false)

	return t
}

// isTerminating reports whether op ends its basic block. Unknown opcodes
// are not terminators in this table (program decoding treats an opcode
// position whose byte maps to no table entry the same as any other
// non-terminator for basic-block purposes; dispatch itself PANICs on it).
func isTerminating(op byte) bool {
	info := opcodeInfo[op]
	return info != nil && info.Terminator
}

// String returns the opcode's mnemonic, or "unknown" if it has no table
// entry.
func (op Opcode) String() string {
	if info := opcodeInfo[op]; info != nil {
		return info.Name
	}
	return "unknown"
}
