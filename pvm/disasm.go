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
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Disassemble renders prog as a human-readable instruction listing: one row
// per opcode position, with its PC, mnemonic, decoded operands, skip
// length, and whether it is a basic-block entry.
func Disassemble(prog *Program) string {
	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"pc", "block", "op", "mnemonic", "operands", "skip"})
	table.SetAutoWrapText(false)

	for pc := uint32(0); int(pc) < len(prog.Bytes); pc++ {
		if !prog.IsOpcode(pc) {
			continue
		}
		op := prog.OpcodeAt(pc)
		info := opcodeInfo[op]
		skip := prog.Skip(pc)
		mnemonic := "unknown"
		var operandsStr string
		if info != nil {
			mnemonic = info.Name
			o := decodeOperands(info.Shape, prog.Bytes, pc, skip)
			operandsStr = formatOperands(info.Shape, o)
		}
		entryMark := ""
		if prog.IsBasicBlockEntry(pc) {
			entryMark = "*"
		}
		table.Append([]string{
			fmt.Sprintf("0x%08x", pc),
			entryMark,
			fmt.Sprintf("%d", op),
			mnemonic,
			operandsStr,
			fmt.Sprintf("%d", skip),
		})
	}

	table.Render()
	return buf.String()
}

func formatOperands(shape OperandShape, o Operands) string {
	switch shape {
	case ShapeNone:
		return ""
	case ShapeImm, ShapeOffset:
		return fmt.Sprintf("vx=0x%x", o.Vx)
	case ShapeRegImm, ShapeRegExtImm:
		return fmt.Sprintf("ra=r%d vx=0x%x", o.Ra, o.Vx)
	case ShapeRegImmOffset, ShapeRegTwoImm:
		return fmt.Sprintf("ra=r%d vx=0x%x vy=0x%x", o.Ra, o.Vx, o.Vy)
	case ShapeTwoImm:
		return fmt.Sprintf("vx=0x%x vy=0x%x", o.Vx, o.Vy)
	case ShapeTwoReg:
		return fmt.Sprintf("rd=r%d ra=r%d", o.Rd, o.Ra)
	case ShapeTwoRegImm, ShapeTwoRegOffset:
		return fmt.Sprintf("ra=r%d rb=r%d vx=0x%x", o.Ra, o.Rb, o.Vx)
	case ShapeTwoRegTwoImm:
		return fmt.Sprintf("ra=r%d rb=r%d vx=0x%x vy=0x%x", o.Ra, o.Rb, o.Vx, o.Vy)
	case ShapeThreeReg:
		return fmt.Sprintf("rd=r%d ra=r%d rb=r%d", o.Rd, o.Ra, o.Rb)
	default:
		return ""
	}
}
