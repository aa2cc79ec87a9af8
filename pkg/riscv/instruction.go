package riscv

import (
	"strings"

	"github.com/oisee/rvasm/pkg/token"
)

// maxOperands bounds the small inline operand array. The longest operand
// list in the opcode table is the FMA family's five (rd, rs1, rs2, rs3, rm);
// fences carry two (pred, succ).
const maxOperands = 6

// Instruction is one parsed assembly instruction: its opcode template, its
// source position, its eventual byte offset within .text, and its operand
// list. It is created by the parser, mutated only by the Relocator (which
// rewrites exactly one expression/placeholder operand into a resolved
// immediate), and finally turned into one 16- or 32-bit word by the Encoder.
//
// Register operands are stored in canonical rd, rs1, rs2, rs3 order
// (whichever of those the opcode uses), not the order the user typed them
// in — store instructions are written "sw rs2, offset(rs1)" but the parser
// still appends rs1 before rs2, since the Encoder resolves register fields
// by that fixed priority rather than by surface position. Every non-register
// operand (immediate, rounding mode, fence pred/succ) follows in the order
// its field is declared in the opcode's bit template.
type Instruction struct {
	Opcode        *Template
	Pos           token.Position
	OffsetInText  uint64
	Operands      [maxOperands]Operand
	NumOperands   int
}

// AddOperand appends an operand to the instruction's operand list.
func (in *Instruction) AddOperand(o Operand) {
	in.Operands[in.NumOperands] = o
	in.NumOperands++
}

// IsCompressed reports whether this instruction encodes to 16 bits — true
// iff its mnemonic begins with "c.".
func (in *Instruction) IsCompressed() bool {
	return in.Opcode.Bits16()
}

// Size returns the instruction's encoded size in bytes (2 or 4).
func (in *Instruction) Size() uint64 {
	if in.IsCompressed() {
		return 2
	}
	return 4
}

// Mnemonic returns the instruction's canonical (lowercase, dotted) mnemonic.
func (in *Instruction) Mnemonic() string { return in.Opcode.Mnemonic }

// IsJump reports whether this is an uncompressed jump (`j*`, i.e. jal/jalr
// family). It looks only at the mnemonic; the Relocator's relocation-type
// selection consults it only for operands that carry no modifier.
func (in *Instruction) IsJump() bool {
	return !in.IsCompressed() && strings.HasPrefix(in.Mnemonic(), "j")
}

// IsBranch reports whether this is an uncompressed branch (`b*`).
func (in *Instruction) IsBranch() bool {
	return !in.IsCompressed() && strings.HasPrefix(in.Mnemonic(), "b")
}

// IsCompressedJump reports whether this is a compressed jump (`c.j*`).
func (in *Instruction) IsCompressedJump() bool {
	return in.IsCompressed() && strings.HasPrefix(in.Mnemonic(), "c.j")
}

// IsCompressedBranch reports whether this is a compressed branch (`c.b*`).
func (in *Instruction) IsCompressedBranch() bool {
	return in.IsCompressed() && strings.HasPrefix(in.Mnemonic(), "c.b")
}

// ExprOperandIndex returns the index of the instruction's sole expression
// operand — the one the Relocator rewrites — or -1 if none is present. An
// operand already rewritten to an immediate is not counted.
func (in *Instruction) ExprOperandIndex() int {
	for i := 0; i < in.NumOperands; i++ {
		if in.Operands[i].IsExpr() {
			return i
		}
	}
	return -1
}
