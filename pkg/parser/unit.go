// Package parser turns a token stream into instructions and directive
// effects, expanding pseudo-instructions along the way, and drives the
// symbol tracker and section assembler as it goes.
package parser

import (
	"fmt"

	"github.com/oisee/rvasm/pkg/objfile"
	"github.com/oisee/rvasm/pkg/riscv"
	"github.com/oisee/rvasm/pkg/symtab"
)

// Section identifies which buffer a directive or label currently targets.
type Section uint8

const (
	SecText Section = iota
	SecData
	SecBss
)

// Unit is the single owner of every piece of state one assembly pass
// touches: the instruction arena, the symbol tracker, and the .data/.bss
// section buffers. It plays the role the original MCContext did — the one
// object every parser/relocator/writer stage reaches through.
type Unit struct {
	Tracker *symtab.Tracker
	Data    *objfile.ByteSection
	Bss     *objfile.BssSection

	arena      []*riscv.Instruction
	textOffset uint64
	section    Section
	anchorSeq  int
}

// NewUnit returns an empty Unit positioned at the start of .text.
func NewUnit() *Unit {
	return &Unit{
		Tracker: symtab.New(),
		Data:    objfile.NewByteSection(),
		Bss:     &objfile.BssSection{},
		section: SecText,
	}
}

// Instruction implements symtab.Arena.
func (u *Unit) Instruction(ref riscv.InstRef) *riscv.Instruction {
	return u.arena[ref]
}

// Emit appends in to the instruction arena, stamps its offset within .text,
// advances the running cursor by its encoded size, and — if it carries a
// symbolic operand — records a pending relocation against it.
func (u *Unit) Emit(in *riscv.Instruction) riscv.InstRef {
	in.OffsetInText = u.textOffset
	ref := riscv.InstRef(len(u.arena))
	u.arena = append(u.arena, in)
	u.textOffset += in.Size()
	if idx := in.ExprOperandIndex(); idx >= 0 {
		u.Tracker.AddPending(ref, in.Operands[idx].AsExpr().Symbol)
	}
	return ref
}

// NextAnchor mints a fresh, unique local-label name for pseudo-instruction
// PC-relative expansion (la/call), bound to the first real instruction of
// the expansion.
func (u *Unit) NextAnchor() string {
	u.anchorSeq++
	return fmt.Sprintf(".Lpcrel_%d", u.anchorSeq)
}

func (u *Unit) Section() Section     { return u.section }
func (u *Unit) SetSection(s Section) { u.section = s }

// Instructions returns the finished .text arena in program order.
func (u *Unit) Instructions() []*riscv.Instruction { return u.arena }

// TextOffset returns the running .text byte cursor.
func (u *Unit) TextOffset() uint64 { return u.textOffset }

// Finish resolves forward references to text labels that .global declared
// before the matching label was seen, then runs the relocator.
func (u *Unit) Finish() ([]symtab.Relocation, error) {
	u.Tracker.FinalizeGlobals()
	return symtab.Resolve(u.Tracker, u)
}
