package symtab

import (
	"github.com/oisee/rvasm/pkg/asmerr"
	"github.com/oisee/rvasm/pkg/riscv"
)

// RelocType is one of the RISC-V ELF relocation type codes from the psABI.
type RelocType uint32

const (
	RJal            RelocType = 17
	RBranch         RelocType = 16
	RVCJump         RelocType = 45
	RVCBranch       RelocType = 44
	RGotHi20        RelocType = 20
	RTlsIePcrelHi20 RelocType = 21
	RTlsGdPcrelHi20 RelocType = 22
	RPcrelHi20      RelocType = 23
	RPcrelLo12I     RelocType = 24
	RPcrelLo12S     RelocType = 25
	RHi20           RelocType = 26
	RLo12I          RelocType = 27
	RLo12S          RelocType = 28
	RTprelHi20      RelocType = 29
	RTprelAdd       RelocType = 32
)

// Relocation is a resolved, symbolic ELF relocation entry: an Elf64_Rela
// waiting only for its symbol's final table index, which only the ElfWriter
// can compute once the full symbol table is laid out.
type Relocation struct {
	Offset uint64
	Symbol string
	Type   RelocType
	Addend int64
}

// Arena resolves a stable instruction index back to the instruction it
// names, the indirection spec.md's design notes call for instead of the
// pending set holding raw pointers into a growing instruction stream.
type Arena interface {
	Instruction(ref riscv.InstRef) *riscv.Instruction
}

// Resolve runs the relocation pass once parsing is complete: for each
// pending reference, patch the instruction's operand in place if the symbol
// is a text label (intra-.text), otherwise emit an ELF relocation entry
// against the defined or newly-declared-extern global symbol.
func Resolve(tracker *Tracker, arena Arena) ([]Relocation, error) {
	var relocs []Relocation
	for _, p := range tracker.Pending() {
		in := arena.Instruction(p.Inst)
		idx := in.ExprOperandIndex()
		if idx < 0 {
			return nil, asmerr.New(asmerr.Semantic, in.Pos,
				"%s: no relocatable operand for symbol %q", in.Mnemonic(), p.Symbol)
		}
		op := &in.Operands[idx]

		if offset, ok := tracker.LookupLabel(p.Symbol); ok {
			delta := int64(offset) - int64(in.OffsetInText)
			if delta%2 != 0 {
				return nil, asmerr.New(asmerr.Semantic, in.Pos,
					"%s: misaligned target for %q (delta %d)", in.Mnemonic(), p.Symbol, delta)
			}
			if err := checkFitsWidth(in, delta); err != nil {
				return nil, err
			}
			op.RewriteAsImm(delta)
			continue
		}

		if _, ok := tracker.LookupGlobal(p.Symbol); !ok {
			tracker.DeclareGlobal(p.Symbol, SectionUndef)
		}

		rtype, addend, err := selectRelocType(in, op)
		if err != nil {
			return nil, err
		}
		relocs = append(relocs, Relocation{
			Offset: in.OffsetInText,
			Symbol: p.Symbol,
			Type:   rtype,
			Addend: addend,
		})
		op.RewriteAsImm(0)
	}
	return relocs, nil
}

// checkFitsWidth validates an intra-.text delta against the instruction's
// own template-declared immediate width — the same width the Encoder will
// later sign-extend from, so a branch/jump target that doesn't fit is
// caught here rather than silently truncated during encoding.
func checkFitsWidth(in *riscv.Instruction, delta int64) error {
	width := in.Opcode.ImmediateWidth()
	if width == 0 {
		return nil
	}
	lo := -(int64(1) << (width - 1))
	hi := (int64(1) << (width - 1)) - 1
	if delta < lo || delta > hi {
		return asmerr.New(asmerr.Semantic, in.Pos,
			"%s: target out of range for %d-bit signed field (delta=%d)", in.Mnemonic(), width, delta)
	}
	return nil
}

// selectRelocType implements the relocation-type selection table: a
// modifier on the operand picks a HI/LO/TLS code directly, while a bare
// symbol reference (no modifier) is only legal on a jump or branch opcode
// and picks its relocation from the instruction's own shape.
func selectRelocType(in *riscv.Instruction, op *riscv.Operand) (RelocType, int64, error) {
	if op.IsExpr() {
		expr := op.AsExpr()
		switch expr.Kind {
		case riscv.ModLo:
			if in.Opcode.IsImmediateI() {
				return RLo12I, expr.Addend, nil
			}
			return RLo12S, expr.Addend, nil
		case riscv.ModPcrelLo:
			if in.Opcode.IsImmediateI() {
				return RPcrelLo12I, expr.Addend, nil
			}
			return RPcrelLo12S, expr.Addend, nil
		case riscv.ModHi:
			return RHi20, expr.Addend, nil
		case riscv.ModPcrelHi:
			return RPcrelHi20, expr.Addend, nil
		case riscv.ModGotPcrelHi:
			return RGotHi20, expr.Addend, nil
		case riscv.ModTprelAdd:
			return RTprelAdd, expr.Addend, nil
		case riscv.ModTprelHi:
			return RTprelHi20, expr.Addend, nil
		case riscv.ModTlsIePcrelHi:
			return RTlsIePcrelHi20, expr.Addend, nil
		case riscv.ModTlsGdPcrelHi:
			return RTlsGdPcrelHi20, expr.Addend, nil
		}
	}

	switch {
	case in.IsCompressedJump():
		return RVCJump, 0, nil
	case in.IsCompressedBranch():
		return RVCBranch, 0, nil
	case in.IsJump():
		return RJal, 0, nil
	case in.IsBranch():
		return RBranch, 0, nil
	}
	return 0, 0, asmerr.New(asmerr.Semantic, in.Pos,
		"%s: unresolvable symbol reference with no modifier", in.Mnemonic())
}
