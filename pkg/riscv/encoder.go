package riscv

import (
	"fmt"

	"github.com/oisee/rvasm/pkg/asmerr"
)

// RoundingMode is the 3-bit floating-point rounding-mode field carried by
// an Rm operand.
type RoundingMode uint8

const (
	RoundNearestEven RoundingMode = 0
	RoundTowardZero  RoundingMode = 1
	RoundDown        RoundingMode = 2
	RoundUp          RoundingMode = 3
	RoundMagnitude   RoundingMode = 4
	RoundDynamic     RoundingMode = 7
)

// roundingModeTokens accepts both the canonical spec spelling and the ISA
// manual's "rne" spelling for round-to-nearest-even, since both appear in
// the wild.
var roundingModeTokens = map[string]RoundingMode{
	"rne": RoundNearestEven,
	"rnz": RoundNearestEven,
	"rtz": RoundTowardZero,
	"rdn": RoundDown,
	"rup": RoundUp,
	"rmm": RoundMagnitude,
	"dyn": RoundDynamic,
}

// LookupRoundingMode resolves a surface rounding-mode token (e.g. "rtz").
func LookupRoundingMode(tok string) (RoundingMode, bool) {
	rm, ok := roundingModeTokens[tok]
	return rm, ok
}

// bitstream accumulates bits LSB-first as fields are emitted MSB->LSB, then
// is read out as a single instruction word.
type bitstream struct {
	bits uint32
	len  uint8
}

func (b *bitstream) push(value uint32, width uint8) {
	mask := uint32(1)<<width - 1
	b.bits |= (value & mask) << b.len
	b.len += width
}

// stitch applies the bit-range stitcher to a signed value: for each
// declared range (high:low, MSB->LSB), extract bits [high:low] of v and
// emit them contiguously. v is treated as a two's-complement integer wide
// enough to hold the highest referenced bit.
func stitch(v int64, ranges []BitRange) uint32 {
	// group accumulates the ranges in declaration (MSB->LSB) order using
	// the same LSB-first push() convention as the outer bitstream, so the
	// result can be pushed as one opaque chunk by the caller.
	var group bitstream
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		width := r.Width()
		chunk := uint32(v>>r.Low) & (uint32(1)<<width - 1)
		group.push(chunk, width)
	}
	return group.bits
}

// registerSlotPriority ranks the register-family kinds in the canonical
// rd, rs1, rs2, rs3 assembly order, independent of where each is declared
// in the instruction word (e.g. FMADD declares rs3 left of rs1).
func registerSlotPriority(kind FieldKind) int {
	switch kind {
	case FieldRd, FieldRdC:
		return 0
	case FieldRs1, FieldRs1C:
		return 1
	case FieldRs2, FieldRs2C:
		return 2
	case FieldRs3, FieldRs3C:
		return 3
	default:
		return -1
	}
}

// Encode materializes an Instruction into its 16- or 32-bit word, per the
// opcode template's declared fields. Operands must already be fully
// resolved (no remaining Expr operands) before calling Encode.
//
// A template's fields are declared MSB->LSB to match the ISA manual's own
// layout notation, but that bit-declaration order need not match the order
// operands were written in the source (FMADD's rs3 sits left of rs1 in the
// word, but rd/rs1/rs2/rs3 is the assembly order). Encoding happens in two
// passes: first each field is matched to its operand — register fields by
// canonical rd/rs1/rs2/rs3 priority, other fields (rm, fence pred/succ, the
// immediate family) by encounter order, with every occurrence of the
// immediate-family kind sharing the instruction's one immediate/expression
// operand. Second, fields are walked in reverse to push values into the
// LSB-first bitstream, since the last-declared field is least significant.
func Encode(in *Instruction) (uint32, error) {
	tmpl := in.Opcode

	regOperands := make([]int, 0, in.NumOperands)
	otherOperands := make([]int, 0, in.NumOperands)
	for i := 0; i < in.NumOperands; i++ {
		if in.Operands[i].IsRegister() {
			regOperands = append(regOperands, i)
		} else {
			otherOperands = append(otherOperands, i)
		}
	}

	// Map each distinct register-family kind present in the template to its
	// slot in regOperands, ordered by canonical priority rather than by the
	// order the fields happen to be declared in the instruction word.
	var presentKinds []FieldKind
	for _, f := range tmpl.Fields {
		if !f.Kind.IsRegister() {
			continue
		}
		known := false
		for _, k := range presentKinds {
			if k == f.Kind {
				known = true
				break
			}
		}
		if !known {
			presentKinds = append(presentKinds, f.Kind)
		}
	}
	for i := 1; i < len(presentKinds); i++ {
		for j := i; j > 0 && registerSlotPriority(presentKinds[j-1]) > registerSlotPriority(presentKinds[j]); j-- {
			presentKinds[j-1], presentKinds[j] = presentKinds[j], presentKinds[j-1]
		}
	}
	regSlot := make(map[FieldKind]int, len(presentKinds))
	for i, k := range presentKinds {
		regSlot[k] = i
	}

	values := make([]uint32, len(tmpl.Fields))
	otherCursor := 0
	immConsumed := false
	var immRaw int64

	for i, f := range tmpl.Fields {
		switch {
		case f.Kind == FieldStatic:
			values[i] = f.Pattern

		case f.Kind.IsRegister():
			slot := regSlot[f.Kind]
			if slot >= len(regOperands) {
				return 0, asmerr.New(asmerr.Semantic, in.Pos,
					"%s: missing register operand", tmpl.Mnemonic)
			}
			op := in.Operands[regOperands[slot]]
			reg := op.AsReg()
			if f.Kind.IsCompressed() {
				if reg < 8 || reg > 15 {
					return 0, asmerr.New(asmerr.Semantic, in.Pos,
						"compressed register operand %d out of range 8..15", reg)
				}
				reg -= 8
			}
			values[i] = uint32(reg)

		case f.Kind == FieldRm:
			if otherCursor >= len(otherOperands) {
				return 0, asmerr.New(asmerr.Semantic, in.Pos,
					"%s: missing rounding-mode operand", tmpl.Mnemonic)
			}
			op := in.Operands[otherOperands[otherCursor]]
			otherCursor++
			values[i] = uint32(op.AsGImm())

		case f.Kind == FieldMemFence:
			if otherCursor >= len(otherOperands) {
				return 0, asmerr.New(asmerr.Semantic, in.Pos,
					"%s: missing fence operand", tmpl.Mnemonic)
			}
			op := in.Operands[otherOperands[otherCursor]]
			otherCursor++
			values[i] = uint32(op.AsGImm()) & 0xF

		case f.Kind.IsImmediateFamily():
			if !immConsumed {
				if otherCursor >= len(otherOperands) {
					return 0, asmerr.New(asmerr.Semantic, in.Pos,
						"%s: missing immediate operand", tmpl.Mnemonic)
				}
				op := in.Operands[otherOperands[otherCursor]]
				otherCursor++
				immRaw = op.AsGImm()
				immConsumed = true
			}
			values[i] = stitch(immRaw, f.Ranges)

		default:
			return 0, fmt.Errorf("riscv: unhandled field kind %d", f.Kind)
		}
	}

	var bs bitstream
	for i := len(tmpl.Fields) - 1; i >= 0; i-- {
		bs.push(values[i], tmpl.Fields[i].Width)
	}

	if bs.len != uint8(tmpl.Bits) {
		return 0, asmerr.New(asmerr.Encoding, in.Pos,
			"%s: encoded length %d bits, want %d", tmpl.Mnemonic, bs.len, tmpl.Bits)
	}
	return bs.bits, nil
}

// EncodeBytes returns the little-endian byte encoding (2 or 4 bytes).
func EncodeBytes(in *Instruction) ([]byte, error) {
	word, err := Encode(in)
	if err != nil {
		return nil, err
	}
	if in.IsCompressed() {
		return []byte{byte(word), byte(word >> 8)}, nil
	}
	return []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}, nil
}
