package riscv

import (
	"fmt"
	"strconv"
	"strings"
)

// Template is the compiled, immutable bit-layout description for one
// mnemonic, built once at program startup from a declarative pattern
// string such as "offset[11:0] rs1[4:0] 010 rd[4:0] 0000011".
type Template struct {
	Mnemonic string // canonical form: lowercase, underscores mapped to dots
	Fields   []Field
	Bits     uint8 // 16 or 32

	immKind     FieldKind // the immediate-family kind used (0 if none)
	immHighBit  uint8     // highest declared bit index across all occurrences
	immIType    bool      // first immediate-family field has exactly one range (I-type slot)
	numRegSlots int       // count of non-immediate, non-static fields (operand cursor upper bound)
}

// Bytes returns the number of bytes this template's encoding occupies.
func (t *Template) Bits16() bool { return t.Bits == 16 }

// IsImmediateI reports whether this template's immediate slot is I-type
// (single contiguous range) as opposed to S-type (split across two ranges).
// Per the modifier-width-ambiguity resolution: derive this from the first
// immediate field's range count (1 = I, 2 = S).
func (t *Template) IsImmediateI() bool { return t.immIType }

// ImmediateWidth returns the signed bit-width implied by the highest
// declared bit index across every occurrence of the immediate field.
func (t *Template) ImmediateWidth() uint8 { return t.immHighBit + 1 }

// HasImmediateFamily reports whether the template carries an Imm/Uimm/
// NzImm/Offset field at all.
func (t *Template) HasImmediateFamily() bool { return t.immKind != 0 || hasImmKind(t.Fields) }

func hasImmKind(fields []Field) bool {
	for _, f := range fields {
		if f.Kind.IsImmediateFamily() {
			return true
		}
	}
	return false
}

// fieldPrefixes maps the recognised lowercase alphabetic prefix of a pattern
// token to its FieldKind. Compressed forms are the same prefix with a
// trailing underscore before the bracket (rd_, rs1_, rs2_, rs3_).
var fieldPrefixes = map[string]FieldKind{
	"offset": FieldOffset,
	"imm":    FieldImm,
	"nzimm":  FieldNzImm,
	"uimm":   FieldUimm,
	"rd":     FieldRd,
	"rs1":    FieldRs1,
	"rs2":    FieldRs2,
	"rs3":    FieldRs3,
	"rm":     FieldRm,
	"pred":   FieldMemFence,
	"succ":   FieldMemFence,
}

var compressedKind = map[FieldKind]FieldKind{
	FieldRd:  FieldRdC,
	FieldRs1: FieldRs1C,
	FieldRs2: FieldRs2C,
	FieldRs3: FieldRs3C,
}

// normalizeMnemonic lowercases and turns underscores into dots, so surface
// syntax like "lr.d.aq" matches a table entry written "LR_D_AQ".
func normalizeMnemonic(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", ".")
}

// ParseTemplate compiles one "MNEMONIC pattern..." declaration into a
// Template. It is a pure function: given a fixed input line it always
// produces the same Template or the same error, with no runtime failure
// modes once the source table is fixed (as required by the opcode-table
// design).
func ParseTemplate(mnemonic, pattern string) (*Template, error) {
	name := normalizeMnemonic(mnemonic)
	t := &Template{Mnemonic: name, Bits: 32}
	if strings.HasPrefix(name, "c.") {
		t.Bits = 16
	}

	var total uint8
	firstImmSeen := false
	for _, tok := range strings.Fields(pattern) {
		f, err := parseFieldToken(tok)
		if err != nil {
			return nil, fmt.Errorf("opcode %s: %w", mnemonic, err)
		}
		if !f.Kind.IsImmediateFamily() {
			if f.Kind != FieldStatic {
				t.numRegSlots++
			}
		} else {
			if !firstImmSeen {
				firstImmSeen = true
				t.immKind = f.Kind
				t.immIType = len(f.Ranges) == 1
				t.numRegSlots++
			} else {
				// A second immediate-family field means the immediate is
				// split across the word (S-type, B-type): not an I-type slot.
				t.immIType = false
			}
			if hi := highestBit(f.Ranges); hi > t.immHighBit {
				t.immHighBit = hi
			}
		}
		total += f.Width
		t.Fields = append(t.Fields, f)
	}

	if total != uint8(t.Bits) {
		return nil, fmt.Errorf("opcode %s: field widths sum to %d, want %d", mnemonic, total, t.Bits)
	}
	return t, nil
}

// parseFieldToken parses one whitespace-delimited token of a pattern string:
// either a bare run of 0/1 (a Static field) or `name[ranges]` / `name_[ranges]`.
func parseFieldToken(tok string) (Field, error) {
	if isBinaryRun(tok) {
		v, err := strconv.ParseUint(tok, 2, 32)
		if err != nil {
			return Field{}, fmt.Errorf("bad static bit pattern %q: %w", tok, err)
		}
		return Field{Kind: FieldStatic, Width: uint8(len(tok)), Pattern: uint32(v)}, nil
	}

	open := strings.IndexByte(tok, '[')
	close := strings.LastIndexByte(tok, ']')
	if open < 0 || close != len(tok)-1 || close < open {
		return Field{}, fmt.Errorf("malformed field token %q", tok)
	}
	name := tok[:open]
	rangeStr := tok[open+1 : close]

	compressed := strings.HasSuffix(name, "_")
	lookupName := strings.TrimSuffix(name, "_")

	kind, ok := fieldPrefixes[lookupName]
	if !ok {
		return Field{}, fmt.Errorf("unknown field name %q", name)
	}
	if compressed {
		ck, ok := compressedKind[kind]
		if !ok {
			return Field{}, fmt.Errorf("field %q cannot be compressed", name)
		}
		kind = ck
	}

	ranges, err := parseBitRanges(rangeStr)
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", tok, err)
	}

	switch kind {
	case FieldRm:
		return Field{Kind: kind, Width: 3}, nil
	case FieldMemFence:
		return Field{Kind: kind, Width: 4}, nil
	case FieldRd, FieldRs1, FieldRs2, FieldRs3:
		return Field{Kind: kind, Width: 5}, nil
	case FieldRdC, FieldRs1C, FieldRs2C, FieldRs3C:
		return Field{Kind: kind, Width: 3}, nil
	default: // immediate family: width is the sum of the declared ranges
		return Field{Kind: kind, Width: rangesWidth(ranges), Ranges: ranges}, nil
	}
}

func isBinaryRun(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

// parseBitRanges parses a `|`-separated bit-range list such as
// "20|10:1|11|19:12" into its ordered BitRange segments.
func parseBitRanges(s string) ([]BitRange, error) {
	var out []BitRange
	for _, seg := range strings.Split(s, "|") {
		if seg == "" {
			return nil, fmt.Errorf("empty bit-range segment in %q", s)
		}
		if colon := strings.IndexByte(seg, ':'); colon >= 0 {
			hi, err := strconv.ParseUint(seg[:colon], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("bad range %q: %w", seg, err)
			}
			lo, err := strconv.ParseUint(seg[colon+1:], 10, 8)
			if err != nil {
				return nil, fmt.Errorf("bad range %q: %w", seg, err)
			}
			if lo > hi {
				return nil, fmt.Errorf("range %q has low > high", seg)
			}
			out = append(out, BitRange{High: uint8(hi), Low: uint8(lo)})
		} else {
			n, err := strconv.ParseUint(seg, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("bad bit index %q: %w", seg, err)
			}
			out = append(out, BitRange{High: uint8(n), Low: uint8(n)})
		}
	}
	return out, nil
}
