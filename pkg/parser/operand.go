package parser

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/oisee/rvasm/pkg/asmerr"
	"github.com/oisee/rvasm/pkg/riscv"
	"github.com/oisee/rvasm/pkg/token"
)

var fenceFlagLetters = []rune{'i', 'o', 'r', 'w'}

func (p *Parser) parseReg() (uint8, error) {
	tok := p.cur()
	if tok.Kind != token.Register {
		return 0, asmerr.New(asmerr.Syntax, tok.Pos, "expected register, got %s", tok)
	}
	p.advance()
	return uint8(tok.IntVal), nil
}

// parseImmOrExpr parses one of: a bare integer literal, a %modifier(sym[+n])
// expression, or a bare symbol reference (branch/jump target) — the three
// shapes an immediate-family operand can take on the surface.
func (p *Parser) parseImmOrExpr() (riscv.Operand, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.Int:
		p.advance()
		return riscv.MakeImm(tok.IntVal), nil
	case token.Modifier:
		return p.parseModifierExpr()
	case token.Ident:
		p.advance()
		return riscv.MakeExpr(riscv.Expr{Kind: riscv.ModNone, Symbol: tok.Lexeme}), nil
	case token.Directive:
		// A ".L"-style local label referenced without its trailing ':' lexes
		// as a Directive token; here it's a bare branch/jump target.
		if strings.HasPrefix(tok.Lexeme, ".") {
			p.advance()
			return riscv.MakeExpr(riscv.Expr{Kind: riscv.ModNone, Symbol: tok.Lexeme}), nil
		}
		return riscv.Operand{}, asmerr.New(asmerr.Syntax, tok.Pos, "expected immediate or symbol, got %s", tok)
	default:
		return riscv.Operand{}, asmerr.New(asmerr.Syntax, tok.Pos, "expected immediate or symbol, got %s", tok)
	}
}

func (p *Parser) parseModifierExpr() (riscv.Operand, error) {
	modTok := p.cur()
	mod, ok := riscv.LookupModifier(modTok.Lexeme)
	if !ok {
		return riscv.Operand{}, asmerr.New(asmerr.Syntax, modTok.Pos, "unknown modifier %q", modTok.Lexeme)
	}
	p.advance()
	if _, err := p.expect(token.LParen); err != nil {
		return riscv.Operand{}, err
	}
	symTok := p.cur()
	if symTok.Kind != token.Ident && symTok.Kind != token.Directive {
		return riscv.Operand{}, asmerr.New(asmerr.Syntax, symTok.Pos, "expected symbol inside modifier, got %s", symTok)
	}
	p.advance()
	var addend int64
	if p.cur().Kind == token.Int {
		addend = p.cur().IntVal
		p.advance()
	}
	if _, err := p.expect(token.RParen); err != nil {
		return riscv.Operand{}, err
	}
	return riscv.MakeExpr(riscv.Expr{Kind: mod, Symbol: symTok.Lexeme, Addend: addend}), nil
}

// parseMemOperand parses the "imm(rs1)" form shared by loads, stores and
// jalr, returning the (possibly symbolic) offset operand and the base
// register.
func (p *Parser) parseMemOperand() (riscv.Operand, uint8, error) {
	off, err := p.parseImmOrExpr()
	if err != nil {
		return riscv.Operand{}, 0, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return riscv.Operand{}, 0, err
	}
	base, err := p.parseReg()
	if err != nil {
		return riscv.Operand{}, 0, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return riscv.Operand{}, 0, err
	}
	return off, base, nil
}

// decodeFenceMask turns a pred/succ flag word such as "rw" or "iorw" into
// its 4-bit bitmask: bit3=I, bit2=O, bit1=R, bit0=W.
func decodeFenceMask(tok token.Token) (int64, error) {
	var mask int64
	for _, c := range tok.Lexeme {
		if !slices.Contains(fenceFlagLetters, c) {
			return 0, asmerr.New(asmerr.Syntax, tok.Pos, "invalid fence flag %q", tok.Lexeme)
		}
		switch c {
		case 'i':
			mask |= 0x8
		case 'o':
			mask |= 0x4
		case 'r':
			mask |= 0x2
		case 'w':
			mask |= 0x1
		}
	}
	return mask, nil
}

// uTypeShift returns the left-shift a literal immediate needs before it's
// handed to the stitcher, for templates whose immediate slot is the U-type
// shape: exactly one immediate-family field, occupying a single bit range
// whose low bit is nonzero (e.g. LUI/AUIPC's "imm[31:12]"). Per the U-type
// immediate convention, the stitcher always extracts bits by shifting the
// stored value right by the range's low bit, so a raw user-typed magnitude
// must be pre-aligned (raw << low) for that extraction to land correctly.
func uTypeShift(tmpl *riscv.Template) uint8 {
	var only *riscv.Field
	count := 0
	for i := range tmpl.Fields {
		f := &tmpl.Fields[i]
		if !f.Kind.IsImmediateFamily() {
			continue
		}
		count++
		only = f
	}
	if count != 1 || only == nil || len(only.Ranges) != 1 || only.Ranges[0].Low == 0 {
		return 0
	}
	return only.Ranges[0].Low
}

func (p *Parser) parseRoundingMode() (riscv.Operand, error) {
	tok := p.cur()
	if tok.Kind != token.Ident {
		return riscv.Operand{}, asmerr.New(asmerr.Syntax, tok.Pos, "expected rounding-mode operand, got %s", tok)
	}
	rm, ok := riscv.LookupRoundingMode(tok.Lexeme)
	if !ok {
		return riscv.Operand{}, asmerr.New(asmerr.Syntax, tok.Pos, "unknown rounding mode %q", tok.Lexeme)
	}
	p.advance()
	return riscv.MakeImm(int64(rm)), nil
}
