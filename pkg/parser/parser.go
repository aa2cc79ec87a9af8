package parser

import (
	"github.com/oisee/rvasm/pkg/asmerr"
	"github.com/oisee/rvasm/pkg/lexer"
	"github.com/oisee/rvasm/pkg/riscv"
	"github.com/oisee/rvasm/pkg/token"
)

// Parser drives a materialized token stream into a Unit: labels are
// recorded, directives mutate section state, and mnemonics (pseudo or real)
// become instructions in the arena.
type Parser struct {
	toks []token.Token
	pos  int
	unit *Unit
}

// New tokenizes src and returns a Parser ready to fill unit.
func New(src string, unit *Unit) (*Parser, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return &Parser{toks: toks, unit: unit}, nil
}

// Unit returns the Parser's backing Unit.
func (p *Parser) Unit() *Unit { return p.unit }

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	tok := p.cur()
	if tok.Kind != kind {
		return tok, asmerr.New(asmerr.Syntax, tok.Pos, "expected %s, got %s", kind, tok)
	}
	p.advance()
	return tok, nil
}

func (p *Parser) expectLineEnd() error {
	tok := p.cur()
	if tok.Kind == token.Newline {
		p.advance()
		return nil
	}
	if tok.Kind == token.EOF {
		return nil
	}
	return asmerr.New(asmerr.Syntax, tok.Pos, "expected end of line, got %s", tok)
}

// Parse drives the whole token stream to completion, mutating p.unit.
func (p *Parser) Parse() error {
	for {
		tok := p.cur()
		switch tok.Kind {
		case token.EOF:
			return nil
		case token.Newline:
			p.advance()
		case token.Label:
			if p.unit.Section() == SecText {
				if err := p.unit.Tracker.DefineLabel(tok.Lexeme, p.unit.TextOffset(), tok.Pos); err != nil {
					return err
				}
			}
			p.advance()
			if err := p.expectLineEnd(); err != nil {
				return err
			}
		case token.Directive:
			if err := p.parseDirective(tok); err != nil {
				return err
			}
		case token.Ident:
			if err := p.parseStatement(tok); err != nil {
				return err
			}
		default:
			return asmerr.New(asmerr.Syntax, tok.Pos, "unexpected token %s", tok)
		}
	}
}

// parseStatement handles one Ident-led line: a pseudo-instruction expansion
// or a real mnemonic dispatched by its registered operand shape.
func (p *Parser) parseStatement(tok token.Token) error {
	mnemonic := tok.Lexeme
	p.advance()

	if expand, ok := pseudoTable[mnemonic]; ok {
		if err := expand(p, tok.Pos); err != nil {
			return err
		}
		return p.expectLineEnd()
	}

	tmpl, ok := riscv.Lookup(mnemonic)
	if !ok {
		return asmerr.New(asmerr.Syntax, tok.Pos, "unknown mnemonic %q", mnemonic)
	}
	shape, ok := shapeTable[tmpl.Mnemonic]
	if !ok {
		return asmerr.New(asmerr.Syntax, tok.Pos, "%s: no operand syntax registered", tmpl.Mnemonic)
	}
	in := &riscv.Instruction{Opcode: tmpl, Pos: tok.Pos}
	if err := p.parseShape(shape, in); err != nil {
		return err
	}
	p.unit.Emit(in)
	return p.expectLineEnd()
}

// parseShape consumes the operand tokens for one of the registered surface
// syntaxes and appends them to in, registers in canonical rd, rs1, rs2, rs3
// order, non-register operands in the order their field is declared.
func (p *Parser) parseShape(shape operandShape, in *riscv.Instruction) error {
	comma := func() error { _, err := p.expect(token.Comma); return err }

	switch shape {
	case shapeNone:
		return nil

	case shapeSingleRegImm:
		reg, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		var imm riscv.Operand
		if p.cur().Kind == token.Int {
			// A bare literal for a U-type immediate slot (LUI/AUIPC) names the
			// target value directly; pre-align it to the field's bit window
			// once here so the generic stitcher's "value >> low" extraction
			// lands on it. A %hi/%pcrel_hi expression is already pre-aligned
			// by construction, so only the bare-literal path shifts.
			tok := p.cur()
			p.advance()
			imm = riscv.MakeImm(tok.IntVal << uTypeShift(in.Opcode))
		} else {
			imm, err = p.parseImmOrExpr()
			if err != nil {
				return err
			}
		}
		in.AddOperand(riscv.MakeReg(reg))
		in.AddOperand(imm)
		return nil

	case shapeImmOnly:
		imm, err := p.parseImmOrExpr()
		if err != nil {
			return err
		}
		in.AddOperand(imm)
		return nil

	case shapeOffsetOnly:
		off, err := p.parseImmOrExpr()
		if err != nil {
			return err
		}
		in.AddOperand(off)
		return nil

	case shapeRdOffset:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		off, err := p.parseImmOrExpr()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(off)
		return nil

	case shapeRs1Offset:
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		off, err := p.parseImmOrExpr()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rs1))
		in.AddOperand(off)
		return nil

	case shapeRs1Only:
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rs1))
		return nil

	case shapeRdRs2:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs2, err := p.parseReg()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs2))
		return nil

	case shapeRdRs1Imm:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		imm, err := p.parseImmOrExpr()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs1))
		in.AddOperand(imm)
		return nil

	case shapeRdImmRs1Mem:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		off, base, err := p.parseMemOperand()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(base))
		in.AddOperand(off)
		return nil

	case shapeRs2ImmRs1Mem:
		rs2, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		off, base, err := p.parseMemOperand()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(base))
		in.AddOperand(riscv.MakeReg(rs2))
		in.AddOperand(off)
		return nil

	case shapeRs1Rs2Offset:
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs2, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		off, err := p.parseImmOrExpr()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rs1))
		in.AddOperand(riscv.MakeReg(rs2))
		in.AddOperand(off)
		return nil

	case shapeRdRs1Rs2:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs2, err := p.parseReg()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs1))
		in.AddOperand(riscv.MakeReg(rs2))
		return nil

	case shapeRdRs1:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs1))
		return nil

	case shapeRdRs1Rm:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs1))
		rm, err := p.parseOptionalRm()
		if err != nil {
			return err
		}
		in.AddOperand(rm)
		return nil

	case shapeRdRs1Rs2Rm:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs2, err := p.parseReg()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs1))
		in.AddOperand(riscv.MakeReg(rs2))
		rm, err := p.parseOptionalRm()
		if err != nil {
			return err
		}
		in.AddOperand(rm)
		return nil

	case shapeFmaRm:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs2, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs3, err := p.parseReg()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs1))
		in.AddOperand(riscv.MakeReg(rs2))
		in.AddOperand(riscv.MakeReg(rs3))
		rm, err := p.parseOptionalRm()
		if err != nil {
			return err
		}
		in.AddOperand(rm)
		return nil

	case shapeFence:
		predTok := p.cur()
		if predTok.Kind != token.Ident {
			return asmerr.New(asmerr.Syntax, predTok.Pos, "expected fence flags, got %s", predTok)
		}
		p.advance()
		pred, err := decodeFenceMask(predTok)
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		succTok := p.cur()
		if succTok.Kind != token.Ident {
			return asmerr.New(asmerr.Syntax, succTok.Pos, "expected fence flags, got %s", succTok)
		}
		p.advance()
		succ, err := decodeFenceMask(succTok)
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeImm(pred))
		in.AddOperand(riscv.MakeImm(succ))
		return nil

	case shapeCsr:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		csrTok := p.cur()
		if csrTok.Kind != token.Int {
			return asmerr.New(asmerr.Syntax, csrTok.Pos, "expected CSR address, got %s", csrTok)
		}
		p.advance()
		if err := comma(); err != nil {
			return err
		}
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs1))
		in.AddOperand(riscv.MakeImm(csrTok.IntVal))
		return nil

	case shapeLr:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		if _, err := p.expect(token.LParen); err != nil {
			return err
		}
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs1))
		return nil

	case shapeAmo:
		rd, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		rs2, err := p.parseReg()
		if err != nil {
			return err
		}
		if err := comma(); err != nil {
			return err
		}
		if _, err := p.expect(token.LParen); err != nil {
			return err
		}
		rs1, err := p.parseReg()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
		in.AddOperand(riscv.MakeReg(rd))
		in.AddOperand(riscv.MakeReg(rs1))
		in.AddOperand(riscv.MakeReg(rs2))
		return nil

	default:
		return asmerr.New(asmerr.Syntax, in.Pos, "%s: unhandled operand shape", in.Mnemonic())
	}
}

// parseOptionalRm consumes a trailing ", rm" rounding-mode operand if one
// follows; otherwise the dynamic rounding mode is used, matching assemblers
// that treat the field as optional.
func (p *Parser) parseOptionalRm() (riscv.Operand, error) {
	if p.cur().Kind != token.Comma {
		return riscv.MakeImm(int64(riscv.RoundDynamic)), nil
	}
	p.advance()
	return p.parseRoundingMode()
}
