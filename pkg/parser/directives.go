package parser

import (
	"math"

	"github.com/oisee/rvasm/pkg/asmerr"
	"github.com/oisee/rvasm/pkg/symtab"
	"github.com/oisee/rvasm/pkg/token"
)

// parseDirective handles one ".name ..." line: section switches, .global,
// the .data/.bss data-emission directives, and .align/.balign.
func (p *Parser) parseDirective(tok token.Token) error {
	p.advance()
	switch tok.Lexeme {
	case ".text":
		p.unit.SetSection(SecText)
		return p.expectLineEnd()
	case ".data":
		p.unit.SetSection(SecData)
		return p.expectLineEnd()
	case ".bss":
		p.unit.SetSection(SecBss)
		return p.expectLineEnd()
	case ".global", ".globl":
		return p.parseGlobalDirective()
	case ".byte":
		return p.parseDataList(1, tok.Pos)
	case ".half":
		return p.parseDataList(2, tok.Pos)
	case ".word":
		return p.parseDataList(4, tok.Pos)
	case ".dword":
		return p.parseDataList(8, tok.Pos)
	case ".float":
		return p.parseFloatList(false, tok.Pos)
	case ".double":
		return p.parseFloatList(true, tok.Pos)
	case ".zero":
		return p.parseZeroDirective(tok.Pos)
	case ".align":
		return p.parseAlignDirective(tok.Pos, true)
	case ".balign":
		return p.parseAlignDirective(tok.Pos, false)
	default:
		return asmerr.New(asmerr.Syntax, tok.Pos, "unknown directive %q", tok.Lexeme)
	}
}

func (p *Parser) parseGlobalDirective() error {
	nameTok := p.cur()
	if nameTok.Kind != token.Ident {
		return asmerr.New(asmerr.Syntax, nameTok.Pos, "expected symbol name, got %s", nameTok)
	}
	p.advance()

	sec := symtab.SectionUndef
	switch p.unit.Section() {
	case SecText:
		// Resolved by Unit.Finish's FinalizeGlobals once every label has
		// been seen, so declaration order relative to "name:" never matters.
		sec = symtab.SectionUndef
	case SecData:
		sec = symtab.SectionData
	case SecBss:
		sec = symtab.SectionBss
	}
	p.unit.Tracker.DeclareGlobal(nameTok.Lexeme, sec)
	return p.expectLineEnd()
}

// parseDataList parses a comma-separated list of integer literals, each
// truncated to width bytes, and appends them little-endian to .data.
func (p *Parser) parseDataList(width int, pos token.Position) error {
	if p.unit.Section() != SecData {
		return asmerr.New(asmerr.Semantic, pos, "data directive outside .data")
	}
	for {
		tok := p.cur()
		if tok.Kind != token.Int {
			return asmerr.New(asmerr.Syntax, tok.Pos, "expected integer literal, got %s", tok)
		}
		p.advance()
		switch width {
		case 1:
			p.unit.Data.AppendUint8(uint8(tok.IntVal))
		case 2:
			p.unit.Data.AppendUint16(uint16(tok.IntVal))
		case 4:
			p.unit.Data.AppendUint32(uint32(tok.IntVal))
		case 8:
			p.unit.Data.AppendUint64(uint64(tok.IntVal))
		}
		if p.cur().Kind != token.Comma {
			break
		}
		p.advance()
	}
	return p.expectLineEnd()
}

func (p *Parser) parseFloatList(double bool, pos token.Position) error {
	if p.unit.Section() != SecData {
		return asmerr.New(asmerr.Semantic, pos, "data directive outside .data")
	}
	for {
		tok := p.cur()
		var v float64
		switch tok.Kind {
		case token.Float:
			v = tok.FloatVal
		case token.Int:
			v = float64(tok.IntVal)
		default:
			return asmerr.New(asmerr.Syntax, tok.Pos, "expected numeric literal, got %s", tok)
		}
		p.advance()
		if double {
			p.unit.Data.AppendUint64(math.Float64bits(v))
		} else {
			p.unit.Data.AppendUint32(math.Float32bits(float32(v)))
		}
		if p.cur().Kind != token.Comma {
			break
		}
		p.advance()
	}
	return p.expectLineEnd()
}

func (p *Parser) parseZeroDirective(pos token.Position) error {
	nTok := p.cur()
	if nTok.Kind != token.Int {
		return asmerr.New(asmerr.Syntax, nTok.Pos, "expected byte count, got %s", nTok)
	}
	p.advance()
	n := nTok.IntVal
	switch p.unit.Section() {
	case SecData:
		p.unit.Data.Append(make([]byte, n))
	case SecBss:
		p.unit.Bss.Reserve(uint64(n))
	default:
		return asmerr.New(asmerr.Semantic, pos, ".zero outside .data/.bss")
	}
	return p.expectLineEnd()
}

// parseAlignDirective handles ".align n" (pad to 2^n) and ".balign n" (pad
// to n, which must be a power of two).
func (p *Parser) parseAlignDirective(pos token.Position, power bool) error {
	nTok := p.cur()
	if nTok.Kind != token.Int {
		return asmerr.New(asmerr.Syntax, nTok.Pos, "expected alignment value, got %s", nTok)
	}
	p.advance()
	n := nTok.IntVal
	align := n
	if power {
		align = 1 << uint(n)
	}
	switch p.unit.Section() {
	case SecData:
		p.unit.Data.AlignTo(int(align))
	case SecBss:
		p.unit.Bss.AlignTo(uint64(align))
	default:
		return asmerr.New(asmerr.Semantic, pos, "align directive outside .data/.bss")
	}
	return p.expectLineEnd()
}
