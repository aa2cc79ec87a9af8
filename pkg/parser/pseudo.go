package parser

import (
	"github.com/oisee/rvasm/pkg/asmerr"
	"github.com/oisee/rvasm/pkg/riscv"
	"github.com/oisee/rvasm/pkg/token"
)

const (
	regZero uint8 = 0
	regRa   uint8 = 1
)

// pseudoTable maps a pseudo-instruction mnemonic to the function that parses
// its surface operands and emits the real instruction(s) it expands to.
var pseudoTable = map[string]func(p *Parser, pos token.Position) error{
	"nop":    expandNop,
	"mv":     expandMv,
	"li":     expandLi,
	"la":     expandLa,
	"call":   expandCall,
	"j":      expandJ,
	"jr":     expandJr,
	"ret":    expandRet,
	"seqz":   expandSeqz,
	"snez":   expandSnez,
	"sext.w": expandSextW,
	"zext.w": expandZextW,
}

func mustLookup(mnemonic string) *riscv.Template {
	tmpl, ok := riscv.Lookup(mnemonic)
	if !ok {
		panic("parser: pseudo-instruction expansion references unknown opcode " + mnemonic)
	}
	return tmpl
}

// emitRRI builds and emits an "rd, rs1, imm"-shaped instruction: addi,
// addiw, sltiu, sltu's register-register siblings, slli/srli and the like.
func (p *Parser) emitRRI(mnemonic string, pos token.Position, rd, rs1 uint8, imm int64) {
	in := &riscv.Instruction{Opcode: mustLookup(mnemonic), Pos: pos}
	in.AddOperand(riscv.MakeReg(rd))
	in.AddOperand(riscv.MakeReg(rs1))
	in.AddOperand(riscv.MakeImm(imm))
	p.unit.Emit(in)
}

// emitRRR builds and emits an "rd, rs1, rs2"-shaped instruction.
func (p *Parser) emitRRR(mnemonic string, pos token.Position, rd, rs1, rs2 uint8) {
	in := &riscv.Instruction{Opcode: mustLookup(mnemonic), Pos: pos}
	in.AddOperand(riscv.MakeReg(rd))
	in.AddOperand(riscv.MakeReg(rs1))
	in.AddOperand(riscv.MakeReg(rs2))
	p.unit.Emit(in)
}

func expandNop(p *Parser, pos token.Position) error {
	p.emitRRI("addi", pos, regZero, regZero, 0)
	return nil
}

func expandMv(p *Parser, pos token.Position) error {
	rd, rs, err := p.parseTwoRegs()
	if err != nil {
		return err
	}
	p.emitRRI("addi", pos, rd, rs, 0)
	return nil
}

func expandSeqz(p *Parser, pos token.Position) error {
	rd, rs, err := p.parseTwoRegs()
	if err != nil {
		return err
	}
	p.emitRRI("sltiu", pos, rd, rs, 1)
	return nil
}

func expandSnez(p *Parser, pos token.Position) error {
	rd, rs, err := p.parseTwoRegs()
	if err != nil {
		return err
	}
	p.emitRRR("sltu", pos, rd, regZero, rs)
	return nil
}

func expandSextW(p *Parser, pos token.Position) error {
	rd, rs, err := p.parseTwoRegs()
	if err != nil {
		return err
	}
	p.emitRRI("addiw", pos, rd, rs, 0)
	return nil
}

// expandZextW zero-extends the low word via a shift-left/shift-right pair;
// RV64G has no dedicated zero-extend opcode.
func expandZextW(p *Parser, pos token.Position) error {
	rd, rs, err := p.parseTwoRegs()
	if err != nil {
		return err
	}
	p.emitRRI("slli", pos, rd, rs, 32)
	p.emitRRI("srli", pos, rd, rd, 32)
	return nil
}

func (p *Parser) parseTwoRegs() (uint8, uint8, error) {
	rd, err := p.parseReg()
	if err != nil {
		return 0, 0, err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return 0, 0, err
	}
	rs, err := p.parseReg()
	if err != nil {
		return 0, 0, err
	}
	return rd, rs, nil
}

// expandLi splits imm into a lui+addi pair when it doesn't fit a 12-bit
// signed immediate, otherwise emits a single addi against x0. The hi/lo
// split is plain compile-time integer math — the value is a constant, so
// no relocation or symbol modifier is involved.
func expandLi(p *Parser, pos token.Position) error {
	rd, err := p.parseReg()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return err
	}
	tok := p.cur()
	if tok.Kind != token.Int {
		return asmerr.New(asmerr.Syntax, tok.Pos, "expected integer literal, got %s", tok)
	}
	p.advance()
	imm := tok.IntVal

	if imm >= -2048 && imm <= 2047 {
		p.emitRRI("addi", pos, rd, regZero, imm)
		return nil
	}

	lo := imm & 0xfff
	if lo >= 0x800 {
		lo -= 0x1000
	}
	hi := (imm - lo) >> 12

	luiIn := &riscv.Instruction{Opcode: mustLookup("lui"), Pos: pos}
	luiIn.AddOperand(riscv.MakeReg(rd))
	luiIn.AddOperand(riscv.MakeImm(hi << 12))
	p.unit.Emit(luiIn)

	p.emitRRI("addi", pos, rd, rd, lo)
	return nil
}

// expandLa and expandCall both build a symbol's address via the standard
// auipc/lui+offset PC-relative idiom, anchored by an auto-generated local
// label bound to the first instruction of the pair so %pcrel_lo can find
// the matching %pcrel_hi regardless of how far away the use site is.
func expandLa(p *Parser, pos token.Position) error {
	rd, err := p.parseReg()
	if err != nil {
		return err
	}
	if _, err := p.expect(token.Comma); err != nil {
		return err
	}
	sym, err := p.parseSymbolName()
	if err != nil {
		return err
	}

	anchor := p.unit.NextAnchor()
	if err := p.unit.Tracker.DefineLabel(anchor, p.unit.TextOffset(), pos); err != nil {
		return err
	}

	hiIn := &riscv.Instruction{Opcode: mustLookup("lui"), Pos: pos}
	hiIn.AddOperand(riscv.MakeReg(rd))
	hiIn.AddOperand(riscv.MakeExpr(riscv.Expr{Kind: riscv.ModPcrelHi, Symbol: sym}))
	p.unit.Emit(hiIn)

	loIn := &riscv.Instruction{Opcode: mustLookup("addi"), Pos: pos}
	loIn.AddOperand(riscv.MakeReg(rd))
	loIn.AddOperand(riscv.MakeReg(rd))
	loIn.AddOperand(riscv.MakeExpr(riscv.Expr{Kind: riscv.ModPcrelLo, Symbol: anchor}))
	p.unit.Emit(loIn)
	return nil
}

func expandCall(p *Parser, pos token.Position) error {
	sym, err := p.parseSymbolName()
	if err != nil {
		return err
	}

	anchor := p.unit.NextAnchor()
	if err := p.unit.Tracker.DefineLabel(anchor, p.unit.TextOffset(), pos); err != nil {
		return err
	}

	hiIn := &riscv.Instruction{Opcode: mustLookup("auipc"), Pos: pos}
	hiIn.AddOperand(riscv.MakeReg(regRa))
	hiIn.AddOperand(riscv.MakeExpr(riscv.Expr{Kind: riscv.ModPcrelHi, Symbol: sym}))
	p.unit.Emit(hiIn)

	jalrIn := &riscv.Instruction{Opcode: mustLookup("jalr"), Pos: pos}
	jalrIn.AddOperand(riscv.MakeReg(regRa))
	jalrIn.AddOperand(riscv.MakeReg(regRa))
	jalrIn.AddOperand(riscv.MakeExpr(riscv.Expr{Kind: riscv.ModPcrelLo, Symbol: anchor}))
	p.unit.Emit(jalrIn)
	return nil
}

func expandJ(p *Parser, pos token.Position) error {
	target, err := p.parseImmOrExpr()
	if err != nil {
		return err
	}
	in := &riscv.Instruction{Opcode: mustLookup("jal"), Pos: pos}
	in.AddOperand(riscv.MakeReg(regZero))
	in.AddOperand(target)
	p.unit.Emit(in)
	return nil
}

func expandJr(p *Parser, pos token.Position) error {
	rs, err := p.parseReg()
	if err != nil {
		return err
	}
	in := &riscv.Instruction{Opcode: mustLookup("jalr"), Pos: pos}
	in.AddOperand(riscv.MakeReg(regZero))
	in.AddOperand(riscv.MakeReg(rs))
	in.AddOperand(riscv.MakeImm(0))
	p.unit.Emit(in)
	return nil
}

func expandRet(p *Parser, pos token.Position) error {
	in := &riscv.Instruction{Opcode: mustLookup("jalr"), Pos: pos}
	in.AddOperand(riscv.MakeReg(regZero))
	in.AddOperand(riscv.MakeReg(regRa))
	in.AddOperand(riscv.MakeImm(0))
	p.unit.Emit(in)
	return nil
}

// parseSymbolName accepts a bare Ident or dotted-local Directive token as a
// pseudo-instruction's symbol operand (la/call only ever target a symbol,
// never a numeric literal).
func (p *Parser) parseSymbolName() (string, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.Ident, token.Directive:
		p.advance()
		return tok.Lexeme, nil
	default:
		return "", asmerr.New(asmerr.Syntax, tok.Pos, "expected symbol name, got %s", tok)
	}
}
