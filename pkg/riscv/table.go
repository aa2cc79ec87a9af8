package riscv

import "fmt"

// rawOp is one declarative "MNEMONIC pattern" line, the unit the opcode
// table is built from. Each registerXxx function below returns a slice of
// these for one ISA extension; init() parses them all once at startup.
type rawOp struct {
	mnemonic string
	pattern  string
}

var opcodeTable = map[string]*Template{}

func init() {
	var all []rawOp
	all = append(all, registerBaseIntegerInstructions()...)
	all = append(all, registerSystemInstructions()...)
	all = append(all, registerMExtensionInstructions()...)
	all = append(all, registerAExtensionInstructions()...)
	all = append(all, registerFExtensionInstructions()...)
	all = append(all, registerDExtensionInstructions()...)
	all = append(all, registerCExtensionInstructions()...)

	for _, op := range all {
		t, err := ParseTemplate(op.mnemonic, op.pattern)
		if err != nil {
			panic(fmt.Sprintf("riscv: opcode table: %v", err))
		}
		if _, dup := opcodeTable[t.Mnemonic]; dup {
			panic(fmt.Sprintf("riscv: opcode table: duplicate mnemonic %q", t.Mnemonic))
		}
		opcodeTable[t.Mnemonic] = t
	}
}

// Lookup resolves a surface mnemonic to its compiled Template. Matching is
// case-insensitive with underscores normalised to dots, so "LR_D_AQ" and
// "lr.d.aq" resolve to the same entry.
func Lookup(mnemonic string) (*Template, bool) {
	t, ok := opcodeTable[normalizeMnemonic(mnemonic)]
	return t, ok
}

// registerBaseIntegerInstructions covers RV32I and its RV64I additions:
// loads, stores, the ALU (register-immediate and register-register),
// branches, jumps and LUI/AUIPC.
func registerBaseIntegerInstructions() []rawOp {
	return []rawOp{
		// Upper-immediate.
		{"lui", "imm[31:12] rd[4:0] 0110111"},
		{"auipc", "imm[31:12] rd[4:0] 0010111"},

		// Jumps.
		{"jal", "offset[20|10:1|11|19:12] rd[4:0] 1101111"},
		{"jalr", "imm[11:0] rs1[4:0] 000 rd[4:0] 1100111"},

		// Branches.
		{"beq", "offset[12|10:5] rs2[4:0] rs1[4:0] 000 offset[4:1|11] 1100011"},
		{"bne", "offset[12|10:5] rs2[4:0] rs1[4:0] 001 offset[4:1|11] 1100011"},
		{"blt", "offset[12|10:5] rs2[4:0] rs1[4:0] 100 offset[4:1|11] 1100011"},
		{"bge", "offset[12|10:5] rs2[4:0] rs1[4:0] 101 offset[4:1|11] 1100011"},
		{"bltu", "offset[12|10:5] rs2[4:0] rs1[4:0] 110 offset[4:1|11] 1100011"},
		{"bgeu", "offset[12|10:5] rs2[4:0] rs1[4:0] 111 offset[4:1|11] 1100011"},

		// Loads.
		{"lb", "imm[11:0] rs1[4:0] 000 rd[4:0] 0000011"},
		{"lh", "imm[11:0] rs1[4:0] 001 rd[4:0] 0000011"},
		{"lw", "imm[11:0] rs1[4:0] 010 rd[4:0] 0000011"},
		{"ld", "imm[11:0] rs1[4:0] 011 rd[4:0] 0000011"},
		{"lbu", "imm[11:0] rs1[4:0] 100 rd[4:0] 0000011"},
		{"lhu", "imm[11:0] rs1[4:0] 101 rd[4:0] 0000011"},
		{"lwu", "imm[11:0] rs1[4:0] 110 rd[4:0] 0000011"},

		// Stores.
		{"sb", "imm[11:5] rs2[4:0] rs1[4:0] 000 imm[4:0] 0100011"},
		{"sh", "imm[11:5] rs2[4:0] rs1[4:0] 001 imm[4:0] 0100011"},
		{"sw", "imm[11:5] rs2[4:0] rs1[4:0] 010 imm[4:0] 0100011"},
		{"sd", "imm[11:5] rs2[4:0] rs1[4:0] 011 imm[4:0] 0100011"},

		// ALU, register-immediate.
		{"addi", "imm[11:0] rs1[4:0] 000 rd[4:0] 0010011"},
		{"slti", "imm[11:0] rs1[4:0] 010 rd[4:0] 0010011"},
		{"sltiu", "imm[11:0] rs1[4:0] 011 rd[4:0] 0010011"},
		{"xori", "imm[11:0] rs1[4:0] 100 rd[4:0] 0010011"},
		{"ori", "imm[11:0] rs1[4:0] 110 rd[4:0] 0010011"},
		{"andi", "imm[11:0] rs1[4:0] 111 rd[4:0] 0010011"},
		{"slli", "000000 imm[5:0] rs1[4:0] 001 rd[4:0] 0010011"},
		{"srli", "000000 imm[5:0] rs1[4:0] 101 rd[4:0] 0010011"},
		{"srai", "010000 imm[5:0] rs1[4:0] 101 rd[4:0] 0010011"},

		// ALU, register-immediate, 32-bit result on RV64 (W suffix).
		{"addiw", "imm[11:0] rs1[4:0] 000 rd[4:0] 0011011"},
		{"slliw", "0000000 imm[4:0] rs1[4:0] 001 rd[4:0] 0011011"},
		{"srliw", "0000000 imm[4:0] rs1[4:0] 101 rd[4:0] 0011011"},
		{"sraiw", "0100000 imm[4:0] rs1[4:0] 101 rd[4:0] 0011011"},

		// ALU, register-register.
		{"add", "0000000 rs2[4:0] rs1[4:0] 000 rd[4:0] 0110011"},
		{"sub", "0100000 rs2[4:0] rs1[4:0] 000 rd[4:0] 0110011"},
		{"sll", "0000000 rs2[4:0] rs1[4:0] 001 rd[4:0] 0110011"},
		{"slt", "0000000 rs2[4:0] rs1[4:0] 010 rd[4:0] 0110011"},
		{"sltu", "0000000 rs2[4:0] rs1[4:0] 011 rd[4:0] 0110011"},
		{"xor", "0000000 rs2[4:0] rs1[4:0] 100 rd[4:0] 0110011"},
		{"srl", "0000000 rs2[4:0] rs1[4:0] 101 rd[4:0] 0110011"},
		{"sra", "0100000 rs2[4:0] rs1[4:0] 101 rd[4:0] 0110011"},
		{"or", "0000000 rs2[4:0] rs1[4:0] 110 rd[4:0] 0110011"},
		{"and", "0000000 rs2[4:0] rs1[4:0] 111 rd[4:0] 0110011"},

		// ALU, register-register, 32-bit result on RV64 (W suffix).
		{"addw", "0000000 rs2[4:0] rs1[4:0] 000 rd[4:0] 0111011"},
		{"subw", "0100000 rs2[4:0] rs1[4:0] 000 rd[4:0] 0111011"},
		{"sllw", "0000000 rs2[4:0] rs1[4:0] 001 rd[4:0] 0111011"},
		{"srlw", "0000000 rs2[4:0] rs1[4:0] 101 rd[4:0] 0111011"},
		{"sraw", "0100000 rs2[4:0] rs1[4:0] 101 rd[4:0] 0111011"},

		// Memory ordering / misc-mem. pred and succ are the only two real
		// operands; the rs1/rd slots are reserved and always zero.
		{"fence", "0000 pred[3:0] succ[3:0] 00000 000 00000 0001111"},
		{"fence.i", "000000000000 00000 001 00000 0001111"},
	}
}

// registerSystemInstructions covers ECALL/EBREAK and the Zicsr register-form
// CSR instructions. The *I (immediate-source) CSR forms are not modelled:
// they carry two independent immediate-family values (the CSR address and
// the 5-bit zimm), which does not fit the "at most one immediate-family
// operand per instruction" shape the rest of the table relies on.
func registerSystemInstructions() []rawOp {
	return []rawOp{
		{"ecall", "000000000000 00000 000 00000 1110011"},
		{"ebreak", "000000000001 00000 000 00000 1110011"},
		{"csrrw", "uimm[11:0] rs1[4:0] 001 rd[4:0] 1110011"},
		{"csrrs", "uimm[11:0] rs1[4:0] 010 rd[4:0] 1110011"},
		{"csrrc", "uimm[11:0] rs1[4:0] 011 rd[4:0] 1110011"},
	}
}

// registerMExtensionInstructions covers integer multiply/divide (M).
func registerMExtensionInstructions() []rawOp {
	return []rawOp{
		{"mul", "0000001 rs2[4:0] rs1[4:0] 000 rd[4:0] 0110011"},
		{"mulh", "0000001 rs2[4:0] rs1[4:0] 001 rd[4:0] 0110011"},
		{"mulhsu", "0000001 rs2[4:0] rs1[4:0] 010 rd[4:0] 0110011"},
		{"mulhu", "0000001 rs2[4:0] rs1[4:0] 011 rd[4:0] 0110011"},
		{"div", "0000001 rs2[4:0] rs1[4:0] 100 rd[4:0] 0110011"},
		{"divu", "0000001 rs2[4:0] rs1[4:0] 101 rd[4:0] 0110011"},
		{"rem", "0000001 rs2[4:0] rs1[4:0] 110 rd[4:0] 0110011"},
		{"remu", "0000001 rs2[4:0] rs1[4:0] 111 rd[4:0] 0110011"},

		{"mulw", "0000001 rs2[4:0] rs1[4:0] 000 rd[4:0] 0111011"},
		{"divw", "0000001 rs2[4:0] rs1[4:0] 100 rd[4:0] 0111011"},
		{"divuw", "0000001 rs2[4:0] rs1[4:0] 101 rd[4:0] 0111011"},
		{"remw", "0000001 rs2[4:0] rs1[4:0] 110 rd[4:0] 0111011"},
		{"remuw", "0000001 rs2[4:0] rs1[4:0] 111 rd[4:0] 0111011"},
	}
}

// registerAExtensionInstructions covers the atomic-memory extension (A):
// load-reserved/store-conditional and the AMO read-modify-write family, for
// both word and doubleword widths. The aq/rl bits are folded into the
// leading static bits of the funct5 byte; plain, .aq, .rl and .aqrl forms
// of LR/SC are given explicitly since those are the ones whose acquire and
// release semantics actually matter for hand-written synchronization code.
// The rest of the AMO family is given only in its unordered (aq=0, rl=0)
// form — real assembly rarely needs the other three combinations spelled
// out, and nothing in the instruction model prevents adding them later.
func registerAExtensionInstructions() []rawOp {
	amo := func(name, funct5, width string) []rawOp {
		funct3 := "010"
		if width == "d" {
			funct3 = "011"
		}
		return []rawOp{
			{fmt.Sprintf("amo%s.%s", name, width),
				funct5 + "00" + " rs2[4:0] rs1[4:0] " + funct3 + " rd[4:0] 0101111"},
		}
	}

	var ops []rawOp
	for _, width := range []string{"w", "d"} {
		funct3 := "010"
		if width == "d" {
			funct3 = "011"
		}
		lrBase := "00010"
		scBase := "00011"
		for _, variant := range []struct {
			suffix, aq, rl string
		}{
			{"", "0", "0"},
			{".aq", "1", "0"},
			{".rl", "0", "1"},
			{".aqrl", "1", "1"},
		} {
			ops = append(ops,
				rawOp{fmt.Sprintf("lr.%s%s", width, variant.suffix),
					lrBase + variant.aq + variant.rl + " 00000 rs1[4:0] " + funct3 + " rd[4:0] 0101111"},
				rawOp{fmt.Sprintf("sc.%s%s", width, variant.suffix),
					scBase + variant.aq + variant.rl + " rs2[4:0] rs1[4:0] " + funct3 + " rd[4:0] 0101111"},
			)
		}
		for _, amoOp := range []struct {
			name, funct5 string
		}{
			{"swap", "00001"}, {"add", "00000"}, {"xor", "00100"},
			{"and", "01100"}, {"or", "01000"}, {"min", "10000"},
			{"max", "10100"}, {"minu", "11000"}, {"maxu", "11100"},
		} {
			ops = append(ops, amo(amoOp.name, amoOp.funct5, width)...)
		}
	}
	return ops
}

// registerFExtensionInstructions covers single-precision floating point.
// FP register operands share the same Rd/Rs1/Rs2/Rs3 field kinds as integer
// registers: the encoding model only ever sees a 5-bit register number, and
// the parser accepts either bank's register names in any register slot.
func registerFExtensionInstructions() []rawOp {
	return []rawOp{
		{"flw", "imm[11:0] rs1[4:0] 010 rd[4:0] 0000111"},
		{"fsw", "imm[11:5] rs2[4:0] rs1[4:0] 010 imm[4:0] 0100111"},

		{"fmadd.s", "rs3[4:0] 00 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1000011"},
		{"fmsub.s", "rs3[4:0] 00 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1000111"},
		{"fnmsub.s", "rs3[4:0] 00 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1001011"},
		{"fnmadd.s", "rs3[4:0] 00 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1001111"},

		{"fadd.s", "0000000 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fsub.s", "0000100 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fmul.s", "0001000 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fdiv.s", "0001100 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fsqrt.s", "0101100 00000 rs1[4:0] rm[2:0] rd[4:0] 1010011"},

		{"fsgnj.s", "0010000 rs2[4:0] rs1[4:0] 000 rd[4:0] 1010011"},
		{"fsgnjn.s", "0010000 rs2[4:0] rs1[4:0] 001 rd[4:0] 1010011"},
		{"fsgnjx.s", "0010000 rs2[4:0] rs1[4:0] 010 rd[4:0] 1010011"},
		{"fmin.s", "0010100 rs2[4:0] rs1[4:0] 000 rd[4:0] 1010011"},
		{"fmax.s", "0010100 rs2[4:0] rs1[4:0] 001 rd[4:0] 1010011"},

		{"fcvt.w.s", "1100000 00000 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.wu.s", "1100000 00001 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.l.s", "1100000 00010 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.lu.s", "1100000 00011 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fmv.x.w", "1110000 00000 rs1[4:0] 000 rd[4:0] 1010011"},
		{"fclass.s", "1110000 00000 rs1[4:0] 001 rd[4:0] 1010011"},

		{"feq.s", "1010000 rs2[4:0] rs1[4:0] 010 rd[4:0] 1010011"},
		{"flt.s", "1010000 rs2[4:0] rs1[4:0] 001 rd[4:0] 1010011"},
		{"fle.s", "1010000 rs2[4:0] rs1[4:0] 000 rd[4:0] 1010011"},

		{"fcvt.s.w", "1101000 00000 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.s.wu", "1101000 00001 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.s.l", "1101000 00010 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.s.lu", "1101000 00011 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fmv.w.x", "1111000 00000 rs1[4:0] 000 rd[4:0] 1010011"},
	}
}

// registerDExtensionInstructions covers double-precision floating point,
// including the two S<->D conversions that bridge the two extensions.
func registerDExtensionInstructions() []rawOp {
	return []rawOp{
		{"fld", "imm[11:0] rs1[4:0] 011 rd[4:0] 0000111"},
		{"fsd", "imm[11:5] rs2[4:0] rs1[4:0] 011 imm[4:0] 0100111"},

		{"fmadd.d", "rs3[4:0] 01 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1000011"},
		{"fmsub.d", "rs3[4:0] 01 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1000111"},
		{"fnmsub.d", "rs3[4:0] 01 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1001011"},
		{"fnmadd.d", "rs3[4:0] 01 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1001111"},

		{"fadd.d", "0000001 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fsub.d", "0000101 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fmul.d", "0001001 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fdiv.d", "0001101 rs2[4:0] rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fsqrt.d", "0101101 00000 rs1[4:0] rm[2:0] rd[4:0] 1010011"},

		{"fsgnj.d", "0010001 rs2[4:0] rs1[4:0] 000 rd[4:0] 1010011"},
		{"fsgnjn.d", "0010001 rs2[4:0] rs1[4:0] 001 rd[4:0] 1010011"},
		{"fsgnjx.d", "0010001 rs2[4:0] rs1[4:0] 010 rd[4:0] 1010011"},
		{"fmin.d", "0010101 rs2[4:0] rs1[4:0] 000 rd[4:0] 1010011"},
		{"fmax.d", "0010101 rs2[4:0] rs1[4:0] 001 rd[4:0] 1010011"},

		{"fcvt.s.d", "0100000 00001 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.d.s", "0100001 00000 rs1[4:0] rm[2:0] rd[4:0] 1010011"},

		{"feq.d", "1010001 rs2[4:0] rs1[4:0] 010 rd[4:0] 1010011"},
		{"flt.d", "1010001 rs2[4:0] rs1[4:0] 001 rd[4:0] 1010011"},
		{"fle.d", "1010001 rs2[4:0] rs1[4:0] 000 rd[4:0] 1010011"},

		{"fcvt.w.d", "1100001 00000 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.wu.d", "1100001 00001 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.l.d", "1100001 00010 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.lu.d", "1100001 00011 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fmv.x.d", "1110001 00000 rs1[4:0] 000 rd[4:0] 1010011"},
		{"fclass.d", "1110001 00000 rs1[4:0] 001 rd[4:0] 1010011"},

		{"fcvt.d.w", "1101001 00000 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.d.wu", "1101001 00001 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.d.l", "1101001 00010 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fcvt.d.lu", "1101001 00011 rs1[4:0] rm[2:0] rd[4:0] 1010011"},
		{"fmv.d.x", "1111001 00000 rs1[4:0] 000 rd[4:0] 1010011"},
	}
}

// registerCExtensionInstructions covers the common RV64C compressed subset:
// the register-constrained quadrant-0/1 forms using rd'/rs1'/rs2' (x8..x15)
// and the full-register quadrant-2 stack-pointer forms.
func registerCExtensionInstructions() []rawOp {
	return []rawOp{
		{"c.addi4spn", "000 nzimm[5:4|9:6|2|3] rd_[2:0] 00"},
		{"c.lw", "010 imm[5:3] rs1_[2:0] imm[2|6] rd_[2:0] 00"},
		{"c.ld", "011 imm[5:3] rs1_[2:0] imm[7:6] rd_[2:0] 00"},
		{"c.sw", "110 imm[5:3] rs1_[2:0] imm[2|6] rs2_[2:0] 00"},
		{"c.sd", "111 imm[5:3] rs1_[2:0] imm[7:6] rs2_[2:0] 00"},

		{"c.nop", "000 0 00000 00000 01"},
		{"c.addi", "000 imm[5] rd[4:0] imm[4:0] 01"},
		{"c.addiw", "001 imm[5] rd[4:0] imm[4:0] 01"},
		{"c.li", "010 imm[5] rd[4:0] imm[4:0] 01"},
		{"c.addi16sp", "011 imm[9] 00010 imm[4|6|8:7|5] 01"},
		{"c.lui", "011 imm[17] rd[4:0] imm[16:12] 01"},
		{"c.srli", "100 imm[5] 00 rd_[2:0] imm[4:0] 01"},
		{"c.srai", "100 imm[5] 01 rd_[2:0] imm[4:0] 01"},
		{"c.andi", "100 imm[5] 10 rd_[2:0] imm[4:0] 01"},
		{"c.sub", "100 0 11 rd_[2:0] 00 rs2_[2:0] 01"},
		{"c.xor", "100 0 11 rd_[2:0] 01 rs2_[2:0] 01"},
		{"c.or", "100 0 11 rd_[2:0] 10 rs2_[2:0] 01"},
		{"c.and", "100 0 11 rd_[2:0] 11 rs2_[2:0] 01"},
		{"c.j", "101 offset[11|4|9:8|10|6|7|3:1|5] 01"},
		{"c.beqz", "110 offset[8|4:3] rs1_[2:0] offset[7:6|2:1|5] 01"},
		{"c.bnez", "111 offset[8|4:3] rs1_[2:0] offset[7:6|2:1|5] 01"},

		{"c.slli", "000 imm[5] rd[4:0] imm[4:0] 10"},
		{"c.lwsp", "010 imm[5] rd[4:0] imm[4:2|7:6] 10"},
		{"c.ldsp", "011 imm[5] rd[4:0] imm[4:3|8:6] 10"},
		{"c.jr", "1000 rs1[4:0] 00000 10"},
		{"c.mv", "1000 rd[4:0] rs2[4:0] 10"},
		{"c.ebreak", "1001 00000 00000 10"},
		{"c.jalr", "1001 rs1[4:0] 00000 10"},
		{"c.add", "1001 rd[4:0] rs2[4:0] 10"},
		{"c.swsp", "110 imm[5:2|7:6] rs2[4:0] 10"},
		{"c.sdsp", "111 imm[5:3|8:6] rs2[4:0] 10"},
	}
}
