package parser

import "fmt"

// operandShape names one surface syntax a mnemonic's operand list follows.
// Field-kind sets alone don't disambiguate every case (a load and an ALU
// register-immediate op both carry {Rd,Rs1,Imm}; an AMO and an FP compare
// both carry three plain registers), so shapes are assigned per mnemonic —
// the same per-extension grouping the opcode table itself uses — rather
// than inferred from the template.
type operandShape uint8

const (
	shapeNone operandShape = iota
	shapeSingleRegImm    // reg, imm                     (lui, auipc, c.li, c.lwsp, ...)
	shapeImmOnly         // imm                           (c.addi16sp)
	shapeOffsetOnly      // offset                        (c.j)
	shapeRdOffset        // rd, offset                    (jal)
	shapeRs1Offset       // rs1, offset                   (c.beqz, c.bnez)
	shapeRs1Only         // rs1                           (c.jr, c.jalr)
	shapeRdRs2           // rd, rs2                       (c.mv, c.add, c.sub, c.xor, c.or, c.and)
	shapeRdRs1Imm        // rd, rs1, imm                  (addi, slti, ...)
	shapeRdImmRs1Mem     // rd, imm(rs1)                  (loads, jalr)
	shapeRs2ImmRs1Mem    // rs2, imm(rs1)                 (stores)
	shapeRs1Rs2Offset    // rs1, rs2, offset              (branches)
	shapeRdRs1Rs2        // rd, rs1, rs2                  (ALU reg-reg, FP compare/min/max/sgnj)
	shapeRdRs1           // rd, rs1                       (fmv, fclass)
	shapeRdRs1Rm         // rd, rs1[, rm]                 (fsqrt, fcvt)
	shapeRdRs1Rs2Rm      // rd, rs1, rs2[, rm]            (fadd, fsub, fmul, fdiv)
	shapeFmaRm           // rd, rs1, rs2, rs3[, rm]       (fmadd family)
	shapeFence           // pred, succ
	shapeCsr             // rd, csr, rs1                  (csrrw, csrrs, csrrc)
	shapeLr              // rd, (rs1)                     (lr.*)
	shapeAmo             // rd, rs2, (rs1)                (amo*, sc.*)
)

var shapeTable = map[string]operandShape{}

func registerShape(sh operandShape, mnemonics ...string) {
	for _, m := range mnemonics {
		shapeTable[m] = sh
	}
}

func init() {
	registerShape(shapeSingleRegImm, "lui", "auipc")
	registerShape(shapeRdOffset, "jal")
	registerShape(shapeRdImmRs1Mem,
		"jalr", "lb", "lh", "lw", "ld", "lbu", "lhu", "lwu", "flw", "fld")
	registerShape(shapeRs1Rs2Offset, "beq", "bne", "blt", "bge", "bltu", "bgeu")
	registerShape(shapeRs2ImmRs1Mem, "sb", "sh", "sw", "sd", "fsw", "fsd")
	registerShape(shapeRdRs1Imm,
		"addi", "slti", "sltiu", "xori", "ori", "andi",
		"slli", "srli", "srai",
		"addiw", "slliw", "srliw", "sraiw")
	registerShape(shapeRdRs1Rs2,
		"add", "sub", "sll", "slt", "sltu", "xor", "srl", "sra", "or", "and",
		"addw", "subw", "sllw", "srlw", "sraw",
		"mul", "mulh", "mulhsu", "mulhu", "div", "divu", "rem", "remu",
		"mulw", "divw", "divuw", "remw", "remuw",
		"fsgnj.s", "fsgnjn.s", "fsgnjx.s", "fmin.s", "fmax.s", "feq.s", "flt.s", "fle.s",
		"fsgnj.d", "fsgnjn.d", "fsgnjx.d", "fmin.d", "fmax.d", "feq.d", "flt.d", "fle.d")
	registerShape(shapeRdRs1,
		"fmv.x.w", "fclass.s", "fmv.w.x", "fmv.x.d", "fclass.d", "fmv.d.x")
	registerShape(shapeRdRs1Rm,
		"fsqrt.s", "fsqrt.d",
		"fcvt.w.s", "fcvt.wu.s", "fcvt.l.s", "fcvt.lu.s",
		"fcvt.s.w", "fcvt.s.wu", "fcvt.s.l", "fcvt.s.lu",
		"fcvt.w.d", "fcvt.wu.d", "fcvt.l.d", "fcvt.lu.d",
		"fcvt.d.w", "fcvt.d.wu", "fcvt.d.l", "fcvt.d.lu",
		"fcvt.s.d", "fcvt.d.s")
	registerShape(shapeRdRs1Rs2Rm,
		"fadd.s", "fsub.s", "fmul.s", "fdiv.s", "fadd.d", "fsub.d", "fmul.d", "fdiv.d")
	registerShape(shapeFmaRm,
		"fmadd.s", "fmsub.s", "fnmsub.s", "fnmadd.s",
		"fmadd.d", "fmsub.d", "fnmsub.d", "fnmadd.d")
	registerShape(shapeCsr, "csrrw", "csrrs", "csrrc")
	registerShape(shapeFence, "fence")
	registerShape(shapeNone, "fence.i", "ecall", "ebreak", "c.nop", "c.ebreak")

	for _, width := range []string{"w", "d"} {
		for _, suffix := range []string{"", ".aq", ".rl", ".aqrl"} {
			registerShape(shapeLr, fmt.Sprintf("lr.%s%s", width, suffix))
			registerShape(shapeAmo, fmt.Sprintf("sc.%s%s", width, suffix))
		}
		for _, op := range []string{"swap", "add", "xor", "and", "or", "min", "max", "minu", "maxu"} {
			registerShape(shapeAmo, fmt.Sprintf("amo%s.%s", op, width))
		}
	}

	// RVC (compressed) subset named in the opcode-table coverage note.
	registerShape(shapeSingleRegImm,
		"c.addi4spn", "c.addi", "c.addiw", "c.li", "c.lui",
		"c.srli", "c.srai", "c.andi", "c.slli",
		"c.lwsp", "c.ldsp", "c.swsp", "c.sdsp")
	registerShape(shapeImmOnly, "c.addi16sp")
	registerShape(shapeOffsetOnly, "c.j")
	registerShape(shapeRs1Offset, "c.beqz", "c.bnez")
	registerShape(shapeRs1Only, "c.jr", "c.jalr")
	registerShape(shapeRdRs2, "c.mv", "c.add", "c.sub", "c.xor", "c.or", "c.and")
	registerShape(shapeRdImmRs1Mem, "c.lw", "c.ld")
	registerShape(shapeRs2ImmRs1Mem, "c.sw", "c.sd")
}
