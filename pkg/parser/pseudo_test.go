package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandNop(t *testing.T) {
	u := parseSource(t, "nop\n")
	require.Len(t, u.Instructions(), 1)
	in := u.Instructions()[0]
	require.Equal(t, "addi", in.Mnemonic())
	require.Equal(t, uint8(0), in.Operands[0].AsReg())
	require.Equal(t, uint8(0), in.Operands[1].AsReg())
	require.Equal(t, int64(0), in.Operands[2].AsImm())
}

func TestExpandMv(t *testing.T) {
	u := parseSource(t, "mv x5, x6\n")
	in := u.Instructions()[0]
	require.Equal(t, "addi", in.Mnemonic())
	require.Equal(t, uint8(5), in.Operands[0].AsReg())
	require.Equal(t, uint8(6), in.Operands[1].AsReg())
	require.Equal(t, int64(0), in.Operands[2].AsImm())
}

func TestExpandLiSmallFitsSingleAddi(t *testing.T) {
	u := parseSource(t, "li x5, 100\n")
	require.Len(t, u.Instructions(), 1)
	in := u.Instructions()[0]
	require.Equal(t, "addi", in.Mnemonic())
	require.Equal(t, int64(100), in.Operands[2].AsImm())
}

func TestExpandLiLargeSplitsLuiAddi(t *testing.T) {
	u := parseSource(t, "li x5, 0x123456\n")
	require.Len(t, u.Instructions(), 2)
	lui := u.Instructions()[0]
	addi := u.Instructions()[1]
	require.Equal(t, "lui", lui.Mnemonic())
	require.Equal(t, "addi", addi.Mnemonic())

	hi := lui.Operands[1].AsImm()
	lo := addi.Operands[2].AsImm()
	require.Equal(t, int64(0x123456), hi+lo)
}

func TestExpandLaEmitsPcrelPairWithAnchor(t *testing.T) {
	u := parseSource(t, "la x5, msg\n")
	require.Len(t, u.Instructions(), 2)
	hiIn := u.Instructions()[0]
	loIn := u.Instructions()[1]
	require.Equal(t, "lui", hiIn.Mnemonic())
	require.True(t, hiIn.Operands[1].IsExpr())
	hiExpr := hiIn.Operands[1].AsExpr()
	require.Equal(t, "msg", hiExpr.Symbol)

	require.Equal(t, "addi", loIn.Mnemonic())
	require.True(t, loIn.Operands[2].IsExpr())
	loExpr := loIn.Operands[2].AsExpr()

	anchorOff, ok := u.Tracker.LookupLabel(loExpr.Symbol)
	require.True(t, ok)
	require.Equal(t, hiIn.OffsetInText, anchorOff)
}

func TestExpandCallEmitsAuipcJalr(t *testing.T) {
	u := parseSource(t, "call subroutine\n")
	require.Len(t, u.Instructions(), 2)
	auipc := u.Instructions()[0]
	jalr := u.Instructions()[1]
	require.Equal(t, "auipc", auipc.Mnemonic())
	require.Equal(t, uint8(regRa), auipc.Operands[0].AsReg())
	require.Equal(t, "jalr", jalr.Mnemonic())
	require.Equal(t, uint8(regRa), jalr.Operands[0].AsReg())
	require.Equal(t, uint8(regRa), jalr.Operands[1].AsReg())
}

func TestExpandJ(t *testing.T) {
	u := parseSource(t, "j target\n")
	in := u.Instructions()[0]
	require.Equal(t, "jal", in.Mnemonic())
	require.Equal(t, uint8(0), in.Operands[0].AsReg())
	require.True(t, in.Operands[1].IsExpr())
}

func TestExpandJrAndRet(t *testing.T) {
	u := parseSource(t, "jr x5\nret\n")
	require.Len(t, u.Instructions(), 2)
	jr := u.Instructions()[0]
	ret := u.Instructions()[1]
	require.Equal(t, "jalr", jr.Mnemonic())
	require.Equal(t, uint8(5), jr.Operands[1].AsReg())
	require.Equal(t, int64(0), jr.Operands[2].AsImm())
	require.Equal(t, uint8(regRa), ret.Operands[1].AsReg())
}

func TestExpandSeqzSnez(t *testing.T) {
	u := parseSource(t, "seqz x5, x6\nsnez x7, x8\n")
	seqz := u.Instructions()[0]
	snez := u.Instructions()[1]
	require.Equal(t, "sltiu", seqz.Mnemonic())
	require.Equal(t, int64(1), seqz.Operands[2].AsImm())
	require.Equal(t, "sltu", snez.Mnemonic())
	require.Equal(t, uint8(0), snez.Operands[1].AsReg())
	require.Equal(t, uint8(8), snez.Operands[2].AsReg())
}

func TestExpandSextWAndZextW(t *testing.T) {
	u := parseSource(t, "sext.w x5, x6\nzext.w x7, x8\n")
	require.Len(t, u.Instructions(), 3)
	sextw := u.Instructions()[0]
	require.Equal(t, "addiw", sextw.Mnemonic())

	slli := u.Instructions()[1]
	srli := u.Instructions()[2]
	require.Equal(t, "slli", slli.Mnemonic())
	require.Equal(t, int64(32), slli.Operands[2].AsImm())
	require.Equal(t, "srli", srli.Mnemonic())
	require.Equal(t, int64(32), srli.Operands[2].AsImm())
}
