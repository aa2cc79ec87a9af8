package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/rvasm/pkg/riscv"
	"github.com/oisee/rvasm/pkg/symtab"
)

func parseSource(t *testing.T, src string) *Unit {
	t.Helper()
	unit := NewUnit()
	p, err := New(src, unit)
	require.NoError(t, err)
	require.NoError(t, p.Parse())
	return unit
}

func encodeAt(t *testing.T, u *Unit, i int) uint32 {
	t.Helper()
	word, err := riscv.Encode(u.Instructions()[i])
	require.NoError(t, err)
	return word
}

func TestParseAddRegisterReg(t *testing.T) {
	u := parseSource(t, "add x5, x6, x7\n")
	require.Len(t, u.Instructions(), 1)
	word := encodeAt(t, u, 0)
	require.Equal(t, uint32(0x007302B3), word)
}

func TestParseLuiPreShiftsLiteral(t *testing.T) {
	u := parseSource(t, "lui x5, 0x12345\n")
	require.Len(t, u.Instructions(), 1)
	word := encodeAt(t, u, 0)
	require.Equal(t, uint32(0x123452B7), word)
}

func TestParseLoadCanonicalOperandOrder(t *testing.T) {
	u := parseSource(t, "lw x5, 4(x6)\n")
	in := u.Instructions()[0]
	require.True(t, in.Operands[0].IsRegister())
	require.Equal(t, uint8(5), in.Operands[0].AsReg())
	require.Equal(t, uint8(6), in.Operands[1].AsReg())
	require.Equal(t, int64(4), in.Operands[2].AsImm())
}

func TestParseStoreCanonicalOperandOrder(t *testing.T) {
	// "sw rs2, offset(rs1)" on the surface, but rs1 is appended before rs2.
	u := parseSource(t, "sw x5, 4(x6)\n")
	in := u.Instructions()[0]
	require.Equal(t, uint8(6), in.Operands[0].AsReg())
	require.Equal(t, uint8(5), in.Operands[1].AsReg())
	require.Equal(t, int64(4), in.Operands[2].AsImm())
}

func TestParseFencePredSuccOrder(t *testing.T) {
	u := parseSource(t, "fence rw, w\n")
	in := u.Instructions()[0]
	require.Equal(t, int64(0x3), in.Operands[0].AsImm())
	require.Equal(t, int64(0x1), in.Operands[1].AsImm())
}

func TestDecodeFenceMaskRejectsUnknownFlag(t *testing.T) {
	_, err := parseSourceErr(t, "fence rx, w\n")
	require.Error(t, err)
}

func parseSourceErr(t *testing.T, src string) (*Unit, error) {
	t.Helper()
	unit := NewUnit()
	p, err := New(src, unit)
	require.NoError(t, err)
	return unit, p.Parse()
}

func TestParseLabelAndBranchForward(t *testing.T) {
	src := "beq x1, x2, .L1\nnop\n.L1:\nnop\n"
	u := parseSource(t, src)
	require.Len(t, u.Instructions(), 3)
	off, ok := u.Tracker.LookupLabel(".L1")
	require.True(t, ok)
	require.Equal(t, uint64(8), off)
}

func TestParseGlobalBeforeLabel(t *testing.T) {
	src := ".global start\nstart:\nnop\n"
	u := parseSource(t, src)
	_, err := u.Finish()
	require.NoError(t, err)
	sec, ok := u.Tracker.LookupGlobal("start")
	require.True(t, ok)
	require.Equal(t, symtab.SectionText, sec)
}
