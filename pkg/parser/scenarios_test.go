package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/rvasm/pkg/symtab"
)

// The six concrete end-to-end scenarios: source in, encoded words (and
// relocations, where applicable) out.

func TestScenarioAddImmediate(t *testing.T) {
	u := parseSource(t, "addi x1, x0, 5\n")
	word := encodeAt(t, u, 0)
	require.Equal(t, uint32(0x00500093), word)
}

func TestScenarioLuiUpperImmediate(t *testing.T) {
	u := parseSource(t, "lui x5, 0x12345\n")
	word := encodeAt(t, u, 0)
	require.Equal(t, uint32(0x123452B7), word)
}

func TestScenarioForwardBranch(t *testing.T) {
	src := "beq x1, x2, .L1\naddi x0, x0, 0\n.L1:\n"
	u := parseSource(t, src)
	relocs, err := u.Finish()
	require.NoError(t, err)
	require.Empty(t, relocs)

	beqWord := encodeAt(t, u, 0)
	addiWord := encodeAt(t, u, 1)
	require.Equal(t, uint32(0x00208463), beqWord)
	require.Equal(t, uint32(0x00000013), addiWord)
}

func TestScenarioHiLoExternRelocations(t *testing.T) {
	src := "lui a0, %hi(msg)\naddi a0, a0, %lo(msg)\n"
	u := parseSource(t, src)
	relocs, err := u.Finish()
	require.NoError(t, err)
	require.Len(t, relocs, 2)

	require.Equal(t, uint64(0), relocs[0].Offset)
	require.Equal(t, "msg", relocs[0].Symbol)
	require.Equal(t, symtab.RHi20, relocs[0].Type)
	require.Equal(t, int64(0), relocs[0].Addend)

	require.Equal(t, uint64(4), relocs[1].Offset)
	require.Equal(t, "msg", relocs[1].Symbol)
	require.Equal(t, symtab.RLo12I, relocs[1].Type)
	require.Equal(t, int64(0), relocs[1].Addend)

	require.Equal(t, int64(0), u.Instructions()[0].Operands[1].AsImm())
	require.Equal(t, int64(0), u.Instructions()[1].Operands[2].AsImm())
}

func TestScenarioGlobalMainLabel(t *testing.T) {
	u := parseSource(t, ".global main\nmain:\nnop\n")
	_, err := u.Finish()
	require.NoError(t, err)
	sec, ok := u.Tracker.LookupGlobal("main")
	require.True(t, ok)
	require.Equal(t, symtab.SectionText, sec)
	off, ok := u.Tracker.LookupLabel("main")
	require.True(t, ok)
	require.Equal(t, uint64(0), off)
}

func TestScenarioDataWord(t *testing.T) {
	u := parseSource(t, ".data\n.word 0xdeadbeef\n")
	require.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, u.Data.Bytes())
}
