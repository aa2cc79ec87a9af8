package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectiveByteWordList(t *testing.T) {
	u := parseSource(t, ".data\n.byte 1, 2\n.word 0x11223344\n")
	require.Equal(t, []byte{1, 2, 0x44, 0x33, 0x22, 0x11}, u.Data.Bytes())
}

func TestDirectiveZeroInBss(t *testing.T) {
	u := parseSource(t, ".bss\n.zero 16\n")
	require.Equal(t, uint64(16), u.Bss.Size())
}

func TestDirectiveZeroOutsideDataBssRejected(t *testing.T) {
	_, err := parseSourceErr(t, ".text\n.zero 4\n")
	require.Error(t, err)
}

func TestDirectiveAlign(t *testing.T) {
	u := parseSource(t, ".data\n.byte 1\n.align 2\n")
	require.Equal(t, 4, u.Data.Len())
}

func TestDirectiveBalign(t *testing.T) {
	u := parseSource(t, ".data\n.byte 1\n.balign 8\n")
	require.Equal(t, 8, u.Data.Len())
}

func TestDirectiveSectionSwitchRejectsDataOutsideData(t *testing.T) {
	_, err := parseSourceErr(t, ".text\n.byte 1\n")
	require.Error(t, err)
}

func TestDirectiveFloatDouble(t *testing.T) {
	u := parseSource(t, ".data\n.float 1.5\n.double 2.5\n")
	require.Equal(t, 12, u.Data.Len())
}
