package lexer

import "fmt"

// registerNames maps every surface register spelling — numeric (x5, f12)
// and ABI (ra, sp, fa0, ft3) — to its 0..31 register number. Integer and FP
// banks share the numbering; it's the mnemonic's operand model, not the
// register name, that says which bank a given slot belongs to.
var registerNames = buildRegisterNames()

func buildRegisterNames() map[string]uint8 {
	m := map[string]uint8{}
	for i := 0; i < 32; i++ {
		m[fmt.Sprintf("x%d", i)] = uint8(i)
		m[fmt.Sprintf("f%d", i)] = uint8(i)
	}

	abi := map[string]uint8{
		"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
		"t0": 5, "t1": 6, "t2": 7,
		"s0": 8, "fp": 8, "s1": 9,
		"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
		"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
		"t3": 28, "t4": 29, "t5": 30, "t6": 31,
	}
	for name, n := range abi {
		m[name] = n
	}

	fpAbi := map[string]uint8{
		"ft0": 0, "ft1": 1, "ft2": 2, "ft3": 3, "ft4": 4, "ft5": 5, "ft6": 6, "ft7": 7,
		"fs0": 8, "fs1": 9,
		"fa0": 10, "fa1": 11, "fa2": 12, "fa3": 13, "fa4": 14, "fa5": 15, "fa6": 16, "fa7": 17,
		"fs2": 18, "fs3": 19, "fs4": 20, "fs5": 21, "fs6": 22, "fs7": 23, "fs8": 24, "fs9": 25, "fs10": 26, "fs11": 27,
		"ft8": 28, "ft9": 29, "ft10": 30, "ft11": 31,
	}
	for name, n := range fpAbi {
		m[name] = n
	}
	return m
}

// LookupRegister resolves a register spelling to its register number.
func LookupRegister(name string) (uint8, bool) {
	n, ok := registerNames[name]
	return n, ok
}

// IsFPRegisterName reports whether name syntactically names a floating
// point register (`f`-prefixed numeric, or an `f`-led ABI name), as opposed
// to an integer register — needed because both banks share the 0..31
// numbering and only the spelling tells them apart.
func IsFPRegisterName(name string) bool {
	// "fp" is the integer frame pointer (x8), not an FP register.
	if _, ok := registerNames[name]; !ok || name == "fp" {
		return false
	}
	return name[0] == 'f'
}
