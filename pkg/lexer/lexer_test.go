package lexer

import (
	"testing"

	"github.com/oisee/rvasm/pkg/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestTokenizeInstructionLine(t *testing.T) {
	toks, err := Tokenize("addi x1, x0, 5\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []token.Kind{token.Ident, token.Register, token.Comma, token.Register, token.Comma, token.Int, token.Newline, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[1].IntVal != 1 {
		t.Errorf("x1 register value = %d, want 1", toks[1].IntVal)
	}
}

func TestTokenizeLabelAndDirective(t *testing.T) {
	toks, err := Tokenize(".L1:\n.global main\nmain:\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []token.Kind{
		token.Label, token.Newline,
		token.Directive, token.Ident, token.Newline,
		token.Label, token.Newline,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[0].Lexeme != ".L1" {
		t.Errorf("label lexeme = %q, want %q", toks[0].Lexeme, ".L1")
	}
}

func TestTokenizeModifierExpression(t *testing.T) {
	toks, err := Tokenize("lui a0, %hi(msg)\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []token.Kind{
		token.Ident, token.Register, token.Comma, token.Modifier,
		token.LParen, token.Ident, token.RParen, token.Newline, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeHexLiteral(t *testing.T) {
	toks, err := Tokenize(".word 0xdeadbeef\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[1].Kind != token.Int {
		t.Fatalf("toks[1].Kind = %v, want Int", toks[1].Kind)
	}
	if uint32(toks[1].IntVal) != 0xdeadbeef {
		t.Errorf("IntVal = 0x%x, want 0xdeadbeef", uint32(toks[1].IntVal))
	}
}

func TestTokenizeComment(t *testing.T) {
	toks, err := Tokenize("nop # a trailing comment\nret\n")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	want := []token.Kind{token.Ident, token.Newline, token.Ident, token.Newline, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(got), got, len(want), want)
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, err := Tokenize("addi x1, x0, @\n")
	if err == nil {
		t.Fatal("Tokenize: expected lexical error for '@', got nil")
	}
}

func TestLookupRegisterAliases(t *testing.T) {
	cases := map[string]uint8{
		"x0": 0, "zero": 0, "ra": 1, "sp": 2, "fp": 8, "a0": 10,
		"f0": 0, "fa0": 10, "ft11": 31,
	}
	for name, want := range cases {
		got, ok := LookupRegister(name)
		if !ok {
			t.Errorf("LookupRegister(%q): not found", name)
			continue
		}
		if got != want {
			t.Errorf("LookupRegister(%q) = %d, want %d", name, got, want)
		}
	}
}
