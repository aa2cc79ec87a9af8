// Package lexer scans RISC-V assembly source text into the flat token
// stream the parser consumes: mnemonics, registers, literals, identifiers,
// modifiers, directives, labels and punctuation.
package lexer

import (
	"strconv"
	"strings"

	"github.com/oisee/rvasm/pkg/asmerr"
	"github.com/oisee/rvasm/pkg/token"
)

// Lexer scans one source buffer. It looks at most one byte past the current
// one (to recognise a `0x` prefix); Next is called repeatedly until it
// returns an EOF token.
type Lexer struct {
	src  string
	pos  int
	line int
	col  int
}

// New returns a Lexer positioned at the start of src.
func New(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) here() token.Position {
	return token.Position{Line: l.line, Col: l.col}
}

// Next scans and returns the next token, skipping whitespace (but not
// newlines, which are significant statement separators) and `#` comments.
func (l *Lexer) Next() (token.Token, error) {
	for {
		l.skipSpacesAndComments()
		if l.pos >= len(l.src) {
			return token.Token{Kind: token.EOF, Pos: l.here()}, nil
		}

		pos := l.here()
		c := l.peek()

		switch {
		case c == '\n':
			l.advance()
			return token.Token{Kind: token.Newline, Pos: pos}, nil
		case c == ',':
			l.advance()
			return token.Token{Kind: token.Comma, Lexeme: ",", Pos: pos}, nil
		case c == '(':
			l.advance()
			return token.Token{Kind: token.LParen, Lexeme: "(", Pos: pos}, nil
		case c == ')':
			l.advance()
			return token.Token{Kind: token.RParen, Lexeme: ")", Pos: pos}, nil
		case c == ':':
			l.advance()
			return token.Token{Kind: token.Colon, Lexeme: ":", Pos: pos}, nil
		case c == '%':
			return l.scanModifier(pos)
		case c == '.':
			return l.scanDirective(pos)
		case c == '-' || c == '+' || isDigit(c):
			return l.scanNumber(pos)
		case isIdentStart(c):
			return l.scanWordOrLabel(pos)
		default:
			l.advance()
			return token.Token{}, asmerr.New(asmerr.Lexical, pos, "unexpected character %q", c)
		}
	}
}

func (l *Lexer) skipSpacesAndComments() {
	for l.pos < len(l.src) {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\r' {
			l.advance()
			continue
		}
		if c == '#' {
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		return
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// scanModifier scans `%lo`, `%pcrel_hi`, etc.
func (l *Lexer) scanModifier(pos token.Position) (token.Token, error) {
	start := l.pos
	l.advance() // '%'
	for l.pos < len(l.src) && isIdentCont(l.peek()) {
		l.advance()
	}
	lexeme := l.src[start:l.pos]
	if lexeme == "%" {
		return token.Token{}, asmerr.New(asmerr.Lexical, pos, "bare %% is not a valid modifier")
	}
	return token.Token{Kind: token.Modifier, Lexeme: lexeme, Pos: pos}, nil
}

// scanDirective scans `.text`, `.global`, `.align`, etc., or a `.L`-prefixed
// local label identifier (which scanWordOrLabel never sees since `.` is
// claimed here first).
func (l *Lexer) scanDirective(pos token.Position) (token.Token, error) {
	start := l.pos
	l.advance() // '.'
	for l.pos < len(l.src) && isIdentCont(l.peek()) {
		l.advance()
	}
	lexeme := l.src[start:l.pos]
	if l.peek() == ':' {
		l.advance() // ':' — the label token consumes it, no separate Colon follows
		return token.Token{Kind: token.Label, Lexeme: lexeme, Pos: pos}, nil
	}
	return token.Token{Kind: token.Directive, Lexeme: lexeme, Pos: pos}, nil
}

// scanNumber scans a decimal or `0x`-prefixed hex integer literal, or a
// float literal containing a `.` or exponent.
func (l *Lexer) scanNumber(pos token.Position) (token.Token, error) {
	start := l.pos
	if l.peek() == '-' || l.peek() == '+' {
		l.advance()
	}

	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		digitsStart := l.pos
		for l.pos < len(l.src) && isHexDigit(l.peek()) {
			l.advance()
		}
		if l.pos == digitsStart {
			return token.Token{}, asmerr.New(asmerr.Lexical, pos, "malformed hex literal")
		}
		lexeme := l.src[start:l.pos]
		v, err := strconv.ParseInt(lexeme, 0, 64)
		if err != nil {
			// Hex literals can exceed int64 range as bit patterns; parse
			// unsigned and reinterpret.
			uv, uerr := strconv.ParseUint(lexeme[2:], 16, 64)
			if uerr != nil {
				return token.Token{}, asmerr.Wrap(asmerr.Lexical, pos, err)
			}
			v = int64(uv)
		}
		return token.Token{Kind: token.Int, Lexeme: lexeme, Pos: pos, IntVal: v}, nil
	}

	isFloat := false
	for l.pos < len(l.src) && (isDigit(l.peek()) || l.peek() == '.' || l.peek() == 'e' || l.peek() == 'E') {
		if l.peek() == '.' || l.peek() == 'e' || l.peek() == 'E' {
			isFloat = true
		}
		l.advance()
	}
	lexeme := l.src[start:l.pos]
	if isFloat {
		v, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{}, asmerr.Wrap(asmerr.Lexical, pos, err)
		}
		return token.Token{Kind: token.Float, Lexeme: lexeme, Pos: pos, FloatVal: v}, nil
	}
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{}, asmerr.Wrap(asmerr.Lexical, pos, err)
	}
	return token.Token{Kind: token.Int, Lexeme: lexeme, Pos: pos, IntVal: v}, nil
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// scanWordOrLabel scans a bare identifier, which the parser later resolves
// as a register name, a mnemonic, or a symbol — unless it's immediately
// followed by `:`, which makes it a label definition. After the first
// character a `.` is part of the word, so dotted mnemonics such as
// `fadd.s` or `sext.w` stay one token.
func (l *Lexer) scanWordOrLabel(pos token.Position) (token.Token, error) {
	start := l.pos
	for l.pos < len(l.src) && (isIdentCont(l.peek()) || l.peek() == '.') {
		l.advance()
	}
	lexeme := l.src[start:l.pos]
	if l.peek() == ':' {
		l.advance() // ':' — the label token consumes it, no separate Colon follows
		return token.Token{Kind: token.Label, Lexeme: lexeme, Pos: pos}, nil
	}
	if reg, ok := LookupRegister(lexeme); ok {
		return token.Token{Kind: token.Register, Lexeme: lexeme, Pos: pos, IntVal: int64(reg)}, nil
	}
	return token.Token{Kind: token.Ident, Lexeme: strings.ToLower(lexeme), Pos: pos}, nil
}

// Tokenize scans src to completion and returns every token including the
// trailing EOF, or the first lexical error encountered.
func Tokenize(src string) ([]token.Token, error) {
	l := New(src)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}
