// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"strconv"
	"strings"
)

// LexSink receives lexical errors.
type LexSink func(name string, pos Position, err error)

// lexer converts a source buffer to tokens.
type lexer struct {
	name     string
	src      []byte
	interner *Interner
	sink     LexSink

	cursor int
	pos    Position
	start  Position // Position of the token being scanned.
	tokens []Token
}

// Tokenize converts source text into a token stream, terminated by KIND_EOF.
//
// Lexical errors are sent to the sink, and produce a KIND_ERROR token; the
// lexer resumes at the next newline.
func Tokenize(src []byte, name string, interner *Interner, sink LexSink) (file *File) {
	lx := &lexer{
		name:     name,
		src:      src,
		interner: interner,
		sink:     sink,
		pos:      Position{Line: 1, Column: 1},
	}

	for lx.next() {
	}

	file = &File{
		Name:   name,
		Source: src,
		Tokens: lx.tokens,
	}
	return
}

func (lx *lexer) peek(n int) byte {
	if lx.cursor+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.cursor+n]
}

func (lx *lexer) advance() (ch byte) {
	ch = lx.src[lx.cursor]
	lx.cursor++
	lx.pos.Offset++
	if ch == '\n' {
		lx.pos.Line++
		lx.pos.Column = 1
	} else {
		lx.pos.Column++
	}
	return
}

func (lx *lexer) emit(kind Kind, payload int64) {
	lx.tokens = append(lx.tokens, Token{Kind: kind, Pos: lx.start, payload: payload})
}

// afterValue is true when the previous token ends an operand.
func (lx *lexer) afterValue() bool {
	if len(lx.tokens) == 0 {
		return false
	}
	switch lx.tokens[len(lx.tokens)-1].Kind {
	case KIND_INTEGER, KIND_CHAR, KIND_SYMBOL, KIND_CLOSE_PAREN, KIND_DOLLAR:
		return true
	}
	return false
}

// error reports a lexical error, and skips to the next newline.
func (lx *lexer) error(format string, args ...any) {
	lx.emit(KIND_ERROR, 0)
	if lx.sink != nil {
		lx.sink(lx.name, lx.start, errorf(ErrLexical, format, args...))
	}
	for lx.cursor < len(lx.src) && lx.peek(0) != '\n' {
		lx.advance()
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '.' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdent(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isBinDigit(ch byte) bool {
	return ch == '0' || ch == '1'
}

// next scans one token. Returns false after KIND_EOF.
func (lx *lexer) next() bool {
	// Whitespace and comments.
	for lx.cursor < len(lx.src) {
		ch := lx.peek(0)
		if ch == ' ' || ch == '\t' || ch == '\r' {
			lx.advance()
			continue
		}
		if ch == ';' {
			for lx.cursor < len(lx.src) && lx.peek(0) != '\n' {
				lx.advance()
			}
			continue
		}
		break
	}

	lx.start = lx.pos

	if lx.cursor >= len(lx.src) {
		lx.emit(KIND_EOF, 0)
		return false
	}

	ch := lx.peek(0)
	switch {
	case ch == '\n':
		lx.advance()
		lx.emit(KIND_NEWLINE, 0)
	case isIdentStart(ch):
		lx.identifier()
	case isDigit(ch):
		lx.number()
	case ch == '$' && isHexDigit(lx.peek(1)):
		lx.advance()
		lx.radix(16, isHexDigit)
	case ch == '#' && isHexDigit(lx.peek(1)):
		lx.advance()
		lx.radix(16, isHexDigit)
	case ch == '%' && isBinDigit(lx.peek(1)) && !lx.afterValue():
		lx.advance()
		lx.radix(2, isBinDigit)
	case ch == '\'':
		lx.char()
	case ch == '"':
		lx.string()
	default:
		lx.operator()
	}

	return true
}

func (lx *lexer) identifier() {
	begin := lx.cursor
	for lx.cursor < len(lx.src) && isIdent(lx.peek(0)) {
		lx.advance()
	}
	text := string(lx.src[begin:lx.cursor])

	kind, ok := keyword(text)
	if !ok {
		lx.emit(KIND_SYMBOL, int64(lx.interner.Intern(text)))
		return
	}

	if kind == KIND_AF && lx.peek(0) == '\'' {
		lx.advance()
		kind = KIND_AF_ALT
	}

	lx.emit(kind, 0)
}

// radix scans digits of a prefixed number.
func (lx *lexer) radix(base int, valid func(byte) bool) {
	begin := lx.cursor
	for lx.cursor < len(lx.src) && (valid(lx.peek(0)) || lx.peek(0) == '_') {
		lx.advance()
	}
	if lx.cursor < len(lx.src) && isIdent(lx.peek(0)) {
		lx.error("invalid digit '%c' in number", lx.peek(0))
		return
	}
	lx.integer(string(lx.src[begin:lx.cursor]), base)
}

func (lx *lexer) integer(digits string, base int) {
	digits = strings.ReplaceAll(digits, "_", "")
	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil || len(digits) == 0 {
		lx.error("invalid number '%v'", digits)
		return
	}
	lx.emit(KIND_INTEGER, int64(value))
}

// number scans a number starting with a decimal digit:
// 123, 0x7b, 7bh, 0b1111011, 1111011b
func (lx *lexer) number() {
	begin := lx.cursor
	for lx.cursor < len(lx.src) && isIdent(lx.peek(0)) {
		lx.advance()
	}
	text := string(lx.src[begin:lx.cursor])
	lower := strings.ToLower(text)

	allOf := func(digits string, valid func(byte) bool) bool {
		for n := range len(digits) {
			if !valid(digits[n]) && digits[n] != '_' {
				return false
			}
		}
		return true
	}

	switch {
	case strings.HasPrefix(lower, "0x"):
		lx.integer(lower[2:], 16)
	case strings.HasSuffix(lower, "h") && allOf(lower[:len(lower)-1], isHexDigit):
		lx.integer(lower[:len(lower)-1], 16)
	case strings.HasPrefix(lower, "0b") && len(lower) > 2 && allOf(lower[2:], isBinDigit):
		lx.integer(lower[2:], 2)
	case strings.HasSuffix(lower, "b") && allOf(lower[:len(lower)-1], isBinDigit):
		lx.integer(lower[:len(lower)-1], 2)
	case allOf(lower, isDigit):
		lx.integer(lower, 10)
	default:
		lx.error("invalid number '%v'", text)
	}
}

func (lx *lexer) char() {
	lx.advance()
	if lx.cursor+1 >= len(lx.src) || lx.peek(0) == '\n' || lx.peek(1) != '\'' {
		lx.error("invalid character literal")
		return
	}
	ch := lx.advance()
	lx.advance()
	lx.emit(KIND_CHAR, int64(ch))
}

func (lx *lexer) string() {
	lx.advance()
	begin := lx.cursor
	for lx.cursor < len(lx.src) && lx.peek(0) != '"' {
		if lx.peek(0) == '\n' {
			break
		}
		lx.advance()
	}
	if lx.cursor >= len(lx.src) || lx.peek(0) != '"' {
		lx.error("unterminated string")
		return
	}
	text := string(lx.src[begin:lx.cursor])
	lx.advance()
	lx.emit(KIND_STRING, int64(lx.interner.Intern(text)))
}

var _operators = map[byte]Kind{
	',': KIND_COMMA,
	'(': KIND_OPEN_PAREN,
	')': KIND_CLOSE_PAREN,
	'$': KIND_DOLLAR,
	'+': KIND_PLUS,
	'-': KIND_MINUS,
	':': KIND_COLON,
	'|': KIND_OR,
	'&': KIND_AND,
	'^': KIND_XOR,
	'~': KIND_TILDE,
	'*': KIND_MULTIPLY,
	'/': KIND_DIVIDE,
	'%': KIND_MOD,
	'=': KIND_ASSIGN,
}

func (lx *lexer) operator() {
	ch := lx.peek(0)

	if (ch == '<' || ch == '>') && lx.peek(1) == ch {
		lx.advance()
		lx.advance()
		if ch == '<' {
			lx.emit(KIND_SHIFT_LEFT, 0)
		} else {
			lx.emit(KIND_SHIFT_RIGHT, 0)
		}
		return
	}

	kind, ok := _operators[ch]
	if !ok {
		lx.error("unexpected character '%c'", ch)
		return
	}

	lx.advance()
	lx.emit(kind, 0)
}
