package asm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func kinds(file *File) (list []Kind) {
	for _, tok := range file.Tokens {
		list = append(list, tok.Kind)
	}
	return
}

func TestTokenize(t *testing.T) {
	assert := assert.New(t)

	in := &Interner{}
	file := Tokenize([]byte("loop: ld a,(IX+5) ; comment\n\tDB \"hi\",'x'\n"), "test.asm", in, nil)

	assert.Equal([]Kind{
		KIND_SYMBOL, KIND_COLON, KIND_LD, KIND_A, KIND_COMMA,
		KIND_OPEN_PAREN, KIND_IX, KIND_PLUS, KIND_INTEGER, KIND_CLOSE_PAREN,
		KIND_NEWLINE,
		KIND_DB, KIND_STRING, KIND_COMMA, KIND_CHAR,
		KIND_NEWLINE,
		KIND_EOF,
	}, kinds(file))

	sym, ok := file.Tokens[0].Symbol()
	assert.True(ok)
	assert.Equal("loop", in.Name(sym))

	_, ok = file.Tokens[0].Int()
	assert.False(ok)

	sym, ok = file.Tokens[12].Symbol()
	assert.True(ok)
	assert.Equal("hi", in.Name(sym))

	value, ok := file.Tokens[14].Int()
	assert.True(ok)
	assert.Equal(int64('x'), value)

	assert.Equal(Position{Line: 1, Column: 1, Offset: 0}, file.Tokens[0].Pos)
	assert.Equal(2, file.Tokens[11].Pos.Line)
	assert.Equal(2, file.Tokens[11].Pos.Column)
	assert.Equal("\tDB \"hi\",'x'", file.Line(2))
}

func TestTokenize_Numbers(t *testing.T) {
	table := [](struct {
		text  string
		value int64
	}){
		{"123", 123},
		{"$FF", 255},
		{"#1f", 31},
		{"0x10", 16},
		{"0FFh", 255},
		{"%1010", 10},
		{"0b11", 3},
		{"101b", 5},
		{"1_000", 1000},
	}

	for _, entry := range table {
		t.Run(entry.text, func(t *testing.T) {
			assert := assert.New(t)

			file := Tokenize([]byte(entry.text), "test.asm", &Interner{}, nil)
			assert.Equal([]Kind{KIND_INTEGER, KIND_EOF}, kinds(file))
			value, ok := file.Tokens[0].Int()
			assert.True(ok)
			assert.Equal(entry.value, value)
		})
	}
}

func TestTokenize_Operators(t *testing.T) {
	table := [](struct {
		text  string
		kinds []Kind
	}){
		{"$+2", []Kind{KIND_DOLLAR, KIND_PLUS, KIND_INTEGER, KIND_EOF}},
		{"7 % 2", []Kind{KIND_INTEGER, KIND_MOD, KIND_INTEGER, KIND_EOF}},
		{"X%10", []Kind{KIND_SYMBOL, KIND_MOD, KIND_INTEGER, KIND_EOF}},
		{"1<<2>>3", []Kind{KIND_INTEGER, KIND_SHIFT_LEFT, KIND_INTEGER, KIND_SHIFT_RIGHT, KIND_INTEGER, KIND_EOF}},
		{"~1|2&3^4", []Kind{KIND_TILDE, KIND_INTEGER, KIND_OR, KIND_INTEGER, KIND_AND, KIND_INTEGER, KIND_XOR, KIND_INTEGER, KIND_EOF}},
		{"ex af,af'", []Kind{KIND_EX, KIND_AF, KIND_COMMA, KIND_AF_ALT, KIND_EOF}},
		{"N = 1", []Kind{KIND_SYMBOL, KIND_ASSIGN, KIND_INTEGER, KIND_EOF}},
		{"N equ 1", []Kind{KIND_SYMBOL, KIND_EQU, KIND_INTEGER, KIND_EOF}},
	}

	for _, entry := range table {
		t.Run(entry.text, func(t *testing.T) {
			assert := assert.New(t)

			file := Tokenize([]byte(entry.text), "test.asm", &Interner{}, nil)
			assert.Equal(entry.kinds, kinds(file))
		})
	}
}

func TestTokenize_Errors(t *testing.T) {
	table := [](struct {
		text  string
		kinds []Kind
	}){
		{"LD A,@\nNOP", []Kind{KIND_LD, KIND_A, KIND_COMMA, KIND_ERROR, KIND_NEWLINE, KIND_NOP, KIND_EOF}},
		{"DB \"open\nNOP", []Kind{KIND_DB, KIND_ERROR, KIND_NEWLINE, KIND_NOP, KIND_EOF}},
		{"LD A,12G\nNOP", []Kind{KIND_LD, KIND_A, KIND_COMMA, KIND_ERROR, KIND_NEWLINE, KIND_NOP, KIND_EOF}},
		{"LD A,'xy'", []Kind{KIND_LD, KIND_A, KIND_COMMA, KIND_ERROR, KIND_EOF}},
	}

	for _, entry := range table {
		t.Run(entry.text, func(t *testing.T) {
			assert := assert.New(t)

			var reported []error
			sink := func(name string, pos Position, err error) {
				assert.Equal("test.asm", name)
				assert.Equal(1, pos.Line)
				reported = append(reported, err)
			}

			file := Tokenize([]byte(entry.text), "test.asm", &Interner{}, sink)
			assert.Equal(entry.kinds, kinds(file))
			assert.Equal(1, len(reported))
			assert.True(errors.Is(reported[0], ErrLexical))
		})
	}
}

func TestFile_Line(t *testing.T) {
	assert := assert.New(t)

	file := &File{Source: []byte("one\r\ntwo\n\nfour")}
	assert.Equal("one", file.Line(1))
	assert.Equal("two", file.Line(2))
	assert.Equal("", file.Line(3))
	assert.Equal("four", file.Line(4))
	assert.Equal("", file.Line(5))
	assert.Equal("", file.Line(0))
	assert.Equal("two", file.Line(2))
}

func TestTokenize_Deterministic(t *testing.T) {
	assert := assert.New(t)

	src := []byte("start: LD HL,table+2\n JR start\ntable: DW 1,2\n")

	first := Tokenize(src, "test.asm", &Interner{}, nil)
	second := Tokenize(src, "test.asm", &Interner{}, nil)
	assert.Equal(first.Tokens, second.Tokens)
}

func TestInterner(t *testing.T) {
	assert := assert.New(t)

	in := &Interner{}
	a := in.Intern("alpha")
	b := in.Intern("beta")

	assert.NotEqual(a, b)
	assert.Equal(a, in.Intern("alpha"))
	assert.Equal("beta", in.Name(b))
	assert.Equal("", in.Name(Symbol(99)))
	assert.Equal(2, in.Len())

	sym, ok := in.Lookup("alpha")
	assert.True(ok)
	assert.Equal(a, sym)

	_, ok = in.Lookup("gamma")
	assert.False(ok)
}
