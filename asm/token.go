package asm

import (
	"fmt"
	"strings"
)

// Kind is the type of a token.
type Kind int

const (
	KIND_UNKNOWN = Kind(iota)
	KIND_ERROR
	KIND_EOF

	// Literals
	KIND_NEWLINE
	KIND_SYMBOL  // payload: symbol
	KIND_INTEGER // payload: integer
	KIND_CHAR    // payload: integer
	KIND_STRING  // payload: symbol

	// Operators
	KIND_COMMA
	KIND_OPEN_PAREN
	KIND_CLOSE_PAREN
	KIND_DOLLAR
	KIND_PLUS
	KIND_MINUS
	KIND_COLON
	KIND_OR
	KIND_AND
	KIND_XOR
	KIND_SHIFT_LEFT
	KIND_SHIFT_RIGHT
	KIND_TILDE
	KIND_MULTIPLY
	KIND_DIVIDE
	KIND_MOD
	KIND_ASSIGN

	KIND_KEYWORDS

	// Registers
	KIND_A
	KIND_B
	KIND_C
	KIND_D
	KIND_E
	KIND_H
	KIND_L
	KIND_I
	KIND_R
	KIND_AF
	KIND_AF_ALT
	KIND_BC
	KIND_DE
	KIND_HL
	KIND_IX
	KIND_IY
	KIND_SP

	// Conditions (C is shared with the register)
	KIND_NZ
	KIND_Z
	KIND_NC
	KIND_PO
	KIND_PE
	KIND_P
	KIND_M

	// Directives
	KIND_DB
	KIND_DEFB
	KIND_DEFM
	KIND_DEFS
	KIND_DEFW
	KIND_DM
	KIND_DS
	KIND_DW
	KIND_EQU
	KIND_INCLUDE
	KIND_ORG
	KIND_RANGE

	// Mnemonics
	KIND_ADC
	KIND_ADD
	KIND_AND_OP
	KIND_BIT
	KIND_CALL
	KIND_CCF
	KIND_CP
	KIND_CPD
	KIND_CPDR
	KIND_CPI
	KIND_CPIR
	KIND_CPL
	KIND_DAA
	KIND_DEC
	KIND_DI
	KIND_DJNZ
	KIND_EI
	KIND_EX
	KIND_EXX
	KIND_HALT
	KIND_IM
	KIND_IN
	KIND_INC
	KIND_IND
	KIND_INDR
	KIND_INI
	KIND_INIR
	KIND_JP
	KIND_JR
	KIND_LD
	KIND_LDD
	KIND_LDDR
	KIND_LDI
	KIND_LDIR
	KIND_NEG
	KIND_NOP
	KIND_OR_OP
	KIND_OTDR
	KIND_OTIR
	KIND_OUT
	KIND_OUTD
	KIND_OUTI
	KIND_POP
	KIND_PUSH
	KIND_RES
	KIND_RET
	KIND_RETI
	KIND_RETN
	KIND_RL
	KIND_RLA
	KIND_RLC
	KIND_RLCA
	KIND_RLD
	KIND_RR
	KIND_RRA
	KIND_RRC
	KIND_RRCA
	KIND_RRD
	KIND_RST
	KIND_SBC
	KIND_SCF
	KIND_SET
	KIND_SLA
	KIND_SLL
	KIND_SRA
	KIND_SRL
	KIND_SUB
	KIND_XOR_OP

	KIND_COUNT
)

const (
	_kind_first_register  = KIND_A
	_kind_first_condition = KIND_NZ
	_kind_first_directive = KIND_DB
	_kind_first_mnemonic  = KIND_ADC
)

var _kind_name = [KIND_COUNT]string{
	KIND_UNKNOWN:     "unknown",
	KIND_ERROR:       "error",
	KIND_EOF:         "end of file",
	KIND_NEWLINE:     "newline",
	KIND_SYMBOL:      "symbol",
	KIND_INTEGER:     "integer",
	KIND_CHAR:        "character",
	KIND_STRING:      "string",
	KIND_COMMA:       ",",
	KIND_OPEN_PAREN:  "(",
	KIND_CLOSE_PAREN: ")",
	KIND_DOLLAR:      "$",
	KIND_PLUS:        "+",
	KIND_MINUS:       "-",
	KIND_COLON:       ":",
	KIND_OR:          "|",
	KIND_AND:         "&",
	KIND_XOR:         "^",
	KIND_SHIFT_LEFT:  "<<",
	KIND_SHIFT_RIGHT: ">>",
	KIND_TILDE:       "~",
	KIND_MULTIPLY:    "*",
	KIND_DIVIDE:      "/",
	KIND_MOD:         "%",
	KIND_ASSIGN:      "=",
	KIND_KEYWORDS:    "keyword",
	KIND_AF_ALT:      "AF'",
	KIND_AND_OP:      "AND",
	KIND_OR_OP:       "OR",
	KIND_XOR_OP:      "XOR",
}

// Keyword spellings. Matched case insensitively.
var _keywords = map[string]Kind{
	"A": KIND_A, "B": KIND_B, "C": KIND_C, "D": KIND_D, "E": KIND_E,
	"H": KIND_H, "L": KIND_L, "I": KIND_I, "R": KIND_R,
	"AF": KIND_AF, "BC": KIND_BC, "DE": KIND_DE, "HL": KIND_HL,
	"IX": KIND_IX, "IY": KIND_IY, "SP": KIND_SP,

	"NZ": KIND_NZ, "Z": KIND_Z, "NC": KIND_NC, "PO": KIND_PO,
	"PE": KIND_PE, "P": KIND_P, "M": KIND_M,

	"DB": KIND_DB, "DEFB": KIND_DEFB, "DEFM": KIND_DEFM, "DEFS": KIND_DEFS,
	"DEFW": KIND_DEFW, "DM": KIND_DM, "DS": KIND_DS, "DW": KIND_DW,
	"EQU": KIND_EQU, "INCLUDE": KIND_INCLUDE, "ORG": KIND_ORG, "RANGE": KIND_RANGE,

	"ADC": KIND_ADC, "ADD": KIND_ADD, "AND": KIND_AND_OP, "BIT": KIND_BIT,
	"CALL": KIND_CALL, "CCF": KIND_CCF, "CP": KIND_CP, "CPD": KIND_CPD,
	"CPDR": KIND_CPDR, "CPI": KIND_CPI, "CPIR": KIND_CPIR, "CPL": KIND_CPL,
	"DAA": KIND_DAA, "DEC": KIND_DEC, "DI": KIND_DI, "DJNZ": KIND_DJNZ,
	"EI": KIND_EI, "EX": KIND_EX, "EXX": KIND_EXX, "HALT": KIND_HALT,
	"IM": KIND_IM, "IN": KIND_IN, "INC": KIND_INC, "IND": KIND_IND,
	"INDR": KIND_INDR, "INI": KIND_INI, "INIR": KIND_INIR, "JP": KIND_JP,
	"JR": KIND_JR, "LD": KIND_LD, "LDD": KIND_LDD, "LDDR": KIND_LDDR,
	"LDI": KIND_LDI, "LDIR": KIND_LDIR, "NEG": KIND_NEG, "NOP": KIND_NOP,
	"OR": KIND_OR_OP, "OTDR": KIND_OTDR, "OTIR": KIND_OTIR, "OUT": KIND_OUT,
	"OUTD": KIND_OUTD, "OUTI": KIND_OUTI, "POP": KIND_POP, "PUSH": KIND_PUSH,
	"RES": KIND_RES, "RET": KIND_RET, "RETI": KIND_RETI, "RETN": KIND_RETN,
	"RL": KIND_RL, "RLA": KIND_RLA, "RLC": KIND_RLC, "RLCA": KIND_RLCA,
	"RLD": KIND_RLD, "RR": KIND_RR, "RRA": KIND_RRA, "RRC": KIND_RRC,
	"RRCA": KIND_RRCA, "RRD": KIND_RRD, "RST": KIND_RST, "SBC": KIND_SBC,
	"SCF": KIND_SCF, "SET": KIND_SET, "SLA": KIND_SLA, "SLL": KIND_SLL,
	"SRA": KIND_SRA, "SRL": KIND_SRL, "SUB": KIND_SUB, "XOR": KIND_XOR_OP,
}

func init() {
	for text, kind := range _keywords {
		if len(_kind_name[kind]) == 0 {
			_kind_name[kind] = text
		}
	}
}

// keyword returns the keyword kind of an identifier.
func keyword(text string) (kind Kind, ok bool) {
	kind, ok = _keywords[strings.ToUpper(text)]
	return
}

func (kind Kind) String() string {
	if kind < 0 || kind >= KIND_COUNT || len(_kind_name[kind]) == 0 {
		return fmt.Sprintf("Kind(%d)", int(kind))
	}
	return _kind_name[kind]
}

// IsKeyword is true for registers, conditions, directives and mnemonics.
func (kind Kind) IsKeyword() bool {
	return kind > KIND_KEYWORDS && kind < KIND_COUNT
}

// IsDirective is true for assembler directives.
func (kind Kind) IsDirective() bool {
	return kind >= _kind_first_directive && kind < _kind_first_mnemonic
}

// IsMnemonic is true for instruction mnemonics.
func (kind Kind) IsMnemonic() bool {
	return kind >= _kind_first_mnemonic && kind < KIND_COUNT
}

// IsTerminator is true for tokens that end a statement.
func (kind Kind) IsTerminator() bool {
	return kind == KIND_NEWLINE || kind == KIND_EOF
}

// Position is the source location of a token.
type Position struct {
	Line   int   // Line number, from 1.
	Column int   // Column, from 1.
	Offset int64 // Byte offset in the file.
}

func (pos Position) String() string {
	return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
}

// Token is a lexical element.
//
// The payload is an interned symbol for KIND_SYMBOL and KIND_STRING, or an
// integer for KIND_INTEGER and KIND_CHAR.
type Token struct {
	Kind    Kind
	Pos     Position
	payload int64
}

// Symbol returns the interned payload.
func (tok Token) Symbol() (sym Symbol, ok bool) {
	if tok.Kind != KIND_SYMBOL && tok.Kind != KIND_STRING {
		return
	}
	return Symbol(tok.payload), true
}

// Int returns the integer payload.
func (tok Token) Int() (value int64, ok bool) {
	if tok.Kind != KIND_INTEGER && tok.Kind != KIND_CHAR {
		return
	}
	return tok.payload, true
}

// File is the token stream of one source file.
type File struct {
	Name   string
	Source []byte
	Tokens []Token

	lines []string
}

// Line returns the text of a source line, from 1.
func (file *File) Line(lineno int) string {
	if file.lines == nil {
		file.lines = strings.Split(string(file.Source), "\n")
	}
	if lineno < 1 || lineno > len(file.lines) {
		return ""
	}
	return strings.TrimRight(file.lines[lineno-1], "\r")
}
