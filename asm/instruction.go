// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

// encoder emits the bytes of a matched instruction variant.
type encoder func(e *emitter, ops []Operand)

// variant is one encoding of a mnemonic.
type variant struct {
	shape  string  // Operand shape, see shape.go
	size   int     // Encoded length in bytes.
	encode encoder // Byte emitter.
}

// fixed encodes an instruction without operand values.
func fixed(codes ...uint8) encoder {
	return func(e *emitter, ops []Operand) {
		e.emit(codes...)
	}
}

// last returns the final operand; optional leading operands such as the
// accumulator in "ADD A,n" are then ignored.
func last(ops []Operand) Operand {
	return ops[len(ops)-1]
}

// Opcodes with no operands.
var _simple = map[Kind][]uint8{
	KIND_NOP:  {0x00},
	KIND_RLCA: {0x07},
	KIND_RRCA: {0x0f},
	KIND_RLA:  {0x17},
	KIND_RRA:  {0x1f},
	KIND_DAA:  {0x27},
	KIND_CPL:  {0x2f},
	KIND_SCF:  {0x37},
	KIND_CCF:  {0x3f},
	KIND_HALT: {0x76},
	KIND_EXX:  {0xd9},
	KIND_DI:   {0xf3},
	KIND_EI:   {0xfb},
	KIND_NEG:  {0xed, 0x44},
	KIND_RETN: {0xed, 0x45},
	KIND_RETI: {0xed, 0x4d},
	KIND_RRD:  {0xed, 0x67},
	KIND_RLD:  {0xed, 0x6f},
	KIND_LDI:  {0xed, 0xa0},
	KIND_CPI:  {0xed, 0xa1},
	KIND_INI:  {0xed, 0xa2},
	KIND_OUTI: {0xed, 0xa3},
	KIND_LDD:  {0xed, 0xa8},
	KIND_CPD:  {0xed, 0xa9},
	KIND_IND:  {0xed, 0xaa},
	KIND_OUTD: {0xed, 0xab},
	KIND_LDIR: {0xed, 0xb0},
	KIND_CPIR: {0xed, 0xb1},
	KIND_INIR: {0xed, 0xb2},
	KIND_OTIR: {0xed, 0xb3},
	KIND_LDDR: {0xed, 0xb8},
	KIND_CPDR: {0xed, 0xb9},
	KIND_INDR: {0xed, 0xba},
	KIND_OTDR: {0xed, 0xbb},
}

var _load = []variant{
	{"{bcdehla},{bcdehla}", 1, func(e *emitter, ops []Operand) {
		e.emit(0x40 | ops[0].reg8()<<3 | ops[1].reg8())
	}},
	{"{bcdehla},(H)", 1, func(e *emitter, ops []Operand) {
		e.emit(0x46 | ops[0].reg8()<<3)
	}},
	{"(H),{bcdehla}", 1, func(e *emitter, ops []Operand) {
		e.emit(0x70 | ops[1].reg8())
	}},
	{"{bcdehla},(%)", 3, func(e *emitter, ops []Operand) {
		e.emit(ops[1].prefix(), 0x46|ops[0].reg8()<<3, e.disp(ops[1]))
	}},
	{"(%),{bcdehla}", 3, func(e *emitter, ops []Operand) {
		e.emit(ops[0].prefix(), 0x70|ops[1].reg8(), e.disp(ops[0]))
	}},
	{"(H),*", 2, func(e *emitter, ops []Operand) {
		e.emit(0x36, e.imm8(ops[1]))
	}},
	{"(%),*", 4, func(e *emitter, ops []Operand) {
		e.emit(ops[0].prefix(), 0x36, e.disp(ops[0]), e.imm8(ops[1]))
	}},
	{"a,(B)", 1, fixed(0x0a)},
	{"a,(D)", 1, fixed(0x1a)},
	{"a,(*)", 3, func(e *emitter, ops []Operand) {
		e.emit(0x3a)
		e.word(ops[1])
	}},
	{"(B),a", 1, fixed(0x02)},
	{"(D),a", 1, fixed(0x12)},
	{"(*),a", 3, func(e *emitter, ops []Operand) {
		e.emit(0x32)
		e.word(ops[0])
	}},
	{"a,i", 2, fixed(0xed, 0x57)},
	{"a,r", 2, fixed(0xed, 0x5f)},
	{"i,a", 2, fixed(0xed, 0x47)},
	{"r,a", 2, fixed(0xed, 0x4f)},
	{"{bcdehla},*", 2, func(e *emitter, ops []Operand) {
		e.emit(0x06|ops[0].reg8()<<3, e.imm8(ops[1]))
	}},
	{"H,(*)", 3, func(e *emitter, ops []Operand) {
		e.emit(0x2a)
		e.word(ops[1])
	}},
	{"{BDS},(*)", 4, func(e *emitter, ops []Operand) {
		e.emit(0xed, 0x4b|ops[0].reg16()<<4)
		e.word(ops[1])
	}},
	{"{XY},(*)", 4, func(e *emitter, ops []Operand) {
		e.emit(ops[0].prefix(), 0x2a)
		e.word(ops[1])
	}},
	{"(*),H", 3, func(e *emitter, ops []Operand) {
		e.emit(0x22)
		e.word(ops[0])
	}},
	{"(*),{BDS}", 4, func(e *emitter, ops []Operand) {
		e.emit(0xed, 0x43|ops[1].reg16()<<4)
		e.word(ops[0])
	}},
	{"(*),{XY}", 4, func(e *emitter, ops []Operand) {
		e.emit(ops[1].prefix(), 0x22)
		e.word(ops[0])
	}},
	{"S,H", 1, fixed(0xf9)},
	{"S,{XY}", 2, func(e *emitter, ops []Operand) {
		e.emit(ops[1].prefix(), 0xf9)
	}},
	{"{BDHS},*", 3, func(e *emitter, ops []Operand) {
		e.emit(0x01 | ops[0].reg16()<<4)
		e.word(ops[1])
	}},
	{"{XY},*", 4, func(e *emitter, ops []Operand) {
		e.emit(ops[0].prefix(), 0x21)
		e.word(ops[1])
	}},
}

// alu returns the 8-bit arithmetic variants of operation k.
// The accumulator operand is optional.
func alu(k uint8) []variant {
	return []variant{
		{"[a,]{bcdehla}", 1, func(e *emitter, ops []Operand) {
			e.emit(0x80 | k<<3 | last(ops).reg8())
		}},
		{"[a,](H)", 1, fixed(0x86 | k<<3)},
		{"[a,](%)", 3, func(e *emitter, ops []Operand) {
			op := last(ops)
			e.emit(op.prefix(), 0x86|k<<3, e.disp(op))
		}},
		{"[a,]*", 2, func(e *emitter, ops []Operand) {
			e.emit(0xc6|k<<3, e.imm8(last(ops)))
		}},
	}
}

// incdec returns the INC (0) or DEC (1) variants.
func incdec(dec uint8) []variant {
	return []variant{
		{"{bcdehla}", 1, func(e *emitter, ops []Operand) {
			e.emit(0x04 | dec | ops[0].reg8()<<3)
		}},
		{"(H)", 1, fixed(0x34 | dec)},
		{"(%)", 3, func(e *emitter, ops []Operand) {
			e.emit(ops[0].prefix(), 0x34|dec, e.disp(ops[0]))
		}},
		{"{BDHS}", 1, func(e *emitter, ops []Operand) {
			e.emit(0x03 | dec<<3 | ops[0].reg16()<<4)
		}},
		{"{XY}", 2, func(e *emitter, ops []Operand) {
			e.emit(ops[0].prefix(), 0x23|dec<<3)
		}},
	}
}

// stack returns the PUSH (0xc5) or POP (0xc1) variants.
func stack(base uint8) []variant {
	return []variant{
		{"{BDHA}", 1, func(e *emitter, ops []Operand) {
			e.emit(base | ops[0].reg16()<<4)
		}},
		{"{XY}", 2, func(e *emitter, ops []Operand) {
			e.emit(ops[0].prefix(), base|0x20)
		}},
	}
}

// rotate returns the CB prefixed rotate and shift variants of operation k.
func rotate(k uint8) []variant {
	return bits(k << 3)
}

// bits returns the CB prefixed variants of an opcode, without bit numbers.
func bits(base uint8) []variant {
	return []variant{
		{"{bcdehla}", 2, func(e *emitter, ops []Operand) {
			e.emit(0xcb, base|ops[0].reg8())
		}},
		{"(H)", 2, fixed(0xcb, base|6)},
		{"(%)", 4, func(e *emitter, ops []Operand) {
			e.emit(ops[0].prefix(), 0xcb, e.disp(ops[0]), base|6)
		}},
	}
}

// bitop returns the BIT, SET and RES variants.
func bitop(base uint8) []variant {
	return []variant{
		{"*,{bcdehla}", 2, func(e *emitter, ops []Operand) {
			e.emit(0xcb, base|e.bit(ops[0])<<3|ops[1].reg8())
		}},
		{"*,(H)", 2, func(e *emitter, ops []Operand) {
			e.emit(0xcb, base|e.bit(ops[0])<<3|6)
		}},
		{"*,(%)", 4, func(e *emitter, ops []Operand) {
			n := e.bit(ops[0])
			e.emit(ops[1].prefix(), 0xcb, e.disp(ops[1]), base|n<<3|6)
		}},
	}
}

// _instructions lists the variants of each mnemonic, in match order.
var _instructions = map[Kind][]variant{
	KIND_LD: _load,

	KIND_ADD: append([]variant{
		{"H,{BDHS}", 1, func(e *emitter, ops []Operand) {
			e.emit(0x09 | ops[1].reg16()<<4)
		}},
		{"X,{BDXS}", 2, func(e *emitter, ops []Operand) {
			e.emit(0xdd, 0x09|ops[1].reg16()<<4)
		}},
		{"Y,{BDYS}", 2, func(e *emitter, ops []Operand) {
			e.emit(0xfd, 0x09|ops[1].reg16()<<4)
		}},
	}, alu(0)...),
	KIND_ADC: append([]variant{
		{"H,{BDHS}", 2, func(e *emitter, ops []Operand) {
			e.emit(0xed, 0x4a|ops[1].reg16()<<4)
		}},
	}, alu(1)...),
	KIND_SUB: alu(2),
	KIND_SBC: append([]variant{
		{"H,{BDHS}", 2, func(e *emitter, ops []Operand) {
			e.emit(0xed, 0x42|ops[1].reg16()<<4)
		}},
	}, alu(3)...),
	KIND_AND_OP: alu(4),
	KIND_XOR_OP: alu(5),
	KIND_OR_OP:  alu(6),
	KIND_CP:     alu(7),

	KIND_INC: incdec(0),
	KIND_DEC: incdec(1),

	KIND_PUSH: stack(0xc5),
	KIND_POP:  stack(0xc1),

	KIND_EX: {
		{"D,H", 1, fixed(0xeb)},
		{"A,'", 1, fixed(0x08)},
		{"(S),H", 1, fixed(0xe3)},
		{"(S),{XY}", 2, func(e *emitter, ops []Operand) {
			e.emit(ops[1].prefix(), 0xe3)
		}},
	},

	KIND_IM: {
		{"*", 2, func(e *emitter, ops []Operand) {
			e.emit(0xed, e.im(ops[0]))
		}},
	},

	KIND_RLC: rotate(0),
	KIND_RRC: rotate(1),
	KIND_RL:  rotate(2),
	KIND_RR:  rotate(3),
	KIND_SLA: rotate(4),
	KIND_SRA: rotate(5),
	KIND_SLL: rotate(6),
	KIND_SRL: rotate(7),

	KIND_BIT: bitop(0x40),
	KIND_RES: bitop(0x80),
	KIND_SET: bitop(0xc0),

	KIND_JP: {
		{"(H)", 1, fixed(0xe9)},
		{"(X)", 2, fixed(0xdd, 0xe9)},
		{"(Y)", 2, fixed(0xfd, 0xe9)},
		{"F,*", 3, func(e *emitter, ops []Operand) {
			e.emit(0xc2 | ops[0].cond()<<3)
			e.word(ops[1])
		}},
		{"*", 3, func(e *emitter, ops []Operand) {
			e.emit(0xc3)
			e.word(ops[0])
		}},
	},
	KIND_JR: {
		{"f,*", 2, func(e *emitter, ops []Operand) {
			e.emit(0x20|ops[0].cond()<<3, e.rel(ops[1]))
		}},
		{"*", 2, func(e *emitter, ops []Operand) {
			e.emit(0x18, e.rel(ops[0]))
		}},
	},
	KIND_DJNZ: {
		{"*", 2, func(e *emitter, ops []Operand) {
			e.emit(0x10, e.rel(ops[0]))
		}},
	},
	KIND_CALL: {
		{"F,*", 3, func(e *emitter, ops []Operand) {
			e.emit(0xc4 | ops[0].cond()<<3)
			e.word(ops[1])
		}},
		{"*", 3, func(e *emitter, ops []Operand) {
			e.emit(0xcd)
			e.word(ops[0])
		}},
	},
	KIND_RET: {
		{"F", 1, func(e *emitter, ops []Operand) {
			e.emit(0xc0 | ops[0].cond()<<3)
		}},
		{"", 1, fixed(0xc9)},
	},
	KIND_RST: {
		{"*", 1, func(e *emitter, ops []Operand) {
			e.emit(0xc7 | e.rst(ops[0]))
		}},
	},

	KIND_IN: {
		{"a,(*)", 2, func(e *emitter, ops []Operand) {
			e.emit(0xdb, e.imm8(ops[1]))
		}},
		{"{bcdehla},(c)", 2, func(e *emitter, ops []Operand) {
			e.emit(0xed, 0x40|ops[0].reg8()<<3)
		}},
		{"(c)", 2, fixed(0xed, 0x70)},
	},
	KIND_OUT: {
		{"(*),a", 2, func(e *emitter, ops []Operand) {
			e.emit(0xd3, e.imm8(ops[0]))
		}},
		{"(c),{bcdehla}", 2, func(e *emitter, ops []Operand) {
			e.emit(0xed, 0x41|ops[1].reg8()<<3)
		}},
		{"(c),*", 2, func(e *emitter, ops []Operand) {
			e.zero(ops[1])
			e.emit(0xed, 0x71)
		}},
	},
}

func init() {
	for kind, codes := range _simple {
		_instructions[kind] = []variant{{"", len(codes), fixed(codes...)}}
	}
}

// variants returns the encodings of a mnemonic, in match order.
func variants(mnemonic Kind) []variant {
	return _instructions[mnemonic]
}
