package asm

import (
	"fmt"
)

// OperandKind is the type of an instruction operand.
type OperandKind int

const (
	OPERAND_NONE                 = OperandKind(iota) // none
	OPERAND_EXPRESSION                               // n
	OPERAND_ADDRESSED_EXPRESSION                     // (n)
	OPERAND_IX_EXPRESSION                            // (IX+d)
	OPERAND_IY_EXPRESSION                            // (IY+d)

	OPERAND_A // A
	OPERAND_B // B
	OPERAND_C // C
	OPERAND_D // D
	OPERAND_E // E
	OPERAND_H // H
	OPERAND_L // L
	OPERAND_I // I
	OPERAND_R // R

	OPERAND_ADDRESS_HL // (HL)
	OPERAND_ADDRESS_BC // (BC)
	OPERAND_ADDRESS_DE // (DE)
	OPERAND_ADDRESS_SP // (SP)
	OPERAND_ADDRESS_C  // (C)
	OPERAND_ADDRESS_IX // (IX)
	OPERAND_ADDRESS_IY // (IY)

	OPERAND_AF     // AF
	OPERAND_AF_ALT // AF'
	OPERAND_BC     // BC
	OPERAND_DE     // DE
	OPERAND_HL     // HL
	OPERAND_IX     // IX
	OPERAND_IY     // IY
	OPERAND_SP     // SP

	OPERAND_NZ // NZ
	OPERAND_Z  // Z
	OPERAND_NC // NC
	OPERAND_PO // PO
	OPERAND_PE // PE
	OPERAND_P  // P
	OPERAND_M  // M
)

var _operand_name = map[OperandKind]string{
	OPERAND_NONE:                 "none",
	OPERAND_EXPRESSION:           "n",
	OPERAND_ADDRESSED_EXPRESSION: "(n)",
	OPERAND_IX_EXPRESSION:        "(IX+d)",
	OPERAND_IY_EXPRESSION:        "(IY+d)",
	OPERAND_A:                    "A",
	OPERAND_B:                    "B",
	OPERAND_C:                    "C",
	OPERAND_D:                    "D",
	OPERAND_E:                    "E",
	OPERAND_H:                    "H",
	OPERAND_L:                    "L",
	OPERAND_I:                    "I",
	OPERAND_R:                    "R",
	OPERAND_ADDRESS_HL:           "(HL)",
	OPERAND_ADDRESS_BC:           "(BC)",
	OPERAND_ADDRESS_DE:           "(DE)",
	OPERAND_ADDRESS_SP:           "(SP)",
	OPERAND_ADDRESS_C:            "(C)",
	OPERAND_ADDRESS_IX:           "(IX)",
	OPERAND_ADDRESS_IY:           "(IY)",
	OPERAND_AF:                   "AF",
	OPERAND_AF_ALT:               "AF'",
	OPERAND_BC:                   "BC",
	OPERAND_DE:                   "DE",
	OPERAND_HL:                   "HL",
	OPERAND_IX:                   "IX",
	OPERAND_IY:                   "IY",
	OPERAND_SP:                   "SP",
	OPERAND_NZ:                   "NZ",
	OPERAND_Z:                    "Z",
	OPERAND_NC:                   "NC",
	OPERAND_PO:                   "PO",
	OPERAND_PE:                   "PE",
	OPERAND_P:                    "P",
	OPERAND_M:                    "M",
}

func (kind OperandKind) String() string {
	name, ok := _operand_name[kind]
	if !ok {
		return fmt.Sprintf("OperandKind(%d)", int(kind))
	}
	return name
}

// Operand is a matched instruction operand.
// Expr is set for the expression kinds; for the indexed kinds it holds the
// displacement.
type Operand struct {
	Kind OperandKind
	Expr Expr
}

// Token kinds that are operands on their own.
var _operand_of_kind = map[Kind]OperandKind{
	KIND_A:      OPERAND_A,
	KIND_B:      OPERAND_B,
	KIND_C:      OPERAND_C,
	KIND_D:      OPERAND_D,
	KIND_E:      OPERAND_E,
	KIND_H:      OPERAND_H,
	KIND_L:      OPERAND_L,
	KIND_I:      OPERAND_I,
	KIND_R:      OPERAND_R,
	KIND_AF:     OPERAND_AF,
	KIND_AF_ALT: OPERAND_AF_ALT,
	KIND_BC:     OPERAND_BC,
	KIND_DE:     OPERAND_DE,
	KIND_HL:     OPERAND_HL,
	KIND_IX:     OPERAND_IX,
	KIND_IY:     OPERAND_IY,
	KIND_SP:     OPERAND_SP,
	KIND_NZ:     OPERAND_NZ,
	KIND_Z:      OPERAND_Z,
	KIND_NC:     OPERAND_NC,
	KIND_PO:     OPERAND_PO,
	KIND_PE:     OPERAND_PE,
	KIND_P:      OPERAND_P,
	KIND_M:      OPERAND_M,
}

// Indirect forms of operands, when surrounded by parentheses.
var _indirect = map[OperandKind]OperandKind{
	OPERAND_EXPRESSION:    OPERAND_ADDRESSED_EXPRESSION,
	OPERAND_IX_EXPRESSION: OPERAND_IX_EXPRESSION,
	OPERAND_IY_EXPRESSION: OPERAND_IY_EXPRESSION,
	OPERAND_HL:            OPERAND_ADDRESS_HL,
	OPERAND_BC:            OPERAND_ADDRESS_BC,
	OPERAND_DE:            OPERAND_ADDRESS_DE,
	OPERAND_SP:            OPERAND_ADDRESS_SP,
	OPERAND_C:             OPERAND_ADDRESS_C,
	OPERAND_IX:            OPERAND_ADDRESS_IX,
	OPERAND_IY:            OPERAND_ADDRESS_IY,
}

// Encoding of the 8-bit register field.
var _reg8 = map[OperandKind]uint8{
	OPERAND_B:          0,
	OPERAND_C:          1,
	OPERAND_D:          2,
	OPERAND_E:          3,
	OPERAND_H:          4,
	OPERAND_L:          5,
	OPERAND_ADDRESS_HL: 6,
	OPERAND_A:          7,
}

// Encoding of the 16-bit register pair field.
// IX and IY take the place of HL.
var _reg16 = map[OperandKind]uint8{
	OPERAND_BC: 0,
	OPERAND_DE: 1,
	OPERAND_HL: 2,
	OPERAND_IX: 2,
	OPERAND_IY: 2,
	OPERAND_SP: 3,
	OPERAND_AF: 3,
}

// Encoding of the condition field. C is the carry condition.
var _cond = map[OperandKind]uint8{
	OPERAND_NZ: 0,
	OPERAND_Z:  1,
	OPERAND_NC: 2,
	OPERAND_C:  3,
	OPERAND_PO: 4,
	OPERAND_PE: 5,
	OPERAND_P:  6,
	OPERAND_M:  7,
}

// reg8 returns the 8-bit register field of the operand.
func (op Operand) reg8() uint8 {
	return _reg8[op.Kind]
}

// reg16 returns the register pair field of the operand.
func (op Operand) reg16() uint8 {
	return _reg16[op.Kind]
}

// cond returns the condition field of the operand.
func (op Operand) cond() uint8 {
	return _cond[op.Kind]
}

// prefix returns the index register prefix of the operand, or 0.
func (op Operand) prefix() uint8 {
	switch op.Kind {
	case OPERAND_IX, OPERAND_IX_EXPRESSION, OPERAND_ADDRESS_IX:
		return 0xdd
	case OPERAND_IY, OPERAND_IY_EXPRESSION, OPERAND_ADDRESS_IY:
		return 0xfd
	}
	return 0
}

func (op Operand) String() string {
	return op.Kind.String()
}
