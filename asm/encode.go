package asm

import (
	"fmt"
)

// emitter writes the bytes of one statement in pass 2.
//
// Values that fail to evaluate are reported, and replaced by zero so that
// the statement keeps its pass 1 length.
type emitter struct {
	asm   *Assembler
	pos   Position
	start int   // Logical index of the statement.
	here  int64 // CPU address of the statement.
	codes []uint8
	fault bool // A write has failed in this statement.
}

func (e *emitter) error(err error) {
	e.asm.error(e.pos, err)
}

// emit writes bytes at the cursor.
func (e *emitter) emit(codes ...uint8) {
	for _, code := range codes {
		err := e.asm.space.Write8(e.asm.cursor, code)
		if err != nil && !e.fault {
			e.fault = true
			addr := e.here + int64(len(e.codes))
			e.error(fmt.Errorf("%w: %v: %w", ErrMemory, f("CPU address $%04x", addr), err))
		}
		e.codes = append(e.codes, code)
		e.asm.cursor++
	}
}

// eval evaluates an operand expression, reporting failures.
func (e *emitter) eval(op Operand) (value int64, ok bool) {
	value, err := op.Expr.Eval(e.asm)
	if err != nil {
		e.error(err)
		return 0, false
	}
	return value, true
}

// ranged evaluates an operand, and checks it against [min, max].
func (e *emitter) ranged(op Operand, min, max int64) (value int64) {
	value, ok := e.eval(op)
	if !ok {
		return 0
	}
	if value < min || value > max {
		e.error(&ErrRange{Value: value, Min: min, Max: max})
		return 0
	}
	return
}

// imm8 is an 8-bit immediate, signed or unsigned.
func (e *emitter) imm8(op Operand) uint8 {
	return uint8(e.ranged(op, -128, 255))
}

// disp is an index register displacement.
func (e *emitter) disp(op Operand) uint8 {
	return uint8(e.ranged(op, -128, 127))
}

// word writes a 16-bit immediate, low byte first.
func (e *emitter) word(op Operand) {
	value := uint16(e.ranged(op, -32768, 65535))
	e.emit(uint8(value), uint8(value>>8))
}

// rel is the offset of a relative jump target from the next instruction.
func (e *emitter) rel(op Operand) uint8 {
	target, ok := e.eval(op)
	if !ok {
		return 0
	}
	offset := target - (e.here + 2)
	if offset < -128 || offset > 127 {
		e.error(errorf(ErrValueRange, "relative jump to $%04x out of reach", target))
		return 0
	}
	return uint8(offset)
}

// bit is a bit number, 0 to 7.
func (e *emitter) bit(op Operand) uint8 {
	return uint8(e.ranged(op, 0, 7))
}

// im is the ED opcode of an interrupt mode.
func (e *emitter) im(op Operand) uint8 {
	switch e.ranged(op, 0, 2) {
	case 1:
		return 0x56
	case 2:
		return 0x5e
	}
	return 0x46
}

// rst is the opcode field of a restart vector.
func (e *emitter) rst(op Operand) uint8 {
	value, ok := e.eval(op)
	if !ok {
		return 0
	}
	if value < 0 || value > 0x38 || value%8 != 0 {
		e.error(errorf(ErrValueRange, "restart vector $%02x invalid", value))
		return 0
	}
	return uint8(value)
}

// zero checks an operand that may only be zero.
func (e *emitter) zero(op Operand) {
	e.ranged(op, 0, 0)
}
