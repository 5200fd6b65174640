// Package asm implements a two pass assembler for the Z80 microprocessor.
//
// Source text is tokenized once per file. The first pass binds labels and
// lays out the address space using the encoded length of every instruction;
// the second pass evaluates expressions, now that every label is known, and
// writes the machine code into a memory.AddressSpace.
//
// Operand shapes of the instruction set are described by a small matching
// language, see shape.go.
package asm
