// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package memory provides the target memory of the emulated machine, and the
// write-once-per-pass address space the assembler places its output into.
package memory

// Memory is a byte addressable physical memory.
type Memory interface {
	// Size is the number of physical bytes.
	Size() int
	// Peek reads a physical byte.
	Peek(addr uint32) uint8
	// Poke writes a physical byte.
	Poke(addr uint32, value uint8)
}

// Mapper translates a CPU address into a physical address.
type Mapper interface {
	Physical(cpu uint16) uint32
}

// Machine is a memory with a CPU view.
type Machine interface {
	Memory
	Mapper
}

// Flat is a physical memory where CPU and physical addresses are identical.
type Flat []uint8

var _ Machine = (Flat)(nil)

// NewFlat creates a flat memory of size bytes.
func NewFlat(size int) Flat {
	return make(Flat, size)
}

func (mem Flat) Size() int {
	return len(mem)
}

func (mem Flat) Peek(addr uint32) uint8 {
	if int(addr) >= len(mem) {
		return 0xff
	}
	return mem[addr]
}

func (mem Flat) Poke(addr uint32, value uint8) {
	if int(addr) < len(mem) {
		mem[addr] = value
	}
}

func (mem Flat) Physical(cpu uint16) uint32 {
	return uint32(cpu)
}
