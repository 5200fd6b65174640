// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"fmt"
)

// cell is a physical byte generated by the assembler.
type cell struct {
	value uint8
	pass  uint8 // Pass the byte was last written in; 0 if never written.
}

// Range is a span of addresses [Start, End).
type Range struct {
	Start uint32
	End   uint32
}

// Size returns the number of bytes in the range.
func (r Range) Size() int {
	if r.End <= r.Start {
		return 0
	}
	return int(r.End - r.Start)
}

// AddressSpace stores the bytes generated by an assembler.
//
// Physical ranges of the target memory are concatenated, in the order they
// are added, into one flat logical space. Every physical byte may be written
// only once per pass; a second write in the same pass is a conflict, even when
// it arrives through a different range configuration.
type AddressSpace struct {
	memory   []cell
	physical []uint32 // logical index to physical address
	cpu      []uint16 // logical index to CPU address
	pass     uint8
}

// NewAddressSpace creates an address space over size physical bytes.
func NewAddressSpace(size int) (as *AddressSpace) {
	as = &AddressSpace{
		memory: make([]cell, size),
		pass:   1,
	}

	return
}

// SetPass sets the pass used for conflict detection.
// Passes are numbered from 1.
func (as *AddressSpace) SetPass(pass int) {
	as.pass = uint8(pass)
}

// Pass returns the current pass.
func (as *AddressSpace) Pass() int {
	return int(as.pass)
}

// ResetRanges removes all ranges.
func (as *AddressSpace) ResetRanges() {
	as.physical = as.physical[:0]
	as.cpu = as.cpu[:0]
}

// AddRange appends the physical range [start, end) to the logical space.
// The CPU view of a physical range is its low 16 bits.
func (as *AddressSpace) AddRange(start, end uint32) (err error) {
	if end < start || int(end) > len(as.memory) {
		err = fmt.Errorf("%w: $%05x-$%05x", ErrRangeInvalid, start, end)
		return
	}

	for addr := start; addr < end; addr++ {
		as.physical = append(as.physical, addr)
		as.cpu = append(as.cpu, uint16(addr))
	}

	return
}

// AddCPURange appends the CPU range [start, end) to the logical space,
// translating every address through the mapper.
func (as *AddressSpace) AddCPURange(start, end uint32, mapper Mapper) (err error) {
	if end < start || end > 0x10000 {
		err = fmt.Errorf("%w: $%04x-$%04x", ErrRangeInvalid, start, end)
		return
	}

	for addr := start; addr < end; addr++ {
		phys := mapper.Physical(uint16(addr))
		if int(phys) >= len(as.memory) {
			err = fmt.Errorf("%w: $%04x maps to $%05x", ErrRangeInvalid, addr, phys)
			return
		}
		as.physical = append(as.physical, phys)
		as.cpu = append(as.cpu, uint16(addr))
	}

	return
}

// Size returns the total logical size.
func (as *AddressSpace) Size() int {
	return len(as.physical)
}

// IsValidAddress returns true if the logical index is inside the ranges.
func (as *AddressSpace) IsValidAddress(i int) bool {
	return i >= 0 && i < len(as.physical)
}

// PhysicalAddress translates a logical index to its physical address.
func (as *AddressSpace) PhysicalAddress(i int) (addr uint32, err error) {
	if !as.IsValidAddress(i) {
		err = ErrAddressRange(i)
		return
	}

	addr = as.physical[i]
	return
}

// CPUAddress translates a logical index into the address the CPU sees.
// Indexes past the end of the ranges continue on from the last CPU address.
func (as *AddressSpace) CPUAddress(i int) uint16 {
	switch {
	case as.IsValidAddress(i):
		return as.cpu[i]
	case len(as.cpu) == 0:
		return uint16(i)
	case i < 0:
		return as.cpu[0] + uint16(i)
	default:
		last := len(as.cpu) - 1
		return as.cpu[last] + uint16(i-last)
	}
}

// Write8 writes a byte at a logical index.
func (as *AddressSpace) Write8(i int, value uint8) (err error) {
	if !as.IsValidAddress(i) {
		err = ErrAddressRange(i)
		return
	}

	phys := as.physical[i]
	mem := &as.memory[phys]
	if mem.pass == as.pass {
		err = &ErrConflict{Physical: phys}
		return
	}

	mem.value = value
	mem.pass = as.pass
	return
}

// Write16 writes a little-endian word at a logical index.
func (as *AddressSpace) Write16(i int, value uint16) (err error) {
	err = as.Write8(i, uint8(value))
	if err != nil {
		return
	}

	err = as.Write8(i+1, uint8(value>>8))
	return
}

// Peek returns the byte at a logical index, and whether it was ever written.
func (as *AddressSpace) Peek(i int) (value uint8, written bool) {
	if !as.IsValidAddress(i) {
		return
	}

	mem := as.memory[as.physical[i]]
	return mem.value, mem.pass != 0
}

// Extent returns the lowest and highest+1 physical addresses written.
func (as *AddressSpace) Extent() (lo uint32, hi uint32, ok bool) {
	for addr, mem := range as.memory {
		if mem.pass == 0 {
			continue
		}
		if !ok {
			lo = uint32(addr)
			ok = true
		}
		hi = uint32(addr) + 1
	}

	return
}

// Upload copies every written byte into the target memory.
func (as *AddressSpace) Upload(target Memory) {
	for addr, mem := range as.memory {
		if mem.pass == 0 || addr >= target.Size() {
			continue
		}
		target.Poke(uint32(addr), mem.value)
	}
}
