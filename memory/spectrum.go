package memory

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

// Model is a ZX Spectrum memory model.
type Model int

const (
	MODEL_48K  = Model(0) // 48k
	MODEL_128K = Model(1) // 128k
)

const (
	PAGE_SIZE = 0x4000 // Size of a memory page, and of a CPU slot.
	NUM_SLOTS = 4      // CPU address space is four 16K slots.
)

var _model_name = map[Model]string{
	MODEL_48K:  "48k",
	MODEL_128K: "128k",
}

func (model Model) String() string {
	name, ok := _model_name[model]
	if !ok {
		return fmt.Sprintf("Model(%d)", int(model))
	}
	return name
}

// ParseModel parses a model name, "48k" or "128k".
func ParseModel(name string) (model Model, err error) {
	for model, text := range _model_name {
		if strings.EqualFold(name, text) {
			return model, nil
		}
	}

	err = fmt.Errorf("%w: %q", ErrModelUnknown, name)
	return
}

// Pages returns the number of 16K physical pages of the model.
// ROM pages come first.
func (model Model) Pages() int {
	switch model {
	case MODEL_128K:
		return 10
	default:
		return 4
	}
}

// Spectrum is the physical memory of a ZX Spectrum, viewed by the CPU through
// four 16K slots.
//
// The 48K model has pages 0 (ROM) and 1-3 (RAM) mapped linearly.
// The 128K model has pages 0-1 (ROM 0 and ROM 1) and 2-9 (RAM 0 to RAM 7);
// the reset mapping is ROM 0, RAM 5, RAM 2, RAM 0.
type Spectrum struct {
	Model Model
	Slots [NUM_SLOTS]uint8
	data  []uint8
}

var _ Machine = (*Spectrum)(nil)

// NewSpectrum creates the memory of a model, with the reset slot mapping.
func NewSpectrum(model Model) (mem *Spectrum) {
	mem = &Spectrum{
		Model: model,
		data:  make([]uint8, model.Pages()*PAGE_SIZE),
	}

	switch model {
	case MODEL_128K:
		mem.Slots = [NUM_SLOTS]uint8{0, 2 + 5, 2 + 2, 2 + 0}
	default:
		mem.Slots = [NUM_SLOTS]uint8{0, 1, 2, 3}
	}

	return
}

// SetSlot maps a physical page into a CPU slot.
func (mem *Spectrum) SetSlot(slot int, page int) (err error) {
	if slot < 0 || slot >= NUM_SLOTS {
		err = fmt.Errorf("%w: %d", ErrSlotInvalid, slot)
		return
	}
	if page < 0 || page >= mem.Model.Pages() {
		err = fmt.Errorf("%w: %d", ErrPageInvalid, page)
		return
	}

	mem.Slots[slot] = uint8(page)
	return
}

func (mem *Spectrum) Size() int {
	return len(mem.data)
}

func (mem *Spectrum) Peek(addr uint32) uint8 {
	if int(addr) >= len(mem.data) {
		return 0xff
	}
	return mem.data[addr]
}

func (mem *Spectrum) Poke(addr uint32, value uint8) {
	if int(addr) < len(mem.data) {
		mem.data[addr] = value
	}
}

// Physical translates a CPU address through the slot map.
func (mem *Spectrum) Physical(cpu uint16) uint32 {
	page := uint32(mem.Slots[cpu/PAGE_SIZE])
	return page*PAGE_SIZE + uint32(cpu%PAGE_SIZE)
}

// Defines returns the memory layout constants for the model.
func (mem *Spectrum) Defines() iter.Seq2[string, int64] {
	defines := map[string]int64{
		"PAGE_SIZE": PAGE_SIZE,
		"NUM_PAGES": int64(mem.Model.Pages()),
	}
	return maps.All(defines)
}
