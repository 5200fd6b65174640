package memory

import (
	"errors"

	"github.com/ezrec/zasm/translate"
)

var f = translate.From

var (
	ErrWriteConflict = errors.New(f("byte already written this pass"))
	ErrRangeInvalid  = errors.New(f("range invalid"))
	ErrModelUnknown  = errors.New(f("machine model unknown"))
	ErrSlotInvalid   = errors.New(f("slot invalid"))
	ErrPageInvalid   = errors.New(f("page invalid"))
)

// ErrAddressRange is a logical index outside of the configured ranges.
type ErrAddressRange int

func (err ErrAddressRange) Error() string {
	return f("logical index %d outside of configured ranges", int(err))
}

// ErrConflict is a write to a physical byte already written this pass.
type ErrConflict struct {
	Physical uint32
}

func (err *ErrConflict) Error() string {
	return f("physical address $%05x %v", err.Physical, ErrWriteConflict)
}

func (err *ErrConflict) Unwrap() error {
	return ErrWriteConflict
}
