package config

import (
	"errors"

	"github.com/ezrec/zasm/translate"
)

var f = translate.From

var (
	ErrDefineSyntax   = errors.New(f("define must be NAME=expression"))
	ErrDefineValue    = errors.New(f("define is not an integer"))
	ErrDefineUnsolved = errors.New(f("defines could not be evaluated"))
	ErrKeyUnknown     = errors.New(f("configuration key unknown"))
	ErrSlotCount      = errors.New(f("slot map must list one page per slot"))
)

// ErrDefine is a define whose expression failed to evaluate.
type ErrDefine struct {
	Name string
	Err  error
}

func (err *ErrDefine) Error() string {
	return f("define %v: %v", err.Name, err.Err)
}

func (err *ErrDefine) Unwrap() error {
	return err.Err
}
