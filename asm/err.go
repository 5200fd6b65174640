package asm

import (
	"errors"
	"fmt"

	"github.com/ezrec/zasm/translate"
)

var f = translate.From

var (
	// Diagnostic classes
	ErrLexical            = errors.New(f("lexical error"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrSyntax             = errors.New(f("syntax error"))
	ErrSymbolDuplicate    = errors.New(f("symbol duplicated"))
	ErrExpression         = errors.New(f("expression invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
	ErrMemory             = errors.New(f("memory write rejected"))
	ErrLayoutIntegrity    = errors.New(f("layout integrity failure"))
	ErrInclude            = errors.New(f("include failed"))
	ErrIncludeDepth       = errors.New(f("include nested too deeply"))

	// Expression errors
	ErrDivideByZero = fmt.Errorf("%w: %v", ErrExpression, f("division by zero"))

	// Run state errors
	ErrNotAssembled = errors.New(f("no successful assembly to upload"))
)

// ErrSymbolUndefined is a reference to an unknown symbol.
type ErrSymbolUndefined string

func (err ErrSymbolUndefined) Error() string {
	return f("symbol '%v' undefined", string(err))
}

// Is matches any undefined symbol error.
func (err ErrSymbolUndefined) Is(target error) (ok bool) {
	_, ok = target.(ErrSymbolUndefined)
	return
}

// ErrRange is a value that does not fit its encoding.
type ErrRange struct {
	Value int64
	Min   int64
	Max   int64
}

func (err *ErrRange) Error() string {
	return f("value %d outside of %d..%d", err.Value, err.Min, err.Max)
}

func (err *ErrRange) Unwrap() error {
	return ErrValueRange
}

// Diagnostic is an error located in a source file.
type Diagnostic struct {
	Source string
	Line   int
	Column int
	Err    error
}

func (err *Diagnostic) Error() string {
	return f("%v:%d:%d: %v", err.Source, err.Line, err.Column, err.Err)
}

func (err *Diagnostic) Unwrap() error {
	return err.Err
}

// errorf wraps a diagnostic class with detail.
func errorf(class error, format string, args ...any) error {
	return fmt.Errorf("%w: %v", class, f(format, args...))
}

// wrap classifies an underlying error, keeping both in the chain.
func wrap(class error, err error) error {
	return fmt.Errorf("%w: %w", class, err)
}
