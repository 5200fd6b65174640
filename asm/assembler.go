// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"fmt"
	"io/fs"
	"iter"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/ezrec/zasm/internal"
	"github.com/ezrec/zasm/memory"
)

// State is the progress of an assembly run.
type State int

const (
	STATE_IDLE   = State(iota) // Not yet run.
	STATE_PASS1                // Layout and label binding.
	STATE_PASS2                // Encoding.
	STATE_DONE                 // Succeeded.
	STATE_FAILED               // Stopped with errors.
)

var _state_name = map[State]string{
	STATE_IDLE:   "idle",
	STATE_PASS1:  "pass 1",
	STATE_PASS2:  "pass 2",
	STATE_DONE:   "done",
	STATE_FAILED: "failed",
}

func (state State) String() string {
	name, ok := _state_name[state]
	if !ok {
		return fmt.Sprintf("State(%d)", int(state))
	}
	return name
}

// MAX_INCLUDE_DEPTH is the deepest nesting of INCLUDE directives.
const MAX_INCLUDE_DEPTH = 16

// DefaultRanges is the initial CPU layout when no ranges are configured.
var DefaultRanges = []memory.Range{{Start: 0x8000, End: 0x10000}}

// site is the location of a statement: file index and token index.
type site struct {
	file  int
	token int
}

// Assembler is a two pass assembler for the Z80.
type Assembler struct {
	Verbose  bool           // If set, dumps tokens and symbols to the log.
	Reporter Reporter       // Diagnostics sink; logs through logrus if nil.
	FS       fs.FS          // Source of INCLUDE files; includes fail if nil.
	Machine  memory.Machine // Target memory; a flat 64K if nil.
	Ranges   []memory.Range // Initial CPU ranges; DefaultRanges if empty.

	predefine map[string]int64

	state     State
	numErrors int
	diags     *multierror.Error

	interner Interner
	files    []*File
	includes map[site]int // INCLUDE statement to file index.
	depth    int
	file     int // Index of the file being walked.

	pass      int
	labels    map[Symbol]int64
	constants map[Symbol]int64
	declared  map[Symbol]bool // Constants named by an EQU this run.
	deferred  []deferral
	variables map[Symbol]int64
	sizes     map[site]int // Pass 1 length of each statement.

	space   *memory.AddressSpace
	cursor  int   // Logical index of the next byte.
	here    int64 // CPU address of the current statement.
	program *Program
}

var _ Scope = (*Assembler)(nil)

// Predefine defines a constant visible to every run.
func (asm *Assembler) Predefine(name string, value int64) {
	if asm.predefine == nil {
		asm.predefine = map[string]int64{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// Predefines defines a set of constants visible to every run.
func (asm *Assembler) Predefines(defines iter.Seq2[string, int64]) {
	for name, value := range defines {
		asm.Predefine(name, value)
	}
}

func (asm *Assembler) reporter() Reporter {
	if asm.Reporter == nil {
		asm.Reporter = &LogReporter{}
	}
	return asm.Reporter
}

func (asm *Assembler) reset() {
	if asm.Machine == nil {
		asm.Machine = memory.NewFlat(0x10000)
	}

	asm.state = STATE_IDLE
	asm.numErrors = 0
	asm.diags = nil
	asm.interner = Interner{}
	asm.files = nil
	asm.includes = map[site]int{}
	asm.depth = 0
	asm.file = 0
	asm.pass = 0
	asm.labels = map[Symbol]int64{}
	asm.constants = map[Symbol]int64{}
	asm.declared = map[Symbol]bool{}
	asm.deferred = nil
	asm.variables = map[Symbol]int64{}
	asm.sizes = map[site]int{}
	asm.space = memory.NewAddressSpace(asm.Machine.Size())
	asm.cursor = 0
	asm.here = 0
	asm.program = nil

	for name, value := range asm.predefine {
		sym := asm.interner.Intern(name)
		asm.constants[sym] = value
		asm.declared[sym] = true
	}
}

// Assemble assembles a source buffer, returning its listing.
//
// The error is an aggregate of every diagnostic, which have also been sent
// to the Reporter.
func (asm *Assembler) Assemble(src []byte, name string) (prog *Program, err error) {
	asm.reset()
	asm.reporter().Output(f("assembling %v", name))

	asm.state = STATE_PASS1
	asm.load(src, name)

	for pass := 1; pass <= 2; pass++ {
		asm.run(pass)
		if asm.numErrors > 0 {
			asm.state = STATE_FAILED
			asm.reporter().Output(f("%v: %d errors in pass %d", name, asm.numErrors, pass))
			err = asm.diags.ErrorOrNil()
			return
		}
	}

	asm.state = STATE_DONE
	if asm.Verbose {
		asm.dumpSymbols()
	}

	lo, hi, ok := asm.space.Extent()
	if ok {
		asm.reporter().Output(f("%v: $%05x-$%05x, %d bytes", name, lo, hi-1, hi-lo))
	}

	prog = asm.program
	return
}

// load tokenizes a file, returning its index.
func (asm *Assembler) load(src []byte, name string) (index int) {
	index = len(asm.files)
	sink := func(name string, pos Position, err error) {
		asm.report(name, pos, err, false)
	}
	file := Tokenize(src, name, &asm.interner, sink)
	asm.files = append(asm.files, file)

	if asm.Verbose {
		asm.dumpTokens(file)
	}

	return
}

// run walks every statement of the main file.
func (asm *Assembler) run(pass int) {
	asm.pass = pass
	asm.state = STATE_PASS1
	if pass == 2 {
		asm.state = STATE_PASS2
	}
	asm.space.SetPass(pass)
	asm.program = &Program{}
	asm.depth = 0
	clear(asm.variables)

	asm.file = 0
	err := asm.layout(asm.Ranges)
	if err != nil {
		asm.error(Position{}, err)
		return
	}

	asm.walk(0)

	if pass == 1 {
		asm.settle()
	}
}

// layout resets the address space to a list of CPU ranges.
func (asm *Assembler) layout(ranges []memory.Range) (err error) {
	if len(ranges) == 0 {
		ranges = DefaultRanges
	}

	asm.space.ResetRanges()
	asm.cursor = 0
	for _, r := range ranges {
		err = asm.space.AddCPURange(r.Start, r.End, asm.Machine)
		if err != nil {
			return wrap(ErrMemory, err)
		}
	}

	return
}

func (asm *Assembler) report(source string, pos Position, err error, internal bool) {
	diag := &Diagnostic{
		Source: source,
		Line:   pos.Line,
		Column: pos.Column,
		Err:    err,
	}

	asm.numErrors++
	asm.diags = multierror.Append(asm.diags, diag)
	if internal {
		asm.reporter().Internal(diag)
	} else {
		asm.reporter().Error(diag)
	}
}

func (asm *Assembler) source() string {
	if asm.file < len(asm.files) {
		return asm.files[asm.file].Name
	}
	return ""
}

// error reports a diagnostic in the current file.
func (asm *Assembler) error(pos Position, err error) {
	asm.report(asm.source(), pos, err, false)
}

// internal reports an assembler integrity failure in the current file.
func (asm *Assembler) internal(pos Position, err error) {
	asm.report(asm.source(), pos, err, true)
}

// Lookup resolves a symbol as a constant, a variable or a label.
func (asm *Assembler) Lookup(sym Symbol) (value int64, ok bool) {
	if value, ok = asm.constants[sym]; ok {
		return
	}
	if value, ok = asm.variables[sym]; ok {
		return
	}
	value, ok = asm.labels[sym]
	return
}

// Name returns the text of a symbol.
func (asm *Assembler) Name(sym Symbol) string {
	return asm.interner.Name(sym)
}

// Here returns the CPU address of the current statement.
func (asm *Assembler) Here() int64 {
	return asm.here
}

// State returns the state of the last run.
func (asm *Assembler) State() State {
	return asm.state
}

// NumErrors returns the number of errors of the last run.
func (asm *Assembler) NumErrors() int {
	return asm.numErrors
}

// Space returns the address space of the last run.
func (asm *Assembler) Space() *memory.AddressSpace {
	return asm.space
}

// Files returns the token streams of the main file and its includes.
func (asm *Assembler) Files() []*File {
	return asm.files
}

// Value returns the value of a constant, variable or label by name.
func (asm *Assembler) Value(name string) (value int64, ok bool) {
	sym, ok := asm.interner.Lookup(name)
	if !ok {
		return
	}
	return asm.Lookup(sym)
}

// Label returns the address of a label by name.
func (asm *Assembler) Label(name string) (addr int64, ok bool) {
	sym, ok := asm.interner.Lookup(name)
	if !ok {
		return
	}
	addr, ok = asm.labels[sym]
	return
}

func (asm *Assembler) named(table map[Symbol]int64) iter.Seq2[string, int64] {
	names := make(map[string]int64, len(table))
	for sym, value := range table {
		names[asm.interner.Name(sym)] = value
	}
	return internal.SortedMap(names)
}

// Labels iterates the labels in name order.
func (asm *Assembler) Labels() iter.Seq2[string, int64] {
	return asm.named(asm.labels)
}

// Constants iterates the constants in name order.
func (asm *Assembler) Constants() iter.Seq2[string, int64] {
	return asm.named(asm.constants)
}

// Symbols iterates the constants, then the labels.
func (asm *Assembler) Symbols() iter.Seq2[string, int64] {
	return internal.IterSeq2Concat(asm.Constants(), asm.Labels())
}

// Upload copies the assembled bytes to a target memory.
// The last run must have succeeded.
func (asm *Assembler) Upload(target memory.Memory) (err error) {
	if asm.state != STATE_DONE {
		err = ErrNotAssembled
		return
	}

	asm.space.Upload(target)
	return
}

func (asm *Assembler) dumpTokens(file *File) {
	for _, tok := range file.Tokens {
		entry := logrus.WithFields(logrus.Fields{
			"source": file.Name,
			"pos":    tok.Pos.String(),
			"kind":   tok.Kind.String(),
		})
		if sym, ok := tok.Symbol(); ok {
			entry = entry.WithField("symbol", asm.interner.Name(sym))
		} else if value, ok := tok.Int(); ok {
			entry = entry.WithField("value", value)
		}
		entry.Debug("token")
	}
}

func (asm *Assembler) dumpSymbols() {
	for name, value := range asm.Constants() {
		logrus.WithField("value", fmt.Sprintf("$%04x", value)).Debugf("constant %v", name)
	}
	for name, value := range asm.Labels() {
		logrus.WithField("value", fmt.Sprintf("$%04x", value)).Debugf("label %v", name)
	}
}
