package asm

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/zasm/memory"
)

func assemble(asm *Assembler, lines ...string) (prog *Program, col *Collector, err error) {
	col = &Collector{}
	asm.Reporter = col
	prog, err = asm.Assemble([]byte(strings.Join(lines, "\n")), "test.asm")
	return
}

// peek returns the bytes written at a CPU range of a flat machine.
func peek(asm *Assembler, start uint32, count int) (codes []uint8) {
	target := memory.NewFlat(0x10000)
	err := asm.Upload(target)
	if err != nil {
		return
	}
	return target[start : start+uint32(count)]
}

func TestAssembler_Empty(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, col, err := assemble(asm, "")
	assert.NoError(err)
	assert.Empty(prog.Statements)
	assert.Equal(STATE_DONE, asm.State())
	assert.Equal(0, asm.NumErrors())
	assert.Empty(col.Errors)
	assert.NotEmpty(col.Messages)
}

func TestAssembler_ForwardReference(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, col, err := assemble(asm,
		"\tORG 8000h",
		"\tJP START",
		"\tNOP",
		"START:\tRET",
	)
	assert.NoError(err)
	assert.Empty(col.Internals)

	addr, ok := asm.Label("START")
	assert.True(ok)
	assert.Equal(int64(0x8004), addr)

	assert.Equal([]uint8{0xc3, 0x04, 0x80, 0x00, 0xc9}, peek(asm, 0x8000, 5))

	assert.Equal(3, len(prog.Statements))
	assert.Equal(uint16(0x8004), prog.Statements[2].Address)
	assert.Equal("START:\tRET", prog.Statements[2].Text)
	assert.Equal(4, prog.Statements[2].LineNo)
}

func TestAssembler_DefaultRange(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, col, err := assemble(asm, "here: NOP")
	assert.NoError(err)

	addr, ok := asm.Label("here")
	assert.True(ok)
	assert.Equal(int64(0x8000), addr)

	lo, hi, ok := asm.Space().Extent()
	assert.True(ok)
	assert.Equal(uint32(0x8000), lo)
	assert.Equal(uint32(0x8001), hi)
	assert.Contains(col.Messages, "test.asm: $08000-$08000, 1 bytes")
}

func TestAssembler_DuplicateLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, col, err := assemble(asm,
		"\tORG 9000h",
		"A1:\tNOP",
		"A1:\tNOP",
	)
	assert.Error(err)
	assert.Equal(STATE_FAILED, asm.State())
	assert.Equal(1, asm.NumErrors())
	assert.Equal(1, len(col.Errors))
	assert.ErrorIs(err, ErrSymbolDuplicate)

	addr, ok := asm.Label("A1")
	assert.True(ok)
	assert.Equal(int64(0x9000), addr)

	diag := col.Errors[0]
	assert.Equal("test.asm", diag.Source)
	assert.Equal(3, diag.Line)
	assert.Equal(1, diag.Column)
}

func TestAssembler_AggregateError(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, _, err := assemble(asm,
		"\tFOO BAR",
		"\tLD (BC),B",
	)

	var merr *multierror.Error
	assert.True(errors.As(err, &merr))
	if merr != nil {
		assert.Equal(2, len(merr.Errors))
		assert.ErrorIs(merr.Errors[0], ErrSyntax)
		assert.ErrorIs(merr.Errors[1], ErrInstructionInvalid)
	}
	assert.Equal(2, asm.NumErrors())
}

func TestAssembler_OutOfRange(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, col, err := assemble(asm,
		"\tORG 0FFFEh",
		"\tLD HL,1234h",
	)
	assert.Error(err)
	assert.Equal(1, asm.NumErrors())
	assert.ErrorIs(err, ErrMemory)
	assert.ErrorIs(err, memory.ErrAddressRange(2))
	assert.Contains(err.Error(), "CPU address $10000")
	assert.Empty(col.Internals)

	value, written := asm.Space().Peek(0)
	assert.True(written)
	assert.Equal(uint8(0x21), value)
}

func TestAssembler_WriteConflict(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, _, err := assemble(asm,
		"\tORG 8000h",
		"\tNOP",
		"\tORG 8000h",
		"\tHALT",
	)
	assert.Error(err)
	assert.Equal(1, asm.NumErrors())
	assert.ErrorIs(err, ErrMemory)
	assert.ErrorIs(err, memory.ErrWriteConflict)
}

func TestAssembler_Undefined(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, col, err := assemble(asm, "\tJP NOWHERE")
	assert.Error(err)
	assert.Equal(1, len(col.Errors))
	assert.ErrorIs(err, ErrSymbolUndefined(""))
	assert.True(strings.Contains(err.Error(), "NOWHERE"))
}

func TestAssembler_Lexical(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, col, err := assemble(asm,
		"\tLD A,@",
		"\tNOP",
	)
	assert.Error(err)
	assert.Equal(STATE_FAILED, asm.State())
	assert.Equal(1, len(col.Errors))
	assert.ErrorIs(err, ErrLexical)
}

func TestAssembler_Syntax(t *testing.T) {
	table := [](struct {
		line string
		err  error
	}){
		{"FOO BAR", ErrSyntax},
		{"NOP NOP", ErrInstructionInvalid},
		{"EQU 5", ErrSyntax},
		{"ORG", ErrSyntax},
		{"RANGE 1", ErrSyntax},
		{"DS", ErrSyntax},
		{"INCLUDE 5", ErrSyntax},
		{"DB", ErrExpression},
		{"N EQU", ErrExpression},
		{"label: 5", ErrSyntax},
		{"DB 1 2", ErrSyntax},
		{"sub: RET", ErrSyntax},
		{"l:", ErrSyntax},
		{"loop: ld: NOP", ErrSyntax},
	}

	for _, entry := range table {
		t.Run(entry.line, func(t *testing.T) {
			assert := assert.New(t)

			asm := &Assembler{}
			_, col, err := assemble(asm, entry.line)
			assert.Equal(1, len(col.Errors))
			assert.ErrorIs(err, entry.err)
		})
	}
}

func TestAssembler_ReservedLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, col, err := assemble(asm,
		"\tCALL sub",
		"sub:\tRET",
	)
	assert.Error(err)
	if assert.Equal(2, len(col.Errors)) {
		assert.ErrorIs(col.Errors[0], ErrInstructionInvalid)
		assert.ErrorIs(col.Errors[1], ErrSyntax)
		assert.Contains(col.Errors[1].Error(), "reserved word 'SUB' used as a label")
		assert.Equal(2, col.Errors[1].Line)
	}
}

func TestAssembler_Constants(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, _, err := assemble(asm,
		"\tORG 8000h",
		"\tLD A,SIZE",
		"SIZE\tEQU LAST-FIRST",
		"FIRST:\tDS 4",
		"LAST:",
		"TWICE\tEQU SIZE*2",
		"\tDB TWICE",
	)
	assert.NoError(err)

	value, ok := asm.Value("SIZE")
	assert.True(ok)
	assert.Equal(int64(4), value)

	value, ok = asm.Value("TWICE")
	assert.True(ok)
	assert.Equal(int64(8), value)

	assert.Equal([]uint8{0x3e, 0x04}, peek(asm, 0x8000, 2))
	assert.Equal([]uint8{0x08}, peek(asm, 0x8006, 1))
}

func TestAssembler_DuplicateConstant(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, col, err := assemble(asm,
		"N\tEQU 1",
		"N\tEQU 2",
		"N\t= 3",
	)
	assert.Equal(2, len(col.Errors))
	assert.ErrorIs(err, ErrSymbolDuplicate)

	value, ok := asm.Value("N")
	assert.True(ok)
	assert.Equal(int64(1), value)
}

func TestAssembler_Variables(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, _, err := assemble(asm,
		"\tORG 8000h",
		"X\t= 1",
		"\tDB X",
		"X\t= X+1",
		"\tDB X",
		"X\t= X*10",
		"\tDB X",
	)
	assert.NoError(err)
	assert.Equal([]uint8{1, 2, 20}, peek(asm, 0x8000, 3))
}

func TestAssembler_DeferredVariable(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, col, err := assemble(asm,
		"V\t= 1",
		"X\tEQU V + FWD - FWD",
		"V\t= 2",
		"FWD:\tLD A,X",
	)
	assert.NoError(err)
	assert.Empty(col.Internals)

	value, ok := asm.Value("X")
	assert.True(ok)
	assert.Equal(int64(1), value)
	assert.Equal([]uint8{0x3e, 0x01}, peek(asm, 0x8000, 2))
}

func TestAssembler_Dollar(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, _, err := assemble(asm,
		"\tORG 8000h",
		"\tNOP",
		"\tDW $",
		"HERE\tEQU $",
	)
	assert.NoError(err)
	assert.Equal([]uint8{0x00, 0x01, 0x80}, peek(asm, 0x8000, 3))

	value, ok := asm.Value("HERE")
	assert.True(ok)
	assert.Equal(int64(0x8003), value)
}

func TestAssembler_Space(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, _, err := assemble(asm,
		"\tORG 8000h",
		"\tDS 2",
		"after:\tDS 2,0E5h",
		"\tNOP",
	)
	assert.NoError(err)

	addr, _ := asm.Label("after")
	assert.Equal(int64(0x8002), addr)

	_, written := asm.Space().Peek(0)
	assert.False(written)
	assert.Equal([]uint8{0xe5, 0xe5, 0x00}, peek(asm, 0x8002, 3))
}

func TestAssembler_SpaceForward(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, col, err := assemble(asm,
		"\tDS COUNT",
		"COUNT\tEQU 4",
	)
	assert.Error(err)
	assert.Equal(1, len(col.Errors))
	assert.ErrorIs(err, ErrSymbolUndefined(""))
}

func TestAssembler_Range(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, _, err := assemble(asm,
		"\tORG 8000h,8002h",
		"\tRANGE 0C000h,0C010h",
		"\tLD HL,1234h",
		"next:\tNOP",
	)
	assert.NoError(err)

	addr, _ := asm.Label("next")
	assert.Equal(int64(0xc001), addr)
	assert.Equal([]uint8{0x21, 0x34}, peek(asm, 0x8000, 2))
	assert.Equal([]uint8{0x12, 0x00}, peek(asm, 0xc000, 2))
}

func TestAssembler_Ranges(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		Ranges: []memory.Range{{Start: 0x6000, End: 0x6100}},
	}
	_, _, err := assemble(asm, "start: NOP")
	assert.NoError(err)

	addr, _ := asm.Label("start")
	assert.Equal(int64(0x6000), addr)
}

func TestAssembler_RelativeRange(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, _, err := assemble(asm,
		"\tJR far",
		"\tDS 200",
		"far:\tNOP",
	)
	assert.Error(err)
	assert.Equal(1, asm.NumErrors())
	assert.ErrorIs(err, ErrValueRange)
}

func TestAssembler_Predefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", 0x9000)
	_, _, err := assemble(asm,
		"\tORG BASE",
		"\tNOP",
	)
	assert.NoError(err)

	lo, _, ok := asm.Space().Extent()
	assert.True(ok)
	assert.Equal(uint32(0x9000), lo)

	_, col, err := assemble(asm, "BASE EQU 1")
	assert.ErrorIs(err, ErrSymbolDuplicate)
	assert.Equal(1, len(col.Errors))
}

func TestAssembler_Include(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{
		FS: fstest.MapFS{
			"defs.asm":  {Data: []byte("VALUE\tEQU 42\nsubr:\tRET\n")},
			"loop.asm":  {Data: []byte("\tINCLUDE \"loop.asm\"\n")},
			"error.asm": {Data: []byte("\tNOP\n\tLD A,@\n")},
		},
	}

	_, col, err := assemble(asm,
		"\tORG 8000h",
		"\tCALL subr",
		"\tINCLUDE \"defs.asm\"",
		"\tLD A,VALUE",
	)
	assert.NoError(err)
	assert.Empty(col.Internals)
	assert.Equal([]uint8{0xcd, 0x03, 0x80, 0xc9, 0x3e, 0x2a}, peek(asm, 0x8000, 6))
	assert.Equal(2, len(asm.Files()))

	_, col, err = assemble(asm, "\tINCLUDE \"missing.asm\"")
	assert.ErrorIs(err, ErrInclude)
	assert.Equal(1, len(col.Errors))

	_, col, err = assemble(asm, "\tINCLUDE \"loop.asm\"")
	assert.ErrorIs(err, ErrIncludeDepth)
	assert.Equal(1, len(col.Errors))

	_, col, err = assemble(asm, "\tINCLUDE \"error.asm\"")
	assert.ErrorIs(err, ErrLexical)
	if assert.Equal(1, len(col.Errors)) {
		assert.Equal("error.asm", col.Errors[0].Source)
		assert.Equal(2, col.Errors[0].Line)
	}

	asm.FS = nil
	_, _, err = assemble(asm, "\tINCLUDE \"defs.asm\"")
	assert.ErrorIs(err, ErrInclude)
}

func TestAssembler_PassAgreement(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, col, err := assemble(asm,
		"\tORG 8000h",
		"start:\tLD HL,table",
		"\tLD B,count",
		"loop:\tLD A,(HL)",
		"\tOUT (0FEh),A",
		"\tINC HL",
		"\tDJNZ loop",
		"\tJR start",
		"table:\tDB 1,2,3,\"text\"",
		"count\tEQU $-table",
		"\tDW start,loop,table",
	)
	assert.NoError(err)
	assert.Empty(col.Internals)

	for name, addr := range asm.Labels() {
		dbg := prog.Debug(uint16(addr))
		if assert.NotNil(dbg.Statement, name) {
			assert.Equal(0, dbg.Index, name)
			assert.True(strings.HasPrefix(dbg.Statement.Text, name+":"), name)
		}
	}

	count, _ := asm.Value("count")
	assert.Equal(int64(7), count)
}

func TestAssembler_Spectrum128(t *testing.T) {
	assert := assert.New(t)

	machine := memory.NewSpectrum(memory.MODEL_128K)
	asm := &Assembler{Machine: machine}
	_, _, err := assemble(asm,
		"\tORG 0C000h",
		"\tLD A,5",
	)
	assert.NoError(err)

	assert.NoError(asm.Upload(machine))
	assert.Equal(uint8(0x3e), machine.Peek(2*memory.PAGE_SIZE))
	assert.Equal(uint8(0x05), machine.Peek(2*memory.PAGE_SIZE+1))
}

func TestAssembler_Upload(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	target := memory.NewFlat(0x10000)

	assert.ErrorIs(asm.Upload(target), ErrNotAssembled)

	_, _, err := assemble(asm, "\tLD A,B", "\tFOO")
	assert.Error(err)
	assert.ErrorIs(asm.Upload(target), ErrNotAssembled)
	assert.Equal(uint8(0), target[0x8000])

	_, _, err = assemble(asm, "\tLD A,B")
	assert.NoError(err)
	assert.NoError(asm.Upload(target))
	assert.Equal(uint8(0x78), target[0x8000])
}

func TestAssembler_Symbols(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, _, err := assemble(asm,
		"zeta:\tNOP",
		"alpha:\tNOP",
		"K\tEQU 7",
	)
	assert.NoError(err)

	var names []string
	for name := range asm.Symbols() {
		names = append(names, name)
	}
	assert.Equal([]string{"K", "alpha", "zeta"}, names)
}

func TestAssembler_LogReporter(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{Verbose: true}
	_, err := asm.Assemble([]byte("\tNOP\n\tFOO\n"), "test.asm")
	assert.Error(err)
	assert.IsType(&LogReporter{}, asm.Reporter)
}

func TestProgram_Listing(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, _, err := assemble(asm,
		"\tORG 8000h",
		"\tLD HL,1234h ; load",
		"\tNOP",
	)
	assert.NoError(err)

	assert.Equal([]string{
		"8000  21 34 12      \tLD HL,1234h ; load",
		"8003  00            \tNOP",
	}, prog.Listing())

	dbg := prog.Debug(0x8002)
	assert.NotNil(dbg.Statement)
	assert.Equal(2, dbg.Index)

	dbg = prog.Debug(0x7fff)
	assert.Nil(dbg.Statement)

	var addrs []uint16
	for addr := range prog.Codes() {
		addrs = append(addrs, addr)
	}
	assert.Equal([]uint16{0x8000, 0x8001, 0x8002, 0x8003}, addrs)
}
