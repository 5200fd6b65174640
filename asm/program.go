package asm

import (
	"fmt"
	"iter"
	"strings"
)

// Statement is a listing entry of an assembled statement.
type Statement struct {
	Source  string // Source file name.
	LineNo  int    // Line number, from 1.
	Address uint16 // CPU address of the first byte.
	Codes   []uint8
	Text    string // Source line.
}

func (st *Statement) String() string {
	var codes strings.Builder
	for n, code := range st.Codes {
		if n > 0 {
			codes.WriteByte(' ')
		}
		fmt.Fprintf(&codes, "%02X", code)
	}
	return fmt.Sprintf("%04X  %-12s  %s", st.Address, codes.String(), st.Text)
}

// Program is the listing of a successful assembly.
type Program struct {
	Statements []Statement
}

// Debug locates the statement holding a CPU address.
type Debug struct {
	*Statement
	Index int // Offset of the address into the statement codes.
}

// Debug returns the statement that generated the byte at addr.
// The Statement is nil if no statement covers the address.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, st := range prog.Statements {
		if addr-st.Address < uint16(len(st.Codes)) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(addr - st.Address),
			}
			break
		}
	}

	return
}

// Codes iterates over the generated bytes by CPU address.
func (prog *Program) Codes() iter.Seq2[uint16, uint8] {
	return func(yield func(addr uint16, code uint8) bool) {
		for _, st := range prog.Statements {
			for n, code := range st.Codes {
				if !yield(st.Address+uint16(n), code) {
					return
				}
			}
		}
	}
}

// Listing returns the listing lines of the program.
func (prog *Program) Listing() (lines []string) {
	for n := range prog.Statements {
		lines = append(lines, prog.Statements[n].String())
	}
	return
}
