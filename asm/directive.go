package asm

import (
	"errors"
	"io/fs"
	"maps"

	"github.com/ezrec/zasm/memory"
)

// deferral is a constant whose value was not known when pass 1 reached it.
type deferral struct {
	sym       Symbol
	expr      Expr
	file      int
	here      int64
	variables map[Symbol]int64 // Variables as of the EQU.
}

// undefined is true if the error is a reference to an unknown symbol.
func undefined(err error) bool {
	return errors.Is(err, ErrSymbolUndefined(""))
}

// constant handles 'NAME EQU expr'.
func (asm *Assembler) constant(tokens []Token, i int) (next int) {
	tok := tokens[i]
	sym, _ := tok.Symbol()

	expr, next, err := parseExpr(tokens, i+2)
	if err != nil {
		asm.error(tokens[i+1].Pos, err)
		return skipLine(tokens, i)
	}

	if asm.pass == 1 {
		if asm.declared[sym] {
			asm.error(tok.Pos, errorf(ErrSymbolDuplicate, "constant '%v' already defined", asm.Name(sym)))
			return
		}
		asm.declared[sym] = true

		value, err := expr.Eval(asm)
		switch {
		case err == nil:
			asm.constants[sym] = value
		case undefined(err):
			asm.deferred = append(asm.deferred, deferral{
				sym:       sym,
				expr:      expr,
				file:      asm.file,
				here:      asm.here,
				variables: maps.Clone(asm.variables),
			})
		default:
			asm.error(expr.Pos, err)
		}
		return
	}

	value, err := expr.Eval(asm)
	if err != nil {
		asm.error(expr.Pos, err)
		return
	}

	bound, ok := asm.constants[sym]
	if !ok {
		asm.constants[sym] = value
	} else if bound != value {
		asm.internal(tok.Pos, errorf(ErrLayoutIntegrity, "constant '%v' changed from %d to %d", asm.Name(sym), bound, value))
	}

	return
}

// settle binds the deferred constants that can now be evaluated, until no
// more progress is made. Each sees the variables as they were at its EQU.
// The rest are left to pass 2.
func (asm *Assembler) settle() {
	saved, variables := asm.file, asm.variables
	defer func() {
		asm.file = saved
		asm.variables = variables
	}()

	for progress := true; progress; {
		progress = false
		pending := asm.deferred[:0]
		for _, d := range asm.deferred {
			asm.here = d.here
			asm.file = d.file
			asm.variables = d.variables
			value, err := d.expr.Eval(asm)
			switch {
			case err == nil:
				asm.constants[d.sym] = value
				progress = true
			case undefined(err):
				pending = append(pending, d)
			default:
				asm.error(d.expr.Pos, err)
			}
		}
		asm.deferred = pending
	}
}

// variable handles 'NAME = expr'.
func (asm *Assembler) variable(tokens []Token, i int) (next int) {
	tok := tokens[i]
	sym, _ := tok.Symbol()

	expr, next, err := parseExpr(tokens, i+2)
	if err != nil {
		asm.error(tokens[i+1].Pos, err)
		return skipLine(tokens, i)
	}

	if asm.declared[sym] {
		asm.error(tok.Pos, errorf(ErrSymbolDuplicate, "'%v' is a constant", asm.Name(sym)))
		return
	}

	value, err := expr.Eval(asm)
	if err != nil {
		delete(asm.variables, sym)
		if asm.pass == 2 || !undefined(err) {
			asm.error(expr.Pos, err)
		}
		return
	}

	asm.variables[sym] = value
	return
}

// resolve evaluates an operand that must be known in pass 1.
func (asm *Assembler) resolve(op Operand, min, max int64) (value int64, ok bool) {
	value, err := op.Expr.Eval(asm)
	if err != nil {
		asm.error(op.Expr.Pos, err)
		return
	}
	if value < min || value > max {
		asm.error(op.Expr.Pos, &ErrRange{Value: value, Min: min, Max: max})
		return
	}
	return value, true
}

// directive handles an assembler directive.
func (asm *Assembler) directive(tokens []Token, i int) (next int) {
	tok := tokens[i]

	switch tok.Kind {
	case KIND_ORG:
		return asm.org(tokens, i)
	case KIND_RANGE:
		return asm.addRange(tokens, i)
	case KIND_DB, KIND_DEFB, KIND_DM, KIND_DEFM:
		return asm.data(tokens, i, 1)
	case KIND_DW, KIND_DEFW:
		return asm.data(tokens, i, 2)
	case KIND_DS, KIND_DEFS:
		return asm.reserve(tokens, i)
	case KIND_INCLUDE:
		return asm.include(tokens, i)
	}

	asm.error(tok.Pos, errorf(ErrSyntax, "%v requires a name", tok.Kind))
	return skipLine(tokens, i)
}

// org handles 'ORG addr[,end]', which moves the cursor to a new CPU range.
func (asm *Assembler) org(tokens []Token, i int) (next int) {
	tok := tokens[i]
	ops, next, ok := matchStatement(tokens, i+1, "*[,*]")
	if !ok {
		asm.error(tok.Pos, errorf(ErrSyntax, "ORG expects an address, and an optional end"))
		return skipLine(tokens, i)
	}

	start, ok := asm.resolve(ops[0], 0, 0xffff)
	if !ok {
		return
	}
	end := int64(0x10000)
	if len(ops) > 1 {
		end, ok = asm.resolve(ops[1], start, 0x10000)
		if !ok {
			return
		}
	}

	err := asm.layout([]memory.Range{{Start: uint32(start), End: uint32(end)}})
	if err != nil {
		asm.error(tok.Pos, err)
	}

	return
}

// addRange handles 'RANGE start,end', which extends the layout.
func (asm *Assembler) addRange(tokens []Token, i int) (next int) {
	tok := tokens[i]
	ops, next, ok := matchStatement(tokens, i+1, "*,*")
	if !ok {
		asm.error(tok.Pos, errorf(ErrSyntax, "RANGE expects a start and an end"))
		return skipLine(tokens, i)
	}

	start, ok := asm.resolve(ops[0], 0, 0xffff)
	if !ok {
		return
	}
	end, ok := asm.resolve(ops[1], start, 0x10000)
	if !ok {
		return
	}

	err := asm.space.AddCPURange(uint32(start), uint32(end), asm.Machine)
	if err != nil {
		asm.error(tok.Pos, wrap(ErrMemory, err))
	}

	return
}

// data handles the DB and DW families.
func (asm *Assembler) data(tokens []Token, i int, width int) (next int) {
	tok := tokens[i]
	key := site{file: asm.file, token: i}

	var e *emitter
	if asm.pass == 2 {
		e = asm.emitter(tok.Pos)
	}

	size := 0
	next = i + 1
	for {
		if width == 1 && tokens[next].Kind == KIND_STRING {
			sym, _ := tokens[next].Symbol()
			text := asm.Name(sym)
			size += len(text)
			if e != nil {
				e.emit([]byte(text)...)
			}
			next++
		} else {
			expr, end, err := parseExpr(tokens, next)
			if err != nil {
				asm.error(tokens[next].Pos, err)
				return skipLine(tokens, i)
			}
			size += width
			if e != nil {
				op := Operand{Kind: OPERAND_EXPRESSION, Expr: expr}
				if width == 1 {
					e.emit(e.imm8(op))
				} else {
					e.word(op)
				}
			}
			next = end
		}

		if tokens[next].Kind != KIND_COMMA {
			break
		}
		next++
	}

	if e == nil {
		asm.sizes[key] = size
		asm.cursor += size
	} else {
		asm.finish(e, key)
	}

	return
}

// reserve handles 'DS count[,fill]'. Without a fill, the bytes are skipped.
func (asm *Assembler) reserve(tokens []Token, i int) (next int) {
	tok := tokens[i]
	key := site{file: asm.file, token: i}

	ops, next, ok := matchStatement(tokens, i+1, "*[,*]")
	if !ok {
		asm.error(tok.Pos, errorf(ErrSyntax, "%v expects a count, and an optional fill", tok.Kind))
		return skipLine(tokens, i)
	}

	count, ok := asm.resolve(ops[0], 0, 0x10000)
	if !ok {
		return
	}

	if asm.pass == 1 {
		asm.sizes[key] = int(count)
		asm.cursor += int(count)
		return
	}

	e := asm.emitter(tok.Pos)
	if len(ops) > 1 {
		fill := e.imm8(ops[1])
		for range count {
			e.emit(fill)
		}
	} else {
		asm.cursor += int(count)
	}
	asm.finish(e, key)

	return
}

// include handles 'INCLUDE "file"'. The file is read and tokenized in pass 1,
// and walked again in pass 2.
func (asm *Assembler) include(tokens []Token, i int) (next int) {
	tok := tokens[i]
	key := site{file: asm.file, token: i}

	next, ok := expect(tokens, i+1, `"`)
	if !ok {
		asm.error(tok.Pos, errorf(ErrSyntax, "INCLUDE expects a file name"))
		return skipLine(tokens, i)
	}
	sym, _ := tokens[i+1].Symbol()
	name := asm.Name(sym)

	if asm.depth >= MAX_INCLUDE_DEPTH {
		asm.error(tok.Pos, errorf(ErrIncludeDepth, "'%v' exceeds %d levels", name, MAX_INCLUDE_DEPTH))
		return
	}

	if asm.pass == 1 {
		if asm.FS == nil {
			asm.error(tok.Pos, errorf(ErrInclude, "'%v': no file system", name))
			return
		}
		src, err := fs.ReadFile(asm.FS, name)
		if err != nil {
			asm.error(tok.Pos, wrap(ErrInclude, err))
			return
		}
		asm.includes[key] = asm.load(src, name)
	}

	index, ok := asm.includes[key]
	if !ok {
		return
	}

	asm.depth++
	asm.walk(index)
	asm.depth--

	return
}
