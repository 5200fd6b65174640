package asm

// walk assembles every statement of a file.
func (asm *Assembler) walk(index int) {
	saved := asm.file
	defer func() { asm.file = saved }()

	asm.file = index
	tokens := asm.files[index].Tokens
	for i := 0; i < len(tokens) && tokens[i].Kind != KIND_EOF; {
		i = asm.statement(tokens, i)
	}
}

// skipLine returns the index of the terminator ending the line of tokens[i].
func skipLine(tokens []Token, i int) int {
	for i < len(tokens) && !tokens[i].Kind.IsTerminator() {
		i++
	}
	return i
}

// endLine moves past a terminator.
func endLine(tokens []Token, i int) int {
	if i < len(tokens) && tokens[i].Kind == KIND_NEWLINE {
		i++
	}
	return i
}

// statement assembles one line, returning the index of the next line.
func (asm *Assembler) statement(tokens []Token, i int) (next int) {
	asm.here = int64(asm.space.CPUAddress(asm.cursor))

	end := skipLine(tokens, i)
	for _, tok := range tokens[i:end] {
		if tok.Kind == KIND_ERROR {
			// Already reported by the lexer.
			return endLine(tokens, end)
		}
	}

	for {
		after, ok := expect(tokens, i, "n:")
		if !ok {
			break
		}
		asm.label(tokens[i])
		i = after
	}

	tok := tokens[i]
	if tok.Kind.IsKeyword() && i+1 < len(tokens) && tokens[i+1].Kind == KIND_COLON {
		asm.error(tok.Pos, errorf(ErrSyntax, "reserved word '%v' used as a label", tok.Kind))
		return endLine(tokens, skipLine(tokens, i))
	}

	switch {
	case tok.Kind.IsTerminator():
		return endLine(tokens, i)
	case tok.Kind == KIND_SYMBOL && i+1 < len(tokens) && tokens[i+1].Kind == KIND_EQU:
		next = asm.constant(tokens, i)
	case tok.Kind == KIND_SYMBOL && i+1 < len(tokens) && tokens[i+1].Kind == KIND_ASSIGN:
		next = asm.variable(tokens, i)
	case tok.Kind.IsDirective():
		next = asm.directive(tokens, i)
	case tok.Kind.IsMnemonic():
		next = asm.instruction(tokens, i)
	default:
		asm.error(tok.Pos, errorf(ErrSyntax, "unexpected '%v'", asm.describe(tok)))
		return endLine(tokens, skipLine(tokens, i))
	}

	if !tokens[next].Kind.IsTerminator() {
		asm.error(tokens[next].Pos, errorf(ErrSyntax, "unexpected '%v' after statement", asm.describe(tokens[next])))
		next = skipLine(tokens, next)
	}

	return endLine(tokens, next)
}

// describe returns the text of a token for diagnostics.
func (asm *Assembler) describe(tok Token) string {
	if sym, ok := tok.Symbol(); ok {
		return asm.interner.Name(sym)
	}
	if value, ok := tok.Int(); ok {
		return f("%d", value)
	}
	return tok.Kind.String()
}

// label binds a label in pass 1, and checks it in pass 2.
func (asm *Assembler) label(tok Token) {
	sym, _ := tok.Symbol()
	addr := asm.here

	if asm.pass == 1 {
		if _, ok := asm.labels[sym]; ok {
			asm.error(tok.Pos, errorf(ErrSymbolDuplicate, "label '%v' already defined", asm.Name(sym)))
			return
		}
		asm.labels[sym] = addr
		return
	}

	bound, ok := asm.labels[sym]
	if !ok || bound != addr {
		asm.internal(tok.Pos, errorf(ErrLayoutIntegrity, "label '%v' moved from $%04x to $%04x", asm.Name(sym), bound, addr))
	}
}

// instruction sizes an instruction in pass 1, and encodes it in pass 2.
func (asm *Assembler) instruction(tokens []Token, i int) (next int) {
	tok := tokens[i]
	key := site{file: asm.file, token: i}

	for _, v := range variants(tok.Kind) {
		ops, end, ok := matchStatement(tokens, i+1, v.shape)
		if !ok {
			continue
		}

		if asm.pass == 1 {
			asm.sizes[key] = v.size
			asm.cursor += v.size
			return end
		}

		e := asm.emitter(tok.Pos)
		v.encode(e, ops)
		asm.finish(e, key)
		return end
	}

	if asm.pass == 1 {
		asm.error(tok.Pos, errorf(ErrInstructionInvalid, "no form of %v matches its operands", tok.Kind))
	} else {
		asm.internal(tok.Pos, errorf(ErrLayoutIntegrity, "%v did not match in pass 2", tok.Kind))
	}

	return skipLine(tokens, i)
}

// emitter starts the encoding of a statement at the cursor.
func (asm *Assembler) emitter(pos Position) *emitter {
	return &emitter{
		asm:   asm,
		pos:   pos,
		start: asm.cursor,
		here:  asm.here,
	}
}

// finish checks the length of an encoded statement against pass 1, and
// adds it to the listing.
func (asm *Assembler) finish(e *emitter, key site) {
	size := asm.cursor - e.start
	predicted, ok := asm.sizes[key]
	if !ok || predicted != size {
		asm.internal(e.pos, errorf(ErrLayoutIntegrity, "statement is %d bytes, %d in pass 1", size, predicted))
	}

	if len(e.codes) == 0 {
		return
	}

	file := asm.files[asm.file]
	asm.program.Statements = append(asm.program.Statements, Statement{
		Source:  file.Name,
		LineNo:  e.pos.Line,
		Address: uint16(e.here),
		Codes:   e.codes,
		Text:    file.Line(e.pos.Line),
	})
}
