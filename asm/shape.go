package asm

// Shape specification:
//
//	*   expression
//	%   index register with optional displacement: IX, IX+d, IY-d
//	[   start optional
//	]   end optional
//	{   start one-of (each alternative is a single element)
//	}   end one-of
//	,   comma
//	(   open parentheses
//	)   close parentheses
//	:   colon
//	=   assignment
//	n   symbol name
//	"   string
//	'   AF'
//	f   NZ,Z,NC,C
//	F   NZ,Z,NC,C,PO,PE,P,M
//
//	Specific 8-bit registers: abcdehlir
//	Specific 16-bit registers: ABDHSXY       (AF, BC, DE, HL, SP, IX, IY)
//
// An element in parentheses matches the indirect form of its operand, so
// "(H)" is (HL), "(*)" is an addressed expression and "(%)" is (IX+d).
//
// Matching never backtracks: optional groups and one-of groups look ahead,
// and a failed match consumes no tokens.

var _shape_kinds = map[byte][]Kind{
	'a':  {KIND_A},
	'b':  {KIND_B},
	'c':  {KIND_C},
	'd':  {KIND_D},
	'e':  {KIND_E},
	'h':  {KIND_H},
	'l':  {KIND_L},
	'i':  {KIND_I},
	'r':  {KIND_R},
	'A':  {KIND_AF},
	'B':  {KIND_BC},
	'D':  {KIND_DE},
	'H':  {KIND_HL},
	'S':  {KIND_SP},
	'X':  {KIND_IX},
	'Y':  {KIND_IY},
	'\'': {KIND_AF_ALT},
	'f':  {KIND_NZ, KIND_Z, KIND_NC, KIND_C},
	'F':  {KIND_NZ, KIND_Z, KIND_NC, KIND_C, KIND_PO, KIND_PE, KIND_P, KIND_M},
}

// Literal punctuation, that produces no operand.
var _shape_literal = map[byte]Kind{
	',': KIND_COMMA,
	':': KIND_COLON,
	'=': KIND_ASSIGN,
}

type shapeMatcher struct {
	tokens []Token
	shape  string
	s      int // Position in the shape.
	ops    []Operand
}

// match matches a shape against the tokens starting at i.
// On success, returns the operands and the index of the first unmatched token.
func match(tokens []Token, i int, shape string) (ops []Operand, next int, ok bool) {
	m := &shapeMatcher{tokens: tokens, shape: shape}

	next, ok = m.sequence(i, 0)
	if !ok {
		return nil, i, false
	}

	return m.ops, next, true
}

// expect is a pure lookahead of a shape, returning the end of the match.
func expect(tokens []Token, i int, shape string) (next int, ok bool) {
	_, next, ok = match(tokens, i, shape)
	return
}

// matchStatement matches a shape that must end the statement.
func matchStatement(tokens []Token, i int, shape string) (ops []Operand, next int, ok bool) {
	ops, next, ok = match(tokens, i, shape)
	if !ok || next >= len(tokens) || !tokens[next].Kind.IsTerminator() {
		return nil, i, false
	}
	return
}

func (m *shapeMatcher) kind(i int) Kind {
	if i >= len(m.tokens) {
		return KIND_EOF
	}
	return m.tokens[i].Kind
}

// sequence matches elements until the end of the shape, or the end byte.
func (m *shapeMatcher) sequence(i int, end byte) (next int, ok bool) {
	for m.s < len(m.shape) && m.shape[m.s] != end {
		i, ok = m.element(i)
		if !ok {
			return
		}
	}

	return i, true
}

// skip moves past the group ending in end.
func (m *shapeMatcher) skip(end byte) {
	for m.s < len(m.shape) && m.shape[m.s] != end {
		m.s++
	}
	m.s++
}

func (m *shapeMatcher) element(i int) (next int, ok bool) {
	ch := m.shape[m.s]
	m.s++

	switch ch {
	case '[':
		saved := len(m.ops)
		start := m.s
		next, ok = m.sequence(i, ']')
		if !ok {
			m.ops = m.ops[:saved]
			m.s = start
			next = i
		}
		m.skip(']')
		return next, true
	case '{':
		start := m.s
		for m.s < len(m.shape) && m.shape[m.s] != '}' {
			alt := m.s
			next, ok = m.element(i)
			if ok {
				m.s = start
				m.skip('}')
				return
			}
			m.s = alt + 1
		}
		m.s = start
		m.skip('}')
		return i, false
	case '(':
		if m.kind(i) != KIND_OPEN_PAREN {
			return i, false
		}
		saved := len(m.ops)
		next, ok = m.element(i + 1)
		if ok {
			ok = len(m.ops) == saved+1 && m.s < len(m.shape) && m.shape[m.s] == ')' && m.kind(next) == KIND_CLOSE_PAREN
		}
		var indirect OperandKind
		if ok {
			indirect, ok = _indirect[m.ops[saved].Kind]
		}
		if !ok {
			m.ops = m.ops[:saved]
			return i, false
		}
		m.s++
		m.ops[saved].Kind = indirect
		return next + 1, true
	case ')':
		if m.kind(i) != KIND_CLOSE_PAREN {
			return i, false
		}
		return i + 1, true
	case '*':
		if m.kind(i).IsTerminator() {
			return i, false
		}
		expr, next, err := parseExpr(m.tokens, i)
		if err != nil {
			return i, false
		}
		m.ops = append(m.ops, Operand{Kind: OPERAND_EXPRESSION, Expr: expr})
		return next, true
	case '%':
		var kind OperandKind
		switch m.kind(i) {
		case KIND_IX:
			kind = OPERAND_IX_EXPRESSION
		case KIND_IY:
			kind = OPERAND_IY_EXPRESSION
		default:
			return i, false
		}
		next = i + 1
		expr := Constant(0)
		expr.Pos = m.tokens[i].Pos
		switch m.kind(next) {
		case KIND_PLUS, KIND_MINUS:
			var err error
			expr, next, err = parseExpr(m.tokens, next)
			if err != nil {
				return i, false
			}
		}
		m.ops = append(m.ops, Operand{Kind: kind, Expr: expr})
		return next, true
	case 'n':
		if m.kind(i) != KIND_SYMBOL {
			return i, false
		}
		return i + 1, true
	case '"':
		if m.kind(i) != KIND_STRING {
			return i, false
		}
		return i + 1, true
	}

	if kind, ok := _shape_literal[ch]; ok {
		if m.kind(i) != kind {
			return i, false
		}
		return i + 1, true
	}

	kinds, ok := _shape_kinds[ch]
	if !ok {
		panic("asm: invalid shape element '" + string(ch) + "' in " + m.shape)
	}
	for _, kind := range kinds {
		if m.kind(i) == kind {
			m.ops = append(m.ops, Operand{Kind: _operand_of_kind[kind]})
			return i + 1, true
		}
	}

	return i, false
}
