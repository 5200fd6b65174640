package asm

// Scope resolves the names used in an expression.
type Scope interface {
	// Lookup returns the value of a symbol.
	Lookup(sym Symbol) (value int64, ok bool)
	// Name returns the text of a symbol.
	Name(sym Symbol) string
	// Here returns the value of '$', the current address.
	Here() int64
}

type valueType int

const (
	VALUE_INTEGER = valueType(iota)
	VALUE_CHAR
	VALUE_SYMBOL
	VALUE_DOLLAR
	VALUE_UNARY_OP
	VALUE_BINARY_OP
)

// exprValue is an element of an expression, in reverse polish order.
type exprValue struct {
	vtype valueType
	value int64 // Integer, symbol or operator kind.
}

// Expr is an expression built from tokens, evaluated on demand.
type Expr struct {
	Pos    Position
	values []exprValue
}

// Constant makes an expression of a single integer.
func Constant(value int64) Expr {
	return Expr{values: []exprValue{{VALUE_INTEGER, value}}}
}

// Empty is true for an expression with nothing in it.
func (expr Expr) Empty() bool {
	return len(expr.values) == 0
}

// Symbols returns the symbols referenced by the expression.
func (expr Expr) Symbols() (syms []Symbol) {
	for _, v := range expr.values {
		if v.vtype == VALUE_SYMBOL {
			syms = append(syms, Symbol(v.value))
		}
	}
	return
}

// Binary operator precedence. Higher binds tighter.
var _precedence = map[Kind]int{
	KIND_OR:          1,
	KIND_XOR:         2,
	KIND_AND:         3,
	KIND_SHIFT_LEFT:  4,
	KIND_SHIFT_RIGHT: 4,
	KIND_PLUS:        5,
	KIND_MINUS:       5,
	KIND_MULTIPLY:    6,
	KIND_DIVIDE:      6,
	KIND_MOD:         6,
}

// exprParser builds an expression by precedence climbing.
type exprParser struct {
	tokens []Token
	i      int
	expr   Expr
}

// parseExpr builds an expression starting at tokens[i].
// The expression ends at the first token that cannot continue it.
func parseExpr(tokens []Token, i int) (expr Expr, next int, err error) {
	if i >= len(tokens) {
		err = errorf(ErrExpression, "expression missing")
		return
	}

	ep := &exprParser{tokens: tokens, i: i}
	ep.expr.Pos = tokens[i].Pos

	err = ep.binary(1)
	if err != nil {
		return
	}

	return ep.expr, ep.i, nil
}

func (ep *exprParser) peek() Kind {
	if ep.i >= len(ep.tokens) {
		return KIND_EOF
	}
	return ep.tokens[ep.i].Kind
}

func (ep *exprParser) add(vtype valueType, value int64) {
	ep.expr.values = append(ep.expr.values, exprValue{vtype, value})
}

func (ep *exprParser) binary(level int) (err error) {
	err = ep.unary()
	if err != nil {
		return
	}

	for {
		op := ep.peek()
		prec, ok := _precedence[op]
		if !ok || prec < level {
			return
		}
		ep.i++
		err = ep.binary(prec + 1)
		if err != nil {
			return
		}
		ep.add(VALUE_BINARY_OP, int64(op))
	}
}

func (ep *exprParser) unary() (err error) {
	switch op := ep.peek(); op {
	case KIND_MINUS, KIND_TILDE, KIND_PLUS:
		ep.i++
		err = ep.unary()
		if err != nil {
			return
		}
		if op != KIND_PLUS {
			ep.add(VALUE_UNARY_OP, int64(op))
		}
		return
	}

	return ep.primary()
}

func (ep *exprParser) primary() (err error) {
	if ep.i >= len(ep.tokens) {
		err = errorf(ErrExpression, "operand missing")
		return
	}

	tok := ep.tokens[ep.i]
	switch tok.Kind {
	case KIND_INTEGER:
		ep.add(VALUE_INTEGER, tok.payload)
	case KIND_CHAR:
		ep.add(VALUE_CHAR, tok.payload)
	case KIND_SYMBOL:
		ep.add(VALUE_SYMBOL, tok.payload)
	case KIND_DOLLAR:
		ep.add(VALUE_DOLLAR, 0)
	case KIND_OPEN_PAREN:
		ep.i++
		err = ep.binary(1)
		if err != nil {
			return
		}
		if ep.peek() != KIND_CLOSE_PAREN {
			err = errorf(ErrExpression, "')' expected")
			return
		}
	default:
		err = errorf(ErrExpression, "unexpected '%v'", tok.Kind)
		return
	}

	ep.i++
	return
}

// Eval evaluates the expression.
func (expr Expr) Eval(scope Scope) (value int64, err error) {
	if len(expr.values) == 0 {
		err = errorf(ErrExpression, "expression missing")
		return
	}

	stack := make([]int64, 0, len(expr.values))
	pop := func() (v int64) {
		v = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return
	}

	for _, v := range expr.values {
		switch v.vtype {
		case VALUE_INTEGER, VALUE_CHAR:
			stack = append(stack, v.value)
		case VALUE_DOLLAR:
			stack = append(stack, scope.Here())
		case VALUE_SYMBOL:
			sym := Symbol(v.value)
			resolved, ok := scope.Lookup(sym)
			if !ok {
				err = ErrSymbolUndefined(scope.Name(sym))
				return
			}
			stack = append(stack, resolved)
		case VALUE_UNARY_OP:
			if len(stack) < 1 {
				err = errorf(ErrExpression, "operand missing")
				return
			}
			a := pop()
			switch Kind(v.value) {
			case KIND_MINUS:
				a = -a
			case KIND_TILDE:
				a = ^a
			}
			stack = append(stack, a)
		case VALUE_BINARY_OP:
			if len(stack) < 2 {
				err = errorf(ErrExpression, "operand missing")
				return
			}
			b := pop()
			a := pop()
			a, err = binaryOp(Kind(v.value), a, b)
			if err != nil {
				return
			}
			stack = append(stack, a)
		}
	}

	if len(stack) != 1 {
		err = errorf(ErrExpression, "operator missing")
		return
	}

	value = stack[0]
	return
}

func binaryOp(op Kind, a, b int64) (value int64, err error) {
	switch op {
	case KIND_OR:
		value = a | b
	case KIND_XOR:
		value = a ^ b
	case KIND_AND:
		value = a & b
	case KIND_SHIFT_LEFT:
		if b >= 0 && b < 64 {
			value = a << b
		}
	case KIND_SHIFT_RIGHT:
		if b >= 0 && b < 64 {
			value = a >> b
		} else if a < 0 {
			value = -1
		}
	case KIND_PLUS:
		value = a + b
	case KIND_MINUS:
		value = a - b
	case KIND_MULTIPLY:
		value = a * b
	case KIND_DIVIDE:
		if b == 0 {
			err = ErrDivideByZero
			return
		}
		value = a / b
	case KIND_MOD:
		if b == 0 {
			err = ErrDivideByZero
			return
		}
		value = a % b
	default:
		err = errorf(ErrExpression, "unknown operator '%v'", op)
	}

	return
}
