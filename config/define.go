package config

import (
	"fmt"
	"iter"
	"maps"
	"regexp"
	"slices"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var _identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseDefine splits a command line define of the form NAME=expression.
// A define without an expression is 1.
func ParseDefine(text string) (name string, expr string, err error) {
	name, expr, found := strings.Cut(text, "=")
	name = strings.TrimSpace(name)
	expr = strings.TrimSpace(expr)
	if !found {
		expr = "1"
	}

	if !_identifier.MatchString(name) || len(expr) == 0 {
		err = fmt.Errorf("%w: %q", ErrDefineSyntax, text)
		return
	}

	return
}

// Evaluate computes an integer expression, which may use known names.
func Evaluate(expr string, known iter.Seq2[string, int64]) (value int64, err error) {
	thread := starlark.Thread{Name: "define"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	if known != nil {
		for key, v := range known {
			pred[key] = starlark.MakeInt64(v)
		}
	}

	prog := "rc = " + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "define", prog, pred)
	if err != nil {
		return
	}

	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = fmt.Errorf("%w: %v", ErrDefineValue, dict["rc"])
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = fmt.Errorf("%w: %v overflows", ErrDefineValue, st_int)
		return
	}

	return
}

// Solve evaluates a set of defines, which may refer to each other and to the
// base values. Defines are retried until no more can be evaluated.
func Solve(defines map[string]string, base iter.Seq2[string, int64]) (values map[string]int64, err error) {
	values = map[string]int64{}
	if base != nil {
		maps.Insert(values, base)
	}

	pending := slices.Sorted(maps.Keys(defines))
	failed := map[string]error{}
	for progress := true; progress && len(pending) > 0; {
		progress = false
		var next []string
		for _, name := range pending {
			value, err := Evaluate(defines[name], maps.All(values))
			if err != nil {
				failed[name] = err
				next = append(next, name)
				continue
			}
			values[name] = value
			delete(failed, name)
			progress = true
		}
		pending = next
	}

	if len(pending) > 0 {
		name := pending[0]
		err = fmt.Errorf("%w: %w", ErrDefineUnsolved, &ErrDefine{Name: name, Err: failed[name]})
		return
	}

	return
}
