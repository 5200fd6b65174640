package config

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefine(t *testing.T) {
	table := [](struct {
		text string
		name string
		expr string
		ok   bool
	}){
		{"SIZE=4*1024", "SIZE", "4*1024", true},
		{" DEBUG ", "DEBUG", "1", true},
		{"X = 0x10", "X", "0x10", true},
		{"=5", "", "", false},
		{"1X=5", "", "", false},
		{"X=", "", "", false},
	}

	for _, entry := range table {
		t.Run(entry.text, func(t *testing.T) {
			assert := assert.New(t)

			name, expr, err := ParseDefine(entry.text)
			if !entry.ok {
				assert.ErrorIs(err, ErrDefineSyntax)
				return
			}
			assert.NoError(err)
			assert.Equal(entry.name, name)
			assert.Equal(entry.expr, expr)
		})
	}
}

func TestEvaluate(t *testing.T) {
	table := [](struct {
		expr  string
		value int64
	}){
		{"4*1024", 4096},
		{"0x10 | 1", 17},
		{"BASE + 2", 0x8002},
		{"(1 << 15) // 2", 0x4000},
		{"-1", -1},
	}

	known := maps.All(map[string]int64{"BASE": 0x8000})

	for _, entry := range table {
		t.Run(entry.expr, func(t *testing.T) {
			assert := assert.New(t)

			value, err := Evaluate(entry.expr, known)
			assert.NoError(err)
			assert.Equal(entry.value, value)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := Evaluate("\"text\"", nil)
	assert.ErrorIs(err, ErrDefineValue)

	_, err = Evaluate("1 << 70", nil)
	assert.ErrorIs(err, ErrDefineValue)

	_, err = Evaluate("MISSING + 1", nil)
	assert.Error(err)

	_, err = Evaluate("1 +", nil)
	assert.Error(err)
}

func TestSolve(t *testing.T) {
	assert := assert.New(t)

	values, err := Solve(map[string]string{
		"C": "B * 2",
		"B": "A + 1",
		"A": "BASE",
	}, maps.All(map[string]int64{"BASE": 10}))
	assert.NoError(err)
	assert.Equal(map[string]int64{"BASE": 10, "A": 10, "B": 11, "C": 22}, values)

	_, err = Solve(map[string]string{
		"LOOP": "LOOP + 1",
	}, nil)
	assert.ErrorIs(err, ErrDefineUnsolved)
	var derr *ErrDefine
	assert.ErrorAs(err, &derr)
}
