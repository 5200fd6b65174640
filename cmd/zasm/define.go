package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/ezrec/zasm/config"
)

type define struct {
	name string
	expr string
}

// defineFlag collects repeated -D NAME=expression options.
type defineFlag []define

var _ pflag.Value = (*defineFlag)(nil)

func (df *defineFlag) String() string {
	var list []string
	for _, def := range *df {
		list = append(list, def.name+"="+def.expr)
	}
	return "[" + strings.Join(list, ",") + "]"
}

func (df *defineFlag) Set(text string) (err error) {
	name, expr, err := config.ParseDefine(text)
	if err != nil {
		return
	}
	*df = append(*df, define{name: name, expr: expr})
	return
}

func (df *defineFlag) Type() string {
	return "define"
}
