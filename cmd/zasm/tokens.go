package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/zasm/asm"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens FILE",
	Short: "print the token stream of a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return tokens(cmd, args[0])
	},
}

func tokens(cmd *cobra.Command, path string) (err error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var count int
	sink := func(name string, pos asm.Position, err error) {
		count++
		logrus.Errorf("%v:%v: %v", name, pos, err)
	}

	in := &asm.Interner{}
	file := asm.Tokenize(src, filepath.Base(path), in, sink)

	out := cmd.OutOrStdout()
	for _, tok := range file.Tokens {
		text := ""
		if sym, ok := tok.Symbol(); ok {
			text = in.Name(sym)
		} else if value, ok := tok.Int(); ok {
			text = fmt.Sprintf("%d", value)
		}
		fmt.Fprintf(out, "%v\t%v\t%v\n", tok.Pos, tok.Kind, text)
	}

	if count > 0 {
		err = fmt.Errorf("%v: %d lexical errors", path, count)
	}
	return
}
