package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/zasm/asm"
	"github.com/ezrec/zasm/memory"
)

var buildCmd = &cobra.Command{
	Use:   "build FILE",
	Short: "assemble a source file to a binary image",
	Long:  `Assembles FILE, and writes the bytes between the lowest and highest written physical addresses.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return build(args[0])
	},
}

var buildOptions struct {
	output  string
	listing string
}

func init() {
	flags := buildCmd.Flags()
	flags.StringVarP(&buildOptions.output, "output", "o", "", "Binary output, default FILE with a .bin extension")
	flags.StringVarP(&buildOptions.listing, "listing", "l", "", "Listing output")
}

// assemble runs the assembler over a source file, with the configured
// machine and defines.
func assemble(path string) (assembler *asm.Assembler, machine *memory.Spectrum, prog *asm.Program, err error) {
	cfg := options.cfg

	machine, err = cfg.Machine()
	if err != nil {
		return
	}

	values, err := cfg.Values(machine)
	if err != nil {
		return
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return
	}

	include := cfg.Include
	if len(include) == 0 {
		include = filepath.Dir(path)
	}

	assembler = &asm.Assembler{
		Verbose:  options.verbose,
		Reporter: &asm.LogReporter{Log: logrus.WithField("cmd", "zasm")},
		FS:       os.DirFS(include),
		Machine:  machine,
		Ranges:   cfg.Ranges,
	}
	assembler.Predefines(values)

	prog, err = assembler.Assemble(src, filepath.Base(path))
	return
}

func build(path string) (err error) {
	assembler, machine, prog, err := assemble(path)
	if err != nil {
		return
	}

	err = assembler.Upload(machine)
	if err != nil {
		return
	}

	output := buildOptions.output
	if len(output) == 0 {
		output = options.cfg.Output
	}
	if len(output) == 0 {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + ".bin"
	}

	var image []byte
	lo, hi, ok := assembler.Space().Extent()
	if ok {
		for addr := lo; addr < hi; addr++ {
			image = append(image, machine.Peek(addr))
		}
	}

	err = os.WriteFile(output, image, 0o644)
	if err != nil {
		return
	}
	logrus.Infof("%v: wrote %d bytes", output, len(image))

	listing := buildOptions.listing
	if len(listing) == 0 {
		listing = options.cfg.Listing
	}
	if len(listing) != 0 {
		text := strings.Join(prog.Listing(), "\n") + "\n"
		err = os.WriteFile(listing, []byte(text), 0o644)
		if err != nil {
			return
		}
	}

	return
}
