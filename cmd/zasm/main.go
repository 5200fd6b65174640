// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command zasm assembles Z80 source for the ZX Spectrum.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/zasm/config"
)

var rootCmd = &cobra.Command{
	Use:               "zasm",
	Short:             "zasm - two pass Z80 assembler",
	PersistentPreRunE: before,
	SilenceUsage:      true,
}

// Command line options, overlaid on the configuration file.
type cliOptions struct {
	logLevel string
	config   string
	model    string
	verbose  bool
	defines  defineFlag

	cfg *config.File
}

var options = cliOptions{
	logLevel: "warn",
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.logLevel, "log-level", options.logLevel, "Log messages including and over the specified level: debug, info, warn, error, fatal, panic")
	flags.StringVarP(&options.config, "config", "c", "", "TOML build configuration")
	flags.StringVarP(&options.model, "model", "m", "", "Machine model: 48k or 128k")
	flags.BoolVarP(&options.verbose, "verbose", "v", false, "Dump tokens and symbols to the debug log")
	flags.VarP(&options.defines, "define", "D", "Predefine a constant, NAME=expression")

	rootCmd.AddCommand(buildCmd, tokensCmd, symbolsCmd)
}

func before(cmd *cobra.Command, args []string) (err error) {
	if options.logLevel == "" {
		options.logLevel = "warn"
	}

	level, err := logrus.ParseLevel(options.logLevel)
	if err != nil {
		return
	}
	logrus.SetLevel(level)
	if options.verbose && level < logrus.DebugLevel {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Default()
	if len(options.config) != 0 {
		cfg, err = config.Load(options.config)
		if err != nil {
			return
		}
	}

	if len(options.model) != 0 {
		cfg.Model = options.model
	}
	for _, def := range options.defines {
		cfg.Define(def.name, def.expr)
	}

	err = cfg.Validate()
	if err != nil {
		return
	}

	options.cfg = cfg
	return
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
