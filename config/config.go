// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config loads the build configuration of the assembler.
package config

import (
	"fmt"
	"iter"
	"maps"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	"github.com/ezrec/zasm/internal"
	"github.com/ezrec/zasm/memory"
)

// File is a build configuration, usually read from zasm.toml.
//
//	model = "128k"
//	slots = [0, 7, 4, 2]
//	output = "game.bin"
//	listing = "game.lst"
//	include = "src"
//
//	[[ranges]]
//	start = 0x8000
//	end = 0x10000
//
//	[defines]
//	LIVES = "3"
//	BUFFER = "PAGE_SIZE * 2"
type File struct {
	Model   string            `toml:"model"`   // Machine model, 48k or 128k.
	Slots   []int             `toml:"slots"`   // Page in each CPU slot, 128k only.
	Ranges  []memory.Range    `toml:"ranges"`  // Initial CPU ranges.
	Output  string            `toml:"output"`  // Binary output path.
	Listing string            `toml:"listing"` // Listing output path.
	Include string            `toml:"include"` // Directory of INCLUDE files.
	Defines map[string]string `toml:"defines"` // Predefined constant expressions.
}

// Default returns the configuration used without a file.
func Default() (cfg *File) {
	cfg = &File{
		Model:   memory.MODEL_48K.String(),
		Defines: map[string]string{},
	}
	return
}

// Parse decodes a TOML configuration.
func Parse(text string) (cfg *File, err error) {
	cfg = Default()
	meta, err := toml.Decode(text, cfg)
	if err != nil {
		return
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		err = fmt.Errorf("%w: %v", ErrKeyUnknown, strings.Join(keys, ", "))
		return
	}

	if cfg.Defines == nil {
		cfg.Defines = map[string]string{}
	}

	return
}

// Load reads a TOML configuration file.
func Load(path string) (cfg *File, err error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return
	}

	cfg, err = Parse(string(text))
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	return
}

// Validate checks every setting, reporting all problems at once.
func (cfg *File) Validate() (err error) {
	var errs *multierror.Error

	model, merr := memory.ParseModel(cfg.Model)
	if merr != nil {
		errs = multierror.Append(errs, merr)
	}

	if len(cfg.Slots) > 0 {
		if len(cfg.Slots) != memory.NUM_SLOTS {
			errs = multierror.Append(errs, fmt.Errorf("%w: %v", ErrSlotCount, cfg.Slots))
		}
		for _, page := range cfg.Slots {
			if merr == nil && (page < 0 || page >= model.Pages()) {
				errs = multierror.Append(errs, fmt.Errorf("%w: %d", memory.ErrPageInvalid, page))
			}
		}
	}

	for _, r := range cfg.Ranges {
		if r.End < r.Start || r.End > 0x10000 {
			errs = multierror.Append(errs, fmt.Errorf("%w: $%04x-$%04x", memory.ErrRangeInvalid, r.Start, r.End))
		}
	}

	for name := range cfg.Defines {
		if !_identifier.MatchString(name) {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q", ErrDefineSyntax, name))
		}
	}

	return errs.ErrorOrNil()
}

// Machine creates the target memory described by the configuration.
func (cfg *File) Machine() (mem *memory.Spectrum, err error) {
	model, err := memory.ParseModel(cfg.Model)
	if err != nil {
		return
	}

	mem = memory.NewSpectrum(model)
	if model == memory.MODEL_128K {
		for slot, page := range cfg.Slots {
			err = mem.SetSlot(slot, page)
			if err != nil {
				mem = nil
				return
			}
		}
	}

	return
}

// Define adds or replaces a define expression.
func (cfg *File) Define(name string, expr string) {
	if cfg.Defines == nil {
		cfg.Defines = map[string]string{}
	}
	cfg.Defines[name] = expr
}

// Values evaluates the defines. The machine layout constants are visible to
// the expressions, and are included in the result.
func (cfg *File) Values(machine *memory.Spectrum) (values iter.Seq2[string, int64], err error) {
	var base iter.Seq2[string, int64] = maps.All(map[string]int64{})
	if machine != nil {
		base = machine.Defines()
	}

	solved, err := Solve(cfg.Defines, base)
	if err != nil {
		return
	}

	values = internal.SortedMap(solved)
	return
}
