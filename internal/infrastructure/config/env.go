package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Options holds command line configuration. Environment variables set the
// defaults and flags override them.
type Options struct {
	ConfigDir string `env:"TAS_CONFIG_DIR"`
	Open      string `env:"TAS_OPEN"`
	Level     string `env:"TAS_LEVEL"`
	Record    bool   `env:"TAS_RECORD"`
	// Checkpoint is where StartRecordingFromCheckpoint, and -record when it
	// is not -2, start: -1 is the level start and -2 the last reached
	// checkpoint
	Checkpoint int  `env:"TAS_CHECKPOINT" envDefault:"-2"`
	Verbose    bool `env:"TAS_VERBOSE"`
}

// ParseOptions parses environment variables and then flags into Options.
func ParseOptions(fs *flag.FlagSet, args []string) (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&opts.ConfigDir, "config", opts.ConfigDir, "config directory (default: embedded configs)")
	fs.StringVar(&opts.Open, "open", opts.Open, "ledger file to open at startup")
	fs.StringVar(&opts.Level, "level", opts.Level, "level to load at startup")
	fs.BoolVar(&opts.Record, "record", opts.Record, "start recording once the level is loaded")
	fs.IntVar(&opts.Checkpoint, "checkpoint", opts.Checkpoint, "checkpoint to record from (-1 level start, -2 last reached)")
	fs.BoolVar(&opts.Verbose, "verbose", opts.Verbose, "enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if opts.Checkpoint < -2 {
		return Options{}, fmt.Errorf("checkpoint must be -2, -1 or an index, got %d", opts.Checkpoint)
	}
	return opts, nil
}
