package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("tas", flag.ContinueOnError)

	opts, err := ParseOptions(fs, nil)
	require.NoError(t, err)

	assert.Equal(t, Options{Checkpoint: -2}, opts)
}

func TestParseOptions_Env(t *testing.T) {
	t.Setenv("TAS_OPEN", "runs/tower.csv")
	t.Setenv("TAS_RECORD", "true")
	fs := flag.NewFlagSet("tas", flag.ContinueOnError)

	opts, err := ParseOptions(fs, nil)
	require.NoError(t, err)

	assert.Equal(t, "runs/tower.csv", opts.Open)
	assert.True(t, opts.Record)
}

func TestParseOptions_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("TAS_LEVEL", "hub")
	fs := flag.NewFlagSet("tas", flag.ContinueOnError)

	opts, err := ParseOptions(fs, []string{"-level", "tower", "-verbose"})
	require.NoError(t, err)

	assert.Equal(t, "tower", opts.Level)
	assert.True(t, opts.Verbose)
}

func TestParseOptions_BadEnv(t *testing.T) {
	t.Setenv("TAS_VERBOSE", "maybe")
	fs := flag.NewFlagSet("tas", flag.ContinueOnError)

	_, err := ParseOptions(fs, nil)
	assert.ErrorContains(t, err, "parse env")
}

func TestParseOptions_Checkpoint(t *testing.T) {
	t.Setenv("TAS_CHECKPOINT", "1")

	opts, err := ParseOptions(flag.NewFlagSet("tas", flag.ContinueOnError), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, opts.Checkpoint)

	opts, err = ParseOptions(flag.NewFlagSet("tas", flag.ContinueOnError), []string{"-checkpoint", "-1"})
	require.NoError(t, err)
	assert.Equal(t, -1, opts.Checkpoint)

	_, err = ParseOptions(flag.NewFlagSet("tas", flag.ContinueOnError), []string{"-checkpoint", "-3"})
	assert.ErrorContains(t, err, "checkpoint must be")
}
