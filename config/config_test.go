package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v2"
)

func TestNewOptionsFromContext(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("program", "circuit.json", "")
	set.String("program_url", "", "")
	set.String("witness", "", "")
	set.String("out", "witness.bin", "")
	set.Bool("profile", true, "")
	set.Bool("pedantic", false, "")
	set.Bool("skip_bitsize_checks", false, "")
	set.Bool("verbose", true, "")

	ctx := cli.NewContext(nil, set, nil)
	opts := NewOptionsFromContext(ctx)

	assert.Equal(t, "circuit.json", opts.ProgramPath)
	assert.Equal(t, "witness.bin", opts.OutputWitnessPath)
	assert.True(t, opts.ProfilingActive)
	assert.False(t, opts.PedanticSolving)
	assert.True(t, opts.Verbose)

	assert.True(t, opts.HasProgramFile())
	assert.False(t, opts.HasProgramUrl())
	assert.False(t, opts.HasWitnessFile())
}
