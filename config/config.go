package config

import (
	"github.com/urfave/cli/v2"
)

// Options contains the configuration flags spec.md §6 allows a caller to
// pass to acvm.NewACVM, plus the file-location flags the driver binaries
// need to find a program/witness to run.
type Options struct {
	// Program/witness file options
	ProgramPath string
	ProgramUrl  string
	WitnessPath string

	// Output options
	OutputWitnessPath string

	// Solving behavior flags (spec.md §6)
	ProfilingActive   bool
	PedanticSolving   bool
	SkipBitsizeChecks bool

	// Verbose enables opcode-level debug/warn logging during solving.
	Verbose bool
}

// NewOptionsFromContext builds Options from CLI flags.
func NewOptionsFromContext(c *cli.Context) *Options {
	return &Options{
		ProgramPath:       c.String("program"),
		ProgramUrl:        c.String("program_url"),
		WitnessPath:       c.String("witness"),
		OutputWitnessPath: c.String("out"),
		ProfilingActive:   c.Bool("profile"),
		PedanticSolving:   c.Bool("pedantic"),
		SkipBitsizeChecks: c.Bool("skip_bitsize_checks"),
		Verbose:           c.Bool("verbose"),
	}
}

// HasProgramFile reports whether a local program path was given.
func (o *Options) HasProgramFile() bool {
	return o.ProgramPath != ""
}

// HasProgramUrl reports whether a remote program URL was given.
func (o *Options) HasProgramUrl() bool {
	return o.ProgramUrl != ""
}

// HasWitnessFile reports whether an initial witness file was given.
func (o *Options) HasWitnessFile() bool {
	return o.WitnessPath != ""
}
