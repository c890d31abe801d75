package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/leopardracer/noir/acvm"
	"github.com/leopardracer/noir/blackboxstd"
	"github.com/leopardracer/noir/config"
	"github.com/leopardracer/noir/fieldimpl"
	"github.com/leopardracer/noir/witnessio"
)

func main() {
	app := &cli.App{
		Name:  "acvmrun",
		Usage: "Solves a partial witness generator program to completion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "program",
				Usage:    "Path to the program JSON file",
				Required: false,
				Value:    "",
			},
			&cli.StringFlag{
				Name:     "program_url",
				Usage:    "Optional publicly downloadable URL to the program file",
				Required: false,
				Value:    "",
			},
			&cli.StringFlag{
				Name:     "out",
				Usage:    "Optional path to write the solved witness map to",
				Required: false,
				Value:    "",
			},
			&cli.BoolFlag{
				Name:     "profile",
				Usage:    "Set acvm.Config.ProfilingActive (no samples are recorded or printed)",
				Required: false,
				Value:    false,
			},
			&cli.BoolFlag{
				Name:     "pedantic",
				Usage:    "Reject predicates that evaluate to neither 0 nor 1",
				Required: false,
				Value:    false,
			},
			&cli.BoolFlag{
				Name:     "skip_bitsize_checks",
				Usage:    "Set acvm.Config.SkipBitsizeChecks (bit-width validation still runs)",
				Required: false,
				Value:    false,
			},
			&cli.BoolFlag{
				Name:     "verbose",
				Usage:    "Log opcode dispatch, suspension, and failure events",
				Required: false,
				Value:    false,
			},
		},
		Action: func(c *cli.Context) error {
			opts := config.NewOptionsFromContext(c)

			logger := zerolog.Nop()
			if opts.Verbose {
				logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			}

			var programFile []byte
			var err error
			if opts.HasProgramFile() {
				programFile, err = os.ReadFile(opts.ProgramPath)
				if err != nil {
					return fmt.Errorf("failed to read program file: %w", err)
				}
			} else if opts.HasProgramUrl() {
				programFile, err = downloadFromUrl(opts.ProgramUrl)
				if err != nil {
					return fmt.Errorf("failed to get program from URL: %w", err)
				}
			} else {
				return fmt.Errorf("either program file path or program_url must be provided")
			}

			opcodes, witness, err := witnessio.ParseProgram(programFile)
			if err != nil {
				return fmt.Errorf("failed to parse program: %w", err)
			}

			vm := acvm.NewACVM(
				opcodes,
				witness,
				blackboxstd.NewBackend(),
				nil,
				nil,
				acvm.Config{
					ProfilingActive:   opts.ProfilingActive,
					PedanticSolving:   opts.PedanticSolving,
					SkipBitsizeChecks: opts.SkipBitsizeChecks,
					Logger:            logger,
				},
			)

			status := vm.Solve()
			switch status.Kind {
			case acvm.StatusSolved:
				return writeWitness(opts.OutputWitnessPath, vm.WitnessMap())
			case acvm.StatusFailure:
				return fmt.Errorf("acvm failed: %s", status.Err.Error())
			default:
				return fmt.Errorf("acvm suspended unexpectedly (Call/ForeignCall suspensions are not supported by this one-shot runner)")
			}
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func downloadFromUrl(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download from %s: %w", url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("Warning: failed to close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error %d when downloading from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

func writeWitness(path string, w *acvm.WitnessMap[fieldimpl.BN254]) error {
	enc, err := witnessio.Encode(w)
	if err != nil {
		return fmt.Errorf("failed to encode witness: %w", err)
	}
	if path == "" {
		fmt.Println(formatWitnessJSON(w))
		return nil
	}
	return os.WriteFile(path, enc, 0o644)
}

func formatWitnessJSON(w *acvm.WitnessMap[fieldimpl.BN254]) string {
	out := make(map[string]string, w.Len())
	for id, v := range w.Raw() {
		out[fmt.Sprint(uint32(id))] = v.String()
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	return string(b)
}
