package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/fullrom/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const usage = `
fullrom - Build full TI-99/4A ROM images from C, D and G cartridge dumps.

Usage:
  fullrom create [options] OUTPUT_FILE
  fullrom convert [options]

Commands:
  create    Create one image from the given C, D and G roms and the system roms.
  convert   Create an image for every cartridge found in --rom-path.

Run 'fullrom <command> -h' for the options of a command.
`

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	if len(args) == 0 {
		fmt.Fprint(output, usage)
		return nil, true, nil
	}

	command := args[0]
	switch command {
	case "-h", "-help", "--help", "help":
		fmt.Fprint(output, usage)
		return nil, true, nil
	case app.CommandCreate, app.CommandConvert:
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q (expected create or convert)", command)}
	}

	var cfg app.Config
	cfg.Command = command

	flagSet := flag.NewFlagSet("fullrom "+command, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		if command == app.CommandCreate {
			fmt.Fprint(output, "\nUsage:\n  fullrom create [options] OUTPUT_FILE\n\nOptions:\n")
		} else {
			fmt.Fprint(output, "\nUsage:\n  fullrom convert [options]\n\nOptions:\n")
		}
		flagSet.PrintDefaults()
	}

	systemHelp := "The path to the system roms. Takes precedence over --rom-path (default .)."
	if command == app.CommandCreate {
		flagSet.StringVar(&cfg.Crom, "crom", "", "The C rom file to use.")
		flagSet.StringVar(&cfg.Drom, "drom", "", "The D rom file to use.")
		flagSet.StringVar(&cfg.Grom, "grom", "", "The G rom file to use.")
		flagSet.StringVar(&cfg.RomPath, "rom-path", "", "The path to all roms - C, D, G and system roms (default .).")
	} else {
		flagSet.StringVar(&cfg.RomPath, "rom-path", "", "The directory containing the C, D and G roms (default .).")
		flagSet.StringVar(&cfg.OutputDir, "fullrom-path", "", "The directory where the full rom files are created (default --rom-path).")
		flagSet.StringVar(&cfg.Scheme, "scheme", "Standard", "Naming scheme of the input files: None, Standard, V9T9, Classic99 or one from --schemes-file.")
		flagSet.StringVar(&cfg.SchemesFile, "schemes-file", "", "HCL file with additional naming schemes.")
		flagSet.StringVar(&cfg.ListingPath, "listing", "", "Write a checksum listing of the created images (.csv or .txt).")
		flagSet.BoolVar(&cfg.Simulate, "simulate", false, "Show which images would be created without writing them.")
		flagSet.BoolVar(&cfg.Simulate, "n", false, "Simulate (shorthand).")
		flagSet.StringVar(&cfg.JobFile, "job", "", "HCL job file with convert options. Options given on the command line take precedence.")
	}
	flagSet.StringVar(&cfg.SystemRomPath, "systemrom-path", "", systemHelp)

	flagSet.BoolVar(&cfg.Checksum, "check", false, "Checksum files - generate MD5 sums for input and output files (implies --verbose).")
	flagSet.BoolVar(&cfg.Checksum, "c", false, "Checksum files (shorthand).")
	flagSet.BoolVar(&cfg.Features.DiskIO, "disk-io", false, "Support disk I/O.")
	flagSet.BoolVar(&cfg.Features.DiskIO, "d", false, "Support disk I/O (shorthand).")
	flagSet.BoolVar(&cfg.Features.Speech, "speech", false, "Support the speech synthesizer.")
	flagSet.BoolVar(&cfg.Features.Speech, "s", false, "Support the speech synthesizer (shorthand).")
	flagSet.BoolVar(&cfg.Verbose, "verbose", false, "Display respective actions and results.")
	flagSet.BoolVar(&cfg.Verbose, "v", false, "Verbose (shorthand).")

	logFormatFlag := flagSet.String("log-format", "auto", "Log output format. Options: 'auto', 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if command == app.CommandCreate {
		if flagSet.NArg() != 1 {
			flagSet.Usage()
			return nil, false, &ExitError{Code: 2, Message: "create expects exactly one OUTPUT_FILE argument"}
		}
		cfg.Output = flagSet.Arg(0)
	} else if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("convert takes no arguments, got %q", flagSet.Args())}
	}

	if cfg.JobFile != "" {
		job, err := app.LoadJob(cfg.JobFile)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		job.Apply(&cfg, explicitFlags(flagSet))
		slog.Debug("Job file applied.", "file", cfg.JobFile)
	}

	cfg.LogFormat = strings.ToLower(*logFormatFlag)
	switch cfg.LogFormat {
	case "auto", "text", "json":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'auto', 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(*logLevelFlag)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// shorthands maps short flag names to the long name they alias.
var shorthands = map[string]string{
	"n": "simulate",
	"c": "check",
	"d": "disk-io",
	"s": "speech",
	"v": "verbose",
}

// explicitFlags reports which long flag names were set on the command line.
func explicitFlags(fs *flag.FlagSet) func(string) bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := shorthands[name]; ok {
			name = long
		}
		set[name] = true
	})
	return func(name string) bool { return set[name] }
}
