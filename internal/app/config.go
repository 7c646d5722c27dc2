package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/fullrom/internal/layout"
)

// Commands understood by the app.
const (
	CommandCreate  = "create"
	CommandConvert = "convert"
)

// ErrInvalidConfig marks configuration problems detected before any work starts.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string

	// create
	Output string
	Crom   string
	Drom   string
	Grom   string

	// RomPath is the cartridge directory. For convert it is also the input
	// directory scanned for dumps.
	RomPath       string
	SystemRomPath string

	// convert
	OutputDir   string // defaults to RomPath
	Scheme      string
	SchemesFile string // optional HCL file with extra naming schemes
	ListingPath string
	Simulate    bool
	JobFile     string // optional HCL file with convert options

	Features layout.Features
	Checksum bool
	Verbose  bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandCreate:
		if cfg.Output == "" {
			return nil, fmt.Errorf("%w: create requires an output file", ErrInvalidConfig)
		}
	case CommandConvert:
		if cfg.Scheme == "" {
			cfg.Scheme = "Standard"
		}
		if cfg.OutputDir == "" {
			cfg.OutputDir = cfg.RomPath
		}
	default:
		return nil, fmt.Errorf("%w: unknown command %q", ErrInvalidConfig, cfg.Command)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "auto"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	return &cfg, nil
}
