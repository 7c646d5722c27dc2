package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/fullrom/internal/ctxlog"
	"github.com/specialistvlad/fullrom/internal/image"
	"github.com/specialistvlad/fullrom/internal/naming"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	scheme  naming.Scheme
	builder *image.Builder
}

// NewApp is the constructor for the main application. Reports go to outW and
// structured logs to logW. The naming scheme is resolved here so an unknown
// scheme fails before any file is touched.
func NewApp(outW, logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		builder: image.NewBuilder(outW),
	}

	if cfg.Command == CommandConvert {
		table := naming.Builtin()
		if cfg.SchemesFile != "" {
			var err error
			table, err = naming.LoadFile(ctx, table, cfg.SchemesFile)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}
		}
		scheme, err := table.Lookup(cfg.Scheme)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		a.scheme = scheme
		logger.Debug("Naming scheme selected.", "scheme", scheme.Name, "pattern", scheme.Pattern)
	}

	return a, nil
}
