package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/fullrom/internal/batch"
	"github.com/specialistvlad/fullrom/internal/ctxlog"
	"github.com/specialistvlad/fullrom/internal/image"
	"github.com/specialistvlad/fullrom/internal/layout"
	"github.com/specialistvlad/fullrom/internal/listing"
)

// Run executes the configured command and returns its process status:
// 0 on success, 66 when inputs were missing.
func (a *App) Run(ctx context.Context) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	switch a.config.Command {
	case CommandCreate:
		return a.create(ctx)
	case CommandConvert:
		return a.convert(ctx)
	}
	return 0, fmt.Errorf("%w: unknown command %q", ErrInvalidConfig, a.config.Command)
}

func (a *App) create(ctx context.Context) (int, error) {
	cfg := a.config
	res, err := a.builder.Build(ctx, image.Request{
		Output: cfg.Output,
		Cartridges: map[layout.Role]string{
			layout.CartridgeC: cfg.Crom,
			layout.CartridgeD: cfg.Drom,
			layout.CartridgeG: cfg.Grom,
		},
		RomPath:       cfg.RomPath,
		SystemRomPath: cfg.SystemRomPath,
		Features:      cfg.Features,
		Checksum:      cfg.Checksum,
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create image: %w", err)
	}
	return int(res.Status), nil
}

func (a *App) convert(ctx context.Context) (int, error) {
	cfg := a.config
	runner := batch.NewRunner(a.outW, a.builder)
	summary, err := runner.Run(ctx, batch.Options{
		InputDir:      cfg.RomPath,
		OutputDir:     cfg.OutputDir,
		Scheme:        a.scheme,
		SystemRomPath: cfg.SystemRomPath,
		Features:      cfg.Features,
		Checksum:      cfg.Checksum,
		Verbose:       cfg.Verbose,
		Simulate:      cfg.Simulate,
		ListingPath:   cfg.ListingPath,
	})
	if err != nil {
		if errors.Is(err, listing.ErrUnknownFormat) {
			return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return 0, fmt.Errorf("conversion failed: %w", err)
	}
	if len(summary.Failed) > 0 {
		a.logger.Warn("Some cartridges were not created.", "failed", summary.Failed)
	}
	return summary.ExitCode, nil
}
