package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/specialistvlad/fullrom/internal/ctxlog"
	"github.com/specialistvlad/fullrom/internal/digest"
	"github.com/specialistvlad/fullrom/internal/fsutil"
	"github.com/specialistvlad/fullrom/internal/image"
	"github.com/specialistvlad/fullrom/internal/layout"
	"github.com/specialistvlad/fullrom/internal/listing"
	"github.com/specialistvlad/fullrom/internal/naming"
)

// ImageBuilder is the single-image collaborator invoked once per group.
type ImageBuilder interface {
	Build(ctx context.Context, req image.Request) (image.Result, error)
}

// Options configures one batch run.
type Options struct {
	InputDir  string
	OutputDir string // defaults to InputDir
	Scheme    naming.Scheme

	SystemRomPath string
	Features      layout.Features

	Checksum bool
	Verbose  bool
	Simulate bool

	// ListingPath, when set, receives a checksum catalog of the built images.
	ListingPath string
}

// Summary reports the outcome of a batch run.
type Summary struct {
	Groups    []string
	Converted int
	// ExitCode is the first non-zero builder status seen, or 0.
	ExitCode int
	Failed   []string
	// Skipped lists files whose type tag could not be read.
	Skipped []string
}

// Runner drives the image builder over every group found in a directory.
type Runner struct {
	out     io.Writer
	builder ImageBuilder
	now     func() time.Time
}

// NewRunner creates a Runner that reports to out and builds through builder.
func NewRunner(out io.Writer, builder ImageBuilder) *Runner {
	return &Runner{out: out, builder: builder, now: time.Now}
}

// Run discovers the groups in opts.InputDir and builds one image per group.
// A group whose inputs are missing is reported and counted but does not stop
// the run; filesystem and configuration errors do.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	logger := ctxlog.FromContext(ctx).With("scheme", opts.Scheme.Name, "input_dir", opts.InputDir)
	start := r.now()

	if opts.OutputDir == "" {
		opts.OutputDir = opts.InputDir
	}

	groups, skipped, err := r.discover(ctx, opts)
	if err != nil {
		return Summary{}, err
	}
	logger.Debug("Discovery finished.", "groups", len(groups), "skipped", len(skipped))

	summary := Summary{Groups: groups.Names(), Skipped: skipped}
	built := make([]string, 0, len(groups))

	for _, name := range summary.Groups {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("batch interrupted before %q: %w", name, err)
		}

		group := groups[name]
		output := filepath.Join(opts.OutputDir, name+".bin")

		if opts.Simulate {
			fmt.Fprintf(r.out, "Would create %s from C=%s D=%s G=%s\n", output,
				group.Files[layout.CartridgeC], group.Files[layout.CartridgeD], group.Files[layout.CartridgeG])
			continue
		}

		if opts.Verbose || opts.Checksum {
			fmt.Fprintf(r.out, "Creating cartridge %s\n", name)
		}
		res, err := r.builder.Build(ctx, image.Request{
			Output:        output,
			Cartridges:    group.Files,
			SystemRomPath: opts.SystemRomPath,
			Features:      opts.Features,
			Checksum:      opts.Checksum,
			Verbose:       opts.Verbose,
		})
		if err != nil {
			return summary, fmt.Errorf("failed to build %q: %w", name, err)
		}

		if res.Status == image.StatusOK {
			summary.Converted++
			built = append(built, name)
		} else {
			summary.Failed = append(summary.Failed, name)
			if summary.ExitCode == 0 {
				summary.ExitCode = int(res.Status)
			}
			logger.Warn("Cartridge not created.", "group", name, "status", int(res.Status))
		}
		fmt.Fprintln(r.out)
	}

	if opts.ListingPath != "" {
		if err := writeListing(opts.ListingPath, opts.OutputDir, built); err != nil {
			return summary, err
		}
		logger.Info("Listing written.", "path", opts.ListingPath, "entries", len(built))
	}

	if opts.Verbose {
		fmt.Fprintf(r.out, "%d cartridges created in %.2f seconds.\n", summary.Converted, r.now().Sub(start).Seconds())
	}
	logger.Info("Batch finished.", "groups", len(summary.Groups), "converted", summary.Converted, "failed", len(summary.Failed))
	return summary, nil
}

// discover scans the input directory and groups the matching files.
func (r *Runner) discover(ctx context.Context, opts Options) (Groups, []string, error) {
	logger := ctxlog.FromContext(ctx)

	matches, skipped, err := Discover(opts.InputDir, opts.Scheme)
	if err != nil {
		return nil, nil, err
	}
	for _, path := range skipped {
		fmt.Fprintf(r.out, "Skipping %s: unrecognized type tag\n", path)
	}

	for _, m := range matches {
		if m.Fallback {
			fmt.Fprintf(r.out, "** Warning: %s mismatches naming scheme %s - continuing with complete file name **\n", m.Path, opts.Scheme.Name)
			logger.Warn("File mismatches naming scheme.", "file", m.Path, "group", m.Group)
		}
		if opts.Verbose {
			fmt.Fprintf(r.out, "Adding %s to %s\n", m.Path, m.Group)
		}
	}

	groups := Group(matches, func(group, kept, dropped string) {
		logger.Warn("Duplicate cartridge type in group, keeping later file.", "group", group, "kept", kept, "dropped", dropped)
	})
	return groups, skipped, nil
}

func writeListing(path, outputDir string, names []string) error {
	if _, err := listing.FormatFor(path); err != nil {
		return err
	}

	entries := make([]listing.Entry, 0, len(names))
	for _, name := range names {
		sum, err := digest.File(filepath.Join(outputDir, name+".bin"))
		if err != nil {
			return err
		}
		entries = append(entries, listing.Entry{Name: name, Checksum: sum})
	}
	return listing.WriteFile(path, entries)
}

// Discover lists the files in dir matching the scheme, drops excluded dumps and
// classifies the rest. Files with an unreadable type tag are returned in skipped.
func Discover(dir string, scheme naming.Scheme) (matches []naming.Match, skipped []string, err error) {
	files, err := fsutil.FindFiles(dir, scheme.Pattern)
	if err != nil {
		return nil, nil, err
	}

	for _, path := range files {
		if scheme.Excluded(path) {
			continue
		}
		m, err := scheme.Classify(path)
		if errors.Is(err, naming.ErrBadTypeTag) {
			skipped = append(skipped, path)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		matches = append(matches, m)
	}
	return matches, skipped, nil
}

// GroupFiles holds the files of one cartridge image keyed by role.
type GroupFiles struct {
	Name  string
	Files map[layout.Role]string
}

// Groups maps a cartridge name to its files.
type Groups map[string]*GroupFiles

// Names returns the group names in sorted order.
func (g Groups) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Group assigns matches to groups by name. Matches must be in processing
// order; when a group receives two files of the same type the later one wins
// and onDuplicate, if set, is told about it.
func Group(matches []naming.Match, onDuplicate func(group, kept, dropped string)) Groups {
	groups := make(Groups)
	for _, m := range matches {
		role, ok := layout.CartridgeRole(m.Tag)
		if !ok {
			continue
		}
		g, ok := groups[m.Group]
		if !ok {
			g = &GroupFiles{Name: m.Group, Files: make(map[layout.Role]string)}
			groups[m.Group] = g
		}
		if prev, dup := g.Files[role]; dup && onDuplicate != nil {
			onDuplicate(m.Group, m.Path, prev)
		}
		g.Files[role] = m.Path
	}
	return groups
}
