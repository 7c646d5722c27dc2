package image

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specialistvlad/fullrom/internal/ctxlog"
	"github.com/specialistvlad/fullrom/internal/digest"
	"github.com/specialistvlad/fullrom/internal/layout"
)

// Builder writes full ROM images. Progress, missing files and checksums are
// reported on its output writer.
type Builder struct {
	out      io.Writer
	platform layout.Platform
}

// NewBuilder creates a Builder for the TI-99/4A platform reporting to out.
func NewBuilder(out io.Writer) *Builder {
	return &Builder{out: out, platform: layout.TI994A}
}

// Build resolves the request into a layout, verifies every declared input
// exists and writes the image. Missing inputs are reported through the
// returned Result; filesystem failures and block overflows are errors.
func (b *Builder) Build(ctx context.Context, req Request) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("output", req.Output)
	verbose := req.Verbose || req.Checksum

	in := layout.Resolve(b.platform, req.Features, req.RomPath, req.SystemRomPath, req.Cartridges)
	lay := layout.New(req.Features, in)
	logger.Debug("Image layout resolved.", "blocks", len(lay.Blocks), "size", lay.Size())

	missing := b.checkInputs(lay.Files(), verbose)
	if len(missing) > 0 {
		fmt.Fprintf(b.out, "%d files missing: %s\n", len(missing), strings.Join(missing, ", "))
		fmt.Fprintln(b.out, "No ROM file created")
		logger.Warn("Image not created, inputs missing.", "missing", missing)
		return Result{Status: StatusMissingInput, Missing: missing}, nil
	}

	if verbose {
		fmt.Fprintln(b.out, "== Copying input files ==")
	}
	res, err := b.write(req.Output, lay, req.Checksum, verbose)
	if err != nil {
		return Result{}, err
	}

	if verbose {
		fmt.Fprintf(b.out, "Target ROM %s created", req.Output)
	}
	if req.Checksum {
		sum, err := digest.File(req.Output)
		if err != nil {
			return Result{}, err
		}
		res.Digest = sum
		fmt.Fprintf(b.out, ", MD5 Checksum: %s", sum)
	}
	if verbose {
		fmt.Fprintln(b.out)
	}

	logger.Info("Image created.", "size", res.Size, "inputs", len(res.Inputs))
	res.Status = StatusOK
	return res, nil
}

// checkInputs returns every path that is not an existing regular file.
func (b *Builder) checkInputs(files []string, verbose bool) []string {
	if verbose {
		fmt.Fprintln(b.out, "== Checking input files ==")
	}

	var missing []string
	for _, path := range files {
		info, err := os.Stat(path)
		found := err == nil && info.Mode().IsRegular()
		if verbose {
			state := "found"
			if !found {
				state = "not found"
			}
			fmt.Fprintf(b.out, "Checking %-27s %s\n", path, state)
		}
		if !found {
			missing = append(missing, path)
		}
	}

	if verbose {
		fmt.Fprintln(b.out)
	}
	return missing
}

// write creates the output file and copies every block into it.
func (b *Builder) write(output string, lay layout.Layout, checksum, verbose bool) (Result, error) {
	f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create output file '%s': %w", output, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var res Result

	for _, block := range lay.Blocks {
		remaining := block.Budget

		for _, seg := range block.Segments {
			switch seg.Kind {
			case layout.File:
				data, err := os.ReadFile(seg.Path)
				if err != nil {
					return Result{}, fmt.Errorf("failed to read input '%s': %w", seg.Path, err)
				}
				size := int64(len(data))
				footprint := size
				if seg.Size > 0 {
					if size > seg.Size {
						return Result{}, fmt.Errorf("%w: %s needs %d bytes, slot holds %d", ErrBlockOverflow, seg.Path, size, seg.Size)
					}
					footprint = seg.Size
				}
				if footprint > remaining {
					return Result{}, fmt.Errorf("%w: %s needs %d bytes, %d left in %s block", ErrBlockOverflow, seg.Path, footprint, remaining, block.Name)
				}
				if _, err := w.Write(data); err != nil {
					return Result{}, fmt.Errorf("failed to write '%s' to output: %w", seg.Path, err)
				}
				if err := writeZeros(w, footprint-size); err != nil {
					return Result{}, err
				}
				remaining -= footprint

				in := InputDigest{Role: seg.Role, Path: seg.Path, Size: size}
				if checksum {
					in.Digest = digest.Bytes(data)
				}
				res.Inputs = append(res.Inputs, in)

				if verbose {
					fmt.Fprintf(b.out, "Copying %-28s done", seg.Path)
					if checksum {
						fmt.Fprintf(b.out, ", MD5 Checksum: %s", in.Digest)
					}
					fmt.Fprintf(b.out, " (%d bytes)\n", size)
				}

			case layout.Filler:
				if seg.Size > remaining {
					return Result{}, fmt.Errorf("%w: reserved region of %d bytes, %d left in %s block", ErrBlockOverflow, seg.Size, remaining, block.Name)
				}
				if err := writeZeros(w, seg.Size); err != nil {
					return Result{}, err
				}
				remaining -= seg.Size
				if verbose {
					fmt.Fprintf(b.out, "Reserving %d bytes\n", seg.Size)
				}

			case layout.Absent:
				// contributes nothing
			}
		}

		if remaining > 0 {
			if verbose {
				fmt.Fprintf(b.out, "Padding %d bytes\n", remaining)
			}
			if err := writeZeros(w, remaining); err != nil {
				return Result{}, err
			}
		}
		res.Size += block.Budget
		if verbose {
			fmt.Fprintln(b.out, "-------")
		}
	}

	if err := w.Flush(); err != nil {
		return Result{}, fmt.Errorf("failed to flush output file '%s': %w", output, err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close output file '%s': %w", output, err)
	}
	return res, nil
}

var zeros [8192]byte

func writeZeros(w io.Writer, n int64) error {
	for n > 0 {
		chunk := int64(len(zeros))
		if n < chunk {
			chunk = n
		}
		if _, err := w.Write(zeros[:chunk]); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
		n -= chunk
	}
	return nil
}
