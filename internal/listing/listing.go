// Package listing writes the checksum catalog produced at the end of a batch
// run. The file extension selects the format: ".csv" for a semicolon separated
// file, ".txt" for a fixed-width table.
package listing

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for listing paths with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown listing format")

// Format selects the listing layout.
type Format int

const (
	CSV Format = iota
	Text
)

// Entry is one catalogued image.
type Entry struct {
	Name     string
	Checksum string
}

// FormatFor derives the listing format from the path's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".txt":
		return Text, nil
	}
	return 0, fmt.Errorf("%w: %q (use .csv or .txt)", ErrUnknownFormat, path)
}

// WriteFile writes entries to path, replacing any existing file.
func WriteFile(path string, entries []Entry) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create listing file '%s': %w", path, err)
	}
	defer f.Close()

	if err := Write(f, format, entries); err != nil {
		return fmt.Errorf("failed to write listing file '%s': %w", path, err)
	}
	return f.Close()
}

// Write renders entries to w in the given format.
func Write(w io.Writer, format Format, entries []Entry) error {
	switch format {
	case CSV:
		return writeCSV(w, entries)
	case Text:
		return writeText(w, entries)
	}
	return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
}

// writeCSV emits name;checksum followed by three reserved empty fields.
func writeCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	for _, e := range entries {
		if err := cw.Write([]string{e.Name, e.Checksum, "", "", ""}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const (
	nameHeader     = "Name"
	checksumHeader = "MD5 Checksum"
	checksumWidth  = 32
)

func writeText(w io.Writer, entries []Entry) error {
	width := len(nameHeader)
	for _, e := range entries {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%-*s | %-*s | %s | %s\n", width, nameHeader, checksumWidth, checksumHeader, " ", " ")
	fmt.Fprintf(bw, "%s-+-%s-+---+--\n", strings.Repeat("-", width), strings.Repeat("-", checksumWidth))
	for _, e := range entries {
		fmt.Fprintf(bw, "%-*s | %-*s | %s | %s\n", width, e.Name, checksumWidth, e.Checksum, " ", " ")
	}
	return bw.Flush()
}
