package image

import (
	"errors"

	"github.com/specialistvlad/fullrom/internal/layout"
)

// Status is the process-style outcome of a build.
type Status int

const (
	StatusOK Status = 0
	// StatusMissingInput matches the EX_NOINPUT convention from sysexits.h.
	StatusMissingInput Status = 66
)

// ErrBlockOverflow is returned when the segments of a block do not fit its budget.
var ErrBlockOverflow = errors.New("segments exceed block budget")

// Request describes a single image build.
type Request struct {
	Output string

	// Cartridges holds caller-supplied filenames for the C, D and G roles,
	// relative to RomPath. Missing or empty entries are absent.
	Cartridges map[layout.Role]string

	RomPath       string
	SystemRomPath string // defaults to RomPath

	Features layout.Features
	Checksum bool // implies Verbose
	Verbose  bool
}

// InputDigest records one copied input.
type InputDigest struct {
	Role   layout.Role
	Path   string
	Size   int64
	Digest string // empty unless checksums were requested
}

// Result is the outcome of Build.
type Result struct {
	Status  Status
	Missing []string

	Size   int64
	Inputs []InputDigest
	Digest string
}
