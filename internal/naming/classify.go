package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrBadTypeTag is returned for filenames whose type tag is not C, D or G.
var ErrBadTypeTag = errors.New("unrecognized type tag")

// Match is a filename classified by a scheme.
type Match struct {
	Path  string
	Tag   byte   // 'C', 'D' or 'G'
	Group string // cartridge name
	// Fallback is set when the scheme's delimiter was not found and the
	// group name was derived from the filename up to the type tag.
	Fallback bool
}

// Excluded reports whether name carries one of the scheme's excluded markers.
func (s Scheme) Excluded(name string) bool {
	base := filepath.Base(name)
	for _, m := range s.Exclude {
		if strings.Contains(base, m) {
			return true
		}
	}
	return false
}

// Classify extracts the type tag and group name from path.
func (s Scheme) Classify(path string) (Match, error) {
	base := filepath.Base(path)
	pos := len(base) + s.TagOffset
	if pos < 0 || pos >= len(base) {
		return Match{}, fmt.Errorf("%w: %q is too short for scheme %s", ErrBadTypeTag, base, s.Name)
	}

	tag := base[pos]
	if tag >= 'a' && tag <= 'z' {
		tag -= 'a' - 'A'
	}
	if tag != 'C' && tag != 'D' && tag != 'G' {
		return Match{}, fmt.Errorf("%w: %q in %q", ErrBadTypeTag, string(base[pos]), base)
	}

	m := Match{Path: path, Tag: tag}
	if s.Delimiter != "" {
		if i := strings.Index(base, s.Delimiter); i > 0 {
			m.Group = base[:i]
			return m, nil
		}
		m.Fallback = true
	}

	m.Group = strings.TrimRight(base[:pos], ". _-")
	if m.Group == "" {
		m.Group = base
	}
	return m, nil
}
