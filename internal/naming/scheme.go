package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrUnknownScheme = errors.New("unknown naming scheme")
	ErrInvalidScheme = errors.New("invalid naming scheme")
)

// Scheme is a rule set for parsing cartridge dump filenames.
type Scheme struct {
	Name string
	// Pattern is a filepath.Match glob applied to base names.
	Pattern string
	// TagOffset is the position of the type tag counted from the end of the
	// filename; -1 is the last character.
	TagOffset int
	// Delimiter ends the cartridge name. Empty means the name runs up to the
	// type tag.
	Delimiter string
	// Exclude lists case-sensitive markers of dumps that are never used.
	Exclude []string
}

// Validate checks that the scheme can be applied to filenames.
func (s Scheme) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidScheme)
	}
	if s.Pattern == "" {
		return fmt.Errorf("%w: scheme %q has no pattern", ErrInvalidScheme, s.Name)
	}
	if _, err := filepath.Match(s.Pattern, ""); err != nil {
		return fmt.Errorf("%w: scheme %q pattern %q: %v", ErrInvalidScheme, s.Name, s.Pattern, err)
	}
	if s.TagOffset >= 0 {
		return fmt.Errorf("%w: scheme %q tag offset must be negative, got %d", ErrInvalidScheme, s.Name, s.TagOffset)
	}
	for _, m := range s.Exclude {
		if m == "" {
			return fmt.Errorf("%w: scheme %q has an empty exclude marker", ErrInvalidScheme, s.Name)
		}
	}
	return nil
}

// Builtin schemes.
var (
	None = Scheme{
		Name:      "None",
		Pattern:   "*.[CDGcdg]",
		TagOffset: -1,
	}
	Standard = Scheme{
		Name:      "Standard",
		Pattern:   "*.[CDGcdg]",
		TagOffset: -1,
		Delimiter: " (",
		Exclude:   []string{MarkerAlternate, MarkerOverdump},
	}
	V9T9 = Scheme{
		Name:      "V9T9",
		Pattern:   "*.[bB][iI][nN]",
		TagOffset: -5,
	}
	Classic99 = Scheme{
		Name:      "Classic99",
		Pattern:   "*.[rR][oO][mM]",
		TagOffset: -5,
	}
)

// Dump markers in the GoodTools/TOSEC convention.
const (
	MarkerAlternate = "[a]"
	MarkerOverdump  = "[o]"
	MarkerBad       = "[b]"
	MarkerHack      = "[h]"
	MarkerTrained   = "[t]"
)

// Table is an immutable set of schemes keyed by name.
type Table struct {
	schemes map[string]Scheme
}

// Builtin returns the table of schemes that ship with the tool.
func Builtin() Table {
	t, err := Table{}.With(None, Standard, V9T9, Classic99)
	if err != nil {
		panic(err)
	}
	return t
}

// With returns a copy of the table with the given schemes added. A scheme
// with an existing name replaces the earlier definition.
func (t Table) With(schemes ...Scheme) (Table, error) {
	next := make(map[string]Scheme, len(t.schemes)+len(schemes))
	for k, v := range t.schemes {
		next[k] = v
	}
	for _, s := range schemes {
		if err := s.Validate(); err != nil {
			return Table{}, err
		}
		s.Exclude = append([]string(nil), s.Exclude...)
		next[s.Name] = s
	}
	return Table{schemes: next}, nil
}

// Lookup returns the scheme registered under name.
func (t Table) Lookup(name string) (Scheme, error) {
	s, ok := t.schemes[name]
	if !ok {
		return Scheme{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownScheme, name, strings.Join(t.Names(), ", "))
	}
	return s, nil
}

// Names returns the registered scheme names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.schemes))
	for name := range t.schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
