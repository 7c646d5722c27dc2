package layout

import "fmt"

// SegmentKind tags the variant held by a Segment.
type SegmentKind int

const (
	// Absent segments contribute nothing and do not consume budget.
	Absent SegmentKind = iota
	// File segments copy an existing file verbatim.
	File
	// Filler segments write a fixed run of zero bytes.
	Filler
)

// Segment is one contiguous chunk placed into a block.
type Segment struct {
	Kind SegmentKind
	Role Role   // zero for fillers
	Path string // set for File
	Size int64  // set for Filler; for File, a non-zero fixed slot size
}

// FileSegment returns a segment sourced from the file at path.
func FileSegment(role Role, path string) Segment {
	return Segment{Kind: File, Role: role, Path: path}
}

// SlotSegment returns a file segment that always occupies size bytes. The
// file is zero-padded up to size and must not exceed it.
func SlotSegment(role Role, path string, size int64) Segment {
	return Segment{Kind: File, Role: role, Path: path, Size: size}
}

// FillerSegment returns a zero-filled segment of size bytes.
func FillerSegment(size int64) Segment {
	return Segment{Kind: Filler, Size: size}
}

// AbsentSegment returns a placeholder for a role with no input.
func AbsentSegment(role Role) Segment {
	return Segment{Kind: Absent, Role: role}
}

func (s Segment) String() string {
	switch s.Kind {
	case File:
		if s.Size > 0 {
			return fmt.Sprintf("%s(%s, slot %d)", s.Role, s.Path, s.Size)
		}
		return fmt.Sprintf("%s(%s)", s.Role, s.Path)
	case Filler:
		return fmt.Sprintf("filler(%d)", s.Size)
	default:
		return fmt.Sprintf("%s(absent)", s.Role)
	}
}
