package layout

import (
	"path/filepath"
	"sort"
)

// Inputs maps each role to a resolved file path. Roles without an entry are absent.
type Inputs map[Role]string

// Block is an ordered run of segments sharing one fixed byte budget.
type Block struct {
	Name     string
	Budget   int64
	Segments []Segment
}

// Layout is the ordered list of blocks making up one image.
type Layout struct {
	Blocks []Block
}

// Resolve turns caller-supplied cartridge filenames and the search paths into
// the full input set. systemRomPath falls back to romPath when empty. Empty
// cartridge names are treated as absent.
func Resolve(p Platform, f Features, romPath, systemRomPath string, cartridges map[Role]string) Inputs {
	if systemRomPath == "" {
		systemRomPath = romPath
	}

	in := Inputs{
		SystemGROM: filepath.Join(systemRomPath, p.GROMFile),
		SystemROM:  filepath.Join(systemRomPath, p.ROMFile),
	}
	if f.DiskIO {
		in[DiskSupport] = filepath.Join(systemRomPath, p.DiskFile)
	}
	if f.Speech {
		in[SpeechSupport] = filepath.Join(systemRomPath, p.SpeechFile)
	}

	for role, name := range cartridges {
		if !role.IsCartridge() || name == "" {
			continue
		}
		in[role] = filepath.Join(romPath, name)
	}
	return in
}

// New builds the image layout for the given feature set and inputs.
func New(f Features, in Inputs) Layout {
	seg := func(r Role) Segment {
		if path, ok := in[r]; ok && path != "" {
			return FileSegment(r, path)
		}
		return AbsentSegment(r)
	}

	blocks := []Block{
		{
			Name:     "cartridge",
			Budget:   CartridgeBlockSize,
			Segments: []Segment{seg(CartridgeC), seg(CartridgeD)},
		},
		{
			Name:     "grom",
			Budget:   GROMBlockSize,
			Segments: []Segment{seg(SystemGROM), seg(CartridgeG)},
		},
	}

	dsr := FillerSegment(DSRSlotSize)
	if path, ok := in[DiskSupport]; f.DiskIO && ok && path != "" {
		dsr = SlotSegment(DiskSupport, path, DSRSlotSize)
	}
	blocks = append(blocks, Block{
		Name:     "system",
		Budget:   SystemBlockSize,
		Segments: []Segment{dsr, FillerSegment(SystemGapSize), seg(SystemROM)},
	})

	if f.Speech {
		blocks = append(blocks, Block{
			Name:     "speech",
			Budget:   SpeechBlockSize,
			Segments: []Segment{seg(SpeechSupport)},
		})
	}

	return Layout{Blocks: blocks}
}

// Size returns the total size in bytes of an image built from this layout.
func (l Layout) Size() int64 {
	var total int64
	for _, b := range l.Blocks {
		total += b.Budget
	}
	return total
}

// Offset returns the byte offset at which block i starts.
func (l Layout) Offset(i int) int64 {
	var off int64
	for _, b := range l.Blocks[:i] {
		off += b.Budget
	}
	return off
}

// Files returns the sorted, de-duplicated list of file paths the layout reads.
func (l Layout) Files() []string {
	seen := make(map[string]struct{})
	var files []string
	for _, b := range l.Blocks {
		for _, s := range b.Segments {
			if s.Kind != File {
				continue
			}
			if _, ok := seen[s.Path]; ok {
				continue
			}
			seen[s.Path] = struct{}{}
			files = append(files, s.Path)
		}
	}
	sort.Strings(files)
	return files
}
