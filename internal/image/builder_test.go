package image

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/fullrom/internal/digest"
	"github.com/specialistvlad/fullrom/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeROM creates a file of size bytes filled with fill.
func writeROM(t *testing.T, dir, name string, size int, fill byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{fill}, size), 0o644))
	return path
}

// systemROMs writes a baseline system ROM set into dir.
func systemROMs(t *testing.T, dir string) {
	t.Helper()
	writeROM(t, dir, "994AGROM.BIN", 0x6000, 0xA1)
	writeROM(t, dir, "994AROM.BIN", 0x2000, 0xB2)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func TestBuild_Baseline(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	systemROMs(t, dir)
	writeROM(t, dir, "Foo.C", 0x2000, 0xC0)
	writeROM(t, dir, "Foo.D", 0x2000, 0xD0)
	writeROM(t, dir, "Foo.G", 0x1800, 0x60)
	out := filepath.Join(dir, "Foo.bin")

	// --- Act ---
	res, err := NewBuilder(&bytes.Buffer{}).Build(context.Background(), Request{
		Output: out,
		Cartridges: map[layout.Role]string{
			layout.CartridgeC: "Foo.C",
			layout.CartridgeD: "Foo.D",
			layout.CartridgeG: "Foo.G",
		},
		RomPath: dir,
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Empty(t, res.Missing)
	assert.Equal(t, int64(0x30000), res.Size)
	assert.Len(t, res.Inputs, 5)

	img, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, img, 0x30000)

	// cartridge block: C, D, padding
	assert.Equal(t, bytes.Repeat([]byte{0xC0}, 0x2000), img[0x0000:0x2000])
	assert.Equal(t, bytes.Repeat([]byte{0xD0}, 0x2000), img[0x2000:0x4000])
	assert.True(t, allZero(img[0x4000:0x10000]), "cartridge padding must be zero")

	// grom block: system GROM, cartridge G, padding
	assert.Equal(t, bytes.Repeat([]byte{0xA1}, 0x6000), img[0x10000:0x16000])
	assert.Equal(t, bytes.Repeat([]byte{0x60}, 0x1800), img[0x16000:0x17800])
	assert.True(t, allZero(img[0x17800:0x20000]), "grom padding must be zero")

	// system block: empty DSR slot, gap, console ROM at 0x28000, padding
	assert.True(t, allZero(img[0x20000:0x28000]), "DSR slot and gap must be zero")
	assert.Equal(t, bytes.Repeat([]byte{0xB2}, 0x2000), img[0x28000:0x2A000])
	assert.True(t, allZero(img[0x2A000:0x30000]))
}

func TestBuild_MissingRequiredInput(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writeROM(t, dir, "994AGROM.BIN", 0x6000, 0xA1)
	writeROM(t, dir, "Foo.C", 0x2000, 0xC0)
	out := filepath.Join(dir, "Foo.bin")
	report := &bytes.Buffer{}

	// --- Act ---
	res, err := NewBuilder(report).Build(context.Background(), Request{
		Output: out,
		Cartridges: map[layout.Role]string{
			layout.CartridgeC: "Foo.C",
			layout.CartridgeD: "Foo.D",
		},
		RomPath: dir,
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, StatusMissingInput, res.Status)
	assert.Equal(t, []string{
		filepath.Join(dir, "994AROM.BIN"),
		filepath.Join(dir, "Foo.D"),
	}, res.Missing)
	assert.NoFileExists(t, out)
	assert.Contains(t, report.String(), "2 files missing:")
	assert.Contains(t, report.String(), "No ROM file created")
}

func TestBuild_MissingInputKeepsPreviousOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := writeROM(t, dir, "Foo.bin", 16, 0xEE)

	res, err := NewBuilder(&bytes.Buffer{}).Build(context.Background(), Request{Output: out, RomPath: dir})

	require.NoError(t, err)
	assert.Equal(t, StatusMissingInput, res.Status)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xEE}, 16), data, "validation must happen before any write")
}

func TestBuild_DirectoryIsNotAnInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Foo.C"), 0o755))

	res, err := NewBuilder(&bytes.Buffer{}).Build(context.Background(), Request{
		Output:     filepath.Join(dir, "Foo.bin"),
		Cartridges: map[layout.Role]string{layout.CartridgeC: "Foo.C"},
		RomPath:    dir,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusMissingInput, res.Status)
	assert.Equal(t, []string{filepath.Join(dir, "Foo.C")}, res.Missing)
}

func TestBuild_SystemRomPathOverridesRomPath(t *testing.T) {
	t.Parallel()

	carts := t.TempDir()
	system := t.TempDir()
	systemROMs(t, system)
	writeROM(t, carts, "Bar.G", 0x2000, 0x33)

	res, err := NewBuilder(&bytes.Buffer{}).Build(context.Background(), Request{
		Output:        filepath.Join(carts, "Bar.bin"),
		Cartridges:    map[layout.Role]string{layout.CartridgeG: "Bar.G"},
		RomPath:       carts,
		SystemRomPath: system,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
}

func TestBuild_Idempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)
	writeROM(t, dir, "Foo.C", 0x2000, 0xC0)
	req := Request{
		Output:     filepath.Join(dir, "Foo.bin"),
		Cartridges: map[layout.Role]string{layout.CartridgeC: "Foo.C"},
		RomPath:    dir,
		Checksum:   true,
	}
	b := NewBuilder(&bytes.Buffer{})

	first, err := b.Build(context.Background(), req)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), req)
	require.NoError(t, err)

	require.NotEmpty(t, first.Digest)
	assert.Equal(t, first.Digest, second.Digest)

	sum, err := digest.File(req.Output)
	require.NoError(t, err)
	assert.Equal(t, sum, second.Digest)
}

func TestBuild_ChecksumReport(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	systemROMs(t, dir)
	rom := writeROM(t, dir, "Foo.C", 0x2000, 0xC0)
	report := &bytes.Buffer{}

	// --- Act ---
	res, err := NewBuilder(report).Build(context.Background(), Request{
		Output:     filepath.Join(dir, "Foo.bin"),
		Cartridges: map[layout.Role]string{layout.CartridgeC: "Foo.C"},
		RomPath:    dir,
		Checksum:   true,
	})

	// --- Assert ---
	require.NoError(t, err)
	want := digest.Bytes(bytes.Repeat([]byte{0xC0}, 0x2000))
	require.NotEmpty(t, res.Inputs)
	assert.Equal(t, rom, res.Inputs[0].Path)
	assert.Equal(t, want, res.Inputs[0].Digest)

	out := report.String()
	assert.Contains(t, out, "== Checking input files ==", "checksum mode implies verbose")
	assert.Contains(t, out, "MD5 Checksum: "+want)
	assert.Contains(t, out, "MD5 Checksum: "+res.Digest)
	assert.Equal(t, strings.ToLower(res.Digest), res.Digest)
}

func TestBuild_QuietWithoutVerbose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)
	report := &bytes.Buffer{}

	res, err := NewBuilder(report).Build(context.Background(), Request{
		Output:  filepath.Join(dir, "Empty.bin"),
		RomPath: dir,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Empty(t, report.String())
	assert.Empty(t, res.Digest)
}

func TestBuild_AbsentOptionalDoesNotShiftOtherBlocks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)
	writeROM(t, dir, "Foo.C", 0x4000, 0xC0)
	writeROM(t, dir, "Foo.G", 0x2000, 0x60)
	b := NewBuilder(&bytes.Buffer{})

	with := filepath.Join(dir, "with.bin")
	_, err := b.Build(context.Background(), Request{
		Output:     with,
		Cartridges: map[layout.Role]string{layout.CartridgeC: "Foo.C", layout.CartridgeG: "Foo.G"},
		RomPath:    dir,
	})
	require.NoError(t, err)

	without := filepath.Join(dir, "without.bin")
	_, err = b.Build(context.Background(), Request{
		Output:     without,
		Cartridges: map[layout.Role]string{layout.CartridgeG: "Foo.G"},
		RomPath:    dir,
	})
	require.NoError(t, err)

	a, err := os.ReadFile(with)
	require.NoError(t, err)
	c, err := os.ReadFile(without)
	require.NoError(t, err)

	require.Equal(t, len(a), len(c))
	assert.True(t, allZero(c[:0x10000]), "cartridge block must be all padding when C and D are absent")
	assert.Equal(t, a[0x10000:], c[0x10000:], "grom and system blocks must be unaffected")
}

func TestBuild_DiskAndSpeech(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)
	writeROM(t, dir, "DISK.BIN", 0x2000, 0xD5)
	writeROM(t, dir, "SPCHROM.BIN", 0x8000, 0x5E)
	out := filepath.Join(dir, "Sys.bin")

	res, err := NewBuilder(&bytes.Buffer{}).Build(context.Background(), Request{
		Output:   out,
		RomPath:  dir,
		Features: layout.Features{DiskIO: true, Speech: true},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)

	img, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, img, 0x38000)
	assert.Equal(t, bytes.Repeat([]byte{0xD5}, 0x2000), img[0x20000:0x22000])
	assert.True(t, allZero(img[0x22000:0x28000]))
	assert.Equal(t, bytes.Repeat([]byte{0xB2}, 0x2000), img[0x28000:0x2A000])
	assert.Equal(t, bytes.Repeat([]byte{0x5E}, 0x8000), img[0x30000:0x38000])
}

func TestBuild_ShortDSRIsPaddedToItsSlot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)
	writeROM(t, dir, "DISK.BIN", 0x1000, 0xD5)
	out := filepath.Join(dir, "Sys.bin")

	_, err := NewBuilder(&bytes.Buffer{}).Build(context.Background(), Request{
		Output:   out,
		RomPath:  dir,
		Features: layout.Features{DiskIO: true},
	})
	require.NoError(t, err)

	img, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, img, 0x30000)
	assert.Equal(t, bytes.Repeat([]byte{0xD5}, 0x1000), img[0x20000:0x21000])
	assert.True(t, allZero(img[0x21000:0x28000]))
	assert.Equal(t, bytes.Repeat([]byte{0xB2}, 0x2000), img[0x28000:0x2A000], "console ROM must not move")
}

func TestBuild_DSRLargerThanSlot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)
	writeROM(t, dir, "DISK.BIN", 0x2001, 0xD5)

	_, err := NewBuilder(&bytes.Buffer{}).Build(context.Background(), Request{
		Output:   filepath.Join(dir, "Sys.bin"),
		RomPath:  dir,
		Features: layout.Features{DiskIO: true},
	})
	assert.ErrorIs(t, err, ErrBlockOverflow)
}

func TestBuild_EnabledFeatureWithoutFileIsMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)

	res, err := NewBuilder(&bytes.Buffer{}).Build(context.Background(), Request{
		Output:   filepath.Join(dir, "Sys.bin"),
		RomPath:  dir,
		Features: layout.Features{Speech: true},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusMissingInput, res.Status)
	assert.Equal(t, []string{filepath.Join(dir, "SPCHROM.BIN")}, res.Missing)
}

func TestBuild_BlockOverflow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)
	writeROM(t, dir, "Huge.C", 0xC000, 0xC0)
	writeROM(t, dir, "Huge.D", 0x8000, 0xD0)

	_, err := NewBuilder(&bytes.Buffer{}).Build(context.Background(), Request{
		Output: filepath.Join(dir, "Huge.bin"),
		Cartridges: map[layout.Role]string{
			layout.CartridgeC: "Huge.C",
			layout.CartridgeD: "Huge.D",
		},
		RomPath: dir,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBlockOverflow)
}

func TestBuild_ExactFitHasNoPadding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	systemROMs(t, dir)
	writeROM(t, dir, "Full.C", 0x10000, 0xC0)
	report := &bytes.Buffer{}

	res, err := NewBuilder(report).Build(context.Background(), Request{
		Output:     filepath.Join(dir, "Full.bin"),
		Cartridges: map[layout.Role]string{layout.CartridgeC: "Full.C"},
		RomPath:    dir,
		Verbose:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0x30000), res.Size)
	// grom and system blocks pad; the full cartridge block must not.
	assert.Equal(t, 2, strings.Count(report.String(), "Padding "))
}
