// Package layout describes the fixed memory map of a full ROM image. It turns a
// set of resolved input paths and feature flags into an ordered list of blocks,
// each with a fixed byte budget, without touching the filesystem.
package layout
