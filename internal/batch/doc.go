// Package batch converts a directory of cartridge dumps into full ROM images.
// Files are grouped by the cartridge name their naming scheme extracts, and
// the image builder runs once per group. A group with missing inputs does
// not stop the run; the first failing status becomes the batch exit code.
package batch
