// Package image assembles a full ROM image file from a layout. A build is
// all-or-nothing with respect to missing inputs: every declared file is
// checked before the output is created.
package image
