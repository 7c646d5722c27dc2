// Package naming holds the naming schemes used to find cartridge dumps in a
// directory. A scheme says which files to look at, where the C/D/G type tag
// sits in the filename, how the cartridge name ends and which variant dumps
// to leave out. Extra schemes can be declared in an HCL file.
package naming
