// Package digest computes the content hashes reported for ROM inputs and
// assembled images.
package digest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Bytes returns the lowercase hex MD5 digest of b.
func Bytes(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// File returns the lowercase hex MD5 digest of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open '%s' for hashing: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash '%s': %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
