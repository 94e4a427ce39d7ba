// Package checksum fingerprints file contents so reloads can skip unchanged data.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Changed reports whether data hashes to something other than prev.
func Changed(prev string, data []byte) (string, bool) {
	sum := Sum(data)
	return sum, sum != prev
}
