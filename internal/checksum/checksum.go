// Package checksum provides content digests used for change detection.
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

// List returns a single digest over an ordered list of items. Used as the
// vault content fingerprint that keys the corpus cache.
func List(items []string) string {
	h := sha256.New()
	for _, item := range items {
		h.Write([]byte(item))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
