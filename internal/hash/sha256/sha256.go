// Package sha256 computes hex digests for analysis cache keys.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher implements award.Hasher.
type Hasher struct{}

// New returns a Hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the hex-encoded SHA-256 of data.
func (h *Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Key prefixes the digest of s, e.g. Key("analysis", description).
func (h *Hasher) Key(prefix, s string) string {
	digest, _ := h.Hash([]byte(s))
	return prefix + ":" + digest
}
