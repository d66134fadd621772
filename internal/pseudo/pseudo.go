// Package pseudo provides one-way pseudonymization of lead identifiers so
// repeat submissions remain recognizable in aggregate without storing raw PII.
package pseudo

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestLen is the length in hex characters of a pseudonymized identifier.
const DigestLen = 32

// Digest returns a fixed-length, deterministic, one-way digest of s:
// the first 16 bytes of its SHA-256 hash, hex-encoded. Not reversible and
// not usable for authentication.
func Digest(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:16])
}
