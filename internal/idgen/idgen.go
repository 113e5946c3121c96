// Package idgen provides the deterministic, content-derived id scheme used
// across the graph and planner packages (§3: "IDs are caller-supplied but
// MUST be content-derivable"; §9: "All ids generated by the core ... are
// SHA-256 prefixes of canonical text").
package idgen

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hex returns the full lowercase hex-encoded SHA-256 digest of text.
func Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Prefix returns the first n hex characters of the SHA-256 digest of text.
// Used for short, human-scannable ids (e.g. "proc:<sha256(name)[0:16]>").
func Prefix(text string, n int) string {
	h := Hex(text)
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}
