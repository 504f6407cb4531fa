package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FingerprintSignals hashes the joined client environment signals into a
// short hex fingerprint. Descriptive only: the value is not a trust
// boundary and two honest devices may collide.
func FingerprintSignals(signals ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(signals, "\x1f")))
	return hex.EncodeToString(sum[:8])
}
