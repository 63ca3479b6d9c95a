package helper

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// EmailTag is a short stable digest of an email address for log fields,
// so addresses do not end up in log storage.
func EmailTag(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:8])
}
