package pii

import (
	"crypto/sha256"
	"encoding/hex"

	"capi-event-relay/internal/events/core/domain"
)

// Hash returns the lowercase hex SHA-256 of an already normalized value, the
// digest format the Conversions API matches on.
func Hash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// HashAll hashes each present field once. Absent fields stay absent.
func HashAll(n domain.NormalizedPII) domain.HashedPII {
	out := make(domain.HashedPII, len(n))
	for field, value := range n {
		out[field] = Hash(value)
	}
	return out
}
