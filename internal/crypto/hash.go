// Package crypto provides shared hashing and randomness helpers.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// HashOrgID returns the full hex SHA-256 digest of an organization
// identifier. Registry lookups and submissions share this derivation, so
// they correlate without ever comparing raw identifiers, and an observer of
// the storage backend cannot enumerate participating organizations.
func HashOrgID(orgID string) string {
	h := sha256.Sum256([]byte(orgID))
	return hex.EncodeToString(h[:])
}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}
