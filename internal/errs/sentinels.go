// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across registry/envelope layers. All of these are
// recoverable conditions returned to the immediate caller; none is fatal.
var (
	// ErrInvalidSeverity indicates a severity outside the five canonical levels.
	ErrInvalidSeverity = errors.New("invalid severity")

	// ErrInvalidKeyMaterial indicates malformed key material, or a private key
	// submitted where a public key was expected.
	ErrInvalidKeyMaterial = errors.New("invalid key material")

	// ErrKeyNotFound indicates no public key is registered for the organization.
	ErrKeyNotFound = errors.New("key not found")

	// ErrEncryptionFailed indicates the underlying primitive rejected the operation.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrDecryptionAuth indicates an authentication failure during decryption:
	// wrong key or passphrase, or tampered/corrupted ciphertext. Output is
	// never partially trusted.
	ErrDecryptionAuth = errors.New("decryption authentication failed")

	// ErrDecryptionMalformed indicates decryption succeeded but the recovered
	// bytes do not parse as a report. Distinct from ErrDecryptionAuth so
	// callers can tell corruption from a wrong key.
	ErrDecryptionMalformed = errors.New("decrypted payload malformed")
)
