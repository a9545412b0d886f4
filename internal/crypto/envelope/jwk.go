// Package envelope implements the encryption and decryption engines that
// turn structured reports into self-contained encrypted envelopes, plus the
// JWK and key-file handling around them.
package envelope

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
)

// SupportedKeyType is the only JWK key type the engines accept.
const SupportedKeyType = "RSA"

// ValidatePublicKey reports whether k is acceptable public key material.
// It is a pure predicate: nil input, missing fields, unsupported key types
// and private-key material all return false, never an error. Callers must
// run it before storing or encrypting to a key.
func ValidatePublicKey(k *model.PublicKey) bool {
	if k == nil {
		return false
	}
	if k.Kty != SupportedKeyType {
		return false
	}
	if k.N == "" || k.E == "" {
		return false
	}
	// Any private JWK field disqualifies the material, regardless of the
	// validity of the rest.
	if k.D != "" || k.P != "" || k.Q != "" || k.DP != "" || k.DQ != "" || k.QI != "" {
		return false
	}
	return true
}

// ParsePublicKey decodes JWK JSON and validates it as public key material.
func ParsePublicKey(raw []byte) (*model.PublicKey, error) {
	var k model.PublicKey
	if err := json.Unmarshal(raw, &k); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidKeyMaterial, err)
	}
	if !ValidatePublicKey(&k) {
		return nil, errs.ErrInvalidKeyMaterial
	}
	return &k, nil
}

// toRSA converts validated JWK material into an rsa.PublicKey.
func toRSA(k *model.PublicKey) (*rsa.PublicKey, error) {
	if !ValidatePublicKey(k) {
		return nil, errs.ErrInvalidKeyMaterial
	}
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("%w: modulus: %v", errs.ErrInvalidKeyMaterial, err)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("%w: exponent: %v", errs.ErrInvalidKeyMaterial, err)
	}
	exp := new(big.Int).SetBytes(e)
	if !exp.IsInt64() || exp.Int64() <= 1 {
		return nil, fmt.Errorf("%w: exponent out of range", errs.ErrInvalidKeyMaterial)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}

// FromRSA exports an rsa.PublicKey as JWK material.
func FromRSA(pub *rsa.PublicKey) model.PublicKey {
	return model.PublicKey{
		Kty: SupportedKeyType,
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

// Fingerprint returns the hex SHA-256 thumbprint of a key, computed over
// the RFC 7638 canonical form (required members in lexicographic order).
// It identifies a key without being reversible to it.
func Fingerprint(k *model.PublicKey) string {
	canon := fmt.Sprintf(`{"e":%q,"kty":%q,"n":%q}`, k.E, k.Kty, k.N)
	sum := sha256.Sum256([]byte(canon))
	return hex.EncodeToString(sum[:])
}
