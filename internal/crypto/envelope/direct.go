package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
)

// encryptDirect encrypts the whole payload in a single RSA-OAEP block. OAEP
// padding makes the output non-deterministic, and its integrity check plays
// the role the AEAD tag plays on the hybrid path. Payloads beyond the
// single-block capacity (k - 2*hLen - 2 bytes) are rejected; callers needing
// larger reports use the hybrid strategy.
func encryptDirect(payload []byte, pub *rsa.PublicKey) (*model.Envelope, error) {
	ct, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncryptionFailed, err)
	}
	return &model.Envelope{Method: model.MethodDirect, Ciphertext: ct}, nil
}

// decryptDirect opens a single-block OAEP ciphertext. OAEP reports one
// opaque failure for padding and integrity problems alike; all of them map
// to an authentication error.
func decryptDirect(env *model.Envelope, priv *rsa.PrivateKey) ([]byte, error) {
	if len(env.Ciphertext) == 0 {
		return nil, fmt.Errorf("%w: empty ciphertext", errs.ErrDecryptionAuth)
	}
	payload, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: oaep open", errs.ErrDecryptionAuth)
	}
	return payload, nil
}
