package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	pkgcrypto "github.com/sealdrop/sealdrop/internal/crypto"
	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
)

// encryptHybrid seals the payload with AES-256-GCM under a fresh key and
// nonce, then wraps the key with RSA-OAEP-SHA256. Key and nonce are drawn
// from the system CSPRNG on every call and never cached, so nonce reuse
// under one key cannot occur.
func encryptHybrid(payload []byte, pub *rsa.PublicKey) (*model.Envelope, error) {
	key, err := pkgcrypto.RandBytes(aesKeyLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncryptionFailed, err)
	}
	nonce, err := pkgcrypto.RandBytes(gcmNonceLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncryptionFailed, err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncryptionFailed, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncryptionFailed, err)
	}
	sealed := aead.Seal(nil, nonce, payload, nil)
	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: wrap key: %v", errs.ErrEncryptionFailed, err)
	}
	// GCM appends the tag to the ciphertext; the envelope keeps it detached.
	split := len(sealed) - gcmTagLen
	return &model.Envelope{
		Method:       model.MethodHybrid,
		EncryptedKey: wrapped,
		Nonce:        nonce,
		Ciphertext:   sealed[:split:split],
		Tag:          sealed[split:],
	}, nil
}

// decryptHybrid unwraps the symmetric key and opens the AEAD. Any failure
// along the way maps to an authentication error; plaintext is never
// returned on a failed tag check.
func decryptHybrid(env *model.Envelope, priv *rsa.PrivateKey) ([]byte, error) {
	if len(env.EncryptedKey) == 0 || len(env.Nonce) != gcmNonceLen || len(env.Tag) != gcmTagLen {
		return nil, fmt.Errorf("%w: malformed hybrid envelope", errs.ErrDecryptionAuth)
	}
	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, env.EncryptedKey, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap key", errs.ErrDecryptionAuth)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrapped key unusable", errs.ErrDecryptionAuth)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecryptionAuth, err)
	}
	sealed := make([]byte, 0, len(env.Ciphertext)+len(env.Tag))
	sealed = append(sealed, env.Ciphertext...)
	sealed = append(sealed, env.Tag...)
	payload, err := aead.Open(nil, env.Nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: tag check", errs.ErrDecryptionAuth)
	}
	return payload, nil
}
