package envelope

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	pkgcrypto "github.com/sealdrop/sealdrop/internal/crypto"
	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
)

// Key-file wrapping parameters: Argon2id derives the wrapping key from the
// passphrase, XChaCha20-Poly1305 protects the PKCS#8 private key.
const (
	kdfSaltLen = 16
	wrapKeyLen = 32

	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 1

	minKeyBits = 2048
)

// deriveWrapKey derives the key-file wrapping key from passphrase and salt.
func deriveWrapKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, wrapKeyLen)
}

// GenerateKeyPair creates an RSA key pair for a recipient organization and
// returns it as a key file: public half in JWK form with its fingerprint,
// private half wrapped under the passphrase with a fresh salt and nonce.
func GenerateKeyPair(bits int, passphrase string) (*model.KeyFile, error) {
	if bits < minKeyBits {
		return nil, fmt.Errorf("key size %d below %d bits", bits, minKeyBits)
	}
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}
	salt, err := pkgcrypto.RandBytes(kdfSaltLen)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(deriveWrapKey([]byte(passphrase), salt))
	if err != nil {
		return nil, err
	}
	nonce, err := pkgcrypto.RandBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	wrapped := make([]byte, 0, len(nonce)+len(der)+aead.Overhead())
	wrapped = append(wrapped, nonce...)
	wrapped = append(wrapped, aead.Seal(nil, nonce, der, nil)...)

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	pub := FromRSA(&priv.PublicKey)
	return &model.KeyFile{
		KeyID:       id,
		Fingerprint: Fingerprint(&pub),
		PublicKey:   pub,
		KDFSalt:     salt,
		WrappedKey:  wrapped,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// OpenKeyFile unwraps the private key with the passphrase. A wrong
// passphrase is indistinguishable from a tampered key file; both surface as
// errs.ErrDecryptionAuth.
func OpenKeyFile(kf *model.KeyFile, passphrase string) (*rsa.PrivateKey, error) {
	if kf == nil || len(kf.WrappedKey) < chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("%w: truncated key file", errs.ErrDecryptionAuth)
	}
	aead, err := chacha20poly1305.NewX(deriveWrapKey([]byte(passphrase), kf.KDFSalt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecryptionAuth, err)
	}
	nonce := kf.WrappedKey[:chacha20poly1305.NonceSizeX]
	ct := kf.WrappedKey[chacha20poly1305.NonceSizeX:]
	der, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: key unwrap", errs.ErrDecryptionAuth)
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidKeyMaterial, err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA private key", errs.ErrInvalidKeyMaterial)
	}
	return rsaKey, nil
}
