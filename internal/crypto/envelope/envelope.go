package envelope

import (
	"crypto/rsa"
	"fmt"

	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/report"
)

// Symmetric parameters for the hybrid strategy.
const (
	aesKeyLen   = 32 // AES-256
	gcmNonceLen = 12
	gcmTagLen   = 16
)

// Encrypt serializes the report and seals it to the recipient's public key
// using the requested method (model.MethodHybrid or model.MethodDirect).
// The resulting envelope records the method so the decryption side needs no
// external coordination. Output is non-deterministic for both strategies:
// repeated encryption of the same report never reproduces an envelope.
func Encrypt(r *model.StructuredReport, pub *model.PublicKey, method string) (*model.Envelope, error) {
	payload, err := report.PreparePayload(r)
	if err != nil {
		return nil, fmt.Errorf("%w: serialize report: %v", errs.ErrEncryptionFailed, err)
	}
	rsaPub, err := toRSA(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEncryptionFailed, err)
	}
	switch method {
	case model.MethodHybrid:
		return encryptHybrid(payload, rsaPub)
	case model.MethodDirect:
		return encryptDirect(payload, rsaPub)
	default:
		return nil, fmt.Errorf("%w: unknown method %q", errs.ErrEncryptionFailed, method)
	}
}

// Decrypt recovers the structured report from an envelope using the
// recipient's private key. Authentication failures (wrong key, tampering)
// surface as errs.ErrDecryptionAuth; bytes that decrypt but do not parse as
// a report surface as errs.ErrDecryptionMalformed. The two are never
// conflated.
func Decrypt(env *model.Envelope, priv *rsa.PrivateKey) (*model.StructuredReport, error) {
	if env == nil || priv == nil {
		return nil, fmt.Errorf("%w: missing envelope or key", errs.ErrDecryptionAuth)
	}
	var (
		payload []byte
		err     error
	)
	switch env.Method {
	case model.MethodHybrid:
		payload, err = decryptHybrid(env, priv)
	case model.MethodDirect:
		payload, err = decryptDirect(env, priv)
	default:
		return nil, fmt.Errorf("%w: unknown method %q", errs.ErrDecryptionAuth, env.Method)
	}
	if err != nil {
		return nil, err
	}
	r, err := report.ParsePayload(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecryptionMalformed, err)
	}
	return r, nil
}
