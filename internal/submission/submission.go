// Package submission assembles the wire-level record around an encrypted
// envelope.
package submission

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	pkgcrypto "github.com/sealdrop/sealdrop/internal/crypto"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/report"
)

const (
	// idPrefixLen bounds how much ciphertext feeds the submission id.
	idPrefixLen = 256

	// idLen is the hex length of a submission id. The id is a dedup handle,
	// not an integrity guarantee: 64 bits keeps collisions implausible at
	// expected submission volume while staying short enough to read.
	// Content integrity comes from the envelope's AEAD tag or OAEP check.
	idLen = 16
)

// Build assembles a Submission from an envelope. The organization
// identifier is hashed with the same derivation the registry uses, so
// submissions and registrations correlate without comparing raw
// identifiers; the raw identifier never appears in the returned structure.
func Build(env *model.Envelope, orgID, keyRef string) (*model.Submission, error) {
	if env == nil || len(env.Ciphertext) == 0 {
		return nil, errors.New("empty envelope")
	}
	if orgID == "" {
		return nil, errors.New("empty org identifier")
	}
	orgHash := pkgcrypto.HashOrgID(orgID)
	return &model.Submission{
		SubmissionID:     ID(orgHash, env.Ciphertext),
		OrgHash:          orgHash,
		KeyReference:     keyRef,
		Envelope:         *env,
		SubmittedAt:      report.NowUTC(),
		EncryptionMethod: env.Method,
	}, nil
}

// ID derives the content-bound submission identifier from the org hash and
// the leading ciphertext bytes. Identical resubmissions map to the same id;
// different payloads for the same organization diverge.
func ID(orgHash string, ciphertext []byte) string {
	prefix := ciphertext
	if len(prefix) > idPrefixLen {
		prefix = prefix[:idPrefixLen]
	}
	h := sha256.New()
	h.Write([]byte(orgHash))
	h.Write(prefix)
	return hex.EncodeToString(h.Sum(nil))[:idLen]
}

// Marshal serializes the submission to compact JSON for transport.
func Marshal(s *model.Submission) ([]byte, error) {
	return json.Marshal(s)
}
