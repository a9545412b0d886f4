// Package model defines domain entities shared by the report builder,
// registry, and envelope engines.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Report schema tags. Version identifies the schema emitted by this module;
// the report type is constant for vulnerability disclosures.
const (
	ReportVersion           = "2.0"
	ReportTypeVulnerability = "vulnerability"
)

// Canonical severity levels. A built report always carries one of these
// exact lower-case values.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// ReportData is the reporter-supplied body of a structured report.
type ReportData struct {
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Severity           string         `json:"severity"`
	AffectedSystems    []string       `json:"affected_systems"`
	Remediation        string         `json:"remediation"`
	CVEIDs             []string       `json:"cve_ids"`
	AdditionalData     map[string]any `json:"additional_data"`
	DiscoveryTimestamp string         `json:"discovery_timestamp"`
}

// StructuredReport is the versioned unit handed to the encryption engine.
// Timestamps are UTC ISO-8601 at second precision with a trailing "Z".
// Immutable once built.
type StructuredReport struct {
	Version    string     `json:"version"`
	ReportType string     `json:"report_type"`
	Timestamp  string     `json:"timestamp"`
	Data       ReportData `json:"data"`
}

// PublicKey is an RSA public key in JWK form. The private JWK fields are
// declared so that validation can detect and reject key material that is
// not actually public; they are never set on accepted keys.
type PublicKey struct {
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`

	D  string `json:"d,omitempty"`
	P  string `json:"p,omitempty"`
	Q  string `json:"q,omitempty"`
	DP string `json:"dp,omitempty"`
	DQ string `json:"dq,omitempty"`
	QI string `json:"qi,omitempty"`
}

// KeyRecord is the persisted registration for one organization. LookupKey
// is the one-way hash of the organization identifier; the plaintext
// identifier is never stored.
type KeyRecord struct {
	LookupKey    string
	PublicKey    PublicKey
	RegisteredAt time.Time
}

// Encryption method tags recorded on envelopes and submissions. The tag is
// enough for the decryption side to select the matching path.
const (
	MethodHybrid = "AES-256-GCM+RSA-OAEP"
	MethodDirect = "RSA-OAEP"
)

// Envelope is the encrypted, transmissible unit. Hybrid envelopes carry the
// wrapped symmetric key, nonce and detached auth tag; direct envelopes carry
// only the asymmetric ciphertext. An envelope never contains the plaintext
// report, a private key, or a plaintext organization identifier.
type Envelope struct {
	Method       string `json:"encryption_method"`
	EncryptedKey []byte `json:"encrypted_key,omitempty"`
	Nonce        []byte `json:"nonce,omitempty"`
	Ciphertext   []byte `json:"ciphertext"`
	Tag          []byte `json:"tag,omitempty"`
}

// Submission is the final record handed to transport or storage. The
// submission id is content-derived so identical resubmissions are
// detectable; OrgHash is never the raw identifier.
type Submission struct {
	SubmissionID     string   `json:"submission_id"`
	OrgHash          string   `json:"org_hash"`
	KeyReference     string   `json:"key_reference"`
	Envelope         Envelope `json:"envelope"`
	SubmittedAt      string   `json:"submitted_at"`
	EncryptionMethod string   `json:"encryption_method"`
}

// KeyFile holds a recipient key pair at rest: the public half as JWK, the
// private half as PKCS#8 wrapped under a passphrase-derived key.
type KeyFile struct {
	KeyID       uuid.UUID `json:"key_id"`
	Fingerprint string    `json:"fingerprint"`
	PublicKey   PublicKey `json:"public_key"`
	KDFSalt     []byte    `json:"kdf_salt"`
	WrappedKey  []byte    `json:"wrapped_key"` // nonce || AEAD(PKCS#8 DER)
	CreatedAt   time.Time `json:"created_at"`
}
