package envelope

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/report"
)

func mustKeyPair(bits int, passphrase string) (*model.KeyFile, *rsa.PrivateKey, *model.PublicKey) {
	kf, err := GenerateKeyPair(bits, passphrase)
	if err != nil {
		panic(err)
	}
	priv, err := OpenKeyFile(kf, passphrase)
	if err != nil {
		panic(err)
	}
	pub := kf.PublicKey
	return kf, priv, &pub
}

// One key pair per test binary; envelope tests share them since they never
// mutate the keys. The direct strategy needs the larger modulus: a minimal
// report payload already exceeds a 2048-bit OAEP block.
var (
	testKF, testPriv, testPub = mustKeyPair(2048, "test-passphrase")
	_, directPriv, directPub  = mustKeyPair(4096, "direct-passphrase")
)

func sampleReport(t *testing.T) *model.StructuredReport {
	t.Helper()
	r, err := report.New(report.Params{
		Title:           "SQLi in login",
		Description:     "id parameter concatenated into query",
		Severity:        "critical",
		AffectedSystems: []string{"API"},
		Remediation:     "use parameterized queries",
		CVEIDs:          []string{"CVE-2026-1234"},
		AdditionalData:  map[string]any{"endpoint": "/login"},
	})
	if err != nil {
		t.Fatalf("report.New: %v", err)
	}
	return r
}

func TestEncryptDecrypt_RoundtripHybrid(t *testing.T) {
	t.Parallel()
	r := sampleReport(t)
	env, err := Encrypt(r, testPub, model.MethodHybrid)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if env.Method != model.MethodHybrid {
		t.Fatalf("method=%q", env.Method)
	}
	if len(env.EncryptedKey) == 0 || len(env.Nonce) != gcmNonceLen || len(env.Tag) != gcmTagLen {
		t.Fatalf("hybrid envelope incomplete: %+v", env)
	}
	got, err := Decrypt(env, testPriv)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !reflect.DeepEqual(r, got) {
		t.Fatalf("roundtrip mismatch:\n%+v\n%+v", r, got)
	}
}

func TestEncryptDecrypt_RoundtripDirect(t *testing.T) {
	t.Parallel()
	r, err := report.New(report.Params{Title: "t", Description: "d", Severity: "low"})
	if err != nil {
		t.Fatalf("report.New: %v", err)
	}
	env, err := Encrypt(r, directPub, model.MethodDirect)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if env.Method != model.MethodDirect || len(env.EncryptedKey) != 0 || len(env.Nonce) != 0 {
		t.Fatalf("direct envelope shape: %+v", env)
	}
	got, err := Decrypt(env, directPriv)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !reflect.DeepEqual(r, got) {
		t.Fatalf("roundtrip mismatch")
	}
}

func TestEncrypt_HybridNonDeterministic(t *testing.T) {
	t.Parallel()
	// 50 KB report body: far beyond any single RSA block.
	r, err := report.New(report.Params{
		Title:       "large",
		Description: strings.Repeat("A", 50*1024),
		Severity:    "high",
	})
	if err != nil {
		t.Fatalf("report.New: %v", err)
	}
	e1, err := Encrypt(r, testPub, model.MethodHybrid)
	if err != nil {
		t.Fatalf("Encrypt#1: %v", err)
	}
	e2, err := Encrypt(r, testPub, model.MethodHybrid)
	if err != nil {
		t.Fatalf("Encrypt#2: %v", err)
	}
	if bytes.Equal(e1.Ciphertext, e2.Ciphertext) {
		t.Fatalf("identical plaintext produced identical ciphertext")
	}
	if bytes.Equal(e1.Nonce, e2.Nonce) {
		t.Fatalf("nonce reused across calls")
	}
	if bytes.Equal(e1.EncryptedKey, e2.EncryptedKey) {
		t.Fatalf("symmetric key reused across calls")
	}
}

func TestEncrypt_DirectNonDeterministic(t *testing.T) {
	t.Parallel()
	r, err := report.New(report.Params{Title: "t", Description: "d", Severity: "info"})
	if err != nil {
		t.Fatalf("report.New: %v", err)
	}
	e1, _ := Encrypt(r, directPub, model.MethodDirect)
	e2, _ := Encrypt(r, directPub, model.MethodDirect)
	if e1 == nil || e2 == nil || bytes.Equal(e1.Ciphertext, e2.Ciphertext) {
		t.Fatalf("OAEP output must not be reproducible")
	}
}

func TestEncrypt_DirectOversizeFails(t *testing.T) {
	t.Parallel()
	r, err := report.New(report.Params{
		Title:       "too big",
		Description: strings.Repeat("B", 4096),
		Severity:    "medium",
	})
	if err != nil {
		t.Fatalf("report.New: %v", err)
	}
	if _, err := Encrypt(r, testPub, model.MethodDirect); !errors.Is(err, errs.ErrEncryptionFailed) {
		t.Fatalf("err=%v, want ErrEncryptionFailed", err)
	}
}

func TestEncrypt_RejectsPrivateKeyMaterial(t *testing.T) {
	t.Parallel()
	bad := &model.PublicKey{Kty: "RSA", N: testPub.N, E: testPub.E, D: "secret"}
	if _, err := Encrypt(sampleReport(t), bad, model.MethodHybrid); !errors.Is(err, errs.ErrEncryptionFailed) {
		t.Fatalf("err=%v, want ErrEncryptionFailed", err)
	}
}

func TestEncrypt_UnknownMethod(t *testing.T) {
	t.Parallel()
	if _, err := Encrypt(sampleReport(t), testPub, "ROT13"); !errors.Is(err, errs.ErrEncryptionFailed) {
		t.Fatalf("err=%v, want ErrEncryptionFailed", err)
	}
}

func TestDecrypt_TamperAnyByteFailsAuth(t *testing.T) {
	t.Parallel()
	env, err := Encrypt(sampleReport(t), testPub, model.MethodHybrid)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	fields := map[string][]byte{
		"ciphertext":    env.Ciphertext,
		"tag":           env.Tag,
		"nonce":         env.Nonce,
		"encrypted_key": env.EncryptedKey,
	}
	for name, buf := range fields {
		for _, idx := range []int{0, len(buf) / 2, len(buf) - 1} {
			tampered := *env
			cp := append([]byte(nil), buf...)
			cp[idx] ^= 0x01
			switch name {
			case "ciphertext":
				tampered.Ciphertext = cp
			case "tag":
				tampered.Tag = cp
			case "nonce":
				tampered.Nonce = cp
			case "encrypted_key":
				tampered.EncryptedKey = cp
			}
			if _, err := Decrypt(&tampered, testPriv); !errors.Is(err, errs.ErrDecryptionAuth) {
				t.Fatalf("%s byte %d flipped: err=%v, want ErrDecryptionAuth", name, idx, err)
			}
		}
	}
}

func TestDecrypt_DirectTamperFailsAuth(t *testing.T) {
	t.Parallel()
	r, _ := report.New(report.Params{Title: "t", Description: "d", Severity: "low"})
	env, err := Encrypt(r, directPub, model.MethodDirect)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	env.Ciphertext[3] ^= 0x80
	if _, err := Decrypt(env, directPriv); !errors.Is(err, errs.ErrDecryptionAuth) {
		t.Fatalf("err=%v, want ErrDecryptionAuth", err)
	}
}

func TestDecrypt_WrongKeyFailsAuth(t *testing.T) {
	t.Parallel()
	otherKF, err := GenerateKeyPair(2048, "other")
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	otherPriv, err := OpenKeyFile(otherKF, "other")
	if err != nil {
		t.Fatalf("OpenKeyFile: %v", err)
	}
	env, err := Encrypt(sampleReport(t), testPub, model.MethodHybrid)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(env, otherPriv); !errors.Is(err, errs.ErrDecryptionAuth) {
		t.Fatalf("err=%v, want ErrDecryptionAuth", err)
	}
}

func TestDecrypt_MalformedContentDistinctFromAuth(t *testing.T) {
	t.Parallel()
	// Seal bytes that authenticate fine but are not a report.
	rsaPub, err := toRSA(testPub)
	if err != nil {
		t.Fatalf("toRSA: %v", err)
	}
	env, err := encryptHybrid([]byte("this is not a report"), rsaPub)
	if err != nil {
		t.Fatalf("encryptHybrid: %v", err)
	}
	_, err = Decrypt(env, testPriv)
	if !errors.Is(err, errs.ErrDecryptionMalformed) {
		t.Fatalf("err=%v, want ErrDecryptionMalformed", err)
	}
	if errors.Is(err, errs.ErrDecryptionAuth) {
		t.Fatalf("malformed content conflated with auth failure")
	}
}

func TestDecrypt_UnknownMethod(t *testing.T) {
	t.Parallel()
	env := &model.Envelope{Method: "ROT13", Ciphertext: []byte("x")}
	if _, err := Decrypt(env, testPriv); !errors.Is(err, errs.ErrDecryptionAuth) {
		t.Fatalf("err=%v, want ErrDecryptionAuth", err)
	}
}
