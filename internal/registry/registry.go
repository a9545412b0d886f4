// Package registry stores organization public keys under one-way derived
// lookup keys.
package registry

import (
	"context"
	"errors"
	"time"

	pkgcrypto "github.com/sealdrop/sealdrop/internal/crypto"
	"github.com/sealdrop/sealdrop/internal/crypto/envelope"
	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
	"github.com/sealdrop/sealdrop/internal/repository"
)

// Registry owns key registration, lookup and revocation. The store only
// ever sees hashed identifiers, so an observer of the backend cannot
// enumerate participating organizations.
type Registry struct {
	store repository.KeyStore
}

// New constructs a Registry over the given store. The registry is scoped to
// its caller; there is no process-wide instance.
func New(store repository.KeyStore) *Registry {
	return &Registry{store: store}
}

// Register validates the key material and upserts it under the hashed
// identifier. Malformed or private key material is rejected with
// errs.ErrInvalidKeyMaterial before anything touches the store.
// Re-registering replaces the previous record wholesale (key rotation).
func (r *Registry) Register(ctx context.Context, orgID string, key *model.PublicKey) error {
	if orgID == "" {
		return errors.New("validation: empty org identifier")
	}
	if !envelope.ValidatePublicKey(key) {
		return errs.ErrInvalidKeyMaterial
	}
	rec := &model.KeyRecord{
		LookupKey:    pkgcrypto.HashOrgID(orgID),
		PublicKey:    *key,
		RegisteredAt: time.Now().UTC(),
	}
	return r.store.Put(ctx, rec)
}

// Resolve recomputes the lookup hash and returns a copy of the registered
// public key, or errs.ErrKeyNotFound.
func (r *Registry) Resolve(ctx context.Context, orgID string) (*model.PublicKey, error) {
	if orgID == "" {
		return nil, errors.New("validation: empty org identifier")
	}
	rec, err := r.store.Get(ctx, pkgcrypto.HashOrgID(orgID))
	if err != nil {
		return nil, err
	}
	key := rec.PublicKey
	return &key, nil
}

// Revoke deletes the organization's record. Idempotent: revoking an
// unregistered organization is not an error.
func (r *Registry) Revoke(ctx context.Context, orgID string) error {
	if orgID == "" {
		return errors.New("validation: empty org identifier")
	}
	return r.store.Delete(ctx, pkgcrypto.HashOrgID(orgID))
}
