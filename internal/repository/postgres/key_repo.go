package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
)

// KeyRepo implements repository.KeyStore using PostgreSQL. Records are
// keyed by the hashed organization identifier; the plaintext identifier
// never reaches this layer.
type KeyRepo struct{ db *DB }

// NewKeyRepo constructs a key repository.
func NewKeyRepo(db *DB) *KeyRepo { return &KeyRepo{db: db} }

// Put upserts the record. ON CONFLICT replaces the whole row, so concurrent
// writers for the same lookup key serialize to last-writer-wins and readers
// never observe a partial record.
func (r *KeyRepo) Put(ctx context.Context, rec *model.KeyRecord) error {
	jwk, err := json.Marshal(rec.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	const q = `
INSERT INTO org_keys (lookup_key, public_key, registered_at)
VALUES ($1, $2, $3)
ON CONFLICT (lookup_key) DO UPDATE SET
public_key=excluded.public_key, registered_at=excluded.registered_at`
	_, err = r.db.Pool.Exec(ctx, q, rec.LookupKey, jwk, rec.RegisteredAt)
	return err
}

// Get selects a record by lookup key.
func (r *KeyRepo) Get(ctx context.Context, lookupKey string) (*model.KeyRecord, error) {
	const q = `
SELECT lookup_key, public_key, registered_at
FROM org_keys WHERE lookup_key=$1`
	row := r.db.Pool.QueryRow(ctx, q, lookupKey)
	var (
		rec model.KeyRecord
		jwk []byte
	)
	if err := row.Scan(&rec.LookupKey, &jwk, &rec.RegisteredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrKeyNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(jwk, &rec.PublicKey); err != nil {
		return nil, fmt.Errorf("unmarshal public key: %w", err)
	}
	return &rec, nil
}

// Delete removes a record. Deleting an absent key is not an error.
func (r *KeyRepo) Delete(ctx context.Context, lookupKey string) error {
	const q = `DELETE FROM org_keys WHERE lookup_key=$1`
	_, err := r.db.Pool.Exec(ctx, q, lookupKey)
	return err
}
