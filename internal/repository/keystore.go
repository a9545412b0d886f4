// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/sealdrop/sealdrop/internal/model"
)

// KeyStore provides opaque put/get/delete access to organization key
// records addressed by lookup key. Implementations must make Put atomic:
// a concurrent reader observes either the whole previous record or the
// whole new one, never a mix, and concurrent writers for the same lookup
// key serialize to last-writer-wins.
type KeyStore interface {
	// Put inserts or wholly replaces the record for rec.LookupKey.
	Put(ctx context.Context, rec *model.KeyRecord) error

	// Get returns the record for lookupKey, or errs.ErrKeyNotFound.
	Get(ctx context.Context, lookupKey string) (*model.KeyRecord, error)

	// Delete removes the record. Deleting an absent key is not an error.
	Delete(ctx context.Context, lookupKey string) error
}
