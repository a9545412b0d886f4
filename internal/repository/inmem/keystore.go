// Package inmem provides an in-memory KeyStore for tests and
// single-process use.
package inmem

import (
	"context"
	"sync"

	"github.com/sealdrop/sealdrop/internal/errs"
	"github.com/sealdrop/sealdrop/internal/model"
)

// KeyStore is a mutex-guarded map store. Records are stored and returned by
// value, so callers never hold a reference into store-owned state. Upserts
// replace the whole record under the lock: last-writer-wins.
type KeyStore struct {
	mu   sync.RWMutex
	recs map[string]model.KeyRecord
}

// New constructs an empty store.
func New() *KeyStore {
	return &KeyStore{recs: make(map[string]model.KeyRecord)}
}

// Put inserts or wholly replaces the record for rec.LookupKey.
func (s *KeyStore) Put(_ context.Context, rec *model.KeyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.LookupKey] = *rec
	return nil
}

// Get returns a copy of the record, or errs.ErrKeyNotFound.
func (s *KeyStore) Get(_ context.Context, lookupKey string) (*model.KeyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[lookupKey]
	if !ok {
		return nil, errs.ErrKeyNotFound
	}
	return &rec, nil
}

// Delete removes the record; deleting an absent key is not an error.
func (s *KeyStore) Delete(_ context.Context, lookupKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, lookupKey)
	return nil
}
