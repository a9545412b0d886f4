// Package dedup records submission identifiers so identical resubmissions
// can be flagged.
package dedup

import (
	"context"
	"sync"
)

// Log records submission ids and reports first-seen status. Since
// submission ids are content-bound, a repeat id means the same envelope
// payload was submitted for the same organization before.
type Log interface {
	// Record stores the id and reports whether this is its first appearance.
	Record(ctx context.Context, submissionID string) (bool, error)
}

// Memory is a process-local Log.
type Memory struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemory constructs an empty in-memory log.
func NewMemory() *Memory {
	return &Memory{seen: make(map[string]struct{})}
}

// Record marks the id as seen.
func (m *Memory) Record(_ context.Context, submissionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[submissionID]; ok {
		return false, nil
	}
	m.seen[submissionID] = struct{}{}
	return true, nil
}
