package dedup

import (
	"context"
	"fmt"
	"sync"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var (
	_ Log = (*Memory)(nil)
	_ Log = (*PG)(nil)
)

func TestMemory_FirstSeenThenDuplicate(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()

	first, err := m.Record(ctx, "abc123")
	require.NoError(t, err)
	require.True(t, first)

	again, err := m.Record(ctx, "abc123")
	require.NoError(t, err)
	require.False(t, again)

	other, err := m.Record(ctx, "def456")
	require.NoError(t, err)
	require.True(t, other)
}

func TestMemory_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()

	const n = 64
	var wg sync.WaitGroup
	wins := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if first, _ := m.Record(ctx, "same-id"); first {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)
	var count int
	for range wins {
		count++
	}
	require.Equal(t, 1, count, "exactly one submitter sees first-seen")
}

func TestPG_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	l := NewPGWithExecer(mock)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO submission_log \(submission_id, first_seen_at\)`).
		WithArgs("abc123").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	first, err := l.Record(ctx, "abc123")
	require.NoError(t, err)
	require.True(t, first)

	// Conflict: zero rows affected means the id was recorded before.
	mock.ExpectExec(`INSERT INTO submission_log \(submission_id, first_seen_at\)`).
		WithArgs("abc123").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	first, err = l.Record(ctx, "abc123")
	require.NoError(t, err)
	require.False(t, first)

	mock.ExpectExec(`INSERT INTO submission_log \(submission_id, first_seen_at\)`).
		WithArgs("err-id").
		WillReturnError(fmt.Errorf("conn closed"))
	_, err = l.Record(ctx, "err-id")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
