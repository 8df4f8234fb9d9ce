package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	require.NoError(t, s.Append(ctx, AccountRecord{
		PhoneNumber:  "+15551234567",
		LocalStorage: map[string]string{"dc": "2", "user_auth": "abc"},
	}))
	require.NoError(t, s.Append(ctx, AccountRecord{
		PhoneNumber:  "+251911000000",
		LocalStorage: map[string]string{"dc": "4"},
	}))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Oldest first
	assert.Equal(t, "+15551234567", records[0].PhoneNumber)
	assert.Equal(t, "+251911000000", records[1].PhoneNumber)
	assert.Equal(t, map[string]string{"dc": "2", "user_auth": "abc"}, records[0].LocalStorage)

	for _, rec := range records {
		assert.NotEmpty(t, rec.ID)
		ts, err := time.Parse(time.RFC3339, rec.CreatedAt)
		require.NoError(t, err)
		assert.True(t, ts.After(base))
	}
}

func TestListEmpty(t *testing.T) {
	s := openTestStore(t)

	records, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestServerAssignsIdentity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Caller-supplied ID and timestamp must not survive the append
	require.NoError(t, s.Append(ctx, AccountRecord{
		ID:          "caller-id",
		PhoneNumber: "+441234567890",
		CreatedAt:   "1999-01-01T00:00:00Z",
	}))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.NotEqual(t, "caller-id", records[0].ID)
	assert.NotEqual(t, "1999-01-01T00:00:00Z", records[0].CreatedAt)
}

func TestClosedStoreUnavailable(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	err := s.Append(context.Background(), AccountRecord{PhoneNumber: "+1"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.List(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNilStoreUnavailable(t *testing.T) {
	var s *Store

	err := s.Append(context.Background(), AccountRecord{})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = s.List(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
