package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Key(t *testing.T) {
	db, _ := redismock.NewClientMock()
	assert.Equal(t, "qadigest:history:algebra", NewRedisStore(db, "", nil).Key("algebra"))
	assert.Equal(t, "x:history:algebra", NewRedisStore(db, "x", nil).Key("algebra"))
}

func TestRedisStore_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, "", nil)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectHGetAll(s.Key("algebra")).SetVal(map[string]string{
			"Q1": "2025-01-01 10:00:00",
			"Q2": "not a time",
		})
		h := s.Load(ctx, "algebra")
		assert.Len(t, h, 1)
		assert.True(t, h["Q1"].Equal(time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		mock.ExpectHGetAll(s.Key("algebra")).SetVal(map[string]string{})
		assert.Empty(t, s.Load(ctx, "algebra"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisErrorFailsSoft", func(t *testing.T) {
		mock.ExpectHGetAll(s.Key("algebra")).SetErr(errors.New("connection refused"))
		assert.Empty(t, s.Load(ctx, "algebra"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisStore_Commit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, "", nil)
	ctx := context.Background()
	key := s.Key("algebra")
	at := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

	t.Run("MergesWithPersisted", func(t *testing.T) {
		mock.ExpectHGetAll(key).SetVal(map[string]string{"Q0": "2025-01-01 00:00:00"})
		mock.ExpectHSet(key,
			"Q0", "2025-01-01 00:00:00",
			"Q1", "2025-02-03T04:05:06Z",
			"Q2", "2025-02-03T04:05:06Z",
		).SetVal(2)

		require.NoError(t, s.Commit(ctx, "algebra", []string{"Q2", "Q1"}, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ReadErrorAborts", func(t *testing.T) {
		readErr := errors.New("timeout")
		mock.ExpectHGetAll(key).SetErr(readErr)

		err := s.Commit(ctx, "algebra", []string{"Q1"}, at)
		assert.ErrorIs(t, err, readErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WriteError", func(t *testing.T) {
		writeErr := errors.New("READONLY")
		mock.ExpectHGetAll(key).SetVal(map[string]string{})
		mock.ExpectHSet(key, "Q1", "2025-02-03T04:05:06Z").SetErr(writeErr)

		err := s.Commit(ctx, "algebra", []string{"Q1"}, at)
		assert.ErrorIs(t, err, writeErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyIsNoop", func(t *testing.T) {
		require.NoError(t, s.Commit(ctx, "algebra", nil, at))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisStore_Sets(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, "", nil)
	ctx := context.Background()

	mock.ExpectScan(0, "qadigest:history:*", 100).
		SetVal([]string{"qadigest:history:physics", "qadigest:history:algebra"}, 7)
	mock.ExpectScan(7, "qadigest:history:*", 100).
		SetVal([]string{"qadigest:history:algebra"}, 0)

	sets, err := s.Sets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra", "physics"}, sets)
	assert.NoError(t, mock.ExpectationsWereMet())

	scanErr := errors.New("connection refused")
	mock.ExpectScan(0, "qadigest:history:*", 100).SetErr(scanErr)
	_, err = s.Sets(ctx)
	assert.ErrorIs(t, err, scanErr)
}
