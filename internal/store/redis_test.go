// internal/store/redis_test.go
package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHashKey = "ticket:pages"

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st, err := NewRedisStore(context.Background(), client, testHashKey)
	require.NoError(t, err)
	return st, mr
}

func TestRedisStore_PutAndGet(t *testing.T) {
	st, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, 42, "page-42"))

	id, ok := st.Get(42)
	assert.True(t, ok)
	assert.Equal(t, "page-42", id)
	assert.Equal(t, 1, st.Len())

	assert.Equal(t, "page-42", mr.HGet(testHashKey, "42"))
}

func TestRedisStore_FirstWriteWins(t *testing.T) {
	st, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, 42, "page-first"))
	require.NoError(t, st.Put(ctx, 42, "page-second"))

	id, ok := st.Get(42)
	assert.True(t, ok)
	assert.Equal(t, "page-first", id)
	assert.Equal(t, "page-first", mr.HGet(testHashKey, "42"))
}

func TestRedisStore_LoadsExistingHash(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.HSet(testHashKey, "1", "page-1")
	mr.HSet(testHashKey, "2", "page-2")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st, err := NewRedisStore(context.Background(), client, testHashKey)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Len())

	id, ok := st.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "page-1", id)
}

func TestRedisStore_ConcurrentWriterWins(t *testing.T) {
	// Another process stored the ticket between load and Put; the remote
	// value replaces the local one.
	st, mr := newTestRedisStore(t)
	ctx := context.Background()

	mr.HSet(testHashKey, "7", "page-theirs")
	require.NoError(t, st.Put(ctx, 7, "page-ours"))

	id, ok := st.Get(7)
	assert.True(t, ok)
	assert.Equal(t, "page-theirs", id)
}

func TestNewRedisStore_BadField(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.HSet(testHashKey, "not-a-number", "page-1")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	_, err := NewRedisStore(context.Background(), client, testHashKey)
	assert.Error(t, err)
}

func TestNewRedisStore_LoadError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectHGetAll(testHashKey).SetErr(errors.New("connection refused"))

	_, err := NewRedisStore(context.Background(), client, testHashKey)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_PutError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectHGetAll(testHashKey).SetVal(map[string]string{})
	mock.ExpectHSetNX(testHashKey, "42", "page-42").SetErr(errors.New("connection reset"))

	st, err := NewRedisStore(context.Background(), client, testHashKey)
	require.NoError(t, err)

	err = st.Put(context.Background(), 42, "page-42")
	assert.Error(t, err)

	// A failed write must not poison the in-memory view.
	_, ok := st.Get(42)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
