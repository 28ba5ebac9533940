package middleware

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencydesk/config"
)

func newTestStorage(t *testing.T) *RedisStorage {
	t.Helper()
	mr := miniredis.RunT(t)
	storage := NewRedisStorage(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestRedisStorage(t *testing.T) {
	storage := newTestStorage(t)

	t.Run("Missing key is not an error", func(t *testing.T) {
		// The limiter treats nil, nil as a fresh counter; surfacing the
		// client's miss sentinel instead fails every first request.
		val, err := storage.Get("unseen")
		require.NoError(t, err)
		assert.Nil(t, val)
	})

	t.Run("Round trip", func(t *testing.T) {
		require.NoError(t, storage.Set("hits", []byte("3"), time.Minute))

		val, err := storage.Get("hits")
		require.NoError(t, err)
		assert.Equal(t, []byte("3"), val)
	})

	t.Run("Deleted key reads as missing", func(t *testing.T) {
		require.NoError(t, storage.Set("hits", []byte("3"), time.Minute))
		require.NoError(t, storage.Delete("hits"))

		val, err := storage.Get("hits")
		require.NoError(t, err)
		assert.Nil(t, val)
	})
}
