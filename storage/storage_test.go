package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/snucp/tfhe-wopbs/storage"
	"github.com/snucp/tfhe-wopbs/tfhe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testParams = tfhe.ParamsTestUint64.Compile()
	enc        = tfhe.NewEncryptorWithSeed(testParams, []byte("storage test seed"))
)

// corruptStore flips a bit of every loaded entity.
type corruptStore struct {
	storage.Store
}

func (s corruptStore) Get(ctx context.Context, h storage.Handle) ([]byte, error) {
	data, err := s.Store.Get(ctx, h)
	if err != nil {
		return nil, err
	}
	data[len(data)-1] ^= 1
	return data, nil
}

func testStore(t *testing.T, s storage.Store) {
	ctx := context.Background()

	t.Run("PutGet", func(t *testing.T) {
		data := []byte("ciphertext")
		h, err := s.Put(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, storage.ComputeHandle(data), h)
		require.NoError(t, h.Validate())

		h2, err := s.Put(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, h, h2)

		got, err := s.Get(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, data, got)

		ok, err := s.Exists(ctx, h)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, s.Delete(ctx, h))
		ok, err = s.Exists(ctx, h)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.Get(ctx, h)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, h), storage.ErrNotFound)
	})

	t.Run("Entity", func(t *testing.T) {
		ct := enc.EncryptLWE(3)
		h, err := storage.PutEntity(ctx, s, ct)
		require.NoError(t, err)

		var ctOut tfhe.LWECiphertext[uint64]
		require.NoError(t, storage.GetEntity(ctx, s, h, &ctOut))
		assert.True(t, ct.Equals(ctOut))
		assert.Equal(t, 3, enc.DecryptLWE(ctOut))

		assert.ErrorIs(t, storage.GetEntity(ctx, corruptStore{s}, h, &ctOut), storage.ErrCorrupted)

		var ctGLWE tfhe.GLWECiphertext[uint64]
		assert.ErrorIs(t, storage.GetEntity(ctx, s, h, &ctGLWE), tfhe.ErrMalformedPayload)
	})

	t.Run("InvalidHandle", func(t *testing.T) {
		var ctOut tfhe.LWECiphertext[uint64]
		assert.ErrorIs(t, storage.GetEntity(ctx, s, "abc", &ctOut), storage.ErrInvalidHandle)

		bad := storage.Handle(string(make([]byte, 64)))
		assert.ErrorIs(t, bad.Validate(), storage.ErrInvalidHandle)
	})
}

func TestMemoryStore(t *testing.T) {
	s := storage.NewMemoryStore(0)
	defer s.Close()
	testStore(t, s)

	t.Run("Capacity", func(t *testing.T) {
		s := storage.NewMemoryStore(16)
		ctx := context.Background()

		_, err := s.Put(ctx, make([]byte, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(10), s.Size())

		_, err = s.Put(ctx, make([]byte, 10))
		assert.NoError(t, err, "duplicate data takes no space")

		_, err = s.Put(ctx, []byte("0123456789"))
		assert.ErrorIs(t, err, storage.ErrStorageFull)
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TFHE_REDIS_ADDR")
	if addr == "" {
		t.Skip("TFHE_REDIS_ADDR is not set")
	}

	s, err := storage.NewRedisStore(context.Background(), storage.RedisConfig{Addr: addr, Prefix: "tfhe:test:"})
	require.NoError(t, err)
	defer s.Close()
	testStore(t, s)
}
