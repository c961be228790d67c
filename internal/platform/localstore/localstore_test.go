package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrmportal/internal/platform/crypto"
)

type kv interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

func exercise(t *testing.T, store kv) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "hrmsToken")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, map[string]string{"hrmsUser": `{"id":"1"}`, "hrmsToken": "tok-1"}))
	require.NoError(t, store.Put(ctx, map[string]string{"hrmsToken": "tok-2"}))

	v, ok, err := store.Get(ctx, "hrmsToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-2", v)

	require.NoError(t, store.Delete(ctx, "hrmsUser", "hrmsToken"))
	for _, key := range []string{"hrmsUser", "hrmsToken"} {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "client.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	exercise(t, store)
	require.NoError(t, store.Put(context.Background(), map[string]string{"hrmsToken": "persisted"}))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(context.Background(), "hrmsToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func TestSealedEncryptsSelectedKeys(t *testing.T) {
	sealer, err := crypto.NewSealer("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	require.NoError(t, err)
	backend := NewMemory()
	store := NewSealed(backend, sealer, "hrmsToken")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, map[string]string{"hrmsUser": `{"id":"1"}`, "hrmsToken": "tok-1"}))

	raw, _, _ := backend.Get(ctx, "hrmsToken")
	assert.NotEqual(t, "tok-1", raw)
	user, _, _ := backend.Get(ctx, "hrmsUser")
	assert.Equal(t, `{"id":"1"}`, user)

	v, ok, err := store.Get(ctx, "hrmsToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", v)

	other, _ := crypto.NewSealer("")
	_, ok, err = NewSealed(backend, other, "hrmsToken").Get(ctx, "hrmsToken")
	require.NoError(t, err)
	assert.False(t, ok, "unreadable token reads as missing")
}
