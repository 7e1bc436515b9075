package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/errors"
)

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := Open(ctx, Options{Backend: "file", Dir: filepath.Join(dir, "data")})
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	kv, err = Open(ctx, Options{Backend: "MEMORY"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	kv, err = Open(ctx, Options{Backend: "sqlite", SQLitePath: filepath.Join(dir, "jobboard.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteKV{}, kv)
	require.NoError(t, kv.Close())

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.Error(t, err)
}

func TestOpen_RedisFailureIsStorageError(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "redis", RedisURL: "::bad::"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStorage))
}

func TestOpenOrMemory_DegradesToMemory(t *testing.T) {
	kv := OpenOrMemory(context.Background(), Options{Backend: "redis", RedisURL: "::bad::"}, nil)
	assert.IsType(t, &MemoryKV{}, kv)
}
