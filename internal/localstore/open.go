package localstore

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"jobboard/internal/errors"
	"jobboard/internal/logger"
)

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists the accepted values of Options.Backend.
var Backends = []string{BackendFile, BackendRedis, BackendSQLite, BackendMemory}

type Options struct {
	Backend    string
	Dir        string
	RedisURL   string
	SQLitePath string
}

// Open builds the configured backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileKV(opts.Dir)
	case BackendRedis:
		client, err := DialRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, errors.WrapStorage(err, "open redis store")
		}
		return NewRedisKV(client, ""), nil
	case BackendSQLite:
		db, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, errors.WrapStorage(err, "open sqlite store")
		}
		kv, err := NewSQLiteKV(db)
		if err != nil {
			_ = db.Close()
			return nil, errors.WrapStorage(err, "open sqlite store")
		}
		return kv, nil
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, errors.Newf("unknown storage backend %q (expected %s)", opts.Backend, strings.Join(Backends, ", "))
	}
}

// OpenOrMemory is Open, degrading to an in-memory store when the configured
// backend is unavailable. The session keeps working; nothing is persisted.
func OpenOrMemory(ctx context.Context, opts Options, log *zap.SugaredLogger) KV {
	kv, err := Open(ctx, opts)
	if err == nil {
		return kv
	}
	logger.OrNop(log).Warnw("durable store unavailable, applied jobs will not survive restart",
		"backend", opts.Backend, "error", err)
	return NewMemoryKV()
}
