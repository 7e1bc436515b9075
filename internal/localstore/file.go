package localstore

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"jobboard/internal/errors"
)

const (
	lockRetryInterval = 25 * time.Millisecond
	lockWait          = 2 * time.Second
	lockStaleAfter    = time.Minute
)

// FileKV stores each key as <dir>/<key>.json. Writes are atomic and
// serialized both in-process and across processes sharing dir.
type FileKV struct {
	dir string
	mu  sync.Mutex
}

func NewFileKV(dir string) (*FileKV, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("file store directory is required")
	}
	if err := Mkdir(dir); err != nil {
		return nil, err
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) Dir() string { return f.dir }

func (f *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := f.pathFor(key)
	if err != nil {
		return nil, err
	}
	return ReadBytes(path)
}

func (f *FileKV) Put(ctx context.Context, key string, value []byte) error {
	path, err := f.pathFor(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	lock, err := f.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release()
	}()

	return WriteBytes(path, value)
}

func (f *FileKV) Close() error { return nil }

func (f *FileKV) acquire(ctx context.Context) (DirLock, error) {
	deadline := time.Now().Add(lockWait)
	for {
		lock, err := AcquireDirLock(f.dir, lockStaleAfter)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLocked) || time.Now().After(deadline) {
			return DirLock{}, err
		}
		select {
		case <-ctx.Done():
			return DirLock{}, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (f *FileKV) pathFor(key string) (string, error) {
	k := strings.TrimSpace(key)
	if k == "" || strings.ContainsAny(k, `/\`) || k == "." || k == ".." || strings.HasPrefix(k, ".") {
		return "", errors.Newf("invalid store key %q", key)
	}
	return filepath.Join(f.dir, k+".json"), nil
}
