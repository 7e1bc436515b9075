package localstore

import (
	"os"
	"path/filepath"

	"jobboard/internal/errors"
)

func Mkdir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.Wrapf(err, "create directory %s", path)
	}
	return nil
}

// WriteBytes replaces path atomically: readers see either the old content or
// the new content, never a partial write.
func WriteBytes(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create parent for %s", path)
	}

	tmp, err := os.CreateTemp(dir, ".jobboard-tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "write temp file for %s", path)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "sync temp file for %s", path)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "chmod temp file for %s", path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "close temp file for %s", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return errors.Wrapf(err, "atomic rename for %s", path)
	}
	return nil
}

// ReadBytes returns ErrKeyNotFound when path does not exist.
func ReadBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "read file %s", path)
	}
	return data, nil
}
