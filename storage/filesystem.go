package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gear6io/icebergcore/pkg/errors"
	"github.com/rs/zerolog"
)

// FilePermissions is the mode new metadata/manifest files are written with.
const FilePermissions = 0644

// FileBackend is a local-filesystem Backend. Put uses a temp-file-plus-
// rename sequence for atomicity; PutIfAbsent uses O_EXCL so a concurrent
// writer to the same path always loses cleanly.
type FileBackend struct {
	root   string
	logger zerolog.Logger
}

// NewFileBackend roots all paths under root.
func NewFileBackend(root string, logger zerolog.Logger) *FileBackend {
	return &FileBackend{root: root, logger: logger}
}

func (f *FileBackend) resolve(path string) string {
	return filepath.Join(f.root, filepath.FromSlash(path))
}

func (f *FileBackend) Get(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(f.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(ErrNotFound, "object not found", err).AddContext("path", path)
		}
		return nil, errors.New(ErrIO, "failed to read object", err).AddContext("path", path)
	}
	return data, nil
}

func (f *FileBackend) Put(_ context.Context, path string, data []byte) error {
	full := f.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return errors.New(ErrIO, "failed to create parent directory", err).AddContext("path", path)
	}

	tmp := full + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePermissions)
	if err != nil {
		return errors.New(ErrIO, "failed to create temp file", err).AddContext("path", path)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return errors.New(ErrIO, "failed to write temp file", err).AddContext("path", path)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return errors.New(ErrIO, "failed to sync temp file", err).AddContext("path", path)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return errors.New(ErrIO, "failed to close temp file", err).AddContext("path", path)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return errors.New(ErrIO, "failed to atomically rename object into place", err).AddContext("path", path)
	}
	return nil
}

func (f *FileBackend) PutIfAbsent(_ context.Context, path string, data []byte) error {
	full := f.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return errors.New(ErrIO, "failed to create parent directory", err).AddContext("path", path)
	}

	file, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, FilePermissions)
	if err != nil {
		if os.IsExist(err) {
			return errors.New(ErrAlreadyExists, "object already exists", err).AddContext("path", path)
		}
		return errors.New(ErrIO, "failed to create object", err).AddContext("path", path)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		os.Remove(full)
		return errors.New(ErrIO, "failed to write object", err).AddContext("path", path)
	}
	return file.Sync()
}

func (f *FileBackend) Delete(_ context.Context, path string) error {
	if err := os.Remove(f.resolve(path)); err != nil && !os.IsNotExist(err) {
		return errors.New(ErrIO, "failed to delete object", err).AddContext("path", path)
	}
	return nil
}

func (f *FileBackend) List(_ context.Context, prefix string) ([]string, error) {
	root := f.resolve(prefix)
	base := filepath.Dir(root)
	var out []string
	err := filepath.Walk(base, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.New(ErrIO, "failed to list objects", err).AddContext("prefix", prefix)
	}
	sort.Strings(out)
	return out, nil
}

func (f *FileBackend) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(f.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.New(ErrIO, "failed to stat object", err).AddContext("path", path)
}

func (f *FileBackend) OpenRead(_ context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(f.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(ErrNotFound, "object not found", err).AddContext("path", path)
		}
		return nil, errors.New(ErrIO, "failed to open object", err).AddContext("path", path)
	}
	return file, nil
}

func (f *FileBackend) OpenWrite(_ context.Context, path string) (io.WriteCloser, error) {
	full := f.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, errors.New(ErrIO, "failed to create parent directory", err).AddContext("path", path)
	}
	file, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePermissions)
	if err != nil {
		return nil, errors.New(ErrIO, "failed to create object", err).AddContext("path", path)
	}
	return file, nil
}
