package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/gear6io/icebergcore/pkg/errors"
	"github.com/rs/zerolog"
)

// MemBackend is an in-memory Backend for tests and single-process
// scenarios. All methods are safe for concurrent use.
type MemBackend struct {
	mu     sync.RWMutex
	data   map[string][]byte
	logger zerolog.Logger
}

// NewMemBackend creates an empty in-memory backend.
func NewMemBackend(logger zerolog.Logger) *MemBackend {
	return &MemBackend{data: make(map[string][]byte), logger: logger}
}

func (m *MemBackend) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[path]
	if !ok {
		return nil, errors.New(ErrNotFound, "object not found", nil).AddContext("path", path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemBackend) Put(_ context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[path] = cp
	return nil
}

func (m *MemBackend) PutIfAbsent(_ context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[path]; exists {
		return errors.New(ErrAlreadyExists, "object already exists", nil).AddContext("path", path)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[path] = cp
	return nil
}

func (m *MemBackend) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, path)
	return nil
}

func (m *MemBackend) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for p := range m.data {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemBackend) Exists(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[path]
	return ok, nil
}

func (m *MemBackend) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	data, err := m.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type memWriteCloser struct {
	backend *MemBackend
	path    string
	buf     *bytes.Buffer
}

func (w *memWriteCloser) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriteCloser) Close() error {
	return w.backend.Put(context.Background(), w.path, w.buf.Bytes())
}

func (m *MemBackend) OpenWrite(_ context.Context, path string) (io.WriteCloser, error) {
	return &memWriteCloser{backend: m, path: path, buf: bytes.NewBuffer(nil)}, nil
}
