// Package storage provides the object-storage abstraction the metadata
// engine commits through: a small Get/Put/PutIfAbsent/Delete/List/Exists
// interface with a compare-and-swap primitive, backed by either the local
// filesystem or an in-memory map for tests.
package storage

import (
	"context"
	"io"
)

// Backend is the storage abstraction the commit protocol is built on.
// PutIfAbsent is the CAS primitive spec's atomic-commit step relies on:
// it must fail, without partially writing, if an object already exists at
// path.
type Backend interface {
	// Get returns the full contents at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Put writes data to path unconditionally, replacing any existing
	// object.
	Put(ctx context.Context, path string, data []byte) error

	// PutIfAbsent writes data to path only if nothing exists there yet.
	// It returns ErrAlreadyExists (wrapped) if a concurrent writer won
	// the race.
	PutIfAbsent(ctx context.Context, path string, data []byte) error

	// Delete removes the object at path. Deleting a missing object is not
	// an error.
	Delete(ctx context.Context, path string) error

	// List returns all object paths under prefix, in no particular order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether an object exists at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// Reader opens a streaming reader for large objects (manifest files,
// manifest lists) where buffering the whole object in memory isn't
// desired. Backends may implement this in addition to Backend.
type Reader interface {
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)
}

// Writer opens a streaming writer. MemBackend makes the object visible to
// Get/Exists only once Close succeeds; FileBackend creates the file when
// OpenWrite is called, so its contents become visible as they are written.
type Writer interface {
	OpenWrite(ctx context.Context, path string) (io.WriteCloser, error)
}
