// Package archive preserves removed build directories as compressed tar
// archives in a pluggable object store.
//
// Removal in buildidx never deletes the backing directory; an Archiver
// wired via buildidx.WithArchiver snapshots the directory into a Store
// first, so an external janitor can delete it afterwards without losing
// the build's artifacts. Local and in-memory stores live here; the s3 and
// minio subpackages provide cloud backends.
package archive

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when an archive does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is a destination for immutable archive objects.
type Store interface {
	// Put writes the object atomically: it is either fully visible under
	// name afterwards, or not at all.
	Put(ctx context.Context, name string, r io.Reader) error

	// Open opens an existing object for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the object names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
