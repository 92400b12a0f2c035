package buildidx

import (
	"io"
	"os"
)

// FileSystem abstracts the read-side file system operations the map needs.
// It exists for testability: tests swap in a fault-injecting implementation.
type FileSystem interface {
	// ReadDir lists the directory entries of name.
	ReadDir(name string) ([]os.DirEntry, error)
	// Stat describes the named file.
	Stat(name string) (os.FileInfo, error)
	// Open opens the named file for reading.
	Open(name string) (io.ReadCloser, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }
func (LocalFS) Stat(name string) (os.FileInfo, error)      { return os.Stat(name) }
func (LocalFS) Open(name string) (io.ReadCloser, error)    { return os.Open(name) }

// DefaultFS is the default local file system.
var DefaultFS FileSystem = LocalFS{}
