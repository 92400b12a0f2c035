package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildDir creates a small build directory tree to archive.
func buildDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "2020-01-01_00-00-00")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "artifacts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.json"), []byte(`{"number":1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "log.txt"), []byte("started\nfinished\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "artifacts", "app.bin"), []byte{0x7f, 0x45, 0x4c, 0x46}, 0o755))
	return dir
}

func TestArchiver_RoundTrip(t *testing.T) {
	for _, compression := range []Compression{None, Zstd, LZ4} {
		t.Run(string(compression), func(t *testing.T) {
			ctx := context.Background()
			dir := buildDir(t)

			store := NewMemoryStore()
			a := NewArchiver(store, WithCompression(compression))

			name, err := a.Archive(ctx, dir, "2020-01-01_00-00-00")
			require.NoError(t, err)
			require.Equal(t, "2020-01-01_00-00-00.tar"+compression.Ext(), name)

			dest := t.TempDir()
			require.NoError(t, a.Extract(ctx, name, dest))

			for _, f := range []string{"build.json", "log.txt", filepath.Join("artifacts", "app.bin")} {
				want, err := os.ReadFile(filepath.Join(dir, f))
				require.NoError(t, err)
				got, err := os.ReadFile(filepath.Join(dest, f))
				require.NoError(t, err)
				require.Equal(t, want, got, f)
			}
		})
	}
}

func TestArchiver_DefaultsToZstd(t *testing.T) {
	a := NewArchiver(NewMemoryStore())
	require.Equal(t, "x.tar.zst", a.Name("x"))
}

func TestArchiver_ExtractRejectsUnsafeEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewArchiver(store, WithCompression(None))

	// Hand-craft a plain tar with a traversal entry.
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "../escape",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     4,
	}))
	_, err := tw.Write([]byte("evil"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	require.NoError(t, store.Put(ctx, "evil.tar", &buf))
	require.Error(t, a.Extract(ctx, "evil.tar", t.TempDir()))
}

func TestArchiver_MissingArchive(t *testing.T) {
	a := NewArchiver(NewMemoryStore())
	err := a.Extract(context.Background(), "nope.tar.zst", t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCompression_ForName(t *testing.T) {
	require.Equal(t, Zstd, compressionFor("a.tar.zst"))
	require.Equal(t, LZ4, compressionFor("a.tar.lz4"))
	require.Equal(t, None, compressionFor("a.tar"))
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	require.NoError(t, s.Put(ctx, "builds/a.tar.zst", bytes.NewReader([]byte("alpha"))))
	require.NoError(t, s.Put(ctx, "builds/b.tar.zst", bytes.NewReader([]byte("beta"))))

	r, err := s.Open(ctx, "builds/a.tar.zst")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "alpha", string(data))

	names, err := s.List(ctx, "builds/")
	require.NoError(t, err)
	require.Equal(t, []string{"builds/a.tar.zst", "builds/b.tar.zst"}, names)

	require.NoError(t, s.Delete(ctx, "builds/a.tar.zst"))
	_, err = s.Open(ctx, "builds/a.tar.zst")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing object is not an error.
	require.NoError(t, s.Delete(ctx, "builds/a.tar.zst"))
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	require.NoError(t, s.Put(ctx, "a", bytes.NewReader([]byte("old"))))
	require.NoError(t, s.Put(ctx, "a", bytes.NewReader([]byte("new"))))

	r, err := s.Open(ctx, "a")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "a", bytes.NewReader([]byte("one"))))
	require.NoError(t, s.Put(ctx, "b", bytes.NewReader([]byte("two"))))

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	r, err := s.Open(ctx, "a")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "one", string(data))

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Open(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}
