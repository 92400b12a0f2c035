package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Archiver packs build directories into tar archives and uploads them to a
// Store. It implements buildidx.Archiver.
type Archiver struct {
	store       Store
	compression Compression
}

// ArchiverOption configures an Archiver.
type ArchiverOption func(*Archiver)

// WithCompression selects the archive compression. Default is Zstd.
func WithCompression(c Compression) ArchiverOption {
	return func(a *Archiver) {
		a.compression = c
	}
}

// NewArchiver creates an Archiver uploading to store.
func NewArchiver(store Store, optFns ...ArchiverOption) *Archiver {
	a := &Archiver{
		store:       store,
		compression: Zstd,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(a)
		}
	}
	return a
}

// Name returns the object name an archive of id is stored under.
func (a *Archiver) Name(id string) string {
	return id + ".tar" + a.compression.Ext()
}

// Archive packs dir and uploads it under Name(id), streaming: the tar
// stream is piped into the store without buffering the whole archive in
// memory.
func (a *Archiver) Archive(ctx context.Context, dir, id string) (string, error) {
	name := a.Name(id)

	pr, pw := io.Pipe()
	go func() {
		_ = pw.CloseWithError(a.writeTar(pw, dir))
	}()

	if err := a.store.Put(ctx, name, pr); err != nil {
		// Unblock the producer if the store gave up first.
		_ = pr.CloseWithError(err)
		return "", fmt.Errorf("archive: put %s: %w", name, err)
	}
	return name, nil
}

func (a *Archiver) writeTar(w io.Writer, dir string) error {
	cw, err := a.compression.newWriter(w)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		// Regular files and directories only; sockets, devices and
		// symlinks have no business in a build archive.
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

// Extract unpacks the named archive into dest, which is created if needed.
func (a *Archiver) Extract(ctx context.Context, name, dest string) error {
	obj, err := a.store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", name, err)
	}
	defer obj.Close()

	cr, err := compressionFor(name).newReader(obj)
	if err != nil {
		return err
	}
	defer cr.Close()

	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("archive: read %s: %w", name, err)
		}

		rel := filepath.FromSlash(hdr.Name)
		if strings.Contains(rel, "..") || filepath.IsAbs(rel) {
			return fmt.Errorf("archive: %s: unsafe entry name %q", name, hdr.Name)
		}
		path := filepath.Join(dest, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
	}
}
