// Package build provides the default record implementation for buildidx:
// a build whose state is a JSON manifest stored as the marker artifact of
// its directory.
//
// Callers with their own record format only need the Factory seam on
// buildidx.New; this package is for the common case.
package build

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/hupe1980/buildidx"
	"github.com/hupe1980/buildidx/codec"
	"github.com/hupe1980/buildidx/timeid"
)

// Result is the terminal state a build finished in.
type Result string

const (
	ResultSuccess  Result = "SUCCESS"
	ResultUnstable Result = "UNSTABLE"
	ResultFailure  Result = "FAILURE"
	ResultAborted  Result = "ABORTED"
	ResultNotBuilt Result = "NOT_BUILT"
	ResultUnknown  Result = "UNKNOWN"
)

// Manifest is the decoded marker artifact of a build directory.
type Manifest struct {
	Number      int               `json:"number"`
	Result      Result            `json:"result"`
	StartedAt   time.Time         `json:"started_at"`
	DurationMS  int64             `json:"duration_ms"`
	DisplayName string            `json:"display_name,omitempty"`
	Description string            `json:"description,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

// Record is a build materialized from its manifest.
type Record struct {
	buildidx.Base

	// Manifest is the decoded marker artifact. Treat it as read-only once
	// the record is published.
	Manifest Manifest

	dir string
}

// Dir returns the build's backing directory.
func (r *Record) Dir() string { return r.dir }

// Result returns the build result, never empty after OnLoad.
func (r *Record) Result() Result { return r.Manifest.Result }

// StartedAt returns when the build started.
func (r *Record) StartedAt() time.Time { return r.Manifest.StartedAt }

// Duration returns how long the build ran.
func (r *Record) Duration() time.Duration {
	return time.Duration(r.Manifest.DurationMS) * time.Millisecond
}

// DisplayName returns the human-readable build name, never empty after
// OnLoad.
func (r *Record) DisplayName() string { return r.Manifest.DisplayName }

// OnLoad fills in fields older manifests omit. It runs once, before the
// record becomes visible in the index.
func (r *Record) OnLoad() error {
	if r.Manifest.Result == "" {
		r.Manifest.Result = ResultUnknown
	}
	if r.Manifest.DisplayName == "" {
		r.Manifest.DisplayName = fmt.Sprintf("#%d", r.Number())
	}
	if r.Manifest.StartedAt.IsZero() {
		// The directory name is the start timestamp.
		t, err := timeid.Parse(r.ID())
		if err != nil {
			return fmt.Errorf("build: derive start time from id %q: %w", r.ID(), err)
		}
		r.Manifest.StartedAt = t
	}
	return nil
}

// Factory returns a buildidx.Factory that decodes the marker artifact with
// c. Pass nil for the default codec.
func Factory(c codec.Codec) buildidx.Factory {
	if c == nil {
		c = codec.Default
	}

	return func(ctx context.Context, src buildidx.Source) (buildidx.Record, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(src.Dir, buildidx.MarkerFile)
		f, err := src.FS.Open(path)
		if err != nil {
			return nil, fmt.Errorf("build: open %s: %w", path, err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("build: read %s: %w", path, err)
		}

		var man Manifest
		if err := c.Unmarshal(data, &man); err != nil {
			return nil, fmt.Errorf("build: decode %s: %w", path, err)
		}

		r := &Record{
			Base:     buildidx.NewBase(src.Number, src.ID),
			Manifest: man,
			dir:      src.Dir,
		}
		return r, nil
	}
}
