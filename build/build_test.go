package build_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/buildidx"
	"github.com/hupe1980/buildidx/build"
	"github.com/hupe1980/buildidx/codec"
)

func writeMarker(t *testing.T, dir string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, buildidx.MarkerFile), data, 0o644))
}

func source(dir, id string, number int) buildidx.Source {
	return buildidx.Source{Dir: dir, ID: id, Number: number, FS: buildidx.DefaultFS}
}

func TestFactory_DecodesManifest(t *testing.T) {
	const id = "2021-06-15_08-30-00"
	dir := filepath.Join(t.TempDir(), id)

	started := time.Date(2021, 6, 15, 8, 30, 1, 0, time.UTC)
	writeMarker(t, dir, codec.MustMarshal(nil, build.Manifest{
		Number:      7,
		Result:      build.ResultUnstable,
		StartedAt:   started,
		DurationMS:  90500,
		DisplayName: "release candidate",
		Description: "nightly",
		Parameters:  map[string]string{"BRANCH": "main"},
	}))

	r, err := build.Factory(nil)(context.Background(), source(dir, id, 7))
	require.NoError(t, err)

	rec, ok := r.(*build.Record)
	require.True(t, ok)
	require.NoError(t, rec.OnLoad())

	require.Equal(t, 7, rec.Number())
	require.Equal(t, id, rec.ID())
	require.Equal(t, dir, rec.Dir())
	require.Equal(t, build.ResultUnstable, rec.Result())
	require.True(t, rec.StartedAt().Equal(started))
	require.Equal(t, 90*time.Second+500*time.Millisecond, rec.Duration())
	require.Equal(t, "release candidate", rec.DisplayName())
	require.Equal(t, "main", rec.Manifest.Parameters["BRANCH"])
}

func TestRecord_OnLoadDefaults(t *testing.T) {
	const id = "2021-06-15_08-30-00"
	dir := filepath.Join(t.TempDir(), id)

	// A minimal manifest, as an in-progress writer or an older producer
	// would leave it.
	writeMarker(t, dir, []byte(`{"number": 3}`))

	r, err := build.Factory(nil)(context.Background(), source(dir, id, 3))
	require.NoError(t, err)

	rec := r.(*build.Record)
	require.NoError(t, rec.OnLoad())

	require.Equal(t, build.ResultUnknown, rec.Result())
	require.Equal(t, "#3", rec.DisplayName())
	require.Equal(t, time.Date(2021, 6, 15, 8, 30, 0, 0, time.UTC), rec.StartedAt().UTC())
	require.Zero(t, rec.Duration())
}

func TestRecord_OnLoadRejectsUnparsableID(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "whatever")
	writeMarker(t, dir, []byte(`{}`))

	r, err := build.Factory(nil)(context.Background(), source(dir, "not-a-timestamp", 1))
	require.NoError(t, err)

	// Start time can neither come from the manifest nor the id.
	require.Error(t, r.(*build.Record).OnLoad())
}

func TestFactory_Errors(t *testing.T) {
	const id = "2021-06-15_08-30-00"
	baseDir := t.TempDir()

	t.Run("missing marker", func(t *testing.T) {
		dir := filepath.Join(baseDir, "missing", id)
		require.NoError(t, os.MkdirAll(dir, 0o755))

		_, err := build.Factory(nil)(context.Background(), source(dir, id, 1))
		require.Error(t, err)
	})

	t.Run("corrupt manifest", func(t *testing.T) {
		dir := filepath.Join(baseDir, "corrupt", id)
		writeMarker(t, dir, []byte("{truncated"))

		_, err := build.Factory(nil)(context.Background(), source(dir, id, 1))
		require.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		dir := filepath.Join(baseDir, "canceled", id)
		writeMarker(t, dir, []byte(`{}`))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := build.Factory(nil)(ctx, source(dir, id, 1))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestFactory_ExplicitCodec(t *testing.T) {
	const id = "2021-06-15_08-30-00"
	dir := filepath.Join(t.TempDir(), id)
	writeMarker(t, dir, codec.MustMarshal(codec.JSON{}, build.Manifest{Number: 1, Result: build.ResultSuccess}))

	r, err := build.Factory(codec.JSON{})(context.Background(), source(dir, id, 1))
	require.NoError(t, err)
	require.Equal(t, build.ResultSuccess, r.(*build.Record).Result())
}
