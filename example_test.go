package buildidx_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/buildidx"
	"github.com/hupe1980/buildidx/build"
	"github.com/hupe1980/buildidx/codec"
)

func ExampleMap() {
	baseDir, err := os.MkdirTemp("", "builds")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(baseDir)

	// A CI job leaves one directory per build, named after its start time,
	// with a manifest once the build has a result.
	for i, id := range []string{"2024-03-01_10-00-00", "2024-03-01_11-30-00"} {
		dir := filepath.Join(baseDir, id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err)
		}
		data := codec.MustMarshal(nil, build.Manifest{Number: i + 1, Result: build.ResultSuccess})
		if err := os.WriteFile(filepath.Join(dir, buildidx.MarkerFile), data, 0o644); err != nil {
			log.Fatal(err)
		}
	}

	m, err := buildidx.New(baseDir, build.Factory(nil))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	newest, ok := m.NewestValue(ctx)
	if !ok {
		log.Fatal("no builds")
	}
	fmt.Println(newest.Number(), newest.ID())

	r, _ := m.Get(ctx, 1)
	fmt.Println(r.Number(), r.ID())
	// Output:
	// 2 2024-03-01_11-30-00
	// 1 2024-03-01_10-00-00
}

func ExampleView_All() {
	baseDir, err := os.MkdirTemp("", "builds")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(baseDir)

	for i, id := range []string{"2024-03-01_10-00-00", "2024-03-01_11-30-00", "2024-03-01_13-00-00"} {
		dir := filepath.Join(baseDir, id)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err)
		}
		data := codec.MustMarshal(nil, build.Manifest{
			Number: i + 1,
			Result: build.ResultSuccess,
		})
		if err := os.WriteFile(filepath.Join(dir, buildidx.MarkerFile), data, 0o644); err != nil {
			log.Fatal(err)
		}
	}

	m, err := buildidx.New(baseDir, build.Factory(nil))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// Walk every build oldest to newest; the walk itself loads them.
	if _, ok := m.OldestValue(ctx); !ok {
		log.Fatal("no builds")
	}
	for n := 1; ; n++ {
		if _, ok := m.Get(ctx, n); !ok {
			break
		}
	}

	for number, r := range m.View().All() {
		fmt.Printf("#%d started %s\n", number, r.(*build.Record).StartedAt().Format("15:04"))
	}
	// Output:
	// #1 started 10:00
	// #2 started 11:30
	// #3 started 13:00
}
