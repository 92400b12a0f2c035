// Package buildidx provides a lazily-populated, thread-safe index of build
// records persisted as directories on disk.
//
// A Map binds a base directory whose immediate subdirectories are candidate
// build records. A subdirectory is a candidate when its name round-trips
// through the canonical timestamp encoding (see the timeid package) and does
// not carry the reserved legacy prefix "0000". A candidate yields a record
// only if it contains the marker artifact (MarkerFile); otherwise it is a
// silent hole.
//
// Records are materialized on first access, never eagerly. The index is
// copy-on-write: every structural change publishes a new immutable snapshot,
// so readers never block and never observe a half-updated state. Concurrent
// first-time loads of the same build number are coalesced so exactly one
// load hits the disk.
//
// # Quick Start
//
//	ctx := context.Background()
//	m, err := buildidx.New("./jobs/app/builds", build.Factory(codec.Default))
//	if err != nil {
//	    panic(err)
//	}
//
//	newest, ok := m.NewestValue(ctx)
//	r, ok := m.Get(ctx, 42)
//	r, ok = m.Search(ctx, 42, buildidx.Descending) // greatest number <= 42
//
//	for number, rec := range m.View().All() {
//	    fmt.Println(number, rec.ID())
//	}
//
// Loaded records form a doubly-linked chain in number order:
//
//	for r, ok := m.OldestValue(ctx); ok && r != nil; r = r.Next() {
//	    process(r)
//	}
//
// # Failure Model
//
// A single record's load failure never fails the index. Malformed directory
// names are routine and logged at debug level; load errors are logged at
// warning level with the offending path and the number degrades to absent.
// Only programmer errors (nil factory, missing base directory) surface as
// errors, and only at construction time.
package buildidx
