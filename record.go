package buildidx

import (
	"context"
	"sync"
)

// Record is one materialized build, loaded from its directory under the
// map's base directory.
//
// Number and ID are immutable after construction. Previous and Next are
// maintained by the owning Map: they always reflect the current adjacency
// among loaded records and change only while the map rewires the chain.
//
// Implementations embed Base, which provides the full method set:
//
//	type MyBuild struct {
//	    buildidx.Base
//	    Result string
//	}
type Record interface {
	// Number is the build number, the unique sort and lookup key.
	Number() int

	// ID is the record's directory name, the canonical timestamp encoding
	// of the moment the build started.
	ID() string

	// Previous returns the loaded record with the greatest number smaller
	// than this one, or nil if none is loaded.
	Previous() Record

	// Next returns the loaded record with the smallest number greater than
	// this one, or nil if none is loaded.
	Next() Record

	setPrevious(Record)
	setNext(Record)
}

// OnLoader is an optional hook invoked once after a record is constructed
// and before it becomes visible in the map. Use it for internal fix-ups
// that need the fully decoded state. An error fails the load: it is logged
// and the number degrades to absent.
type OnLoader interface {
	OnLoad() error
}

// Source describes the directory a Factory materializes a record from.
type Source struct {
	// Dir is the absolute path of the record's directory.
	Dir string

	// ID is the directory name (canonical timestamp encoding).
	ID string

	// Number is the build number assigned by the map. Records must report
	// it unchanged from Number().
	Number int

	// FS is the file system the map was configured with. Factories should
	// read through it so fault injection and testing keep working.
	FS FileSystem
}

// Factory materializes a Record from its on-disk directory.
//
// The marker artifact is already verified to exist when the factory runs.
// Returning an error marks the number absent; it never propagates to the
// map's callers.
type Factory func(ctx context.Context, src Source) (Record, error)

// Base carries a record's identity and chain pointers. Embed it in record
// implementations and initialize it with NewBase.
type Base struct {
	number int
	id     string

	mu   sync.RWMutex
	prev Record
	next Record
}

// NewBase returns the identity base for a record.
func NewBase(number int, id string) Base {
	return Base{number: number, id: id}
}

// Number implements Record.
func (b *Base) Number() int { return b.number }

// ID implements Record.
func (b *Base) ID() string { return b.id }

// Previous implements Record.
func (b *Base) Previous() Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.prev
}

// Next implements Record.
func (b *Base) Next() Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.next
}

func (b *Base) setPrevious(r Record) {
	b.mu.Lock()
	b.prev = r
	b.mu.Unlock()
}

func (b *Base) setNext(r Record) {
	b.mu.Lock()
	b.next = r
	b.mu.Unlock()
}
