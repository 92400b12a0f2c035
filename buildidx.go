package buildidx

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// MarkerFile is the artifact a candidate directory must contain to yield a
// record. A candidate without it is a silent hole: the build may still be
// in progress, or its result was deleted.
const MarkerFile = "build.json"

// Map is a lazily-populated, copy-on-write index from build number to
// Record, backed by a base directory. It is safe for concurrent use: reads
// go against an immutable snapshot, structural changes publish a new one
// atomically, and concurrent first-time loads of the same number are
// coalesced into a single disk read.
type Map struct {
	baseDir string
	factory Factory

	fsys     FileSystem
	logger   *Logger
	metrics  MetricsCollector
	archiver Archiver
	now      func() time.Time

	// snap is the published index of loaded records.
	snap atomic.Pointer[snapshot]

	// dirs is the cached candidate listing; nil until the first scan.
	dirs      atomic.Pointer[listing]
	scanMu    sync.Mutex // serializes rescans
	scanLimit *rate.Limiter

	// pubMu serializes structural mutation (insert/remove + relink).
	pubMu sync.Mutex

	// group coalesces concurrent loads of the same number.
	group singleflight.Group

	// absent holds numbers probed and found empty; removed holds numbers
	// explicitly removed, which never resurrect from a rescan.
	stateMu sync.Mutex
	absent  *roaring.Bitmap
	removed *roaring.Bitmap
}

// New creates a Map over baseDir. The factory is the seam to the record
// construction collaborator; it must not be nil.
func New(baseDir string, factory Factory, optFns ...Option) (*Map, error) {
	m := NewUnbound(optFns...)
	if err := m.Bind(baseDir, factory); err != nil {
		return nil, err
	}
	return m, nil
}

// NewUnbound creates a Map without a base directory. All lookups resolve
// to absent until Bind is called.
//
// Deprecated: use New. This two-phase path exists for callers that
// historically constructed the map before its owner knew the directory.
func NewUnbound(optFns ...Option) *Map {
	o := applyOptions(optFns)

	m := &Map{
		fsys:      o.fsys,
		logger:    o.logger,
		metrics:   o.metrics,
		archiver:  o.archiver,
		now:       time.Now,
		scanLimit: rate.NewLimiter(rate.Every(o.rescanInterval), 1),
		absent:    roaring.New(),
		removed:   roaring.New(),
	}
	m.snap.Store(emptySnapshot)

	return m
}

// Bind attaches the base directory and record factory to a map created
// with NewUnbound. It does not load anything; loading stays lazy.
//
// Deprecated: use New.
func (m *Map) Bind(baseDir string, factory Factory) error {
	if factory == nil {
		return ErrNilFactory
	}
	if baseDir == "" {
		return ErrNoBaseDir
	}

	m.scanMu.Lock()
	defer m.scanMu.Unlock()

	if m.baseDir != "" {
		return ErrAlreadyBound
	}
	m.baseDir = baseDir
	m.factory = factory
	return nil
}

func (m *Map) bound() bool {
	m.scanMu.Lock()
	defer m.scanMu.Unlock()
	return m.baseDir != ""
}

// Get returns the record for number, loading it on first access if a valid
// candidate directory exists. It returns false when no candidate exists,
// the candidate is a hole, or the load failed. At most one load runs per
// number even under concurrent callers; all of them observe the same
// result.
func (m *Map) Get(ctx context.Context, number int) (Record, bool) {
	if number < 1 || !m.bound() {
		return nil, false
	}

	if r, ok := m.snap.Load().get(number); ok {
		return r, true
	}
	if m.isRemoved(number) || m.isAbsent(number) {
		return nil, false
	}

	l, err := m.listing()
	if err != nil {
		return nil, false
	}
	id, ok := l.id(number)
	if !ok {
		// The number is beyond the known candidates; a new build directory
		// may have appeared since the last scan.
		if l, ok = m.maybeRescan(); !ok {
			return nil, false
		}
		if id, ok = l.id(number); !ok {
			return nil, false
		}
	}

	return m.load(ctx, number, id)
}

// load coalesces concurrent loads of one number and publishes the result.
func (m *Map) load(ctx context.Context, number int, id string) (Record, bool) {
	v, _, _ := m.group.Do(strconv.Itoa(number), func() (any, error) {
		// A concurrent caller may have finished the load and published it
		// before this flight started.
		if r, ok := m.snap.Load().get(number); ok {
			return r, nil
		}
		if m.isRemoved(number) || m.isAbsent(number) {
			return nil, nil
		}

		r := m.retrieve(ctx, number, id)
		if r == nil {
			m.markAbsent(number)
			return nil, nil
		}

		m.publish(r)
		return r, nil
	})

	r, ok := v.(Record)
	return r, ok && r != nil
}

// retrieve materializes one record from its directory. Every failure is
// contained here: it is logged and reported as absence, never as an error.
func (m *Map) retrieve(ctx context.Context, number int, id string) Record {
	dir := filepath.Join(m.baseDir, id)
	start := m.now()

	if _, err := m.fsys.Stat(filepath.Join(dir, MarkerFile)); err != nil {
		// No marker, no record. Routine: the build may still be running.
		return nil
	}

	r, err := m.factory(ctx, Source{Dir: dir, ID: id, Number: number, FS: m.fsys})
	if err == nil && r != nil {
		if hook, ok := r.(OnLoader); ok {
			err = hook.OnLoad()
		}
	}

	m.metrics.RecordLoad(m.now().Sub(start), err)

	if err != nil || r == nil {
		m.logger.Warn("could not load build record", "dir", dir, "error", err)
		return nil
	}
	if r.Number() != number {
		m.logger.Warn("record reports unexpected number, indexing under assigned number",
			"dir", dir, "assigned", number, "reported", r.Number())
	}

	m.logger.Debug("loaded build record", "dir", dir, "number", number)
	return r
}

// publish installs r into a new snapshot and splices it into the chain of
// loaded records.
func (m *Map) publish(r Record) {
	m.pubMu.Lock()
	defer m.pubMu.Unlock()

	next := m.snap.Load().with(r)
	next.link(r)
	m.snap.Store(next)
}

// RemoveValue removes a specific record from the index if it is present,
// rewiring its loaded neighbors around it, and reports whether a removal
// occurred. Removing an absent record is a no-op returning false, so
// removal is idempotent.
//
// The backing directory is not deleted; deletion is the caller's concern.
// When the map was configured with an archiver, the directory is archived
// before the record leaves the index; archive failures are logged and do
// not block the removal.
//
// The removed record's own Previous/Next pointers are left pointing at its
// former neighbors; they must not be treated as live adjacency afterwards.
func (m *Map) RemoveValue(ctx context.Context, r Record) bool {
	if r == nil {
		return false
	}

	m.pubMu.Lock()
	cur := m.snap.Load()
	existing, ok := cur.get(r.Number())
	if !ok || existing != r {
		m.pubMu.Unlock()
		m.metrics.RecordRemove(false)
		return false
	}

	unlink(r)
	m.snap.Store(cur.without(r.Number()))

	m.stateMu.Lock()
	m.removed.Add(uint32(r.Number()))
	m.stateMu.Unlock()
	m.pubMu.Unlock()

	if m.archiver != nil {
		dir := filepath.Join(m.baseDir, r.ID())
		if name, err := m.archiver.Archive(ctx, dir, r.ID()); err != nil {
			m.logger.Warn("archiving removed build failed", "dir", dir, "error", err)
		} else {
			m.logger.Debug("archived removed build", "dir", dir, "archive", name)
		}
	}

	m.metrics.RecordRemove(true)
	m.logger.Debug("removed build record", "number", r.Number(), "id", r.ID())
	return true
}

// Refresh re-scans the base directory and drops cached absence, so holes
// and new directories are re-probed on next access. Loaded records and
// removal tombstones are kept.
func (m *Map) Refresh() error {
	if !m.bound() {
		return ErrNoBaseDir
	}
	_, err := m.rescan(true)
	return err
}

// View returns the read-only projection of the map. The view is live: each
// access reflects the most recently published snapshot.
func (m *Map) View() *View {
	return &View{m: m}
}

// Archiver preserves a removed record's backing directory before the
// record leaves the index. The archive package provides implementations.
type Archiver interface {
	// Archive stores a durable copy of dir under a name derived from id and
	// returns that name.
	Archive(ctx context.Context, dir, id string) (string, error)
}
