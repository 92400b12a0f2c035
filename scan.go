package buildidx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/buildidx/timeid"
)

// legacyPrefix marks placeholder directories from the pre-history format.
// They are never candidates, even when the rest of the name parses.
const legacyPrefix = "0000"

// listing is the cached set of candidate directory names, ascending. It is
// immutable once published; the build number of a candidate is its 1-based
// rank. Removal never deletes directories, so ranks are stable across
// rescans as long as the base directory is externally unmodified.
type listing struct {
	ids []string
}

var emptyListing = &listing{}

func (l *listing) len() int { return len(l.ids) }

// id returns the directory name for a build number, if the number is in
// the known candidate range.
func (l *listing) id(number int) (string, bool) {
	if number < 1 || number > len(l.ids) {
		return "", false
	}
	return l.ids[number-1], true
}

// isCandidate applies the directory filter: the reserved legacy prefix is
// rejected outright, everything else must round-trip through the canonical
// timestamp encoding. Rejections are routine and logged at debug level.
func (m *Map) isCandidate(name string) bool {
	if strings.HasPrefix(name, legacyPrefix) {
		m.logger.Debug("skipping reserved directory", "dir", name)
		return false
	}
	if !timeid.Valid(name) {
		m.logger.Debug("skipping malformed directory", "dir", name)
		return false
	}
	return true
}

// listing returns the current candidate listing, scanning the base
// directory on first use.
func (m *Map) listing() (*listing, error) {
	if l := m.dirs.Load(); l != nil {
		return l, nil
	}
	return m.rescan(false)
}

// maybeRescan re-probes the base directory if the throttle allows it.
// Called when a lookup misses the cached listing: a new build directory
// may have appeared since the last scan.
func (m *Map) maybeRescan() (*listing, bool) {
	if !m.scanLimit.Allow() {
		return nil, false
	}
	l, err := m.rescan(false)
	if err != nil {
		return nil, false
	}
	return l, true
}

// rescan enumerates and filters the base directory and publishes a fresh
// listing. When clearAbsent is set, cached absence is dropped so holes are
// re-probed on next access.
func (m *Map) rescan(clearAbsent bool) (*listing, error) {
	m.scanMu.Lock()
	defer m.scanMu.Unlock()

	start := m.now()

	entries, err := m.fsys.ReadDir(m.baseDir)
	if err != nil {
		m.logger.Warn("scanning base directory failed", "dir", m.baseDir, "error", err)
		return nil, fmt.Errorf("buildidx: scan %s: %w", m.baseDir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if m.isCandidate(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)

	l := &listing{ids: ids}
	m.dirs.Store(l)

	if clearAbsent {
		m.stateMu.Lock()
		m.absent.Clear()
		m.stateMu.Unlock()
	}

	m.metrics.RecordScan(len(ids), m.now().Sub(start))
	m.logger.Debug("scanned base directory", "dir", m.baseDir, "candidates", len(ids))
	return l, nil
}

func (m *Map) markAbsent(number int) {
	m.stateMu.Lock()
	m.absent.Add(uint32(number))
	m.stateMu.Unlock()
}

func (m *Map) isAbsent(number int) bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.absent.Contains(uint32(number))
}

func (m *Map) isRemoved(number int) bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.removed.Contains(uint32(number))
}
