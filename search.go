package buildidx

import (
	"context"
	"math"
)

// Direction selects which side of the key a directional search walks
// toward.
type Direction int

const (
	// Ascending finds the smallest number >= key.
	Ascending Direction = iota
	// Descending finds the greatest number <= key.
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unknown"
	}
}

// Search returns the nearest loaded-or-loadable record at or past key in
// the given direction: for Descending the greatest number <= key, for
// Ascending the smallest number >= key. Only the records actually visited
// are materialized; holes and failed loads are skipped.
func (m *Map) Search(ctx context.Context, key int, direction Direction) (Record, bool) {
	if !m.bound() {
		return nil, false
	}

	l, err := m.listing()
	if err != nil {
		return nil, false
	}
	if l.len() == 0 || key > l.len() {
		// The directory may have gained builds since the last scan.
		if l2, ok := m.maybeRescan(); ok {
			l = l2
		}
		if l.len() == 0 {
			return nil, false
		}
	}

	// Candidate numbers are dense: 1..len. Clamp the key into that range;
	// a key past the boundary in the search direction has no answer.
	switch direction {
	case Descending:
		n := key
		if n > l.len() {
			n = l.len()
		}
		for ; n >= 1; n-- {
			if r, ok := m.Get(ctx, n); ok {
				return r, true
			}
		}
	case Ascending:
		n := key
		if n < 1 {
			n = 1
		}
		for ; n <= l.len(); n++ {
			if r, ok := m.Get(ctx, n); ok {
				return r, true
			}
		}
	}

	return nil, false
}

// NewestValue returns the loaded-or-loadable record with the greatest
// number, or false if the index is empty.
func (m *Map) NewestValue(ctx context.Context) (Record, bool) {
	return m.Search(ctx, math.MaxInt, Descending)
}

// OldestValue returns the loaded-or-loadable record with the smallest
// number, or false if the index is empty.
func (m *Map) OldestValue(ctx context.Context) (Record, bool) {
	return m.Search(ctx, math.MinInt, Ascending)
}
