package buildidx

import "iter"

// View is the read-only projection of a Map's loaded records, ordered
// ascending by number.
//
// A View is live: every accessor reads the most recently published
// snapshot. Iteration captures one snapshot for its whole run, so it never
// observes a partial update and is unaffected by concurrent loads or
// removals. Views offer no mutating operations.
type View struct {
	m *Map
}

// Len returns the number of loaded records.
func (v *View) Len() int {
	return v.m.snap.Load().len()
}

// Get returns the already-loaded record for number. Unlike Map.Get it
// never touches the disk.
func (v *View) Get(number int) (Record, bool) {
	return v.m.snap.Load().get(number)
}

// Has reports whether number is loaded.
func (v *View) Has(number int) bool {
	_, ok := v.m.snap.Load().get(number)
	return ok
}

// Numbers returns the loaded build numbers, ascending. The slice is the
// caller's to keep.
func (v *View) Numbers() []int {
	s := v.m.snap.Load()
	out := make([]int, len(s.nums))
	copy(out, s.nums)
	return out
}

// Oldest returns the loaded record with the smallest number.
func (v *View) Oldest() (Record, bool) {
	s := v.m.snap.Load()
	if len(s.nums) == 0 {
		return nil, false
	}
	return s.recs[s.nums[0]], true
}

// Newest returns the loaded record with the greatest number.
func (v *View) Newest() (Record, bool) {
	s := v.m.snap.Load()
	if len(s.nums) == 0 {
		return nil, false
	}
	return s.recs[s.nums[len(s.nums)-1]], true
}

// All iterates the loaded records ascending by number, over the snapshot
// current when iteration starts.
func (v *View) All() iter.Seq2[int, Record] {
	s := v.m.snap.Load()
	return func(yield func(int, Record) bool) {
		for _, n := range s.nums {
			if !yield(n, s.recs[n]) {
				return
			}
		}
	}
}

// Descending iterates the loaded records newest first.
func (v *View) Descending() iter.Seq2[int, Record] {
	s := v.m.snap.Load()
	return func(yield func(int, Record) bool) {
		for i := len(s.nums) - 1; i >= 0; i-- {
			if !yield(s.nums[i], s.recs[s.nums[i]]) {
				return
			}
		}
	}
}
