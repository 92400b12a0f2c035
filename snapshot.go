package buildidx

import "sort"

// snapshot is one immutable version of the loaded index. It is published
// atomically and never mutated afterwards; readers hold it without locks.
type snapshot struct {
	nums []int          // ascending
	recs map[int]Record // keyed by number
}

var emptySnapshot = &snapshot{}

func (s *snapshot) len() int { return len(s.nums) }

func (s *snapshot) get(number int) (Record, bool) {
	r, ok := s.recs[number]
	return r, ok
}

// floor returns the index of the greatest loaded number <= n, or -1.
func (s *snapshot) floor(n int) int {
	i := sort.SearchInts(s.nums, n+1)
	return i - 1
}

// ceiling returns the index of the smallest loaded number >= n, or len.
func (s *snapshot) ceiling(n int) int {
	return sort.SearchInts(s.nums, n)
}

// with returns a new snapshot containing r. The receiver is not modified.
func (s *snapshot) with(r Record) *snapshot {
	n := r.Number()
	i := sort.SearchInts(s.nums, n)

	nums := make([]int, 0, len(s.nums)+1)
	nums = append(nums, s.nums[:i]...)
	nums = append(nums, n)
	nums = append(nums, s.nums[i:]...)

	recs := make(map[int]Record, len(s.recs)+1)
	for k, v := range s.recs {
		recs[k] = v
	}
	recs[n] = r

	return &snapshot{nums: nums, recs: recs}
}

// without returns a new snapshot that excludes number n.
func (s *snapshot) without(n int) *snapshot {
	i := sort.SearchInts(s.nums, n)
	if i >= len(s.nums) || s.nums[i] != n {
		return s
	}

	nums := make([]int, 0, len(s.nums)-1)
	nums = append(nums, s.nums[:i]...)
	nums = append(nums, s.nums[i+1:]...)

	recs := make(map[int]Record, len(s.recs)-1)
	for k, v := range s.recs {
		if k != n {
			recs[k] = v
		}
	}

	return &snapshot{nums: nums, recs: recs}
}

// link splices r into the chain of loaded records in s, where s already
// contains r. Both r's own pointers and its neighbors' are patched. Must
// run inside the map's structural critical section.
func (s *snapshot) link(r Record) {
	n := r.Number()
	i := sort.SearchInts(s.nums, n)

	var prev, next Record
	if i > 0 {
		prev = s.recs[s.nums[i-1]]
	}
	if i+1 < len(s.nums) {
		next = s.recs[s.nums[i+1]]
	}

	r.setPrevious(prev)
	r.setNext(next)
	if prev != nil {
		prev.setNext(r)
	}
	if next != nil {
		next.setPrevious(r)
	}
}

// unlink rewires r's loaded neighbors around it prior to removal. The
// removed record's own pointers are intentionally left untouched, matching
// the historical behavior: holders of a removed record may still walk to
// its former neighbors, but must not treat them as live adjacency.
func unlink(r Record) {
	prev, next := r.Previous(), r.Next()
	if prev != nil {
		prev.setNext(next)
	}
	if next != nil {
		next.setPrevious(prev)
	}
}
