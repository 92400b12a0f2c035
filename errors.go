package buildidx

import "errors"

var (
	// ErrNilFactory is returned when a Map is constructed or bound without
	// a record factory.
	ErrNilFactory = errors.New("buildidx: nil record factory")

	// ErrNoBaseDir is returned when a Map has no base directory: either
	// construction with an empty path, or an operation that requires a
	// bound map (Refresh) on an unbound one.
	ErrNoBaseDir = errors.New("buildidx: no base directory")

	// ErrAlreadyBound is returned by Bind when the map already has a base
	// directory. Rebinding is not supported.
	ErrAlreadyBound = errors.New("buildidx: map already bound")
)
