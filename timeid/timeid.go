// Package timeid implements the canonical, reversible timestamp encoding
// used as build directory names.
//
// The layout is fixed-width ("2020-01-01_00-00-00") so ids sort
// lexicographically in time order. Acceptance is strict: a name is valid
// only if it round-trips losslessly through Parse and Format. This guards
// against lenient parses of impossible calendar values (year 0, April
// 31st) that would otherwise produce directories that can never be loaded
// back.
package timeid

import "time"

// Layout is the canonical encoding layout.
const Layout = "2006-01-02_15-04-05"

// Format encodes t as a directory id. The result is fixed width and
// lexicographically ordered by time.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse decodes a directory id. The location of the result is UTC; ids
// carry no zone information.
func Parse(id string) (time.Time, error) {
	return time.Parse(Layout, id)
}

// Valid reports whether name round-trips losslessly through the encoding,
// i.e. Format(Parse(name)) == name byte for byte.
func Valid(name string) bool {
	t, err := time.Parse(Layout, name)
	if err != nil {
		return false
	}
	return t.Format(Layout) == name
}
