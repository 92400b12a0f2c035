package buildidx

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordLoad is called after each attempt to materialize a record from
	// disk. duration is the total time taken, err is nil if successful.
	RecordLoad(duration time.Duration, err error)

	// RecordScan is called after each scan of the base directory.
	// candidates is the number of valid candidate directories found.
	RecordScan(candidates int, duration time.Duration)

	// RecordRemove is called after each RemoveValue. removed reports
	// whether a removal actually occurred.
	RecordRemove(removed bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(time.Duration, error) {}
func (NoopMetricsCollector) RecordScan(int, time.Duration)   {}
func (NoopMetricsCollector) RecordRemove(bool)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadTotalNanos atomic.Int64
	ScanCount      atomic.Int64
	ScanCandidates atomic.Int64
	RemoveCount    atomic.Int64
	RemoveMisses   atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(candidates int, duration time.Duration) {
	b.ScanCount.Add(1)
	b.ScanCandidates.Store(int64(candidates))
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(removed bool) {
	if removed {
		b.RemoveCount.Add(1)
	} else {
		b.RemoveMisses.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:      b.LoadCount.Load(),
		LoadErrors:     b.LoadErrors.Load(),
		LoadAvgNanos:   b.getAvgLoadNanos(),
		ScanCount:      b.ScanCount.Load(),
		ScanCandidates: b.ScanCandidates.Load(),
		RemoveCount:    b.RemoveCount.Load(),
		RemoveMisses:   b.RemoveMisses.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgLoadNanos() int64 {
	count := b.LoadCount.Load()
	if count == 0 {
		return 0
	}
	return b.LoadTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount      int64
	LoadErrors     int64
	LoadAvgNanos   int64
	ScanCount      int64
	ScanCandidates int64
	RemoveCount    int64
	RemoveMisses   int64
}
