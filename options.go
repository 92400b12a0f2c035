package buildidx

import (
	"log/slog"
	"time"
)

type options struct {
	fsys           FileSystem
	logger         *Logger
	metrics        MetricsCollector
	archiver       Archiver
	rescanInterval time.Duration
}

// Option configures Map construction.
type Option func(*options)

// WithFileSystem swaps the file system the map reads through. Pass nil to
// keep the local default. Mostly useful for tests and fault injection.
func WithFileSystem(fsys FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = DefaultFS
		}
		o.fsys = fsys
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for load, scan and
// removal operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithArchiver configures an archiver invoked by RemoveValue to preserve
// the removed record's backing directory. See the archive package.
func WithArchiver(a Archiver) Option {
	return func(o *options) {
		o.archiver = a
	}
}

// WithRescanInterval bounds how often a cache miss may trigger an implicit
// re-scan of the base directory. Explicit Refresh calls are not throttled.
// The default is 2 seconds.
func WithRescanInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.rescanInterval = d
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		fsys:           DefaultFS,
		logger:         NoopLogger(),
		metrics:        NoopMetricsCollector{},
		rescanInterval: 2 * time.Second,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
