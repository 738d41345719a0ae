package watcher

import (
	"time"

	"github.com/skywatchd/skywatch/store"
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithBatchSize sets how many matched events are buffered before a sink
// write.
func WithBatchSize(size int) Option {
	return func(w *Watcher) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithFlushInterval sets how often a partial batch is flushed.
func WithFlushInterval(interval time.Duration) Option {
	return func(w *Watcher) {
		if interval > 0 {
			w.flushInterval = interval
		}
	}
}

// WithCheckpointInterval sets how often the stream cursor is persisted.
func WithCheckpointInterval(interval time.Duration) Option {
	return func(w *Watcher) {
		if interval > 0 {
			w.checkpointInterval = interval
		}
	}
}

// WithStore sets the store the cursor is checkpointed to. Without one,
// checkpointing only updates the metrics gauge.
func WithStore(st store.Store) Option {
	return func(w *Watcher) {
		w.store = st
	}
}

// WithStatusReporter sets a receiver for status transitions.
func WithStatusReporter(reporter StatusReporter) Option {
	return func(w *Watcher) {
		w.statusReporter = reporter
	}
}
