// Package watcher wires the pieces together: it drains the event
// source, asks the filter registry which events to keep, and hands
// matches to the sinks in batches. It also owns the one mutex guarding
// the registry, since the admin API mutates filters while the event
// loop evaluates them.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/skywatchd/skywatch/filter"
	"github.com/skywatchd/skywatch/metrics"
	"github.com/skywatchd/skywatch/pkg/log"
	"github.com/skywatchd/skywatch/sink"
	"github.com/skywatchd/skywatch/source"
	"github.com/skywatchd/skywatch/store"
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// StatusReporter receives status transitions, for hosts that surface
// them somewhere.
type StatusReporter interface {
	ReportStatus(status Status, message string)
}

// CursorKey is the store key the stream position is persisted under.
const CursorKey = "cursor"

type Watcher struct {
	source   source.Source
	registry *filter.Registry
	sinks    []sink.Sink

	batchSize          int
	flushInterval      time.Duration
	checkpointInterval time.Duration
	store              store.Store

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// registryMu is the external mutual exclusion the filter package
	// itself does not provide
	registryMu sync.Mutex

	statusReporter StatusReporter
	status         Status
	statusMu       sync.RWMutex
}

func New(src source.Source, registry *filter.Registry, sinks []sink.Sink, options ...Option) *Watcher {
	w := &Watcher{
		source:             src,
		registry:           registry,
		sinks:              sinks,
		batchSize:          100,
		flushInterval:      time.Second * 5,
		checkpointInterval: time.Minute,
		status:             StatusIdle,
	}

	for _, opt := range options {
		opt(w)
	}

	return w
}

// Start begins consuming the stream. It returns once the source is
// connected and the event loop is running.
func (w *Watcher) Start(ctx context.Context) error {
	w.setStatus(StatusStarting)
	w.ctx, w.cancel = context.WithCancel(ctx)

	if err := w.source.Start(w.ctx); err != nil {
		w.setStatus(StatusError)
		w.cancel()
		return fmt.Errorf("failed to start source: %w", err)
	}

	w.wg.Add(1)
	go w.run()

	w.setStatus(StatusRunning)
	return nil
}

// Stop shuts the pipeline down in order: source first, then the event
// loop drains and flushes, then sinks and store are closed.
func (w *Watcher) Stop() error {
	w.setStatus(StatusStopping)

	if err := w.source.Stop(); err != nil {
		log.Errorf("failed to stop source: %v", err)
	}

	w.wg.Wait()
	w.cancel()

	var firstErr error
	for _, s := range w.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close sink %s: %w", s.Type(), err)
		}
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close store: %w", err)
		}
	}

	w.setStatus(StatusIdle)
	return firstErr
}

func (w *Watcher) Status() Status {
	w.statusMu.RLock()
	defer w.statusMu.RUnlock()
	return w.status
}

func (w *Watcher) run() {
	defer w.wg.Done()

	flushTicker := time.NewTicker(w.flushInterval)
	defer flushTicker.Stop()
	checkpointTicker := time.NewTicker(w.checkpointInterval)
	defer checkpointTicker.Stop()

	batch := make([]*source.Event, 0, w.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		w.writeBatch(batch)
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-w.source.Events():
			if !ok {
				flush()
				w.checkpoint()
				return
			}
			metrics.EventsReceived.WithLabelValues(string(event.Kind)).Inc()

			names := w.match(event)
			if len(names) == 0 {
				metrics.EventsDropped.Inc()
				continue
			}
			event.Matches = names
			for _, name := range names {
				metrics.EventsMatched.WithLabelValues(name).Inc()
			}

			batch = append(batch, event)
			if len(batch) >= w.batchSize {
				flush()
			}
		case <-flushTicker.C:
			flush()
		case <-checkpointTicker.C:
			w.checkpoint()
		case <-w.ctx.Done():
			flush()
			w.checkpoint()
			return
		}
	}
}

func (w *Watcher) match(event *source.Event) []string {
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	return w.registry.Match(event)
}

func (w *Watcher) writeBatch(batch []*source.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, s := range w.sinks {
		if err := s.Write(ctx, batch); err != nil {
			metrics.SinkErrors.WithLabelValues(s.Type()).Inc()
			log.Errorf("sink %s write failed: %v", s.Type(), err)
		}
	}
}

func (w *Watcher) checkpoint() {
	cursor := w.source.Cursor()
	if cursor == 0 {
		return
	}
	metrics.StreamCursor.Set(float64(cursor))

	if w.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.store.Set(ctx, CursorKey, []byte(strconv.FormatInt(cursor, 10))); err != nil {
		log.Errorf("failed to persist cursor %d: %v", cursor, err)
	} else {
		log.Debugf("checkpointed cursor %d", cursor)
	}
}

// LoadCursor reads the persisted stream position, returning 0 when none
// has been saved yet.
func LoadCursor(ctx context.Context, st store.Store) (int64, error) {
	raw, err := st.Get(ctx, CursorKey)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	cursor, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse stored cursor: %w", err)
	}
	return cursor, nil
}

func (w *Watcher) setStatus(status Status) {
	w.statusMu.Lock()
	defer w.statusMu.Unlock()

	w.status = status

	if w.statusReporter != nil {
		w.statusReporter.ReportStatus(status, "")
	}
}

// Snapshot returns a copy of the current filters, safe to read while
// the event loop keeps running.
func (w *Watcher) Snapshot() []*filter.Filter {
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	return w.registry.Snapshot()
}

// SubscribeRepo adds a DID to the named filter.
func (w *Watcher) SubscribeRepo(name, did string) error {
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	return w.registry.SubscribeRepo(name, did)
}

// UnsubscribeRepo removes a DID from the named filter.
func (w *Watcher) UnsubscribeRepo(name, did string) error {
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	return w.registry.UnsubscribeRepo(name, did)
}

// SubscribeHandle adds an unresolved handle to the named filter. It
// will not affect matching until the filter is re-initialized; prefer
// SubscribeRepo with a DID on a live watcher.
func (w *Watcher) SubscribeHandle(name, handle string) error {
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	return w.registry.SubscribeHandle(name, handle)
}

// UnsubscribeHandle removes a handle from the named filter.
func (w *Watcher) UnsubscribeHandle(name, handle string) error {
	w.registryMu.Lock()
	defer w.registryMu.Unlock()
	return w.registry.UnsubscribeHandle(name, handle)
}
