package filter

import (
	"context"
	"fmt"

	"github.com/skywatchd/skywatch/directory"
	"github.com/skywatchd/skywatch/source"
)

// Registry is an ordered collection of uniquely named filters. It is
// not safe for concurrent use; a multi-threaded host must wrap it in
// its own mutual exclusion (the watcher does).
type Registry struct {
	filters []*Filter
}

// NewRegistry builds a registry, rejecting empty and duplicate names up
// front so that name dispatch is never ambiguous.
func NewRegistry(filters ...*Filter) (*Registry, error) {
	seen := make(map[string]struct{}, len(filters))
	for _, f := range filters {
		if f.Name == "" {
			return nil, fmt.Errorf("filter with empty name")
		}
		if _, ok := seen[f.Name]; ok {
			return nil, fmt.Errorf("duplicate filter name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return &Registry{filters: filters}, nil
}

// Init initializes every filter in order, resolving handles to DIDs.
// Per-handle failures never abort the remaining filters; they are
// aggregated and returned for the operator.
func (r *Registry) Init(ctx context.Context, resolver directory.Resolver) []ResolutionError {
	var failures []ResolutionError
	for _, f := range r.filters {
		failures = append(failures, f.Init(ctx, resolver)...)
	}
	return failures
}

// Match returns the names of the filters that retain the event, in
// registry order. Empty means the event is dropped.
func (r *Registry) Match(event *source.Event) []string {
	var names []string
	for _, f := range r.filters {
		if f.IsMatch(event) {
			names = append(names, f.Name)
		}
	}
	return names
}

// Snapshot returns a deep copy of the filters in insertion order. Later
// registry mutation does not affect a taken snapshot.
func (r *Registry) Snapshot() []*Filter {
	snapshot := make([]*Filter, 0, len(r.filters))
	for _, f := range r.filters {
		snapshot = append(snapshot, f.Clone())
	}
	return snapshot
}

func (r *Registry) Len() int {
	return len(r.filters)
}

func (r *Registry) lookup(name string) (*Filter, error) {
	for _, f := range r.filters {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchFilter, name)
}

// SubscribeRepo adds a DID to the named filter's watch list.
func (r *Registry) SubscribeRepo(name, did string) error {
	f, err := r.lookup(name)
	if err != nil {
		return err
	}
	return f.SubscribeRepo(did)
}

// UnsubscribeRepo removes a DID from the named filter's watch list.
func (r *Registry) UnsubscribeRepo(name, did string) error {
	f, err := r.lookup(name)
	if err != nil {
		return err
	}
	return f.UnsubscribeRepo(did)
}

// SubscribeHandle adds a handle to the named filter's watch list.
func (r *Registry) SubscribeHandle(name, handle string) error {
	f, err := r.lookup(name)
	if err != nil {
		return err
	}
	return f.SubscribeHandle(handle)
}

// UnsubscribeHandle removes a handle from the named filter's watch list.
func (r *Registry) UnsubscribeHandle(name, handle string) error {
	f, err := r.lookup(name)
	if err != nil {
		return err
	}
	return f.UnsubscribeHandle(handle)
}
