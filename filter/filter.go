// Package filter decides, per incoming stream event, whether a named
// filter retains it. A filter combines a repository subscription list
// with include/exclude keyword lists: subscribed repositories are kept
// unless an exclude keyword fires, everything else is kept only when an
// include keyword fires.
package filter

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/skywatchd/skywatch/directory"
	"github.com/skywatchd/skywatch/source"
)

type Filter struct {
	Name       string         `json:"name" toml:"name"`
	Subscribes *Subscriptions `json:"subscribes,omitempty" toml:"subscribes"`
	Keywords   *Keywords      `json:"keywords,omitempty" toml:"keywords"`
}

// Init resolves the subscription's handles to DIDs and folds them into
// the DID list. Resolution is best-effort: failed handles are returned
// as diagnostics and otherwise skipped. The handle list is cleared
// afterwards; a filter only ever matches on DIDs. The union dedups, but
// DIDs added later through SubscribeRepo may duplicate freely.
func (f *Filter) Init(ctx context.Context, resolver directory.Resolver) []ResolutionError {
	if f.Subscribes == nil || f.Subscribes.Handles == nil {
		return nil
	}

	var resolved []string
	var failures []ResolutionError
	for _, handle := range f.Subscribes.Handles {
		did, err := resolver.ResolveHandle(ctx, handle)
		if err != nil {
			failures = append(failures, ResolutionError{
				Filter: f.Name,
				Handle: handle,
				Err:    err,
			})
			continue
		}
		resolved = append(resolved, did)
	}

	dids := lo.Union(f.Subscribes.Dids, resolved)
	if len(dids) == 0 {
		dids = nil
	}
	f.Subscribes.Dids = dids
	f.Subscribes.Handles = nil

	return failures
}

// IsMatch reports whether the filter retains the event.
//
// Commit events from subscribed repositories are kept unless an exclude
// keyword fires; commits from anyone else are kept only when an include
// keyword fires. Identity events are kept only for subscribed
// repositories, keywords are not consulted. Everything else (account
// and other lifecycle notices) passes through.
func (f *Filter) IsMatch(event *source.Event) bool {
	switch event.Kind {
	case source.KindCommit:
		if f.isSubscribed(event.Did) {
			return !f.matchesExcludes(event)
		}
		return f.matchesIncludes(event)
	case source.KindIdentity:
		return f.isSubscribed(event.Did)
	default:
		return true
	}
}

func (f *Filter) isSubscribed(did string) bool {
	if f.Subscribes == nil {
		return false
	}
	return f.Subscribes.IsMatch(did)
}

func (f *Filter) matchesIncludes(event *source.Event) bool {
	if f.Keywords == nil {
		return false
	}
	return f.Keywords.MatchesIncludes(event.Texts())
}

func (f *Filter) matchesExcludes(event *source.Event) bool {
	if f.Keywords == nil {
		return false
	}
	return f.Keywords.MatchesExcludes(event.Texts())
}

// SubscribeRepo adds a DID to the filter's watch list, creating the
// subscription on first use.
func (f *Filter) SubscribeRepo(did string) error {
	if f.Subscribes == nil {
		f.Subscribes = &Subscriptions{}
	}
	return f.Subscribes.SubscribeRepo(did)
}

// UnsubscribeRepo removes a DID from the filter's watch list. Fails
// with ErrNotFound when the filter has no subscription at all.
func (f *Filter) UnsubscribeRepo(did string) error {
	if f.Subscribes == nil {
		return fmt.Errorf("%w: filter %q has no subscription", ErrNotFound, f.Name)
	}
	return f.Subscribes.UnsubscribeRepo(did)
}

// SubscribeHandle adds a handle to the filter's watch list, creating
// the subscription on first use. The handle only takes effect for
// matching once resolved by Init.
func (f *Filter) SubscribeHandle(handle string) error {
	if f.Subscribes == nil {
		f.Subscribes = &Subscriptions{}
	}
	return f.Subscribes.SubscribeHandle(handle)
}

// UnsubscribeHandle removes a handle from the filter's watch list.
func (f *Filter) UnsubscribeHandle(handle string) error {
	if f.Subscribes == nil {
		return fmt.Errorf("%w: filter %q has no subscription", ErrNotFound, f.Name)
	}
	return f.Subscribes.UnsubscribeHandle(handle)
}

// Clone returns a deep copy. Unset lists stay unset in the copy; that
// distinction drives the match predicates.
func (f *Filter) Clone() *Filter {
	clone := &Filter{Name: f.Name}
	if f.Subscribes != nil {
		clone.Subscribes = &Subscriptions{
			Dids:    cloneList(f.Subscribes.Dids),
			Handles: cloneList(f.Subscribes.Handles),
		}
	}
	if f.Keywords != nil {
		clone.Keywords = &Keywords{
			Includes: cloneList(f.Keywords.Includes),
			Excludes: cloneList(f.Keywords.Excludes),
		}
	}
	return clone
}

func cloneList(list []string) []string {
	if list == nil {
		return nil
	}
	return append([]string(nil), list...)
}
