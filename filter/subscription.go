package filter

import (
	"fmt"

	"github.com/samber/lo"
)

// Subscriptions is the set of repositories a filter watches, by DID and,
// until Init resolves them, by handle. A nil list is "unset" and is
// distinct from an empty one: mutations on an unset list fail with
// ErrNotFound, while an empty list accepts them.
type Subscriptions struct {
	Dids    []string `json:"dids,omitempty" toml:"dids"`
	Handles []string `json:"handles,omitempty" toml:"handles"`
}

// IsMatch reports whether the repository DID is watched. Handles are
// never consulted; they only exist to be resolved into Dids.
func (s *Subscriptions) IsMatch(did string) bool {
	return lo.Contains(s.Dids, did)
}

// SubscribeRepo adds a DID to the watch list, creating it if unset.
// Duplicates are kept as-is; matching is unaffected by them.
func (s *Subscriptions) SubscribeRepo(did string) error {
	s.Dids = append(s.Dids, did)
	return nil
}

// UnsubscribeRepo removes every occurrence of the DID. Removing from an
// unset list fails; removing an absent DID from a configured list is a
// no-op.
func (s *Subscriptions) UnsubscribeRepo(did string) error {
	if s.Dids == nil {
		return fmt.Errorf("%w: no dids configured", ErrNotFound)
	}
	s.Dids = lo.Filter(s.Dids, func(d string, _ int) bool {
		return d != did
	})
	return nil
}

// SubscribeHandle adds a handle to the watch list, creating it if unset.
func (s *Subscriptions) SubscribeHandle(handle string) error {
	s.Handles = append(s.Handles, handle)
	return nil
}

// UnsubscribeHandle removes every occurrence of the handle.
func (s *Subscriptions) UnsubscribeHandle(handle string) error {
	if s.Handles == nil {
		return fmt.Errorf("%w: no handles configured", ErrNotFound)
	}
	s.Handles = lo.Filter(s.Handles, func(h string, _ int) bool {
		return h != handle
	})
	return nil
}
