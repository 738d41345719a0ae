package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestNewRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry(
		&Filter{Name: "team"},
		&Filter{Name: "discover"},
		&Filter{Name: "team"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate filter name")
}

func TestNewRegistryRejectsEmptyName(t *testing.T) {
	_, err := NewRegistry(&Filter{})
	require.Error(t, err)
}

func TestNewRegistryEmpty(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Match(commitEvent("did:plc:x", "hello")))
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(registrySuite))
}

type registrySuite struct {
	suite.Suite
	registry *Registry
}

func (s *registrySuite) SetupTest() {
	registry, err := NewRegistry(
		&Filter{
			Name:       "team",
			Subscribes: &Subscriptions{Dids: []string{"did:plc:team"}},
			Keywords:   &Keywords{Excludes: []string{"noise"}},
		},
		&Filter{
			Name:     "discover",
			Keywords: &Keywords{Includes: []string{"golang"}},
		},
		&Filter{
			Name: "bare",
		},
	)
	s.Require().NoError(err)
	s.registry = registry
}

func (s *registrySuite) TestMatchOrder() {
	event := commitEvent("did:plc:team", "shipping golang support")
	s.Equal([]string{"team", "discover"}, s.registry.Match(event))
}

func (s *registrySuite) TestMatchNone() {
	event := commitEvent("did:plc:stranger", "nothing relevant")
	s.Empty(s.registry.Match(event))
}

func (s *registrySuite) TestSubscribeRepoRoundTrip() {
	did := "did:plc:newcomer"
	event := identityEvent(did, "n.example")

	s.Require().NoError(s.registry.SubscribeRepo("team", did))
	s.Contains(s.registry.Match(event), "team")

	s.Require().NoError(s.registry.UnsubscribeRepo("team", did))
	s.NotContains(s.registry.Match(event), "team")
}

func (s *registrySuite) TestSubscribeUnknownFilter() {
	err := s.registry.SubscribeRepo("nope", "did:plc:x")
	s.Require().Error(err)
	s.ErrorIs(err, ErrNoSuchFilter)

	s.ErrorIs(s.registry.UnsubscribeRepo("nope", "did:plc:x"), ErrNoSuchFilter)
	s.ErrorIs(s.registry.SubscribeHandle("nope", "h.example"), ErrNoSuchFilter)
	s.ErrorIs(s.registry.UnsubscribeHandle("nope", "h.example"), ErrNoSuchFilter)
}

func (s *registrySuite) TestUnsubscribeDelegatesNotFound() {
	s.ErrorIs(s.registry.UnsubscribeRepo("bare", "did:plc:x"), ErrNotFound)
}

func (s *registrySuite) TestSnapshotIsDeepCopy() {
	snapshot := s.registry.Snapshot()
	s.Require().Len(snapshot, 3)
	s.Equal([]string{"team", "discover", "bare"}, []string{snapshot[0].Name, snapshot[1].Name, snapshot[2].Name})

	// mutate the registry after the snapshot was taken
	s.Require().NoError(s.registry.SubscribeRepo("team", "did:plc:later"))

	s.Equal([]string{"did:plc:team"}, snapshot[0].Subscribes.Dids)
}

func (s *registrySuite) TestInitAggregatesFailures() {
	registry, err := NewRegistry(
		&Filter{
			Name:       "one",
			Subscribes: &Subscriptions{Handles: []string{"a.example", "bad.example"}},
		},
		&Filter{
			Name:       "two",
			Subscribes: &Subscriptions{Handles: []string{"worse.example"}},
		},
	)
	s.Require().NoError(err)

	resolver := &fakeResolver{dids: map[string]string{"a.example": "did:plc:a"}}
	failures := registry.Init(context.Background(), resolver)

	s.Require().Len(failures, 2)
	s.Equal("bad.example", failures[0].Handle)
	s.Equal("one", failures[0].Filter)
	s.Equal("worse.example", failures[1].Handle)
	s.Equal("two", failures[1].Filter)

	// the second filter still initialized despite the first one's failure
	snapshot := registry.Snapshot()
	s.Equal([]string{"did:plc:a"}, snapshot[0].Subscribes.Dids)
	s.Nil(snapshot[1].Subscribes.Dids)
	s.Nil(snapshot[1].Subscribes.Handles)
}
