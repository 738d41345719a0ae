package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionsIsMatch(t *testing.T) {
	s := &Subscriptions{
		Dids: []string{"did:plc:aaa", "did:plc:bbb"},
	}

	assert.True(t, s.IsMatch("did:plc:aaa"))
	assert.True(t, s.IsMatch("did:plc:bbb"))
	assert.False(t, s.IsMatch("did:plc:ccc"))
	assert.False(t, s.IsMatch(""))
}

func TestSubscriptionsIsMatchIgnoresHandles(t *testing.T) {
	s := &Subscriptions{
		Handles: []string{"alice.example"},
	}

	assert.False(t, s.IsMatch("alice.example"))
}

func TestSubscriptionsIsMatchUnset(t *testing.T) {
	s := &Subscriptions{}
	assert.False(t, s.IsMatch("did:plc:aaa"))
}

func TestSubscribeRepoThenMatch(t *testing.T) {
	cases := []struct {
		name string
		dids []string
	}{
		{"unset list", nil},
		{"empty list", []string{}},
		{"populated list", []string{"did:plc:xxx"}},
		{"already present", []string{"did:plc:new"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Subscriptions{Dids: tc.dids}
			require.NoError(t, s.SubscribeRepo("did:plc:new"))
			assert.True(t, s.IsMatch("did:plc:new"))
		})
	}
}

func TestSubscribeRepoKeepsDuplicates(t *testing.T) {
	s := &Subscriptions{Dids: []string{"did:plc:aaa"}}
	require.NoError(t, s.SubscribeRepo("did:plc:aaa"))

	assert.Equal(t, []string{"did:plc:aaa", "did:plc:aaa"}, s.Dids)
	assert.True(t, s.IsMatch("did:plc:aaa"))
}

func TestUnsubscribeRepo(t *testing.T) {
	s := &Subscriptions{Dids: []string{"did:plc:aaa", "did:plc:bbb", "did:plc:aaa"}}

	require.NoError(t, s.UnsubscribeRepo("did:plc:aaa"))
	assert.False(t, s.IsMatch("did:plc:aaa"), "all occurrences removed")
	assert.True(t, s.IsMatch("did:plc:bbb"))
}

func TestUnsubscribeRepoUnsetList(t *testing.T) {
	s := &Subscriptions{}
	err := s.UnsubscribeRepo("did:plc:aaa")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnsubscribeRepoAbsentDid(t *testing.T) {
	// absent DID in a configured list is a silent no-op, distinct from
	// the unset-list error
	s := &Subscriptions{Dids: []string{"did:plc:aaa"}}
	require.NoError(t, s.UnsubscribeRepo("did:plc:zzz"))
	assert.True(t, s.IsMatch("did:plc:aaa"))
}

func TestUnsubscribeRepoLeavesEmptyListConfigured(t *testing.T) {
	s := &Subscriptions{Dids: []string{"did:plc:aaa"}}
	require.NoError(t, s.UnsubscribeRepo("did:plc:aaa"))

	require.NotNil(t, s.Dids, "list stays configured, just empty")
	require.NoError(t, s.UnsubscribeRepo("did:plc:aaa"))
}

func TestSubscribeUnsubscribeHandle(t *testing.T) {
	s := &Subscriptions{}
	require.NoError(t, s.SubscribeHandle("alice.example"))
	require.NoError(t, s.SubscribeHandle("bob.example"))
	require.NoError(t, s.UnsubscribeHandle("alice.example"))

	assert.Equal(t, []string{"bob.example"}, s.Handles)
}

func TestUnsubscribeHandleUnsetList(t *testing.T) {
	s := &Subscriptions{Dids: []string{"did:plc:aaa"}}
	err := s.UnsubscribeHandle("alice.example")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
