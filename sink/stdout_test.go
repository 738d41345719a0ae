package sink

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatchd/skywatch/source"
)

func postEvent() *source.Event {
	return &source.Event{
		ID:     "evt-1",
		Did:    "did:plc:author",
		TimeUS: 1725911162329308,
		Kind:   source.KindCommit,
		Commit: &source.CommitEvent{
			Operation:  "create",
			Collection: "app.bsky.feed.post",
			RKey:       "3kabc",
			Record:     json.RawMessage(`{"$type":"app.bsky.feed.post","text":"hello bluesky"}`),
		},
		Matches: []string{"team"},
	}
}

func TestStdoutSinkPrettyOutput(t *testing.T) {
	s := NewStdoutSink(true)
	out := s.buildPrettyOutput([]*source.Event{postEvent()})

	assert.Contains(t, out, "Event ID: evt-1")
	assert.Contains(t, out, "Repository: did:plc:author")
	assert.Contains(t, out, "Filters: team")
	assert.Contains(t, out, "Text: hello bluesky")
}

func TestStdoutSinkPrettyOutputIdentity(t *testing.T) {
	s := NewStdoutSink(true)
	out := s.buildPrettyOutput([]*source.Event{{
		ID:       "evt-2",
		Did:      "did:plc:mover",
		Kind:     source.KindIdentity,
		Identity: &source.IdentityEvent{Did: "did:plc:mover", Handle: "new.example"},
	}})

	assert.Contains(t, out, "Kind: identity")
	assert.Contains(t, out, "Handle: new.example")
}

func TestConsoleSinkTruncate(t *testing.T) {
	s := NewConsoleSink(WithMaxColumnWidth(10))

	assert.Equal(t, "short", s.truncateString("short"))
	assert.Equal(t, "longlon...", s.truncateString("longlonglonglong"))
}

func TestSinkTypes(t *testing.T) {
	require.Equal(t, "console", NewConsoleSink().Type())
	require.Equal(t, "stdout", NewStdoutSink(false).Type())
}
