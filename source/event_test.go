package source

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCommit = `{
  "did": "did:plc:eygmaihciaxprqvxpfvl6flk",
  "time_us": 1725911162329308,
  "kind": "commit",
  "commit": {
    "rev": "3l3qo2vutsw2b",
    "operation": "create",
    "collection": "app.bsky.feed.post",
    "rkey": "3l3qo2vuowo2b",
    "record": {
      "$type": "app.bsky.feed.post",
      "createdAt": "2024-09-09T19:46:02.102Z",
      "text": "hello bluesky",
      "embed": {
        "$type": "app.bsky.embed.images",
        "images": [{"alt": "a skyline at dusk"}]
      }
    },
    "cid": "bafyreidc6sydkkbchcyg62v77wbhzvb2mvytlmsychqgwf2xdjyflmzlvu"
  }
}`

const sampleIdentity = `{
  "did": "did:plc:ufbl4k27gp6kzas5glhz7fim",
  "time_us": 1725516665234703,
  "kind": "identity",
  "identity": {
    "did": "did:plc:ufbl4k27gp6kzas5glhz7fim",
    "handle": "yohenrique.bsky.social",
    "seq": 1409752997,
    "time": "2024-09-05T06:11:04.870Z"
  }
}`

func TestDecodeCommitEvent(t *testing.T) {
	var event Event
	require.NoError(t, json.Unmarshal([]byte(sampleCommit), &event))

	assert.Equal(t, "did:plc:eygmaihciaxprqvxpfvl6flk", event.Did)
	assert.Equal(t, KindCommit, event.Kind)
	require.NotNil(t, event.Commit)
	assert.Equal(t, "app.bsky.feed.post", event.Commit.Collection)
	assert.Equal(t, "create", event.Commit.Operation)
	assert.Nil(t, event.Identity)
}

func TestDecodeIdentityEvent(t *testing.T) {
	var event Event
	require.NoError(t, json.Unmarshal([]byte(sampleIdentity), &event))

	assert.Equal(t, KindIdentity, event.Kind)
	require.NotNil(t, event.Identity)
	assert.Equal(t, "yohenrique.bsky.social", event.Identity.Handle)
	assert.Nil(t, event.Commit)
}

func TestTextsFromPost(t *testing.T) {
	var event Event
	require.NoError(t, json.Unmarshal([]byte(sampleCommit), &event))

	assert.Equal(t, []string{"hello bluesky", "a skyline at dusk"}, event.Texts())
}

func TestTextsNonCommit(t *testing.T) {
	var event Event
	require.NoError(t, json.Unmarshal([]byte(sampleIdentity), &event))
	assert.Nil(t, event.Texts())
}

func TestTextsNoRecord(t *testing.T) {
	event := Event{
		Kind:   KindCommit,
		Commit: &CommitEvent{Operation: "delete", Collection: "app.bsky.feed.post"},
	}
	assert.Nil(t, event.Texts())
}

func TestTextsUndecodableRecord(t *testing.T) {
	event := Event{
		Kind:   KindCommit,
		Commit: &CommitEvent{Record: json.RawMessage(`"not an object"`)},
	}
	assert.Nil(t, event.Texts())
}

func TestTimestamp(t *testing.T) {
	event := Event{TimeUS: 1725911162329308}
	assert.Equal(t, int64(1725911162), event.Timestamp().Unix())
}
