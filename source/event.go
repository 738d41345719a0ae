package source

import (
	"time"

	"github.com/goccy/go-json"
)

type EventKind string

const (
	KindCommit   EventKind = "commit"
	KindIdentity EventKind = "identity"
	KindAccount  EventKind = "account"
)

type Event struct {
	// ID is a unique identifier assigned when the event is decoded
	ID string `json:"id"`

	// Did identifies the repository the event originates from
	Did string `json:"did"`

	// TimeUS is the stream cursor of the event, in microseconds
	TimeUS int64 `json:"time_us"`

	Kind EventKind `json:"kind"`

	Commit   *CommitEvent   `json:"commit,omitempty"`
	Identity *IdentityEvent `json:"identity,omitempty"`
	Account  *AccountEvent  `json:"account,omitempty"`

	// Matches lists the names of the filters that retained this event.
	// Populated by the watcher, empty on the wire.
	Matches []string `json:"matches,omitempty"`
}

// CommitEvent describes a single record operation inside a repository.
type CommitEvent struct {
	Rev        string          `json:"rev"`
	Operation  string          `json:"operation"`
	Collection string          `json:"collection"`
	RKey       string          `json:"rkey"`
	Record     json.RawMessage `json:"record,omitempty"`
	CID        string          `json:"cid,omitempty"`
}

// IdentityEvent signals that a repository's handle changed or was
// re-verified.
type IdentityEvent struct {
	Did    string `json:"did"`
	Handle string `json:"handle,omitempty"`
	Seq    int64  `json:"seq"`
	Time   string `json:"time"`
}

// AccountEvent signals an account lifecycle change (takedown,
// deactivation, reactivation).
type AccountEvent struct {
	Active bool   `json:"active"`
	Did    string `json:"did"`
	Seq    int64  `json:"seq"`
	Status string `json:"status,omitempty"`
	Time   string `json:"time"`
}

// postRecord is the subset of app.bsky.feed.post needed for text
// extraction.
type postRecord struct {
	Type string `json:"$type"`
	Text string `json:"text"`
	Embed *struct {
		Images []struct {
			Alt string `json:"alt"`
		} `json:"images"`
	} `json:"embed"`
}

// Texts returns the text fragments carried by a commit event: the post
// body and any image alt texts. Non-commit events and records without
// text yield nil.
func (e *Event) Texts() []string {
	if e.Kind != KindCommit || e.Commit == nil || len(e.Commit.Record) == 0 {
		return nil
	}

	var rec postRecord
	if err := json.Unmarshal(e.Commit.Record, &rec); err != nil {
		return nil
	}

	var texts []string
	if rec.Text != "" {
		texts = append(texts, rec.Text)
	}
	if rec.Embed != nil {
		for _, img := range rec.Embed.Images {
			if img.Alt != "" {
				texts = append(texts, img.Alt)
			}
		}
	}
	return texts
}

// Timestamp converts the stream cursor to wall-clock time.
func (e *Event) Timestamp() time.Time {
	return time.UnixMicro(e.TimeUS)
}
