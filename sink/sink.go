package sink

import (
	"context"

	"github.com/skywatchd/skywatch/source"
)

// Sink receives the events retained by the filters. Write may buffer;
// Flush forces buffered events out. Close releases resources after a
// final flush.
type Sink interface {
	Write(ctx context.Context, events []*source.Event) error
	Flush(ctx context.Context) error
	Close() error
	Type() string
}
