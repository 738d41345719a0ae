package source

import "context"

// Source is a live feed of repository events. Implementations own their
// connection lifecycle and deliver decoded events on the Events channel
// until Stop is called or the context given to Start is cancelled.
type Source interface {
	Start(ctx context.Context) error

	Stop() error

	Events() <-chan *Event

	// Cursor returns the stream position of the last delivered event,
	// suitable for resuming after a restart. Zero means "no position yet".
	Cursor() int64
}

type Config struct {
	// Endpoint is the websocket subscribe URL of the event stream.
	Endpoint string `json:"endpoint" toml:"endpoint"`

	// WantedCollections restricts commit events to the given record
	// collections. Empty means all collections.
	WantedCollections []string `json:"wanted_collections" toml:"wanted_collections"`

	// Cursor is the stream position to resume from, in microseconds.
	Cursor int64 `json:"cursor" toml:"cursor"`

	EventBufferSize int `json:"event_buffer_size" toml:"event_buffer_size"`
}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (l *noopLogger) Debugf(format string, args ...any) {}
func (l *noopLogger) Infof(format string, args ...any)  {}
func (l *noopLogger) Warnf(format string, args ...any)  {}
func (l *noopLogger) Errorf(format string, args ...any) {}
