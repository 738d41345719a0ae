package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultEndpoint        = "wss://jetstream1.us-east.bsky.network/subscribe"
	defaultEventBufferSize = 32

	maxReconnectDelay = 30 * time.Second
	readLimitBytes    = 1 << 20
)

type JetstreamSource struct {
	cfg    Config
	logger Logger

	running bool

	ctx      context.Context
	cancelFn context.CancelFunc
	wg       sync.WaitGroup
	events   chan *Event
	cursor   atomic.Int64
	mu       sync.Mutex
}

func NewJetstreamSource(cfg Config, logger Logger) Source {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.EventBufferSize == 0 {
		cfg.EventBufferSize = defaultEventBufferSize
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	js := &JetstreamSource{
		cfg:    cfg,
		events: make(chan *Event, cfg.EventBufferSize),
		logger: logger,
	}
	js.cursor.Store(cfg.Cursor)
	return js
}

// Start implements Source.
func (j *JetstreamSource) Start(ctx context.Context) error {
	if j.IsRunning() {
		return fmt.Errorf("source already running")
	}

	if _, err := url.Parse(j.cfg.Endpoint); err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", j.cfg.Endpoint, err)
	}

	j.ctx, j.cancelFn = context.WithCancel(ctx)

	j.wg.Add(1)
	go j.consume()

	j.setRunning(true)
	return nil
}

// Stop implements Source.
func (j *JetstreamSource) Stop() error {
	if !j.IsRunning() {
		return fmt.Errorf("source not running")
	}

	j.cancelFn()
	j.wg.Wait()
	close(j.events)

	j.setRunning(false)
	j.logger.Infof("source stopped at cursor %d", j.Cursor())
	return nil
}

func (j *JetstreamSource) Events() <-chan *Event {
	return j.events
}

func (j *JetstreamSource) Cursor() int64 {
	return j.cursor.Load()
}

func (j *JetstreamSource) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *JetstreamSource) setRunning(running bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.running = running
}

// consume dials the stream and reads until the context is cancelled,
// reconnecting with capped backoff and resuming from the last cursor.
func (j *JetstreamSource) consume() {
	defer j.wg.Done()

	delay := time.Second
	for {
		if j.ctx.Err() != nil {
			return
		}

		before := j.Cursor()
		err := j.readStream()
		if err == nil || j.ctx.Err() != nil {
			return
		}
		if j.Cursor() != before {
			// the connection made progress before dying
			delay = time.Second
		}

		j.logger.Errorf("stream read failed, reconnecting in %s: %v", delay, err)
		select {
		case <-j.ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

func (j *JetstreamSource) readStream() error {
	endpoint, err := j.subscribeURL()
	if err != nil {
		return err
	}

	j.logger.Infof("connecting to %s", endpoint)

	conn, _, err := websocket.DefaultDialer.DialContext(j.ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", endpoint, err)
	}
	defer conn.Close()
	conn.SetReadLimit(readLimitBytes)

	// unblock ReadMessage when the context is cancelled
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-j.ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if j.ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		evt := &Event{}
		if err := json.Unmarshal(data, evt); err != nil {
			j.logger.Warnf("skipping undecodable event: %v", err)
			continue
		}
		evt.ID = uuid.NewString()

		select {
		case j.events <- evt:
			j.cursor.Store(evt.TimeUS)
		case <-j.ctx.Done():
			return nil
		}
	}
}

func (j *JetstreamSource) subscribeURL() (string, error) {
	u, err := url.Parse(j.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}

	q := u.Query()
	for _, c := range j.cfg.WantedCollections {
		q.Add("wantedCollections", c)
	}
	if cursor := j.Cursor(); cursor > 0 {
		q.Set("cursor", strconv.FormatInt(cursor, 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var _ Source = (*JetstreamSource)(nil)
