package stream

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"console-sync/internal/classify"
	"console-sync/internal/notify"
)

// State is the lifecycle state of the push-stream connection.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateClosed       State = "closed"
)

const (
	// DefaultReconnectDelay is the fixed wait before re-dialing after a
	// transport error. No backoff growth, no retry cap: the client retries
	// for as long as the session lives.
	DefaultReconnectDelay = 3 * time.Second

	// DefaultRestartDelay is the shorter wait used by the operator-triggered
	// Restart.
	DefaultRestartDelay = time.Second
)

// Sink receives the UI-facing consequences of classified events.
// ui.Reconciler satisfies it.
type Sink interface {
	Reconcile(ev classify.Event)
	HandleBackup(ev classify.Event)
	ForceRender()
}

// Config configures a Client.
type Config struct {
	// URL is the websocket endpoint of the push stream.
	URL string
	// ReconnectDelay overrides DefaultReconnectDelay when positive.
	ReconnectDelay time.Duration
	// RestartDelay overrides DefaultRestartDelay when positive.
	RestartDelay time.Duration
}

// Client maintains exactly one live push-stream connection and feeds every
// inbound message through classification, deduplication, and UI
// reconciliation. Messages are handled synchronously in the read loop, so
// they are processed one at a time in delivery order.
//
// Every dial and every scheduled reconnect carries a generation token; a
// timer or dial result whose token no longer matches the current generation
// is a no-op. That makes rapid Stop/Start/Restart sequences safe: a stale
// timer can never produce a second live connection.
type Client struct {
	cfg   Config
	store *notify.Store
	sink  Sink
	dial  func(url string) (*websocket.Conn, error)
	log   *slog.Logger

	mu         sync.Mutex
	conn       *websocket.Conn
	state      State
	generation string
	stopped    bool
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client. It does not connect until Start is called.
func New(cfg Config, store *notify.Store, sink Sink, opts ...Option) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = DefaultRestartDelay
	}
	c := &Client{
		cfg:   cfg,
		store: store,
		sink:  sink,
		state: StateDisconnected,
		log:   slog.Default().With("component", "Stream"),
	}
	c.dial = func(url string) (*websocket.Conn, error) {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		return conn, err
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start establishes the push-stream connection, first releasing any
// existing one so that at most one connection is ever live.
func (c *Client) Start() {
	c.mu.Lock()
	c.closeConnLocked()
	token := uuid.NewString()
	c.generation = token
	c.stopped = false
	c.state = StateConnecting
	c.mu.Unlock()

	go c.connect(token)
}

// Stop closes the current connection and cancels any pending reconnect.
func (c *Client) Stop() {
	c.mu.Lock()
	c.closeConnLocked()
	c.generation = ""
	c.stopped = true
	c.state = StateClosed
	c.mu.Unlock()

	c.log.Info("stream stopped")
}

// Restart forces a close-then-reconnect cycle after the shorter restart
// delay. Used for operator-triggered recovery.
func (c *Client) Restart() {
	c.mu.Lock()
	c.closeConnLocked()
	token := uuid.NewString()
	c.generation = token
	c.stopped = false
	c.state = StateDisconnected
	c.mu.Unlock()

	c.log.Info("stream restart requested", "delay", c.cfg.RestartDelay)
	c.scheduleReconnect(token, c.cfg.RestartDelay)
}

// closeConnLocked releases the live connection, if any. Caller holds mu.
func (c *Client) closeConnLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// connect dials the stream endpoint. The token ties the attempt to the
// generation that scheduled it.
func (c *Client) connect(token string) {
	conn, err := c.dial(c.cfg.URL)

	c.mu.Lock()
	if c.stopped || c.generation != token {
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.state = StateDisconnected
		c.mu.Unlock()
		c.log.Warn("stream dial failed", "url", c.cfg.URL, "error", err)
		c.scheduleReconnect(token, c.cfg.ReconnectDelay)
		return
	}
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	c.log.Info("stream connected", "url", c.cfg.URL)
	go c.readLoop(conn, token)
}

// readLoop consumes messages until the transport fails, then hands off to
// the reconnect protocol.
func (c *Client) readLoop(conn *websocket.Conn, token string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.onTransportError(conn, token, err)
			return
		}
		c.handleMessage(data)
	}
}

// onTransportError closes and nulls the connection, then schedules a
// reconnect after the fixed delay. Errors of superseded connections are
// ignored: a newer generation already owns recovery.
func (c *Client) onTransportError(conn *websocket.Conn, token string, err error) {
	c.mu.Lock()
	if c.stopped || c.generation != token {
		c.mu.Unlock()
		return
	}
	c.closeConnLocked()
	c.state = StateDisconnected
	c.mu.Unlock()

	c.log.Warn("stream transport error, scheduling reconnect",
		"error", err, "delay", c.cfg.ReconnectDelay)
	c.scheduleReconnect(token, c.cfg.ReconnectDelay)
}

// scheduleReconnect arms a timer that re-dials unless the generation moved
// on in the meantime.
func (c *Client) scheduleReconnect(token string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.stopped || c.generation != token {
			c.mu.Unlock()
			return
		}
		next := uuid.NewString()
		c.generation = next
		c.state = StateConnecting
		c.mu.Unlock()

		c.log.Info("stream reconnecting", "url", c.cfg.URL)
		c.connect(next)
	})
}

// handleMessage runs one inbound message through the pipeline: parse,
// recognize, dedup, store, reconcile. A malformed message is logged and
// discarded; it never affects the connection.
func (c *Client) handleMessage(data []byte) {
	var raw classify.RawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		c.log.Warn("discarding unparseable stream message", "error", err)
		return
	}

	ev := classify.Classify(raw)
	if !ev.Category.Recognized() {
		if classify.NeedsUIUpdate(ev) {
			// Events outside the stored set (node exporter installs) can
			// still invalidate server rows.
			c.sink.Reconcile(ev)
		} else {
			c.log.Debug("ignoring stream event", "type", raw.Type)
		}
		return
	}

	if c.isDuplicate(raw) {
		// The record is already known, but the dropdown may be stale;
		// force a render as a consistency safety net.
		c.log.Debug("duplicate event", "title", raw.Title)
		c.sink.ForceRender()
	} else {
		c.store.Add(notify.ParseSeverity(raw.Severity), raw.Title, raw.Message, raw.Details, string(raw.ID))
	}

	// Reconciliation is independent of the dedup outcome: a duplicate can
	// arrive while the UI is still stale from the first delivery.
	if ev.Category == classify.CategoryBackup {
		c.sink.HandleBackup(ev)
	}
	if classify.NeedsUIUpdate(ev) {
		c.sink.Reconcile(ev)
	}
}

// isDuplicate applies the dedup policy fail-open: if the check itself
// breaks, the event counts as new. Showing a notification twice is better
// than silently dropping one.
func (c *Client) isDuplicate(raw classify.RawEvent) (dup bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("duplicate check failed, treating event as new", "panic", r)
			dup = false
		}
	}()
	return c.store.Contains(string(raw.ID), raw.Title, raw.Message)
}
