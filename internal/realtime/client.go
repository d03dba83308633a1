// Package realtime maintains the duplex connection to the backend push
// endpoint. Inbound frames are parsed into typed events and fanned out to
// registered handlers in wire-arrival order; an unexpected close schedules
// an automatic reconnect until Disconnect is called.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"smsbridge/internal/model"
)

type EventType string

const (
	EventDeviceStatus  EventType = "DEVICE_STATUS"
	EventMessageStatus EventType = "MESSAGE_STATUS"
	EventNewMessage    EventType = "NEW_MESSAGE"
)

// Event is the inbound frame envelope. Which fields are set depends on Type:
// DeviceID/Status for DEVICE_STATUS, MessageID/Status for MESSAGE_STATUS and
// Message for NEW_MESSAGE.
type Event struct {
	Type      EventType      `json:"type"`
	DeviceID  string         `json:"deviceId,omitempty"`
	MessageID string         `json:"messageId,omitempty"`
	Status    string         `json:"status,omitempty"`
	Message   *model.Message `json:"message,omitempty"`
}

type Handler func(Event)

type Recorder interface {
	RecordEvent(eventType string)
	RecordReconnect()
	RecordDroppedFrame()
}

type Options struct {
	URL string
	// ReconnectDelay is the pause before redialing after an unexpected
	// close. Defaults to 5 seconds.
	ReconnectDelay time.Duration
	// MaxBackoff, when non-zero, doubles the delay after each failed cycle
	// up to this cap. Zero keeps the fixed delay.
	MaxBackoff time.Duration
	Dialer     *websocket.Dialer
	Logger     zerolog.Logger
	Metrics    Recorder
}

type registration struct {
	id int
	fn Handler
}

type Client struct {
	mu       sync.Mutex
	opts     Options
	conn     *websocket.Conn
	gen      int
	handlers []registration
	nextID   int
	timer    *time.Timer
	delay    time.Duration
	closed   bool
}

func New(opts Options) *Client {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 5 * time.Second
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
	return &Client{opts: opts, delay: opts.ReconnectDelay}
}

// Connect dials the endpoint and starts the read loop. Calling it while a
// connection is open is a no-op; calling it after Disconnect re-arms the
// client. A failed dial schedules a retry before returning the error.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.closed = false
	c.mu.Unlock()
	return c.connect(ctx)
}

func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	url := c.opts.URL
	c.mu.Unlock()

	conn, _, err := c.opts.Dialer.DialContext(ctx, url, nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.conn != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return nil
	}
	if err != nil {
		c.scheduleReconnectLocked()
		return fmt.Errorf("realtime dial: %w", err)
	}

	c.conn = conn
	c.gen++
	c.delay = c.opts.ReconnectDelay
	go c.readLoop(conn, c.gen)

	c.opts.Logger.Info().Str("url", url).Msg("realtime connected")
	return nil
}

// Disconnect closes the connection and cancels any pending reconnect. The
// client stays idle until Connect is called again.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.conn != nil {
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = c.conn.Close()
		c.conn = nil
	}
}

// OnMessage registers a handler for every subsequent inbound event and
// returns its deregistration func. Handlers run synchronously on the read
// goroutine in registration order.
func (c *Client) OnMessage(h Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.handlers = append(c.handlers, registration{id: id, fn: h})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, r := range c.handlers {
			if r.id == id {
				c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
				return
			}
		}
	}
}

// Send writes v as a JSON frame if the connection is open and silently
// drops it otherwise. Nothing is buffered for later delivery.
func (c *Client) Send(v any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.WriteJSON(v)
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClose(conn, gen, err)
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
			// One bad frame must not take the listener down.
			c.opts.Logger.Warn().Err(err).Msg("dropping malformed frame")
			if c.opts.Metrics != nil {
				c.opts.Metrics.RecordDroppedFrame()
			}
			continue
		}

		if c.opts.Metrics != nil {
			c.opts.Metrics.RecordEvent(string(ev.Type))
		}
		c.dispatch(ev)
	}
}

// dispatch snapshots the handler set so registration and deregistration
// stay safe during delivery without skipping or double-invoking anyone.
func (c *Client) dispatch(ev Event) {
	c.mu.Lock()
	snapshot := make([]registration, len(c.handlers))
	copy(snapshot, c.handlers)
	c.mu.Unlock()

	for _, r := range snapshot {
		r.fn(ev)
	}
}

func (c *Client) handleClose(conn *websocket.Conn, gen int, err error) {
	_ = conn.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	// A stale read loop from a replaced connection must not touch state.
	if gen != c.gen || c.conn != conn {
		return
	}
	c.conn = nil
	if c.closed {
		return
	}

	c.opts.Logger.Warn().Err(err).Dur("delay", c.delay).Msg("realtime connection lost")
	c.scheduleReconnectLocked()
}

func (c *Client) scheduleReconnectLocked() {
	if c.timer != nil {
		return
	}

	delay := c.delay
	if c.opts.MaxBackoff > 0 {
		c.delay *= 2
		if c.delay > c.opts.MaxBackoff {
			c.delay = c.opts.MaxBackoff
		}
	}

	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.timer = nil
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}
		if c.opts.Metrics != nil {
			c.opts.Metrics.RecordReconnect()
		}
		_ = c.connect(context.Background())
	})
}
