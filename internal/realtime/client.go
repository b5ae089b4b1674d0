package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pat-apps/teleprompter/internal/shared"
)

const (
	dialTimeout    = 10 * time.Second
	writeWait      = 5 * time.Second
	maxMessageSize = 512 * 1024
)

// Client owns exactly one logical connection to the companion service. It
// dials, sends the identifying handshake, decodes tagged JSON frames, and
// republishes typed state changes through Callbacks. A read failure schedules
// exactly one retry after the configured delay; Disconnect cancels it.
type Client struct {
	cfg    Config
	cb     Callbacks
	logger *slog.Logger
	dialer *websocket.Dialer

	mu         sync.Mutex
	conn       *websocket.Conn
	state      ConnState
	text       string
	connected  bool
	lastErr    error
	attempts   int
	gen        uint64
	retryTimer *time.Timer

	// serializes writes to the socket
	wmu sync.Mutex
}

func New(cfg Config, cb Callbacks, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    normalizeConfig(cfg),
		cb:     cb,
		logger: logger.With("component", "realtime"),
		dialer: websocket.DefaultDialer,
		state:  StateDisconnected,
	}
}

// Connect opens a connection to the configured endpoint and starts the
// receive loop. It is a no-op while an attempt is already in flight or a
// connection is established, so concurrent callers can never produce a
// second live transport. A pending reconnect is absorbed into this attempt.
func (c *Client) Connect() {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return
	}
	c.stopRetryLocked()
	c.state = StateConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.notifyState(StateConnecting)
	go c.run(gen)
}

// Disconnect closes the active transport with a normal-closure code and
// suppresses any pending reconnect. Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.state == StateDisconnected && c.conn == nil && c.retryTimer == nil {
		c.mu.Unlock()
		return
	}
	c.stopRetryLocked()
	c.closeConnLocked()
	changed := c.state != StateDisconnected
	c.state = StateDisconnected
	c.connected = false
	c.gen++
	c.mu.Unlock()

	c.logger.Info("disconnected")
	if changed {
		c.notifyState(StateDisconnected)
	}
}

// Send serializes msg and writes it as a single text frame. Outbound
// messages are best-effort telemetry: when the client is not connected the
// message is logged and dropped, never raised.
func (c *Client) Send(msg OutboundMessage) {
	c.mu.Lock()
	conn := c.conn
	ok := c.connected
	c.mu.Unlock()

	if !ok || conn == nil {
		c.logger.Debug("dropping outbound message", "reason", shared.ErrNotConnected)
		return
	}
	if err := c.writeFrame(conn, msg); err != nil {
		c.logger.Warn("write failed", "error", err)
	}
}

// State returns a snapshot of the observable projection.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Text: c.text, Connected: c.connected, Conn: c.state, LastErr: c.lastErr}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) run(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
	cancel()
	if err != nil {
		c.logger.Warn("dial failed", "url", c.cfg.URL, "error", err)
		c.connectionLost(gen, shared.TransportErr(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c.mu.Lock()
	if c.gen != gen || c.state != StateConnecting {
		// Disconnect (or a newer Connect) raced the dial; this attempt lost.
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	if err := c.writeFrame(conn, handshake(c.cfg.ClientName)); err != nil {
		c.logger.Warn("handshake write failed", "error", err)
		c.connectionLost(gen, shared.TransportErr(err))
		return
	}

	c.readLoop(gen, conn)
}

func (c *Client) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			stale := c.gen != gen || c.state == StateDisconnected
			c.mu.Unlock()
			if stale {
				return
			}
			c.logger.Warn("read failed", "error", err)
			c.connectionLost(gen, shared.TransportErr(err))
			return
		}
		c.handleFrame(gen, data)
	}
}

func (c *Client) handleFrame(gen uint64, data []byte) {
	msg, err := decodeInbound(data)
	if err != nil {
		c.logger.Warn("dropping frame", "error", err)
		c.notifyError(err)
		return
	}

	switch msg.Type {
	case MessageTypeTranscription:
		if msg.Text == nil {
			return
		}
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.text = *msg.Text
		c.mu.Unlock()
		if c.cb.OnTranscription != nil {
			c.cb.OnTranscription(*msg.Text)
		}

	case MessageTypeSystem:
		if msg.Message == nil {
			c.notifyError(shared.ProtocolErr("system frame without message"))
			return
		}
		if *msg.Message == c.cfg.HandshakeAck {
			c.markConnected(gen)
			return
		}
		c.logger.Info("system notice", "message", *msg.Message)
		if c.cb.OnSystemNotice != nil {
			c.cb.OnSystemNotice(*msg.Message)
		}

	default:
		c.logger.Warn("unknown message type", "type", msg.Type, "raw", string(msg.Raw))
		c.notifyError(shared.ProtocolErr("unknown message type %q", msg.Type))
	}
}

func (c *Client) markConnected(gen uint64) {
	c.mu.Lock()
	if c.gen != gen || c.state == StateConnected {
		c.mu.Unlock()
		return
	}
	c.state = StateConnected
	c.connected = true
	c.attempts = 0
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info("companion handshake acknowledged")
	c.notifyState(StateConnected)
}

// connectionLost tears down the transport and schedules exactly one retry.
// Stale generations (a loop whose connection was already replaced) are
// ignored so a dying read loop cannot tear down its successor.
func (c *Client) connectionLost(gen uint64, err error) {
	c.mu.Lock()
	if c.gen != gen || c.state == StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.closeConnLocked()
	c.connected = false
	c.lastErr = err
	c.attempts++

	if c.cfg.Retry.MaxAttempts > 0 && c.attempts > c.cfg.Retry.MaxAttempts {
		c.state = StateDisconnected
		attempts := c.attempts
		c.mu.Unlock()

		c.logger.Error("giving up after max reconnect attempts", "attempts", attempts, "error", err)
		c.notifyError(err)
		c.notifyState(StateDisconnected)
		return
	}

	c.state = StateReconnecting
	c.retryTimer = time.AfterFunc(c.cfg.Retry.Delay, c.retry)
	attempt := c.attempts
	delay := c.cfg.Retry.Delay
	c.mu.Unlock()

	c.logger.Warn("connection lost, retry scheduled", "attempt", attempt, "delay", delay, "error", err)
	c.notifyError(err)
	c.notifyState(StateReconnecting)
}

func (c *Client) retry() {
	c.mu.Lock()
	if c.state != StateReconnecting {
		c.mu.Unlock()
		return
	}
	c.retryTimer = nil
	c.state = StateConnecting
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.notifyState(StateConnecting)
	go c.run(gen)
}

func (c *Client) writeFrame(conn *websocket.Conn, msg OutboundMessage) error {
	data, err := encodeOutbound(msg)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) closeConnLocked() {
	if c.conn == nil {
		return
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing"),
		time.Now().Add(500*time.Millisecond))
	_ = c.conn.Close()
	c.conn = nil
}

func (c *Client) stopRetryLocked() {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
}

func (c *Client) notifyState(state ConnState) {
	if c.cb.OnStateChange != nil {
		c.cb.OnStateChange(state)
	}
}

func (c *Client) notifyError(err error) {
	if c.cb.OnError != nil {
		c.cb.OnError(err)
	}
}
