package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minimact/client-go/pkg/protocol"
)

// ErrTooManyRedirects is returned when negotiating the WebSocket upgrade
// exceeds the redirect ceiling.
var ErrTooManyRedirects = errors.New("transport: exceeded redirect ceiling")

// ErrHandshakeIncomplete is returned when the server closes the connection
// before sending a complete, terminated handshake response frame.
var ErrHandshakeIncomplete = errors.New("transport: incomplete handshake response")

const defaultMaxRedirects = 100

// TransferFormat selects the WebSocket frame type used for Send.
type TransferFormat int

const (
	TransferText TransferFormat = iota
	TransferBinary
)

func durPtr(d time.Duration) *time.Duration { return &d }

// DefaultRetryDelays is the reconnect backoff table: try immediately, then after 2s, 10s, 30s, then give up
// (the trailing nil).
var DefaultRetryDelays = []*time.Duration{
	durPtr(0),
	durPtr(2000 * time.Millisecond),
	durPtr(10000 * time.Millisecond),
	durPtr(30000 * time.Millisecond),
	nil,
}

// Config configures an Adapter.
type Config struct {
	URL               string
	MaxRedirects      int
	RetryDelays       []*time.Duration
	HandshakeTimeout  time.Duration
	StatefulReconnect bool
	Logger            *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = defaultMaxRedirects
	}
	if c.RetryDelays == nil {
		c.RetryDelays = DefaultRetryDelays
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 15 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// OnReceive is invoked with one decoded frame payload (terminator
// stripped) per call.
type OnReceive func(frame []byte)

// OnClose is invoked when the connection drops; allowReconnect is false
// when the drop follows Stop and true otherwise, including when the
// server closed the socket. The Close message's own flag is not consulted.
type OnClose func(err error, allowReconnect bool)

// OnReconnected is invoked after a dropped connection is automatically
// re-established by the retry loop, so the Orchestrator can re-register
// components.
type OnReconnected func()

// Adapter is the Transport Adapter: it owns the
// WebSocket connection, the handshake, frame (de)serialization, and the
// reconnect-with-backoff loop. It has no knowledge of sequencing or
// acks — those live in pkg/buffer.
type Adapter struct {
	cfg Config

	mu       sync.Mutex
	conn     *websocket.Conn
	leftover []byte
	closed   bool

	onReceive     OnReceive
	onClose       OnClose
	onReconnected OnReconnected
}

// New constructs an Adapter. cfg.URL must be set before Start.
func New(cfg Config) *Adapter {
	return &Adapter{cfg: cfg.withDefaults()}
}

// SetOnReceive installs the frame callback.
func (a *Adapter) SetOnReceive(fn OnReceive) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onReceive = fn
}

// SetOnClose installs the close callback.
func (a *Adapter) SetOnClose(fn OnClose) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onClose = fn
}

// SetOnReconnected installs the reconnect-succeeded callback.
func (a *Adapter) SetOnReconnected(fn OnReconnected) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onReconnected = fn
}

// Start dials the hub, performs the handshake, and begins
// reading frames in the background. transferFormat selects the WebSocket
// message type used by Send.
func (a *Adapter) Start(ctx context.Context, transferFormat TransferFormat) error {
	conn, err := a.dialWithRedirects(ctx, a.cfg.URL)
	if err != nil {
		return fmt.Errorf("transport: dial: %w", err)
	}

	if err := a.handshake(conn); err != nil {
		conn.Close()
		return err
	}

	a.mu.Lock()
	a.conn = conn
	a.leftover = nil
	a.closed = false
	a.mu.Unlock()

	go a.readLoop(ctx, transferFormat)
	return nil
}

func (a *Adapter) handshake(conn *websocket.Conn) error {
	req := protocol.NewHandshakeRequest(a.cfg.StatefulReconnect)
	reqBytes, err := protocol.EncodeHandshakeRequest(req)
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(a.cfg.HandshakeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, reqBytes); err != nil {
		return fmt.Errorf("transport: handshake write: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(a.cfg.HandshakeTimeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("transport: handshake read: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	frames, _ := protocol.SplitFrames(msg)
	if len(frames) == 0 {
		return ErrHandshakeIncomplete
	}

	resp, err := protocol.DecodeHandshakeResponse(frames[0])
	if err != nil {
		return fmt.Errorf("transport: handshake decode: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("transport: handshake rejected: %s", resp.Error)
	}
	return nil
}

func (a *Adapter) dialWithRedirects(ctx context.Context, url string) (*websocket.Conn, error) {
	redirects := 0
	for {
		conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err == nil {
			return conn, nil
		}
		if resp == nil || !isRedirect(resp.StatusCode) {
			return nil, err
		}

		location := resp.Header.Get("Location")
		if location == "" {
			return nil, err
		}

		redirects++
		if redirects > a.cfg.MaxRedirects {
			return nil, ErrTooManyRedirects
		}
		url = location
	}
}

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}

// Send frames one message, terminator-appended, and
// writes it as transferFormat.
func (a *Adapter) Send(frame []byte, transferFormat TransferFormat) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()

	if conn == nil {
		return errors.New("transport: not started")
	}

	wsType := websocket.TextMessage
	if transferFormat == TransferBinary {
		wsType = websocket.BinaryMessage
	}

	framed := append(append([]byte(nil), frame...), protocol.RecordSeparator)

	a.mu.Lock()
	defer a.mu.Unlock()
	return conn.WriteMessage(wsType, framed)
}

func (a *Adapter) readLoop(ctx context.Context, transferFormat TransferFormat) {
	for {
		a.mu.Lock()
		conn := a.conn
		a.mu.Unlock()
		if conn == nil {
			return
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			allowReconnect := !a.markClosed()
			a.notifyClose(err, allowReconnect)
			if allowReconnect {
				go a.reconnect(ctx, transferFormat)
			}
			return
		}

		a.mu.Lock()
		buf := append(a.leftover, msg...)
		frames, leftover := protocol.SplitFrames(buf)
		a.leftover = leftover
		onReceive := a.onReceive
		a.mu.Unlock()

		if onReceive != nil {
			for _, f := range frames {
				onReceive(f)
			}
		}
	}
}

// markClosed marks the adapter closed if it wasn't already, returning
// whether it was already a deliberate Stop (in which case reconnect must
// not fire).
func (a *Adapter) markClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	wasClosed := a.closed
	a.closed = true
	a.conn = nil
	return wasClosed
}

func (a *Adapter) notifyClose(err error, allowReconnect bool) {
	a.mu.Lock()
	onClose := a.onClose
	a.mu.Unlock()
	if onClose != nil {
		onClose(err, allowReconnect)
	}
}

// reconnect retries Start following cfg.RetryDelays, stopping at the
// first nil entry (the default [0, 2000, 10000, 30000, nil] table)
// or on ctx cancellation.
func (a *Adapter) reconnect(ctx context.Context, transferFormat TransferFormat) {
	for _, delay := range a.cfg.RetryDelays {
		if delay == nil {
			a.cfg.Logger.Warn("transport: giving up reconnect")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(*delay):
		}

		if err := a.Start(ctx, transferFormat); err == nil {
			a.mu.Lock()
			onReconnected := a.onReconnected
			a.mu.Unlock()
			if onReconnected != nil {
				onReconnected()
			}
			return
		} else {
			a.cfg.Logger.Debug("transport: reconnect attempt failed", "error", err)
		}
	}
}

// Stop closes the connection deliberately; readLoop will not trigger a
// reconnect.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.conn == nil {
		return nil
	}
	conn := a.conn
	a.conn = nil
	return conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
