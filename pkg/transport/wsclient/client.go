// Package wsclient is a websocket Transport for the editor. Frames are JSON:
// operations in the ot wire shape, plus snapshot and error messages from the
// server.
package wsclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/gomdedit/internal/logging"
	"github.com/yaklabco/gomdedit/pkg/editor"
	"github.com/yaklabco/gomdedit/pkg/ot"
)

// ErrQueueFull is returned by Submit when the send queue is full.
var ErrQueueFull = errors.New("send queue full")

// Client connects an editor to a websocket collaboration server.
type Client struct {
	url          string
	dialer       *websocket.Dialer
	writeTimeout time.Duration
	queueSize    int
	logger       *log.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	queue  chan ot.Operation
	quit   chan struct{}
	local  bool
	done   chan struct{}
	result error
}

// Option configures a Client.
type Option func(*Client)

// WithHandshakeTimeout bounds the websocket handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.dialer.HandshakeTimeout = d
	}
}

// WithWriteTimeout bounds each frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.writeTimeout = d
	}
}

// WithQueueSize sets how many operations may wait to be sent.
func WithQueueSize(n int) Option {
	return func(c *Client) {
		c.queueSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a client for the server at url. It does not connect.
func New(url string, opts ...Option) *Client {
	dialer := *websocket.DefaultDialer
	c := &Client{
		url:          url,
		dialer:       &dialer,
		writeTimeout: 10 * time.Second,
		queueSize:    256,
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the server and starts delivering frames to handler. Callbacks
// run on the client's reader goroutine.
func (c *Client) Connect(ctx context.Context, handler editor.TransportHandler) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.queue = make(chan ot.Operation, c.queueSize)
	c.quit = make(chan struct{})
	c.done = make(chan struct{})
	c.local = false
	c.result = nil
	queue, quit, done := c.queue, c.quit, c.done
	c.mu.Unlock()

	c.logger.Info("connected", logging.FieldURL, c.url)

	group, gctx := errgroup.WithContext(context.Background())
	group.Go(func() error { return c.read(conn, handler) })
	group.Go(func() error { return c.write(gctx, conn, queue, quit) })

	go func() {
		err := group.Wait()

		c.mu.Lock()
		local := c.local
		c.conn = nil
		c.result = err
		c.mu.Unlock()
		close(done)

		if !local {
			handler.OnDisconnect(disconnectMessage(err))
		}
	}()
	return nil
}

// Disconnect sends a close frame carrying reason and closes the connection.
// The handler is not notified of a disconnect it requested.
func (c *Client) Disconnect(reason string) error {
	c.mu.Lock()
	conn := c.conn
	if conn == nil || c.local {
		c.mu.Unlock()
		return nil
	}
	c.local = true
	close(c.quit)
	c.mu.Unlock()

	c.logger.Info("disconnecting", logging.FieldReason, reason)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	werr := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout))
	if err := conn.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
		return fmt.Errorf("send close: %w", werr)
	}
	return nil
}

// Submit queues op for sending. It never blocks.
func (c *Client) Submit(op ot.Operation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.local {
		return fmt.Errorf("submit: %w", editor.ErrTransportUnavailable)
	}
	select {
	case c.queue <- op:
		return nil
	default:
		return ErrQueueFull
	}
}

// Wait blocks until the connection ends or ctx is done. It returns the error
// that ended the connection, or nil for a clean close.
func (c *Client) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("wait: %w", ctx.Err())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if isClean(c.result) || c.local {
		return nil
	}
	return c.result
}

func (c *Client) read(conn *websocket.Conn, handler editor.TransportHandler) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		msg, err := Decode(data)
		if err != nil {
			line, col := Position(data, err)
			handler.OnError("malformed frame: "+err.Error(), line, col)
			continue
		}

		switch {
		case msg.Snapshot != nil:
			handler.OnSnapshot(*msg.Snapshot)
		case msg.Operation != nil:
			handler.OnOperation(*msg.Operation)
		case msg.Error != nil:
			handler.OnError(msg.Error.Message, msg.Error.Line, msg.Error.Column)
		}
	}
}

// write sends queued operations until quit is closed or the reader fails.
func (c *Client) write(ctx context.Context, conn *websocket.Conn, queue <-chan ot.Operation, quit <-chan struct{}) error {
	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case op := <-queue:
			if err := conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				return err
			}
			if err := conn.WriteJSON(op); err != nil {
				_ = conn.Close()
				return fmt.Errorf("write %s: %w", op, err)
			}
		}
	}
}

func isClean(err error) bool {
	return err == nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

func disconnectMessage(err error) string {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Text != "" {
		return closeErr.Text
	}
	if err == nil {
		return "connection closed"
	}
	return err.Error()
}
