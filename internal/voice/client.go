package voice

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"sentimentai/voice-server/internal/relay"
	"sentimentai/voice-server/pkg/logger"

	"github.com/gorilla/websocket"
)

// Sender pushes client messages over the voice channel
type Sender interface {
	Send(msg *relay.ClientMessage) error
}

// Client maintains the WebSocket to the voice endpoint, delivering
// server messages to a handler and reconnecting with the retry policy
// when the connection drops.
type Client struct {
	url     string
	policy  RetryPolicy
	handler func(*relay.ServerMessage)
	log     *logger.Logger

	writeMu sync.Mutex
	mu      sync.Mutex
	conn    *websocket.Conn

	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

// NewClient prepares a client for the given ws:// endpoint. Connect
// must be called before Send.
func NewClient(url string, policy RetryPolicy, handler func(*relay.ServerMessage), log *logger.Logger) *Client {
	return &Client{
		url:     url,
		policy:  policy,
		handler: handler,
		log:     log,
		closed:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Connect dials the endpoint and starts the read loop. Dial failures
// are retried under the policy before giving up.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		c.log.Warn("Voice connection failed", "attempt", attempt, "error", err.Error())

		if c.policy.Exhausted(attempt) {
			return nil, lastErr
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.closed:
			return nil, lastErr
		case <-time.After(c.policy.Delay(attempt)):
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				close(c.done)
				return
			default:
			}
			c.log.Warn("Voice connection lost, reconnecting", "error", err.Error())
			c.reconnect()
			return
		}

		var msg relay.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("Ignoring malformed server message", "error", err.Error())
			continue
		}
		c.handler(&msg)
	}
}

// reconnect re-dials under the retry policy after an unexpected drop.
// Exhausting the policy surfaces as a synthetic error message so the
// session can settle back to idle.
func (c *Client) reconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := c.dial(ctx)
	if err != nil {
		c.log.LogError(err, "Voice connection could not be re-established")
		c.handler(&relay.ServerMessage{Type: relay.TypeError, Message: "Connection lost"})
		close(c.done)
		return
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
}

// Send marshals and writes one client message
func (c *Client) Send(msg *relay.ClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return websocket.ErrCloseSent
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears down the connection and stops reconnecting
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

// Done is closed when the read loop has exited for good
func (c *Client) Done() <-chan struct{} {
	return c.done
}
