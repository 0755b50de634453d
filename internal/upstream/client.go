package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"sentimentai/voice-server/pkg/config"
	"sentimentai/voice-server/pkg/logger"

	"github.com/gorilla/websocket"
)

// Conn is one realtime connection to the upstream speech API. A session
// owns exactly one Conn; it is never shared.
type Conn interface {
	// Configure sends the session-configuration event for the locale.
	Configure(locale string) error
	// ReadEvent blocks until the next upstream event arrives.
	ReadEvent() (*Event, error)
	// AppendAudio forwards a base64 PCM16 chunk into the input buffer.
	AppendAudio(audio string) error
	// CommitAudio commits the input buffer and requests a response.
	CommitAudio() error
	// CancelResponse cancels the in-flight response. Best effort; the
	// caller does not wait for an acknowledgement.
	CancelResponse() error
	Close() error
}

// Dialer opens upstream connections
type Dialer interface {
	Dial(ctx context.Context, locale string) (Conn, error)
}

// WebSocketDialer dials the upstream realtime API over WebSocket
type WebSocketDialer struct {
	cfg *config.Config
	log *logger.Logger
}

// NewDialer creates a dialer from the application config
func NewDialer(cfg *config.Config, log *logger.Logger) *WebSocketDialer {
	return &WebSocketDialer{cfg: cfg, log: log}
}

// Dial opens a connection and returns it ready for Configure. The model
// is selected via query parameter; auth goes in the request headers.
func (d *WebSocketDialer) Dial(ctx context.Context, locale string) (Conn, error) {
	url := fmt.Sprintf("%s?model=%s", d.cfg.Upstream.URL, d.cfg.Upstream.Model)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+d.cfg.Upstream.APIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	dialer := websocket.Dialer{HandshakeTimeout: d.cfg.Upstream.DialTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("upstream dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("upstream dial failed: %w", err)
	}

	return &wsConn{conn: conn, cfg: d.cfg}, nil
}

// wsConn wraps a gorilla connection with a write mutex; the relay's
// downstream pump and the keepalive path both write to it.
type wsConn struct {
	conn    *websocket.Conn
	cfg     *config.Config
	writeMu sync.Mutex
}

func (c *wsConn) Configure(locale string) error {
	return c.send(&Event{
		Type:    EventSessionUpdate,
		Session: SessionConfigForLocale(c.cfg, locale),
	})
}

func (c *wsConn) ReadEvent() (*Event, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("malformed upstream event: %w", err)
	}
	return &event, nil
}

func (c *wsConn) AppendAudio(audio string) error {
	return c.send(&Event{Type: EventAudioAppend, Audio: audio})
}

func (c *wsConn) CommitAudio() error {
	if err := c.send(&Event{Type: EventAudioCommit}); err != nil {
		return err
	}
	return c.send(&Event{Type: EventResponseCreate})
}

func (c *wsConn) CancelResponse() error {
	return c.send(&Event{Type: EventResponseCancel})
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) send(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
