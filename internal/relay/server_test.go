package relay

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"sentimentai/voice-server/internal/upstream"
	"sentimentai/voice-server/pkg/config"
	"sentimentai/voice-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	locale   string
	appended []string
	commits  int
	cancels  int

	events    chan *upstream.Event
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		events: make(chan *upstream.Event, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Configure(locale string) error {
	c.mu.Lock()
	c.locale = locale
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) ReadEvent() (*upstream.Event, error) {
	select {
	case e := <-c.events:
		return e, nil
	case <-c.closed:
		return nil, errors.New("upstream connection closed")
	}
}

func (c *fakeConn) AppendAudio(audio string) error {
	c.mu.Lock()
	c.appended = append(c.appended, audio)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) CommitAudio() error {
	c.mu.Lock()
	c.commits++
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) CancelResponse() error {
	c.mu.Lock()
	c.cancels++
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) appendedAudio() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.appended))
	copy(out, c.appended)
	return out
}

type fakeDialer struct {
	mu      sync.Mutex
	conns   []*fakeConn
	locales []string
	err     error
}

func (d *fakeDialer) Dial(ctx context.Context, locale string) (upstream.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	conn := newFakeConn()
	d.conns = append(d.conns, conn)
	d.locales = append(d.locales, locale)
	return conn, nil
}

func (d *fakeDialer) conn(t *testing.T) *fakeConn {
	t.Helper()
	var conn *fakeConn
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		if len(d.conns) == 0 {
			return false
		}
		conn = d.conns[0]
		return true
	}, time.Second, 5*time.Millisecond)
	return conn
}

func newTestRelay(t *testing.T, dialer upstream.Dialer) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := NewServer(config.Get(), logger.New(logger.Config{Level: "error"}), dialer)
	t.Cleanup(srv.Shutdown)

	engine := gin.New()
	engine.GET("/ws/voice-chat", srv.HandleVoiceChat)

	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)

	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/voice-chat"
}

func dialRelay(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until a message of the wanted type arrives
func readUntil(t *testing.T, conn *websocket.Conn, wantType string) *ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg ServerMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == wantType {
			return &msg
		}
	}
}

func TestVoiceChatSendsConnectedAck(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)

	msg := readUntil(t, conn, TypeConnected)
	assert.NotEmpty(t, msg.SessionID)
	assert.Equal(t, "en", msg.Locale)
	assert.NotEmpty(t, msg.Message)
}

func TestVoiceChatLocaleSelection(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)

	conn := dialRelay(t, url+"?locale=ar")
	msg := readUntil(t, conn, TypeConnected)
	assert.Equal(t, "ar", msg.Locale)

	upstreamConn := dialer.conn(t)
	require.Eventually(t, func() bool {
		upstreamConn.mu.Lock()
		defer upstreamConn.mu.Unlock()
		return upstreamConn.locale == "ar"
	}, time.Second, 5*time.Millisecond)
}

func TestVoiceChatUnknownLocaleDefaultsToEnglish(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)

	conn := dialRelay(t, url+"?locale=fr")
	msg := readUntil(t, conn, TypeConnected)
	assert.Equal(t, "en", msg.Locale)
}

func TestVoiceChatForwardsAudioUpstream(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)
	readUntil(t, conn, TypeConnected)

	upstreamConn := dialer.conn(t)

	// Chunks sent before the upstream attach completes are dropped, so
	// keep sending until one lands.
	payload := base64.StdEncoding.EncodeToString([]byte("pcm-bytes"))
	require.Eventually(t, func() bool {
		require.NoError(t, conn.WriteJSON(&ClientMessage{Type: TypeAudio, Audio: payload}))
		audio := upstreamConn.appendedAudio()
		return len(audio) > 0 && audio[0] == payload
	}, time.Second, 10*time.Millisecond)
}

func TestVoiceChatAcceptsBinaryAudioFrames(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)
	readUntil(t, conn, TypeConnected)

	upstreamConn := dialer.conn(t)

	raw := []byte{0x01, 0x02, 0x03, 0x04}
	want := base64.StdEncoding.EncodeToString(raw)
	require.Eventually(t, func() bool {
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, raw))
		audio := upstreamConn.appendedAudio()
		return len(audio) > 0 && audio[0] == want
	}, time.Second, 10*time.Millisecond)
}

func TestVoiceChatCommit(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)
	readUntil(t, conn, TypeConnected)

	upstreamConn := dialer.conn(t)

	require.Eventually(t, func() bool {
		require.NoError(t, conn.WriteJSON(&ClientMessage{Type: TypeCommitAudio}))
		upstreamConn.mu.Lock()
		defer upstreamConn.mu.Unlock()
		return upstreamConn.commits > 0
	}, time.Second, 10*time.Millisecond)
}

func TestVoiceChatInterruptIsImmediate(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)
	readUntil(t, conn, TypeConnected)

	// An event round trip proves the upstream pump is attached before
	// the interrupt goes out.
	upstreamConn := dialer.conn(t)
	upstreamConn.events <- &upstream.Event{Type: upstream.EventContentPartAdded}
	readUntil(t, conn, TypeResponseStarted)

	require.NoError(t, conn.WriteJSON(&ClientMessage{Type: TypeInterrupt}))

	// The interrupted confirmation comes straight back, without waiting
	// for any upstream acknowledgement.
	readUntil(t, conn, TypeInterrupted)

	require.Eventually(t, func() bool {
		upstreamConn.mu.Lock()
		defer upstreamConn.mu.Unlock()
		return upstreamConn.cancels == 1
	}, time.Second, 5*time.Millisecond)
}

func TestVoiceChatPingPong(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)
	readUntil(t, conn, TypeConnected)

	require.NoError(t, conn.WriteJSON(&ClientMessage{Type: TypePing}))
	readUntil(t, conn, TypePong)
}

func TestVoiceChatTranslatesUpstreamEvents(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)
	readUntil(t, conn, TypeConnected)

	upstreamConn := dialer.conn(t)
	upstreamConn.events <- &upstream.Event{Type: upstream.EventSpeechStarted}
	upstreamConn.events <- &upstream.Event{Type: upstream.EventAudioDelta, Delta: "YXVkaW8="}
	upstreamConn.events <- &upstream.Event{Type: upstream.EventResponseDone}

	readUntil(t, conn, TypeSpeechStarted)
	audio := readUntil(t, conn, TypeAudio)
	assert.Equal(t, "YXVkaW8=", audio.Audio)
	readUntil(t, conn, TypeResponseComplete)
}

func TestVoiceChatBrowserCloseTearsDownUpstream(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)
	readUntil(t, conn, TypeConnected)

	upstreamConn := dialer.conn(t)
	conn.Close()

	require.Eventually(t, upstreamConn.isClosed, time.Second, 5*time.Millisecond)
}

func TestVoiceChatUpstreamFailureEndsSession(t *testing.T) {
	dialer := &fakeDialer{}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)
	readUntil(t, conn, TypeConnected)

	upstreamConn := dialer.conn(t)
	upstreamConn.Close()

	// The browser side is closed too; reads eventually fail.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
	}
}

func TestVoiceChatDialFailure(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("upstream unavailable")}
	url := newTestRelay(t, dialer)
	conn := dialRelay(t, url)
	readUntil(t, conn, TypeConnected)

	msg := readUntil(t, conn, TypeError)
	assert.Equal(t, "Failed to connect to voice service", msg.Message)

	// No retry happens server side; the connection just closes.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var m ServerMessage
		if err := conn.ReadJSON(&m); err != nil {
			return
		}
	}
}
