package relay

import (
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"sentimentai/voice-server/internal/upstream"
	"sentimentai/voice-server/pkg/logger"
	"sentimentai/voice-server/pkg/observability"

	"github.com/gorilla/websocket"
)

// pingPeriod must be less than the pong wait
func pingPeriod(pongWait time.Duration) time.Duration {
	return pongWait * 9 / 10
}

// Session bridges one browser connection to one upstream realtime
// connection. The session exclusively owns both; closing either side
// tears down the other.
type Session struct {
	ID     string
	Locale string

	conn   *websocket.Conn
	server *Server
	log    *logger.Logger
	send   chan []byte

	upstreamMu sync.Mutex
	upstream   upstream.Conn

	done      chan struct{}
	closeOnce sync.Once
}

// setUpstream attaches the upstream connection once the async dial
// finishes. Returns false if the session closed while dialing.
func (s *Session) setUpstream(conn upstream.Conn) bool {
	s.upstreamMu.Lock()
	defer s.upstreamMu.Unlock()

	if s.closed() {
		return false
	}
	s.upstream = conn
	return true
}

func (s *Session) getUpstream() upstream.Conn {
	s.upstreamMu.Lock()
	defer s.upstreamMu.Unlock()
	return s.upstream
}

func (s *Session) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// enqueue marshals a message onto the outbound channel. Messages to a
// session whose writer has stopped are dropped.
func (s *Session) enqueue(msg *ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.LogError(err, "Error marshaling message", "type", msg.Type)
		return
	}

	select {
	case s.send <- data:
	default:
		s.log.Warn("Dropping message, send buffer full", "type", msg.Type)
	}
}

func (s *Session) enqueueError(message string) {
	s.enqueue(&ServerMessage{Type: TypeError, Message: message})
}

// readPump consumes frames from the browser until the connection dies,
// then tears the session down.
func (s *Session) readPump() {
	defer s.server.teardown(s)

	cfg := s.server.cfg
	s.conn.SetReadLimit(cfg.Relay.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(cfg.Relay.PongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(cfg.Relay.PongWait))
		return nil
	})

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.LogError(err, "Browser connection error")
			}
			return
		}

		// A raw binary frame is PCM16 audio without the JSON envelope.
		if messageType == websocket.BinaryMessage {
			s.forwardAudio(base64.StdEncoding.EncodeToString(data))
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn("Ignoring malformed client message", "error", err.Error())
			continue
		}

		s.handleClientMessage(&msg)
	}
}

// handleClientMessage translates one control message to the upstream
// vocabulary. Unknown types are logged and dropped; the session
// continues.
func (s *Session) handleClientMessage(msg *ClientMessage) {
	switch msg.Type {
	case TypeAudio:
		if msg.Audio != "" {
			s.forwardAudio(msg.Audio)
		}

	case TypeInterrupt:
		// Best effort: tell upstream to cancel, then immediately tell
		// the client the session was interrupted without waiting for
		// an acknowledgement.
		if conn := s.getUpstream(); conn != nil {
			if err := conn.CancelResponse(); err != nil {
				s.log.LogError(err, "Failed to cancel upstream response")
			}
		}
		s.enqueue(&ServerMessage{Type: TypeInterrupted})

	case TypeCommitAudio:
		conn := s.getUpstream()
		if conn == nil {
			s.log.Warn("Upstream not ready, dropping commit")
			return
		}
		if err := conn.CommitAudio(); err != nil {
			s.log.LogError(err, "Failed to commit audio buffer")
		}

	case TypePing:
		s.enqueue(&ServerMessage{Type: TypePong})

	case TypeStartRecording, TypeStopRecording:
		// Client-side state management markers, nothing to forward.

	default:
		s.log.Warn("Unknown message type", "type", msg.Type)
	}
}

func (s *Session) forwardAudio(audio string) {
	conn := s.getUpstream()
	if conn == nil {
		s.log.Warn("Upstream not ready, dropping audio chunk")
		return
	}
	if err := conn.AppendAudio(audio); err != nil {
		s.log.LogError(err, "Failed to forward audio upstream")
		return
	}
	observability.AudioChunksRelayed.WithLabelValues("inbound").Inc()
}

// upstreamPump reads upstream events, translates them and forwards the
// result to the browser. An upstream error event or read failure ends
// the session.
func (s *Session) upstreamPump(conn upstream.Conn) {
	defer s.server.teardown(s)

	for {
		event, err := conn.ReadEvent()
		if err != nil {
			if !s.closed() {
				s.log.LogError(err, "Upstream connection error")
				s.enqueueError("Failed to connect to voice service")
			}
			return
		}

		observability.UpstreamEvents.WithLabelValues(event.Type).Inc()

		msg, ok := TranslateUpstream(event)
		if !ok {
			s.log.Debug("Upstream event not forwarded", "type", event.Type)
			continue
		}
		if msg.Type == TypeAudio {
			observability.AudioChunksRelayed.WithLabelValues("outbound").Inc()
		}
		if msg.Type == TypeError {
			s.log.Error("Upstream error event", "message", msg.Message)
		}

		s.enqueue(msg)
	}
}

// writePump drains the outbound channel and keeps the browser
// connection alive with periodic pings.
func (s *Session) writePump() {
	cfg := s.server.cfg
	ticker := time.NewTicker(pingPeriod(cfg.Relay.PongWait))
	defer func() {
		ticker.Stop()
		s.server.teardown(s)
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.Relay.WriteWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Flush anything else already queued as separate frames.
			n := len(s.send)
			for i := 0; i < n; i++ {
				if err := s.conn.WriteMessage(websocket.TextMessage, <-s.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(cfg.Relay.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
