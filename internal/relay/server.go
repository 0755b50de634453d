package relay

import (
	"context"
	"net/http"

	"sentimentai/voice-server/internal/upstream"
	"sentimentai/voice-server/pkg/config"
	"sentimentai/voice-server/pkg/logger"
	"sentimentai/voice-server/pkg/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server accepts browser WebSocket connections and runs one Session
// per connection. The registry exists so shutdown can close every live
// session; sessions never see each other.
type Server struct {
	cfg      *config.Config
	log      *logger.Logger
	dialer   upstream.Dialer
	upgrader websocket.Upgrader

	register   chan *Session
	unregister chan *Session
	sessions   map[*Session]bool
	shutdown   chan struct{}
}

// NewServer creates the session registry and starts its bookkeeping
// loop.
func NewServer(cfg *config.Config, log *logger.Logger, dialer upstream.Dialer) *Server {
	s := &Server{
		cfg:    cfg,
		log:    log,
		dialer: dialer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin(r, cfg.Server.AllowedOrigins)
			},
		},
		register:   make(chan *Session),
		unregister: make(chan *Session),
		sessions:   make(map[*Session]bool),
		shutdown:   make(chan struct{}),
	}
	go s.run()
	return s
}

func checkOrigin(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func (s *Server) run() {
	for {
		select {
		case sess := <-s.register:
			s.sessions[sess] = true
			observability.ActiveSessions.Inc()
			observability.SessionsTotal.Inc()
			s.log.Info("Session registered", "session_id", sess.ID, "locale", sess.Locale, "active", len(s.sessions))

		case sess := <-s.unregister:
			if _, ok := s.sessions[sess]; ok {
				delete(s.sessions, sess)
				observability.ActiveSessions.Dec()
				s.log.Info("Session removed", "session_id", sess.ID, "active", len(s.sessions))
			}

		case <-s.shutdown:
			for sess := range s.sessions {
				sess.close()
				delete(s.sessions, sess)
				observability.ActiveSessions.Dec()
			}
			return
		}
	}
}

// HandleVoiceChat upgrades the request and starts a voice session. The
// connected acknowledgement is sent before the upstream dial so the
// browser gets its session id immediately.
func (s *Server) HandleVoiceChat(c *gin.Context) {
	locale := c.Query("locale")
	if locale != "ar" {
		locale = "en"
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.LogError(err, "WebSocket upgrade failed")
		return
	}

	id := uuid.New().String()
	sess := &Session{
		ID:     id,
		Locale: locale,
		conn:   conn,
		server: s,
		log:    s.log.WithSessionID(id),
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
	}

	select {
	case s.register <- sess:
	case <-s.shutdown:
		conn.Close()
		return
	}

	go sess.writePump()
	go sess.readPump()

	sess.enqueue(&ServerMessage{
		Type:      TypeConnected,
		SessionID: sess.ID,
		Locale:    locale,
		Message:   greeting(locale),
	})

	go s.connectUpstream(sess)
}

func greeting(locale string) string {
	if locale == "ar" {
		return "مرحباً! أنا مساعد SentimentAI الصوتي. كيف يمكنني مساعدتك اليوم؟"
	}
	return "Hi! I'm the SentimentAI voice assistant. How can I help you today?"
}

// connectUpstream dials the realtime API and wires the upstream pump.
// A failed dial ends the session; there is no server-side retry.
func (s *Server) connectUpstream(sess *Session) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Upstream.DialTimeout)
	defer cancel()

	conn, err := s.dialer.Dial(ctx, sess.Locale)
	if err != nil {
		observability.UpstreamDialFailures.Inc()
		sess.log.LogError(err, "Failed to connect to voice service")
		sess.enqueueError("Failed to connect to voice service")
		sess.close()
		return
	}

	if err := conn.Configure(sess.Locale); err != nil {
		observability.UpstreamDialFailures.Inc()
		sess.log.LogError(err, "Failed to configure voice session")
		sess.enqueueError("Failed to connect to voice service")
		conn.Close()
		sess.close()
		return
	}

	if !sess.setUpstream(conn) {
		// Browser went away during the dial.
		conn.Close()
		return
	}

	sess.log.Info("Upstream session configured", "locale", sess.Locale)
	go sess.upstreamPump(conn)
}

// teardown closes both halves of the bridge exactly once and drops the
// session from the registry.
func (s *Server) teardown(sess *Session) {
	sess.close()

	select {
	case s.unregister <- sess:
	case <-s.shutdown:
	}
}

func (sess *Session) close() {
	sess.closeOnce.Do(func() {
		close(sess.done)

		sess.upstreamMu.Lock()
		conn := sess.upstream
		sess.upstream = nil
		sess.upstreamMu.Unlock()
		if conn != nil {
			conn.Close()
		}

		sess.conn.Close()
	})
}

// Shutdown closes every live session. Used during graceful server
// shutdown.
func (s *Server) Shutdown() {
	close(s.shutdown)
}
