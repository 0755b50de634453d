package voice

import (
	"sentimentai/voice-server/internal/audio"
	"sentimentai/voice-server/internal/relay"
	"sentimentai/voice-server/pkg/logger"
)

// Session drives one end-to-end voice conversation: microphone capture
// going out, scheduled playback coming back, with the state machine
// keyed strictly off server messages.
type Session struct {
	sender    Sender
	machine   *Machine
	scheduler *audio.Scheduler
	capture   *audio.Capture
	history   *Conversation
	log       *logger.Logger

	sessionID       string
	locale          string
	currentUserText string
}

// NewSession wires the capture and playback pipelines to a message
// sender. The capture source is framed and emitted as audio envelopes;
// the returned session is idle until StartRecording.
func NewSession(sender Sender, sink audio.Sink, src audio.Source, log *logger.Logger) *Session {
	s := &Session{
		sender:    sender,
		machine:   NewMachine(),
		scheduler: audio.NewScheduler(sink, log),
		history:   NewConversation(),
		log:       log,
	}

	s.capture = audio.NewCapture(src, audio.DefaultFrameSize, func(payload string) {
		if err := sender.Send(&relay.ClientMessage{Type: relay.TypeAudio, Audio: payload}); err != nil {
			log.LogError(err, "Failed to send audio chunk")
		}
	}, log)

	s.scheduler.SetOnComplete(s.onPlaybackComplete)
	return s
}

// State exposes the current voice state
func (s *Session) State() State {
	return s.machine.State()
}

// History returns the conversation log
func (s *Session) History() *Conversation {
	return s.history
}

// Meter exposes the playback amplitude meter
func (s *Session) Meter() *audio.Meter {
	return s.scheduler.Meter()
}

// StartRecording begins streaming microphone audio. Starting while the
// assistant is speaking is a barge-in: playback is cut and the server
// is told to cancel the in-flight response. From any other non-idle
// state the request is silently rejected.
func (s *Session) StartRecording() error {
	if !s.machine.Is(StateIdle, StateSpeaking) {
		return nil
	}
	if s.machine.Is(StateSpeaking) {
		s.scheduler.Interrupt()
		if err := s.sender.Send(&relay.ClientMessage{Type: relay.TypeInterrupt}); err != nil {
			s.log.LogError(err, "Failed to send interrupt")
		}
	}

	if err := s.machine.Transition(StateListening); err != nil {
		return err
	}
	if err := s.capture.Start(); err != nil {
		return err
	}
	return s.sender.Send(&relay.ClientMessage{Type: relay.TypeStartRecording})
}

// StopRecording stops the microphone and commits whatever audio the
// server has buffered so a response can be generated.
func (s *Session) StopRecording() error {
	s.capture.Stop()
	if err := s.sender.Send(&relay.ClientMessage{Type: relay.TypeStopRecording}); err != nil {
		return err
	}
	return s.sender.Send(&relay.ClientMessage{Type: relay.TypeCommitAudio})
}

// Interrupt cuts current playback and asks the server to cancel the
// in-flight response.
func (s *Session) Interrupt() error {
	s.scheduler.Interrupt()
	return s.sender.Send(&relay.ClientMessage{Type: relay.TypeInterrupt})
}

// Stop ends the session entirely: capture and playback are torn down,
// the relay is told recording stopped, and the state returns to idle.
// The conversation log survives.
func (s *Session) Stop() {
	wasCapturing := s.capture.Running()
	s.capture.Stop()
	s.scheduler.Interrupt()
	if wasCapturing {
		if err := s.sender.Send(&relay.ClientMessage{Type: relay.TypeStopRecording}); err != nil {
			s.log.LogError(err, "Failed to signal stop")
		}
	}
	s.machine.Transition(StateIdle)
}

// Close releases the playback sink
func (s *Session) Close() error {
	s.Stop()
	return s.scheduler.Close()
}

// HandleMessage applies one server message. This is the only place
// voice state changes: every transition corresponds to an explicit
// signal, never to silence on the audio stream.
func (s *Session) HandleMessage(msg *relay.ServerMessage) {
	switch msg.Type {
	case relay.TypeConnected:
		s.sessionID = msg.SessionID
		s.locale = msg.Locale
		s.log.Info("Voice session connected", "session_id", msg.SessionID, "locale", msg.Locale)

	case relay.TypeSpeechStarted:
		// Server VAD heard the user. If the assistant is mid-answer
		// this is a barge-in: cut playback immediately.
		if s.machine.Is(StateSpeaking) {
			s.scheduler.Interrupt()
			if err := s.sender.Send(&relay.ClientMessage{Type: relay.TypeInterrupt}); err != nil {
				s.log.LogError(err, "Failed to send interrupt")
			}
		}
		s.transition(StateListening)

	case relay.TypeProcessing:
		s.scheduler.Accept()
		s.transition(StateProcessing)

	case relay.TypeResponseStarted:
		s.scheduler.Accept()
		s.transition(StateSpeaking)

	case relay.TypeAudio:
		pcm, err := audio.DecodeBase64(msg.Audio)
		if err != nil {
			s.log.Warn("Dropping undecodable audio chunk", "error", err.Error())
			return
		}
		if s.scheduler.Enqueue(pcm) {
			s.transition(StateSpeaking)
		}

	case relay.TypeAudioDone:
		s.scheduler.Finish()

	case relay.TypeUserTranscript:
		s.currentUserText = msg.Transcript

	case relay.TypeResponseComplete:
		if s.currentUserText != "" {
			s.history.Append(s.currentUserText, "")
			s.currentUserText = ""
		}

	case relay.TypeInterrupted:
		s.scheduler.Interrupt()
		if s.capture.Running() {
			s.transition(StateListening)
		} else {
			s.transition(StateIdle)
		}

	case relay.TypeError:
		s.log.Error("Voice service error", "message", msg.Message)
		s.capture.Stop()
		s.scheduler.Interrupt()
		s.transition(StateIdle)

	case relay.TypePong:
		// Keepalive response, nothing to do.

	default:
		s.log.Debug("Unhandled server message", "type", msg.Type)
	}
}

// onPlaybackComplete fires when a response has fully finished playing
func (s *Session) onPlaybackComplete() {
	if s.capture.Running() {
		s.transition(StateListening)
	} else {
		s.transition(StateIdle)
	}
}

func (s *Session) transition(next State) {
	if err := s.machine.Transition(next); err != nil {
		s.log.Warn("Ignoring state transition", "error", err.Error())
	}
}
