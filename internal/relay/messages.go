package relay

import "sentimentai/voice-server/internal/upstream"

// Client-to-relay message types
const (
	TypeAudio          = "audio"
	TypeStartRecording = "start_recording"
	TypeStopRecording  = "stop_recording"
	TypeInterrupt      = "interrupt"
	TypeCommitAudio    = "commit_audio"
	TypePing           = "ping"
)

// Relay-to-client message types: the stable, smaller vocabulary the
// upstream event stream is translated into.
const (
	TypeConnected        = "connected"
	TypeSpeechStarted    = "speech_started"
	TypeProcessing       = "processing"
	TypeResponseStarted  = "response_started"
	TypeAudioDone        = "audio_done"
	TypeUserTranscript   = "user_transcript"
	TypeResponseComplete = "response_complete"
	TypeInterrupted      = "interrupted"
	TypeError            = "error"
	TypePong             = "pong"
)

// ClientMessage is a JSON frame received from the browser
type ClientMessage struct {
	Type  string `json:"type"`
	Audio string `json:"audio,omitempty"`
}

// ServerMessage is a JSON frame sent to the browser
type ServerMessage struct {
	Type       string `json:"type"`
	SessionID  string `json:"sessionId,omitempty"`
	Locale     string `json:"locale,omitempty"`
	Message    string `json:"message,omitempty"`
	Audio      string `json:"audio,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// TranslateUpstream maps an upstream event to the client vocabulary.
// Events the client has no use for (session bookkeeping, transcript
// deltas, rate limits) return ok=false and are not forwarded.
func TranslateUpstream(event *upstream.Event) (*ServerMessage, bool) {
	switch event.Type {
	case upstream.EventSpeechStarted:
		return &ServerMessage{Type: TypeSpeechStarted}, true

	case upstream.EventSpeechStopped:
		return &ServerMessage{Type: TypeProcessing}, true

	case upstream.EventContentPartAdded:
		return &ServerMessage{Type: TypeResponseStarted}, true

	case upstream.EventAudioDelta:
		return &ServerMessage{Type: TypeAudio, Audio: event.Delta}, true

	case upstream.EventAudioDone:
		return &ServerMessage{Type: TypeAudioDone}, true

	case upstream.EventInputTranscribed:
		return &ServerMessage{Type: TypeUserTranscript, Transcript: event.Transcript}, true

	case upstream.EventResponseDone:
		return &ServerMessage{Type: TypeResponseComplete}, true

	case upstream.EventError:
		msg := "An error occurred with the voice service"
		if event.Error != nil && event.Error.Message != "" {
			msg = event.Error.Message
		}
		return &ServerMessage{Type: TypeError, Message: msg}, true

	default:
		return nil, false
	}
}
