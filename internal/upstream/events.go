package upstream

// Event type names used by the upstream realtime API. The schema is
// owned by the provider; only the subset the relay cares about is
// listed here.
const (
	EventSessionUpdate    = "session.update"
	EventSessionCreated   = "session.created"
	EventSessionUpdated   = "session.updated"
	EventAudioAppend      = "input_audio_buffer.append"
	EventAudioCommit      = "input_audio_buffer.commit"
	EventAudioCommitted   = "input_audio_buffer.committed"
	EventSpeechStarted    = "input_audio_buffer.speech_started"
	EventSpeechStopped    = "input_audio_buffer.speech_stopped"
	EventResponseCreate   = "response.create"
	EventResponseCancel   = "response.cancel"
	EventContentPartAdded = "response.content_part.added"
	EventAudioDelta       = "response.audio.delta"
	EventAudioDone        = "response.audio.done"
	EventTranscriptDelta  = "response.audio_transcript.delta"
	EventInputTranscribed = "conversation.item.input_audio_transcription.completed"
	EventResponseDone     = "response.done"
	EventError            = "error"
)

// Event is a single message on the upstream connection, in either
// direction. Unused fields stay empty and are omitted on the wire.
type Event struct {
	Type       string         `json:"type"`
	Audio      string         `json:"audio,omitempty"`
	Delta      string         `json:"delta,omitempty"`
	Transcript string         `json:"transcript,omitempty"`
	Session    *SessionConfig `json:"session,omitempty"`
	Error      *APIError      `json:"error,omitempty"`
}

// APIError is the error payload of an upstream "error" event
type APIError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
