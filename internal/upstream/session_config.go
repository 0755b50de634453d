package upstream

import (
	"time"

	"sentimentai/voice-server/pkg/config"
)

// SessionConfig is the session-configuration payload sent as the first
// event after the upstream connection opens.
type SessionConfig struct {
	Model                   string              `json:"model,omitempty"`
	Modalities              []string            `json:"modalities,omitempty"`
	Instructions            string              `json:"instructions,omitempty"`
	Voice                   string              `json:"voice,omitempty"`
	InputAudioFormat        string              `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string              `json:"output_audio_format,omitempty"`
	InputAudioTranscription *TranscriptionModel `json:"input_audio_transcription,omitempty"`
	TurnDetection           *TurnDetection      `json:"turn_detection,omitempty"`
}

// TranscriptionModel selects the live transcription model
type TranscriptionModel struct {
	Model string `json:"model"`
}

// TurnDetection configures the upstream server-side voice activity
// detector. SilenceDurationMS is the trailing-silence window after
// which the user's turn is considered over.
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMS   int     `json:"prefix_padding_ms"`
	SilenceDurationMS int     `json:"silence_duration_ms"`
}

// SessionConfigForLocale builds the session configuration for a locale.
// Arabic uses a different voice persona and a longer trailing-silence
// threshold than the default.
func SessionConfigForLocale(cfg *config.Config, locale string) *SessionConfig {
	voice := cfg.Upstream.DefaultVoice
	silence := cfg.Upstream.Silence
	if locale == "ar" {
		voice = cfg.Upstream.ArabicVoice
		silence = cfg.Upstream.ArabicSilence
	}

	return &SessionConfig{
		Model:             cfg.Upstream.Model,
		Modalities:        []string{"text", "audio"},
		Instructions:      SystemPrompt(locale),
		Voice:             voice,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		InputAudioTranscription: &TranscriptionModel{
			Model: "whisper-1",
		},
		TurnDetection: &TurnDetection{
			Type:              "server_vad",
			Threshold:         cfg.Upstream.VADThreshold,
			PrefixPaddingMS:   int(cfg.Upstream.PrefixPadding / time.Millisecond),
			SilenceDurationMS: int(silence / time.Millisecond),
		},
	}
}
