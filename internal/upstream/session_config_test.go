package upstream

import (
	"testing"

	"sentimentai/voice-server/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionConfigForLocaleEnglish(t *testing.T) {
	cfg := config.Get()
	sc := SessionConfigForLocale(cfg, "en")

	assert.Equal(t, cfg.Upstream.Model, sc.Model)
	assert.Equal(t, []string{"text", "audio"}, sc.Modalities)
	assert.Equal(t, cfg.Upstream.DefaultVoice, sc.Voice)
	assert.Equal(t, "pcm16", sc.InputAudioFormat)
	assert.Equal(t, "pcm16", sc.OutputAudioFormat)

	require.NotNil(t, sc.InputAudioTranscription)
	assert.Equal(t, "whisper-1", sc.InputAudioTranscription.Model)

	require.NotNil(t, sc.TurnDetection)
	assert.Equal(t, "server_vad", sc.TurnDetection.Type)
	assert.Equal(t, 0.5, sc.TurnDetection.Threshold)
	assert.Equal(t, 300, sc.TurnDetection.PrefixPaddingMS)
	assert.Equal(t, 500, sc.TurnDetection.SilenceDurationMS)
}

func TestSessionConfigForLocaleArabic(t *testing.T) {
	cfg := config.Get()
	sc := SessionConfigForLocale(cfg, "ar")

	assert.Equal(t, cfg.Upstream.ArabicVoice, sc.Voice)

	// Arabic gets a longer trailing-silence window than English.
	en := SessionConfigForLocale(cfg, "en")
	assert.Greater(t, sc.TurnDetection.SilenceDurationMS, en.TurnDetection.SilenceDurationMS)
	assert.Equal(t, 700, sc.TurnDetection.SilenceDurationMS)
}

func TestSystemPromptPerLocale(t *testing.T) {
	en := SystemPrompt("en")
	ar := SystemPrompt("ar")

	assert.NotEmpty(t, en)
	assert.NotEmpty(t, ar)
	assert.NotEqual(t, en, ar)

	// Unknown locales fall back to English.
	assert.Equal(t, en, SystemPrompt("fr"))
}

func TestSessionConfigInstructions(t *testing.T) {
	cfg := config.Get()
	assert.Equal(t, SystemPrompt("en"), SessionConfigForLocale(cfg, "en").Instructions)
	assert.Equal(t, SystemPrompt("ar"), SessionConfigForLocale(cfg, "ar").Instructions)
}
