package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port            string
		Env             string
		AllowedOrigins  []string
		ShutdownTimeout time.Duration
	}

	// Upstream realtime speech API configuration
	Upstream struct {
		APIKey        string
		URL           string
		Model         string
		DefaultVoice  string
		ArabicVoice   string
		VADThreshold  float64
		PrefixPadding time.Duration
		// Silence is how long the upstream turn detector waits after
		// speech stops before the turn is considered finished. Arabic
		// needs a longer trailing window.
		Silence       time.Duration
		ArabicSilence time.Duration
		DialTimeout   time.Duration
	}

	// Email (SES) configuration for the contact form
	Email struct {
		Region    string
		From      string
		To        string
		SendDelay time.Duration
	}

	// Relay WebSocket tunables
	Relay struct {
		MaxMessageSize int64
		WriteWait      time.Duration
		PongWait       time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "3001")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
		instance.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

		// Upstream realtime API config
		instance.Upstream.APIKey = getEnvString("OPENAI_API_KEY", "")
		instance.Upstream.URL = getEnvString("REALTIME_API_URL", "wss://api.openai.com/v1/realtime")
		instance.Upstream.Model = getEnvString("REALTIME_MODEL", "gpt-realtime-mini")
		instance.Upstream.DefaultVoice = getEnvString("REALTIME_VOICE", "alloy")
		instance.Upstream.ArabicVoice = getEnvString("REALTIME_VOICE_AR", "sage")
		instance.Upstream.VADThreshold = getEnvFloat("VAD_THRESHOLD", 0.5)
		instance.Upstream.PrefixPadding = getEnvDuration("VAD_PREFIX_PADDING", 300*time.Millisecond)
		instance.Upstream.Silence = getEnvDuration("VAD_SILENCE", 500*time.Millisecond)
		instance.Upstream.ArabicSilence = getEnvDuration("VAD_SILENCE_AR", 700*time.Millisecond)
		instance.Upstream.DialTimeout = getEnvDuration("REALTIME_DIAL_TIMEOUT", 10*time.Second)

		// Email config
		instance.Email.Region = getEnvString("AWS_REGION", "eu-north-1")
		instance.Email.From = getEnvString("SES_FROM_EMAIL", "info@sentimentai.tech")
		instance.Email.To = getEnvString("SES_TO_EMAIL", "sentimentai1@outlook.com")
		instance.Email.SendDelay = getEnvDuration("SES_SEND_DELAY", 1500*time.Millisecond)

		// Relay tunables
		instance.Relay.MaxMessageSize = getEnvInt64("WS_MAX_MESSAGE_SIZE", 512*1024)
		instance.Relay.WriteWait = getEnvDuration("WS_WRITE_WAIT", 10*time.Second)
		instance.Relay.PongWait = getEnvDuration("WS_PONG_WAIT", 60*time.Second)

		// Security config
		instance.Security.RateLimit = getEnvFloat("RATE_LIMIT", 5)
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")
	})

	return instance
}

// Get returns the config instance, initializing it if necessary
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to get environment variables with defaults

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
