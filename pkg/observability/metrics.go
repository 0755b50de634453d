package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay and contact-form metrics, registered on the default registry
// and exposed via /metrics.
var (
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voice_sessions_active",
		Help: "Number of voice sessions currently bridged to the upstream API.",
	})

	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_sessions_total",
		Help: "Total number of voice sessions accepted.",
	})

	AudioChunksRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_audio_chunks_relayed_total",
		Help: "Audio chunks forwarded through the relay, by direction.",
	}, []string{"direction"})

	UpstreamEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_upstream_events_total",
		Help: "Events received from the upstream realtime API, by type.",
	}, []string{"type"})

	UpstreamDialFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_upstream_dial_failures_total",
		Help: "Failed attempts to open an upstream realtime connection.",
	})

	ContactSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_submissions_total",
		Help: "Contact form submissions, by outcome.",
	}, []string{"status"})
)
