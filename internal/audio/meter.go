package audio

import (
	"math"
	"sync"
)

// meterSmoothing matches the analyser's smoothing time constant:
// higher values favor the previous level over the instantaneous one.
const meterSmoothing = 0.8

// Meter derives a smoothed 0..1 amplitude from the buffers flowing
// through the playback path. It is purely for visual feedback and has
// no effect on scheduling.
type Meter struct {
	mu    sync.Mutex
	level float64
}

// NewMeter creates an amplitude meter at level zero
func NewMeter() *Meter {
	return &Meter{}
}

// Observe folds a buffer's RMS amplitude into the smoothed level
func (m *Meter) Observe(samples []float32) {
	if len(samples) == 0 {
		return
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms > 1 {
		rms = 1
	}

	m.mu.Lock()
	m.level = meterSmoothing*m.level + (1-meterSmoothing)*rms
	m.mu.Unlock()
}

// Level returns the current smoothed amplitude in [0, 1]
func (m *Meter) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Reset drops the level back to zero
func (m *Meter) Reset() {
	m.mu.Lock()
	m.level = 0
	m.mu.Unlock()
}
