package audio

import (
	"io"
	"sync"
	"time"
)

// StreamSink renders scheduled buffers against a wall clock, writing
// the PCM16 bytes to w as each buffer's start time arrives. It stands
// in for a hardware output device: Position advances in real time from
// the first scheduled buffer.
type StreamSink struct {
	w io.Writer

	mu    sync.Mutex
	epoch time.Time
}

// NewStreamSink creates a sink writing rendered audio to w. A nil
// writer discards the audio but still honors the timing.
func NewStreamSink(w io.Writer) *StreamSink {
	if w == nil {
		w = io.Discard
	}
	return &StreamSink{w: w}
}

func (s *StreamSink) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch.IsZero() {
		return 0
	}
	return time.Since(s.epoch)
}

func (s *StreamSink) Schedule(samples []float32, start time.Duration) Handle {
	s.mu.Lock()
	if s.epoch.IsZero() {
		s.epoch = time.Now()
	}
	at := s.epoch.Add(start)
	s.mu.Unlock()

	h := &streamHandle{done: make(chan struct{}), stop: make(chan struct{})}
	go h.play(s, samples, at)
	return h
}

func (s *StreamSink) Close() error {
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type streamHandle struct {
	done     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

func (h *streamHandle) play(s *StreamSink, samples []float32, at time.Time) {
	defer close(h.done)

	if wait := time.Until(at); wait > 0 {
		select {
		case <-h.stop:
			return
		case <-time.After(wait):
		}
	}

	pcm := EncodePCM16(samples)
	s.mu.Lock()
	s.w.Write(pcm)
	s.mu.Unlock()

	// Occupy the stream for the buffer's duration so Done matches when
	// a real device would finish playing.
	select {
	case <-h.stop:
	case <-time.After(Duration(pcm)):
	}
}

func (h *streamHandle) Done() <-chan struct{} { return h.done }

func (h *streamHandle) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}
