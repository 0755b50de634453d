package audio

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource serves a fixed set of samples in reads of at most max
type sliceSource struct {
	samples []float32
	max     int
	closed  bool
}

func (s *sliceSource) ReadSamples(p []float32) (int, error) {
	if len(s.samples) == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if s.max > 0 && n > s.max {
		n = s.max
	}
	if n > len(s.samples) {
		n = len(s.samples)
	}
	copy(p, s.samples[:n])
	s.samples = s.samples[n:]
	if len(s.samples) == 0 {
		return n, io.EOF
	}
	return n, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

// blockingSource never returns until closed
type blockingSource struct {
	unblock chan struct{}
	once    sync.Once
}

func (s *blockingSource) ReadSamples(p []float32) (int, error) {
	<-s.unblock
	return 0, io.EOF
}

func (s *blockingSource) Close() error {
	s.once.Do(func() { close(s.unblock) })
	return nil
}

type collector struct {
	mu       sync.Mutex
	payloads []string
}

func (c *collector) emit(payload string) {
	c.mu.Lock()
	c.payloads = append(c.payloads, payload)
	c.mu.Unlock()
}

func (c *collector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.payloads))
	copy(out, c.payloads)
	return out
}

func TestCaptureFramesFixedBlocks(t *testing.T) {
	src := &sliceSource{samples: make([]float32, 250), max: 64}
	sink := &collector{}

	c := NewCapture(src, 100, sink.emit, testLog())
	require.NoError(t, c.Start())

	require.Eventually(t, func() bool { return len(sink.get()) == 3 }, time.Second, 5*time.Millisecond)

	payloads := sink.get()
	for i, p := range payloads {
		pcm, err := DecodeBase64(p)
		require.NoError(t, err)
		if i < 2 {
			// Full frames: 100 samples, 200 bytes.
			assert.Len(t, pcm, 200, "frame %d", i)
		} else {
			// Partial tail flushed on EOF.
			assert.Len(t, pcm, 100)
		}
	}
}

func TestCaptureStartTwice(t *testing.T) {
	src := &blockingSource{unblock: make(chan struct{})}
	c := NewCapture(src, 0, func(string) {}, testLog())

	require.NoError(t, c.Start())
	assert.Error(t, c.Start())
	c.Stop()
}

func TestCaptureStopClosesSource(t *testing.T) {
	src := &blockingSource{unblock: make(chan struct{})}
	c := NewCapture(src, 0, func(string) {}, testLog())

	require.NoError(t, c.Start())
	assert.True(t, c.Running())

	c.Stop()
	assert.False(t, c.Running())

	// Stop again is a no-op.
	c.Stop()
}
