package audio

import (
	"errors"
	"io"
	"sync"

	"sentimentai/voice-server/pkg/logger"
)

// DefaultFrameSize is the number of samples per outbound audio chunk
const DefaultFrameSize = 4096

// Source produces raw float samples from a capture device or file.
// ReadSamples follows io.Reader semantics: it may return fewer samples
// than requested, and io.EOF when the source is exhausted.
type Source interface {
	ReadSamples(p []float32) (int, error)
}

// Emitter receives one encoded chunk per full frame, as a base64 PCM16
// payload ready for the "audio" envelope.
type Emitter func(payload string)

// Capture frames raw samples into fixed-size blocks, converts them to
// PCM16 and emits each block immediately. No local buffering beyond one
// frame; the upstream turn detector decides when audio gets processed.
type Capture struct {
	src       Source
	frameSize int
	emit      Emitter
	log       *logger.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewCapture creates a capture pipeline. frameSize <= 0 selects the default.
func NewCapture(src Source, frameSize int, emit Emitter, log *logger.Logger) *Capture {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	return &Capture{
		src:       src,
		frameSize: frameSize,
		emit:      emit,
		log:       log,
	}
}

// Start begins pulling frames from the source. Returns an error if the
// capture is already running.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return errors.New("capture already running")
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go c.run(c.stop, c.done)
	return nil
}

func (c *Capture) run(stop, done chan struct{}) {
	defer close(done)

	frame := make([]float32, c.frameSize)
	filled := 0

	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := c.src.ReadSamples(frame[filled:])
		filled += n

		if filled == c.frameSize {
			c.emit(EncodeBase64(EncodePCM16(frame)))
			filled = 0
		}

		if err != nil {
			// Flush the partial tail before reporting the end.
			if filled > 0 {
				c.emit(EncodeBase64(EncodePCM16(frame[:filled])))
			}
			if !errors.Is(err, io.EOF) {
				c.log.LogError(err, "capture source failed")
			}
			return
		}
	}
}

// Stop tears down the capture pipeline. If the source is closable the
// hardware stream is released as well. Safe to call more than once.
func (c *Capture) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stop)
	done := c.done
	c.mu.Unlock()

	if closer, ok := c.src.(io.Closer); ok {
		closer.Close()
	}
	<-done
}

// Running reports whether the capture loop is active
func (c *Capture) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
