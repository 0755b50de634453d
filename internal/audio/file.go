package audio

import (
	"io"
	"time"
)

// ReaderSource adapts an io.Reader of raw little-endian PCM16 into a
// sample source. When Realtime is set, reads are paced to the sample
// rate so a file plays out like a live microphone instead of arriving
// all at once.
type ReaderSource struct {
	r        io.Reader
	realtime bool
	last     time.Time
}

// NewReaderSource wraps raw PCM16 bytes as a sample source
func NewReaderSource(r io.Reader, realtime bool) *ReaderSource {
	return &ReaderSource{r: r, realtime: realtime}
}

func (s *ReaderSource) ReadSamples(p []float32) (int, error) {
	buf := make([]byte, len(p)*2)
	n, err := io.ReadFull(s.r, buf)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}

	samples := DecodePCM16(buf[:n-n%2])
	copy(p, samples)

	if s.realtime && len(samples) > 0 {
		s.pace(len(samples))
	}
	return len(samples), err
}

// pace sleeps long enough that samples flow at the stream rate
func (s *ReaderSource) pace(n int) {
	d := time.Duration(n) * time.Second / SampleRate
	if !s.last.IsZero() {
		if elapsed := time.Since(s.last); elapsed < d {
			time.Sleep(d - elapsed)
		}
	} else {
		time.Sleep(d)
	}
	s.last = time.Now()
}

func (s *ReaderSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
