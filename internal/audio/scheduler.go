package audio

import (
	"sync"
	"time"

	"sentimentai/voice-server/pkg/logger"
)

// MinStartChunks is the lookahead buffer: playback does not begin until
// this many chunks are queued, trading a small fixed startup latency
// for resistance to network jitter.
const MinStartChunks = 3

// scheduleBatch caps how many chunks get scheduled per wakeup
const scheduleBatch = 3

// Sink renders scheduled PCM buffers against an output stream clock
type Sink interface {
	// Schedule queues samples to begin at the given offset on the
	// sink's stream clock and returns a handle for the pending buffer.
	Schedule(samples []float32, start time.Duration) Handle
	// Position returns the current position of the stream clock.
	Position() time.Duration
	Close() error
}

// Handle tracks one scheduled buffer
type Handle interface {
	// Done is closed when the buffer finishes playing or is stopped.
	Done() <-chan struct{}
	// Stop halts the buffer immediately.
	Stop()
}

// Scheduler reconstructs a gapless stream from independently arriving
// PCM16 chunks. Chunks play strictly in arrival order: each buffer is
// scheduled to start exactly where the previous one ends, tracked by a
// running cursor rather than wall-clock polling.
//
// A response is complete only when the queue is drained, no scheduled
// buffer is still pending, and Finish has been called — state never
// flips early while audio is queued or playing, and completion is
// never inferred from output silence.
type Scheduler struct {
	sink  Sink
	log   *logger.Logger
	meter *Meter

	mu        sync.Mutex
	queue     [][]byte
	pending   map[Handle]struct{}
	cursor    time.Duration
	started   bool
	finished  bool
	rejecting bool
	completed bool

	onComplete func()

	kick   chan struct{}
	closed chan struct{}
}

// NewScheduler creates a playback scheduler over the given sink
func NewScheduler(sink Sink, log *logger.Logger) *Scheduler {
	s := &Scheduler{
		sink:    sink,
		log:     log,
		meter:   NewMeter(),
		pending: make(map[Handle]struct{}),
		kick:    make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
	go s.run()
	return s
}

// SetOnComplete registers the callback fired when a response has fully
// finished playing. Called outside the scheduler lock.
func (s *Scheduler) SetOnComplete(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}

// Meter returns the amplitude meter tapped off the playback path
func (s *Scheduler) Meter() *Meter {
	return s.meter
}

// Enqueue adds a PCM16 chunk to the playback queue. Returns false if
// the chunk was rejected because the current response was interrupted;
// chunks already in flight when an interrupt lands must not play.
func (s *Scheduler) Enqueue(pcm []byte) bool {
	s.mu.Lock()
	if s.rejecting {
		s.mu.Unlock()
		return false
	}

	s.queue = append(s.queue, pcm)
	s.completed = false
	if !s.started && len(s.queue) >= MinStartChunks {
		s.started = true
	}
	shouldKick := s.started
	s.mu.Unlock()

	if shouldKick {
		s.wake()
	}
	return true
}

// Finish marks the response's audio stream as complete: no more chunks
// are coming. Any chunks still below the lookahead threshold start
// playing now.
func (s *Scheduler) Finish() {
	s.mu.Lock()
	s.finished = true
	if len(s.queue) > 0 {
		s.started = true
	}
	s.mu.Unlock()
	s.wake()
}

// Accept clears the rejection flag so chunks of a new response queue
// normally again.
func (s *Scheduler) Accept() {
	s.mu.Lock()
	s.rejecting = false
	s.finished = false
	s.completed = false
	s.mu.Unlock()
}

// Interrupt stops all pending and playing buffers, clears the queue,
// and rejects chunks that arrive afterwards for the interrupted
// response. Accept re-arms the scheduler for the next response.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	s.rejecting = true
	s.started = false
	s.finished = false
	s.completed = false
	s.queue = nil
	s.cursor = 0
	handles := make([]Handle, 0, len(s.pending))
	for h := range s.pending {
		handles = append(handles, h)
	}
	s.pending = make(map[Handle]struct{})
	s.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
	s.meter.Reset()
}

// Active reports whether any audio is queued or still playing
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0 || len(s.pending) > 0
}

// Close shuts the scheduler down and releases the sink
func (s *Scheduler) Close() error {
	s.Interrupt()
	close(s.closed)
	return s.sink.Close()
}

func (s *Scheduler) wake() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	for {
		select {
		case <-s.closed:
			return
		case <-s.kick:
			s.pump()
		}
	}
}

// pump schedules queued chunks against the cursor. The cursor only
// moves forward: each buffer starts at the later of the previous
// buffer's end and the sink's current position, which makes playback
// gapless regardless of how the loop itself is timed.
func (s *Scheduler) pump() {
	s.mu.Lock()
	if !s.started {
		cb := s.completionLocked()
		s.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}

	n := len(s.queue)
	if n > scheduleBatch {
		n = scheduleBatch
	}
	for i := 0; i < n; i++ {
		pcm := s.queue[0]
		s.queue = s.queue[1:]

		samples := DecodePCM16(pcm)
		start := s.cursor
		if pos := s.sink.Position(); pos > start {
			start = pos
		}

		h := s.sink.Schedule(samples, start)
		s.cursor = start + Duration(pcm)
		s.pending[h] = struct{}{}
		s.meter.Observe(samples)

		go s.watch(h)
	}

	remaining := len(s.queue) > 0
	cb := s.completionLocked()
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
	if remaining {
		s.wake()
	}
}

func (s *Scheduler) watch(h Handle) {
	select {
	case <-h.Done():
	case <-s.closed:
		return
	}

	s.mu.Lock()
	delete(s.pending, h)
	cb := s.completionLocked()
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// completionLocked returns the completion callback when the response
// has truly finished: server signalled end of stream, queue drained,
// nothing pending. Caller holds the lock and must invoke outside it.
func (s *Scheduler) completionLocked() func() {
	if !s.finished || s.completed || len(s.queue) > 0 || len(s.pending) > 0 {
		return nil
	}
	s.completed = true
	s.started = false
	s.finished = false
	s.meter.Reset()
	return s.onComplete
}
