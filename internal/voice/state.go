package voice

import (
	"fmt"
	"sync"
)

// State is the client-side voice state. It mirrors discrete server
// events; transitions are never inferred from output silence.
type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// legal enumerates every allowed transition. Anything absent is a bug
// in the caller, not a race to paper over with flags.
var legal = map[State][]State{
	StateIdle:       {StateListening},
	StateListening:  {StateProcessing, StateSpeaking, StateIdle},
	StateProcessing: {StateSpeaking, StateListening, StateIdle},
	StateSpeaking:   {StateListening, StateIdle},
}

// Machine holds the current voice state and enforces the transition
// table. Same-state transitions are no-ops.
type Machine struct {
	mu    sync.Mutex
	state State
}

// NewMachine starts in the idle state
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transition moves to the next state, returning an error when the
// transition is not in the table.
func (m *Machine) Transition(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == next {
		return nil
	}
	for _, allowed := range legal[m.state] {
		if allowed == next {
			m.state = next
			return nil
		}
	}
	return fmt.Errorf("illegal voice state transition %s -> %s", m.state, next)
}

// Is reports whether the machine is in any of the given states
func (m *Machine) Is(states ...State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range states {
		if m.state == s {
			return true
		}
	}
	return false
}
