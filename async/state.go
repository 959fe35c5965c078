package async

import "sync/atomic"

// State is the lifecycle state of an Engine.
//
//	StateCreated  → StateStarting   [Start]
//	StateStopped  → StateStarting   [Start]
//	StateStarting → StateStarted    [consumer running]
//	StateStarted  → StateStopping   [Stop]
//	StateStopping → StateStopped    [drained or deadline expired]
//
// Producers only publish in StateStarted.
type State uint32

const (
	StateCreated State = iota
	StateStarting
	StateStarted
	StateStopping
	StateStopped
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateStarting:
		return "Starting"
	case StateStarted:
		return "Started"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// fastState holds a State on its own cache line; producers load it on
// every log call.
type fastState struct {
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

func (s *fastState) Load() State {
	return State(s.v.Load())
}

func (s *fastState) Store(state State) {
	s.v.Store(uint32(state))
}

// TryTransition moves from one state to another with a CAS.
func (s *fastState) TryTransition(from, to State) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
