package async

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// WaitStrategy selects how the consumer waits for events.
type WaitStrategy uint8

const (
	// WaitProgressive spins, then yields, then parks until a producer
	// wakes it.
	WaitProgressive WaitStrategy = iota
	// WaitYield calls runtime.Gosched between polls. Lowest latency,
	// highest idle CPU.
	WaitYield
	// WaitSleep sleeps for a short fixed interval between polls.
	WaitSleep
)

const (
	spinPolls  = 64
	yieldPolls = 64
	sleepPoll  = 100 * time.Microsecond
)

// String returns the configuration name of the strategy.
func (w WaitStrategy) String() string {
	switch w {
	case WaitProgressive:
		return "progressive"
	case WaitYield:
		return "yield"
	case WaitSleep:
		return "sleep"
	default:
		return fmt.Sprintf("WaitStrategy(%d)", uint8(w))
	}
}

// ParseWaitStrategy parses a strategy name, case-insensitively.
func ParseWaitStrategy(s string) (WaitStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "progressive", "block", "":
		return WaitProgressive, nil
	case "yield":
		return WaitYield, nil
	case "sleep":
		return WaitSleep, nil
	default:
		return WaitProgressive, fmt.Errorf("async: unknown wait strategy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (w WaitStrategy) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *WaitStrategy) UnmarshalText(text []byte) error {
	v, err := ParseWaitStrategy(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// waiter tracks how long the consumer has been idle.
type waiter struct {
	strategy WaitStrategy
	polls    int
}

func (w *waiter) reset() {
	w.polls = 0
}

// idle is called each time the consumer finds nothing to consume.
func (w *waiter) idle(r *run) {
	switch w.strategy {
	case WaitYield:
		runtime.Gosched()
		return
	case WaitSleep:
		select {
		case <-time.After(sleepPoll):
		case <-r.stop:
		}
		return
	}

	w.polls++
	switch {
	case w.polls <= spinPolls:
	case w.polls <= spinPolls+yieldPolls:
		runtime.Gosched()
	default:
		r.park()
	}
}
