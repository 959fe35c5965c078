package async

import (
	"fmt"
	"strings"
)

// Policy selects what a producer does when the ring buffer is full.
type Policy uint8

const (
	// PolicyEnqueue blocks the producer until the consumer frees a slot.
	PolicyEnqueue Policy = iota
	// PolicyDiscard drops the event without blocking. A discard threshold
	// below PanicLevel keeps more severe events, which then wait for a
	// slot.
	PolicyDiscard
	// PolicySynchronous appends the event on the producer's goroutine.
	PolicySynchronous
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyEnqueue:
		return "enqueue"
	case PolicyDiscard:
		return "discard"
	case PolicySynchronous:
		return "synchronous"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy parses a policy name, case-insensitively. "sync" is
// accepted for PolicySynchronous.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enqueue", "block":
		return PolicyEnqueue, nil
	case "discard", "drop":
		return PolicyDiscard, nil
	case "synchronous", "sync":
		return PolicySynchronous, nil
	default:
		return PolicyEnqueue, fmt.Errorf("async: unknown full-buffer policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
