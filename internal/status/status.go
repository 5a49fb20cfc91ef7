// Package status defines the lifecycle states of the managed database process.
package status

import (
	"fmt"
	"strings"
)

// Status is the authoritative lifecycle state of the database process.
type Status int

const (
	// Stopped is the initial rest state.
	Stopped Status = iota
	// Started means the database process is running.
	Started
	// Stopping is transient and only held while a stop is in flight.
	Stopping
)

// All returns every status in declaration order.
func All() []Status {
	return []Status{Stopped, Started, Stopping}
}

// String returns the upper-case name used as a display key.
func (s Status) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Started:
		return "STARTED"
	case Stopping:
		return "STOPPING"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Stable reports whether s is a rest state.
func (s Status) Stable() bool {
	return s == Stopped || s == Started
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to Status) bool {
	switch from {
	case Stopped:
		return to == Started
	case Started:
		return to == Stopping
	case Stopping:
		return to == Stopped
	}
	return false
}

// Parse converts a status name (case-insensitive) back to a Status.
func Parse(name string) (Status, error) {
	needle := strings.ToUpper(strings.TrimSpace(name))
	for _, s := range All() {
		if s.String() == needle {
			return s, nil
		}
	}
	return Stopped, fmt.Errorf("unknown status %q", name)
}
