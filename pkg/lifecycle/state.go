package lifecycle

import (
	"fmt"
	"strings"
)

// State is a stage in the owner's lifecycle.
type State int

const (
	StateInitialized State = iota
	StateCreated
	StateStarted
	StateResumed
	StateDestroyed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "Initialized"
	case StateCreated:
		return "Created"
	case StateStarted:
		return "Started"
	case StateResumed:
		return "Resumed"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// IsAtLeast reports whether s is at least as live as other.
// Destroyed ranks below every other state.
func (s State) IsAtLeast(other State) bool {
	return s.rank() >= other.rank()
}

func (s State) rank() int {
	if s == StateDestroyed {
		return -1
	}
	return int(s)
}

func (s State) valid() bool {
	return s >= StateInitialized && s <= StateDestroyed
}

// States returns every state in lifecycle order.
func States() []State {
	return []State{StateInitialized, StateCreated, StateStarted, StateResumed, StateDestroyed}
}

// Event triggers a transition between states.
type Event int

const (
	EventCreate Event = iota
	EventStart
	EventResume
	EventPause
	EventStop
	EventDestroy

	// EventAny matches every event in an observer filter. It is never a
	// valid driver input.
	EventAny
)

var eventNames = map[Event]string{
	EventCreate:  "ON_CREATE",
	EventStart:   "ON_START",
	EventResume:  "ON_RESUME",
	EventPause:   "ON_PAUSE",
	EventStop:    "ON_STOP",
	EventDestroy: "ON_DESTROY",
	EventAny:     "ON_ANY",
}

// String returns the canonical event name, e.g. ON_CREATE.
func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// Events returns every driver event in lifecycle order. EventAny is not included.
func Events() []Event {
	return []Event{EventCreate, EventStart, EventResume, EventPause, EventStop, EventDestroy}
}

var eventAliases = map[string]Event{
	"CREATE":  EventCreate,
	"START":   EventStart,
	"RESUME":  EventResume,
	"PAUSE":   EventPause,
	"STOP":    EventStop,
	"DESTROY": EventDestroy,
	"ANY":     EventAny,
}

var nameNormalizer = strings.NewReplacer("_", "", "-", "", " ", "")

// ParseEvent parses an event name. Matching is case-insensitive and the ON
// prefix is optional, so "start", "on_start", "onStart" and "ON_START" all
// yield EventStart.
func ParseEvent(name string) (Event, error) {
	key := nameNormalizer.Replace(strings.ToUpper(strings.TrimSpace(name)))
	key = strings.TrimPrefix(key, "ON")
	if e, ok := eventAliases[key]; ok {
		return e, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
}
