package lifecycle

// Owner is the host whose lifecycle is tracked. Observers receive the owner
// on every notification and can read its state without going through the
// engine's mutation path.
type Owner interface {
	CurrentState() State
	Lifecycle() *Engine
}

// Observer is notified of every event its registration accepts.
// A returned error is collected into the dispatch result; it never stops
// the transition and, unless the engine is fail-fast, never stops dispatch.
type Observer interface {
	OnStateChanged(owner Owner, event Event) error
}

type funcObserver struct {
	fn func(Owner, Event) error
}

func (f *funcObserver) OnStateChanged(owner Owner, event Event) error {
	return f.fn(owner, event)
}

// ObserverFunc adapts fn into an Observer. Every call returns a distinct
// observer, so keep the result to unregister it later.
func ObserverFunc(fn func(owner Owner, event Event) error) Observer {
	return &funcObserver{fn: fn}
}

// eventSet is a filter bitmask; the zero value accepts every event.
type eventSet uint32

func newEventSet(events []Event) eventSet {
	var s eventSet
	for _, e := range events {
		if e == EventAny {
			return 0
		}
		s |= 1 << uint(e)
	}
	return s
}

func (s eventSet) has(e Event) bool {
	return s == 0 || s&(1<<uint(e)) != 0
}

// Handle identifies one registration.
type Handle struct {
	id       uint64
	observer Observer
	filter   eventSet
	removed  bool
}

// ID returns the registration sequence number, unique per registry.
func (h *Handle) ID() uint64 { return h.id }

// Observer returns the registered observer.
func (h *Handle) Observer() Observer { return h.observer }

// Active reports whether the registration is still in its registry.
func (h *Handle) Active() bool { return h != nil && !h.removed }

// Accepts reports whether the registration's filter lets event through.
func (h *Handle) Accepts(event Event) bool { return h.filter.has(event) }

// Events returns the filter, or nil when every event is accepted.
func (h *Handle) Events() []Event {
	if h.filter == 0 {
		return nil
	}
	var events []Event
	for _, e := range Events() {
		if h.filter.has(e) {
			events = append(events, e)
		}
	}
	return events
}
