package lifecycle

// Transition is one legal row of the transition table.
type Transition struct {
	From  State
	Event Event
	To    State
}

// NextState returns the state reached by applying event in current.
// It is pure: illegal combinations, EventAny, unknown values and every event
// applied to Destroyed yield a *TransitionError and current unchanged.
func NextState(current State, event Event) (State, error) {
	if !current.valid() || current == StateDestroyed {
		return current, &TransitionError{Current: current, Event: event}
	}

	switch event {
	case EventCreate:
		if current == StateInitialized {
			return StateCreated, nil
		}
	case EventStart:
		if current == StateCreated {
			return StateStarted, nil
		}
	case EventResume:
		if current == StateStarted {
			return StateResumed, nil
		}
	case EventPause:
		if current == StateResumed {
			return StateStarted, nil
		}
	case EventStop:
		if current == StateStarted {
			return StateCreated, nil
		}
	case EventDestroy:
		return StateDestroyed, nil
	}

	return current, &TransitionError{Current: current, Event: event}
}

// Table lists every legal transition, ordered by source state then event.
func Table() []Transition {
	var rows []Transition
	for _, from := range States() {
		for _, event := range Events() {
			if to, err := NextState(from, event); err == nil {
				rows = append(rows, Transition{From: from, Event: event, To: to})
			}
		}
	}
	return rows
}

// PathTo returns the upward events that take an owner from Initialized to
// target, e.g. ON_CREATE, ON_START for Started. Destroyed has no such path
// and yields nil.
func PathTo(target State) []Event {
	var path []Event
	for s := StateInitialized; s != target; {
		event, ok := upEvent(s)
		if !ok {
			return nil
		}
		next, err := NextState(s, event)
		if err != nil {
			return nil
		}
		path = append(path, event)
		s = next
	}
	return path
}

func upEvent(s State) (Event, bool) {
	switch s {
	case StateInitialized:
		return EventCreate, true
	case StateCreated:
		return EventStart, true
	case StateStarted:
		return EventResume, true
	}
	return EventAny, false
}
