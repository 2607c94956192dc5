package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Lifecycle errors. Use errors.Is to check them.
var (
	// ErrIllegalTransition is matched by *TransitionError.
	ErrIllegalTransition = errors.New("lifecycle: illegal transition")

	// ErrAlreadyDestroyed is returned by HandleEvent once the engine reached Destroyed.
	ErrAlreadyDestroyed = errors.New("lifecycle: already destroyed")

	// ErrEngineDisposed is returned by Register once the engine reached Destroyed.
	ErrEngineDisposed = errors.New("lifecycle: engine disposed")

	// ErrReentrantEvent is returned by HandleEvent when called during a dispatch pass.
	ErrReentrantEvent = errors.New("lifecycle: event handled during dispatch")

	// ErrObserverFailed is matched by *DispatchError.
	ErrObserverFailed = errors.New("lifecycle: observer failed")

	// ErrNilObserver is returned when registering a nil observer.
	ErrNilObserver = errors.New("lifecycle: nil observer")

	// ErrObserverNotComparable is returned when an observer cannot be used as
	// an identity key, e.g. a bare func or a struct holding a slice.
	ErrObserverNotComparable = errors.New("lifecycle: observer is not comparable")

	// ErrUnknownEvent is returned by ParseEvent.
	ErrUnknownEvent = errors.New("lifecycle: unknown event")
)

// TransitionError reports an event that is not valid from the current state.
type TransitionError struct {
	Current State
	Event   Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("lifecycle: illegal transition: %s from %s", e.Event, e.Current)
}

// Is makes errors.Is(err, ErrIllegalTransition) succeed.
func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// ObserverFailure records one observer that returned an error or panicked.
type ObserverFailure struct {
	Handle *Handle
	Err    error
}

// DispatchError collects the observers that failed during one dispatch pass.
// The transition itself is committed when a DispatchError is returned.
type DispatchError struct {
	Event    Event
	State    State
	Failures []ObserverFailure

	// Aborted is set when fail-fast dispatch skipped the remaining observers.
	Aborted bool
}

func (e *DispatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lifecycle: %d observer(s) failed handling %s", len(e.Failures), e.Event)
	if e.Aborted {
		b.WriteString(" (dispatch aborted)")
	}
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; observer %d: %v", f.Handle.ID(), f.Err)
	}
	return b.String()
}

// Is makes errors.Is(err, ErrObserverFailed) succeed.
func (e *DispatchError) Is(target error) bool {
	return target == ErrObserverFailed
}

// Unwrap exposes the individual observer errors.
func (e *DispatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
