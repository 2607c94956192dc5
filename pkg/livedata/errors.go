package livedata

import "errors"

var (
	// ErrObserverBoundElsewhere is returned when an observer that is already
	// attached is observed again with a different owner.
	ErrObserverBoundElsewhere = errors.New("livedata: observer already bound to another owner")

	// ErrNilOwner is returned by Observe when no owner is given.
	ErrNilOwner = errors.New("livedata: nil owner")

	// ErrSourceConflict is returned when a mediator source is added twice.
	ErrSourceConflict = errors.New("livedata: source already added")
)
