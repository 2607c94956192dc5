package livedata

import "github.com/bft-labs/lifecycle/pkg/lifecycle"

// Observer receives values from a Value.
type Observer[T any] interface {
	OnChanged(value T)
}

type funcObserver[T any] struct {
	fn func(T)
}

func (f *funcObserver[T]) OnChanged(value T) { f.fn(value) }

// ObserverFunc adapts fn into an Observer with its own identity.
func ObserverFunc[T any](fn func(T)) Observer[T] {
	return &funcObserver[T]{fn: fn}
}

// binding ties one observer to a value and, optionally, to an owner.
type binding[T any] struct {
	value       *Value[T]
	observer    Observer[T]
	owner       lifecycle.Owner
	handle      *lifecycle.Handle
	active      bool
	removed     bool
	lastVersion int
}

// OnStateChanged follows the owner's lifecycle.
func (b *binding[T]) OnStateChanged(_ lifecycle.Owner, _ lifecycle.Event) error {
	if b.owner.CurrentState() == lifecycle.StateDestroyed {
		b.value.RemoveObserver(b.observer)
		return nil
	}
	b.setActive(b.shouldBeActive())
	return nil
}

func (b *binding[T]) shouldBeActive() bool {
	if b.owner == nil {
		return true
	}
	return b.owner.CurrentState().IsAtLeast(lifecycle.StateStarted)
}

func (b *binding[T]) setActive(active bool) {
	if active == b.active {
		return
	}
	b.active = active

	v := b.value
	wasInactive := v.activeCount == 0
	if active {
		v.activeCount++
	} else {
		v.activeCount--
	}
	if wasInactive && active && v.onActive != nil {
		v.onActive()
	}
	if v.activeCount == 0 && !active && v.onInactive != nil {
		v.onInactive()
	}
	if active {
		v.dispatch(b)
	}
}
