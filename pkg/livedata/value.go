package livedata

import (
	"reflect"

	"github.com/bft-labs/lifecycle/pkg/lifecycle"
)

const startVersion = -1

// Value holds a T and notifies active observers when it changes.
type Value[T any] struct {
	data     T
	version  int
	bindings []*binding[T]
	index    map[Observer[T]]*binding[T]

	activeCount int
	dispatching bool
	invalidated bool

	// Mediator hooks, fired when the active count leaves or reaches zero.
	onActive   func()
	onInactive func()
}

// New creates a Value with no data.
func New[T any]() *Value[T] {
	return &Value[T]{
		version: startVersion,
		index:   make(map[Observer[T]]*binding[T]),
	}
}

// NewWith creates a Value holding initial.
func NewWith[T any](initial T) *Value[T] {
	v := New[T]()
	v.data = initial
	v.version = startVersion + 1
	return v
}

// Get returns the current data and whether any was ever set.
func (v *Value[T]) Get() (T, bool) {
	return v.data, v.version > startVersion
}

// Version counts how many times the data was set.
func (v *Value[T]) Version() int {
	return v.version
}

// Set stores value and delivers it to every active observer.
// Calling Set from inside an observer restarts delivery with the new value.
func (v *Value[T]) Set(value T) {
	v.version++
	v.data = value
	v.dispatch(nil)
}

// Observe delivers values to o while owner is at least Started. The
// registration is dropped when owner is destroyed. Observing an already
// observed o with the same owner is a no-op.
func (v *Value[T]) Observe(owner lifecycle.Owner, o Observer[T]) error {
	if err := checkObserver(o); err != nil {
		return err
	}
	if isNilOwner(owner) {
		return ErrNilOwner
	}
	if existing, ok := v.index[o]; ok {
		if existing.owner != owner {
			return ErrObserverBoundElsewhere
		}
		return nil
	}
	if owner.CurrentState() == lifecycle.StateDestroyed {
		return lifecycle.ErrEngineDisposed
	}

	b := &binding[T]{value: v, observer: o, owner: owner, lastVersion: startVersion}
	v.add(b)

	h, err := owner.Lifecycle().Register(b)
	if err != nil {
		v.detach(b)
		return err
	}
	b.handle = h

	if !b.removed {
		b.setActive(b.shouldBeActive())
	}
	return nil
}

// ObserveForever delivers values to o until RemoveObserver is called.
func (v *Value[T]) ObserveForever(o Observer[T]) error {
	if err := checkObserver(o); err != nil {
		return err
	}
	if existing, ok := v.index[o]; ok {
		if existing.owner != nil {
			return ErrObserverBoundElsewhere
		}
		return nil
	}

	b := &binding[T]{value: v, observer: o, lastVersion: startVersion}
	v.add(b)
	b.setActive(true)
	return nil
}

// RemoveObserver detaches o. Unknown observers are ignored.
func (v *Value[T]) RemoveObserver(o Observer[T]) {
	if checkObserver(o) != nil {
		return
	}
	b, ok := v.index[o]
	if !ok {
		return
	}
	v.detach(b)
	if b.handle != nil {
		b.owner.Lifecycle().Unregister(b.handle)
	}
	b.setActive(false)
}

// RemoveObservers detaches every observer bound to owner.
func (v *Value[T]) RemoveObservers(owner lifecycle.Owner) {
	for _, b := range v.snapshot() {
		if b.owner != nil && b.owner == owner {
			v.RemoveObserver(b.observer)
		}
	}
}

// HasObservers reports whether any observer is attached.
func (v *Value[T]) HasObservers() bool {
	return len(v.bindings) > 0
}

// HasActiveObservers reports whether any attached observer is active.
func (v *Value[T]) HasActiveObservers() bool {
	return v.activeCount > 0
}

func (v *Value[T]) add(b *binding[T]) {
	v.bindings = append(v.bindings, b)
	v.index[b.observer] = b
}

func (v *Value[T]) detach(b *binding[T]) {
	delete(v.index, b.observer)
	for i, e := range v.bindings {
		if e == b {
			v.bindings = append(v.bindings[:i:i], v.bindings[i+1:]...)
			break
		}
	}
	b.removed = true
}

func (v *Value[T]) snapshot() []*binding[T] {
	out := make([]*binding[T], len(v.bindings))
	copy(out, v.bindings)
	return out
}

// dispatch delivers the current data to initiator, or to every binding when
// initiator is nil. Nested calls mark the running pass invalid; it then
// restarts over all bindings.
func (v *Value[T]) dispatch(initiator *binding[T]) {
	if v.dispatching {
		v.invalidated = true
		return
	}
	v.dispatching = true
	defer func() { v.dispatching = false }()

	for {
		v.invalidated = false
		if initiator != nil {
			v.considerNotify(initiator)
			initiator = nil
		} else {
			for _, b := range v.snapshot() {
				v.considerNotify(b)
				if v.invalidated {
					break
				}
			}
		}
		if !v.invalidated {
			return
		}
	}
}

func (v *Value[T]) considerNotify(b *binding[T]) {
	if !b.active || b.removed {
		return
	}
	// The owner may have moved on before its event reached the binding.
	if !b.shouldBeActive() {
		b.setActive(false)
		return
	}
	if b.lastVersion >= v.version {
		return
	}
	b.lastVersion = v.version
	b.observer.OnChanged(v.data)
}

func isNilOwner(owner lifecycle.Owner) bool {
	if owner == nil {
		return true
	}
	rv := reflect.ValueOf(owner)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func checkObserver[T any](o Observer[T]) error {
	if o == nil {
		return lifecycle.ErrNilObserver
	}
	if !reflect.TypeOf(o).Comparable() {
		return lifecycle.ErrObserverNotComparable
	}
	return nil
}
