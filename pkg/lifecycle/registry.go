package lifecycle

import "reflect"

// Registry is an ordered set of observers keyed by identity.
// Observers are held by strong references until they are unregistered or
// the registry is cleared; the engine clears it after ON_DESTROY.
type Registry struct {
	entries []*Handle
	index   map[Observer]*Handle
	nextID  uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[Observer]*Handle)}
}

// Register appends o with an optional event filter. Registering an observer
// that is already present returns its existing handle and added=false; the
// original filter is kept.
func (r *Registry) Register(o Observer, events ...Event) (h *Handle, added bool, err error) {
	if o == nil {
		return nil, false, ErrNilObserver
	}
	if !reflect.TypeOf(o).Comparable() {
		return nil, false, ErrObserverNotComparable
	}
	if existing, ok := r.index[o]; ok {
		return existing, false, nil
	}

	r.nextID++
	h = &Handle{id: r.nextID, observer: o, filter: newEventSet(events)}
	r.entries = append(r.entries, h)
	r.index[o] = h
	return h, true, nil
}

// Unregister removes the registration. Stale or foreign handles are ignored.
func (r *Registry) Unregister(h *Handle) bool {
	if !h.Active() || r.index[h.observer] != h {
		return false
	}
	delete(r.index, h.observer)
	for i, e := range r.entries {
		if e == h {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			break
		}
	}
	h.removed = true
	return true
}

// Remove unregisters o if present.
func (r *Registry) Remove(o Observer) bool {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return false
	}
	h, ok := r.index[o]
	if !ok {
		return false
	}
	return r.Unregister(h)
}

// Contains reports whether o is registered.
func (r *Registry) Contains(o Observer) bool {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return false
	}
	_, ok := r.index[o]
	return ok
}

// Len returns the number of registered observers.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Snapshot returns the registrations in registration order.
func (r *Registry) Snapshot() []*Handle {
	out := make([]*Handle, len(r.entries))
	copy(out, r.entries)
	return out
}

// ForEachOrdered calls fn for each registration in the snapshot taken when
// the call starts. Changes fn makes to the registry apply from the next call.
// Iteration stops early when fn returns false.
func (r *Registry) ForEachOrdered(fn func(h *Handle) bool) {
	for _, h := range r.Snapshot() {
		if !fn(h) {
			return
		}
	}
}

// Clear removes every registration.
func (r *Registry) Clear() {
	for _, h := range r.entries {
		h.removed = true
	}
	r.entries = nil
	r.index = make(map[Observer]*Handle)
}
