package livedata

// Mediator is a Value fed by other values. Sources are observed only while
// the mediator itself has active observers; they are plugged in the order
// they were added and unplugged in reverse.
type Mediator[T any] struct {
	*Value[T]
	sources map[any]source
	order   []source
}

type source interface {
	plug()
	unplug()
}

// NewMediator creates an empty mediator.
func NewMediator[T any]() *Mediator[T] {
	m := &Mediator[T]{
		Value:   New[T](),
		sources: make(map[any]source),
	}
	m.onActive = func() {
		// A plugged source may add further sources (SwitchMap).
		for _, s := range append([]source(nil), m.order...) {
			s.plug()
		}
	}
	m.onInactive = func() {
		order := append([]source(nil), m.order...)
		for i := len(order) - 1; i >= 0; i-- {
			order[i].unplug()
		}
	}
	return m
}

// link forwards changes of src to fn, once per source version.
type link[S any] struct {
	src     *Value[S]
	fn      func(S)
	version int
}

func (l *link[S]) OnChanged(value S) {
	if l.version == l.src.Version() {
		return
	}
	l.version = l.src.Version()
	l.fn(value)
}

func (l *link[S]) plug()   { _ = l.src.ObserveForever(l) }
func (l *link[S]) unplug() { l.src.RemoveObserver(l) }

// AddSource makes m call fn whenever src changes while m is active.
func AddSource[T, S any](m *Mediator[T], src *Value[S], fn func(S)) error {
	if _, ok := m.sources[src]; ok {
		return ErrSourceConflict
	}
	l := &link[S]{src: src, fn: fn, version: startVersion}
	m.sources[src] = l
	m.order = append(m.order, l)
	if m.HasActiveObservers() {
		l.plug()
	}
	return nil
}

// RemoveSource stops listening to src.
func RemoveSource[T, S any](m *Mediator[T], src *Value[S]) {
	s, ok := m.sources[src]
	if !ok {
		return
	}
	delete(m.sources, src)
	for i, o := range m.order {
		if o == s {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	s.unplug()
}
