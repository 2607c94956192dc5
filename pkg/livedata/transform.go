package livedata

// Map returns a value that holds fn applied to every value of src.
func Map[X, Y any](src *Value[X], fn func(X) Y) *Mediator[Y] {
	m := NewMediator[Y]()
	_ = AddSource(m, src, func(x X) {
		m.Set(fn(x))
	})
	return m
}

// SwitchMap returns a value that mirrors the value fn picks for the latest
// value of src. Switching drops the previously picked value as a source.
func SwitchMap[X, Y any](src *Value[X], fn func(X) *Value[Y]) *Mediator[Y] {
	m := NewMediator[Y]()
	var current *Value[Y]
	_ = AddSource(m, src, func(x X) {
		next := fn(x)
		if next == current {
			return
		}
		if current != nil {
			RemoveSource(m, current)
		}
		current = next
		if current != nil {
			_ = AddSource(m, current, func(y Y) {
				m.Set(y)
			})
		}
	})
	return m
}
