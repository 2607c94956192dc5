package lifecycle

// Host is a minimal Owner that owns exactly one Engine.
type Host struct {
	name   string
	engine *Engine
}

// NewHost creates a host and its engine.
func NewHost(name string, opts ...Option) *Host {
	h := &Host{name: name}
	h.engine = New(h, opts...)
	return h
}

// Name returns the host name.
func (h *Host) Name() string { return h.name }

// CurrentState returns the engine's committed state.
func (h *Host) CurrentState() State { return h.engine.CurrentState() }

// Lifecycle returns the host's engine.
func (h *Host) Lifecycle() *Engine { return h.engine }

func (h *Host) String() string { return h.name }

var (
	_ Owner = (*Host)(nil)
	_ Owner = (*Engine)(nil)
)
