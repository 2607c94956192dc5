package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"

	"github.com/bft-labs/lifecycle/pkg/log"
)

// historyLimit bounds the events kept for History.
const historyLimit = 64

// Engine owns the current state of one Owner and dispatches its events.
type Engine struct {
	id       string
	owner    Owner
	state    State
	registry *Registry
	logger   log.Logger
	failFast bool
	catchUp  bool

	dispatching bool
	disposed    bool
	history     []Event
}

// New creates an engine in StateInitialized. A nil owner makes the engine
// its own owner.
func New(owner Owner, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	e := &Engine{
		id:       o.id,
		owner:    owner,
		state:    StateInitialized,
		registry: NewRegistry(),
		logger:   o.logger,
		failFast: o.failFast,
		catchUp:  o.catchUp,
	}
	if e.owner == nil {
		e.owner = e
	}
	return e
}

// ID returns the engine identifier.
func (e *Engine) ID() string { return e.id }

// Owner returns the owner passed to observers.
func (e *Engine) Owner() Owner { return e.owner }

// CurrentState returns the committed state.
func (e *Engine) CurrentState() State { return e.state }

// Lifecycle returns e, so an Engine can act as its own Owner.
func (e *Engine) Lifecycle() *Engine { return e }

// Disposed reports whether the ON_DESTROY pass has completed.
func (e *Engine) Disposed() bool { return e.disposed }

// ObserverCount returns the number of registered observers.
func (e *Engine) ObserverCount() int { return e.registry.Len() }

// History returns the most recent applied events, oldest first. At most
// historyLimit events are kept.
func (e *Engine) History() []Event {
	out := make([]Event, len(e.history))
	copy(out, e.history)
	return out
}

// HandleEvent validates event against the current state, commits the new
// state and notifies every observer registered when dispatch starts.
//
// It returns ErrAlreadyDestroyed after destruction, ErrReentrantEvent when
// called from inside a dispatch pass and a *TransitionError for illegal
// events; in those cases nothing changes. A *DispatchError means the
// transition was committed but some observers failed.
func (e *Engine) HandleEvent(event Event) error {
	if e.state == StateDestroyed {
		e.logger.Debug("event rejected",
			log.String("engine", e.id),
			log.Stringer("event", event),
			log.Err(ErrAlreadyDestroyed),
		)
		return ErrAlreadyDestroyed
	}
	if e.dispatching {
		e.logger.Debug("event rejected",
			log.String("engine", e.id),
			log.Stringer("event", event),
			log.Err(ErrReentrantEvent),
		)
		return ErrReentrantEvent
	}

	next, err := NextState(e.state, event)
	if err != nil {
		e.logger.Debug("event rejected",
			log.String("engine", e.id),
			log.Stringer("state", e.state),
			log.Stringer("event", event),
			log.Err(err),
		)
		return err
	}

	prev := e.state
	e.state = next
	e.record(event)

	e.logger.Info("state transition",
		log.String("engine", e.id),
		log.Stringer("from", prev),
		log.Stringer("to", next),
		log.Stringer("event", event),
		log.Int("observers", e.registry.Len()),
	)

	dispatchErr := e.dispatch(event)

	if event == EventDestroy {
		e.dispose()
	}

	if dispatchErr != nil {
		return dispatchErr
	}
	return nil
}

// Register adds o to the engine, optionally filtered to the given events.
// Registering the same observer again returns the existing handle.
// Once the engine reached Destroyed it returns ErrEngineDisposed.
func (e *Engine) Register(o Observer, events ...Event) (*Handle, error) {
	if e.state == StateDestroyed {
		return nil, ErrEngineDisposed
	}

	h, added, err := e.registry.Register(o, events...)
	if err != nil {
		return nil, err
	}
	if !added {
		return h, nil
	}

	e.logger.Debug("observer registered",
		log.String("engine", e.id),
		log.Uint64("handle", h.ID()),
		log.Bool("during_dispatch", e.dispatching),
	)

	if e.catchUp && !e.dispatching && e.state != StateInitialized {
		e.replay(h)
	}
	return h, nil
}

// Unregister removes a registration. It is safe to call during dispatch and
// is a no-op for unknown or already removed handles.
func (e *Engine) Unregister(h *Handle) {
	if e.registry.Unregister(h) {
		e.logger.Debug("observer unregistered",
			log.String("engine", e.id),
			log.Uint64("handle", h.ID()),
		)
	}
}

// RemoveObserver unregisters o if present.
func (e *Engine) RemoveObserver(o Observer) {
	e.registry.Remove(o)
}

func (e *Engine) dispatch(event Event) error {
	e.dispatching = true
	defer func() { e.dispatching = false }()

	var failed *DispatchError
	e.registry.ForEachOrdered(func(h *Handle) bool {
		if !h.Accepts(event) {
			return true
		}
		err := e.notify(h, event)
		if err == nil {
			return true
		}

		if failed == nil {
			failed = &DispatchError{Event: event, State: e.state}
		}
		failed.Failures = append(failed.Failures, ObserverFailure{Handle: h, Err: err})
		e.logger.Warn("observer failed",
			log.String("engine", e.id),
			log.Uint64("handle", h.ID()),
			log.Stringer("event", event),
			log.Err(err),
		)

		if e.failFast {
			failed.Aborted = true
			return false
		}
		return true
	})

	if failed != nil {
		return failed
	}
	return nil
}

func (e *Engine) record(event Event) {
	if len(e.history) == historyLimit {
		copy(e.history, e.history[1:])
		e.history = e.history[:historyLimit-1]
	}
	e.history = append(e.history, event)
}

// replay raises a freshly registered observer from Initialized to the
// current state, one upward event at a time. Failures are logged; the
// registration stands.
func (e *Engine) replay(h *Handle) {
	e.dispatching = true
	defer func() { e.dispatching = false }()

	for _, event := range PathTo(e.state) {
		if !h.Active() {
			return
		}
		if !h.Accepts(event) {
			continue
		}
		if err := e.notify(h, event); err != nil {
			e.logger.Warn("observer failed during catch-up",
				log.String("engine", e.id),
				log.Uint64("handle", h.ID()),
				log.Stringer("event", event),
				log.Err(err),
			)
		}
	}
}

// notify calls one observer, converting a panic into an error. The stack of
// a recovered panic is logged at debug level only.
func (e *Engine) notify(h *Handle, event Event) (err error) {
	var pc panics.Catcher
	pc.Try(func() {
		err = h.observer.OnStateChanged(e.owner, event)
	})
	r := pc.Recovered()
	if r == nil {
		return err
	}

	e.logger.Debug("observer panic stack",
		log.String("engine", e.id),
		log.Uint64("handle", h.ID()),
		log.String("stack", string(r.Stack)),
	)
	if perr, ok := r.Value.(error); ok {
		return fmt.Errorf("observer panicked: %w", perr)
	}
	return fmt.Errorf("observer panicked: %v", r.Value)
}

func (e *Engine) dispose() {
	released := e.registry.Len()
	e.registry.Clear()
	e.disposed = true

	e.logger.Info("engine disposed",
		log.String("engine", e.id),
		log.Int("released_observers", released),
	)
}
