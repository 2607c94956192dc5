// Package lifecycle tracks a host object through a fixed sequence of states
// and notifies registered observers whenever a transition occurs.
//
// An Engine owns the current State, validates every incoming Event against
// the transition table, commits the new state and then dispatches the event
// to its observers in registration order. Observers may register or
// unregister observers (themselves included) while being notified; the
// dispatch pass always works on the snapshot taken when it began.
//
// # Usage
//
//	host := lifecycle.NewHost("main-screen", lifecycle.WithLogger(logger))
//
//	_, err := host.Lifecycle().Register(lifecycle.ObserverFunc(
//	    func(owner lifecycle.Owner, event lifecycle.Event) error {
//	        fmt.Println(event, owner.CurrentState())
//	        return nil
//	    }))
//
//	_ = host.Lifecycle().HandleEvent(lifecycle.EventCreate)
//	_ = host.Lifecycle().HandleEvent(lifecycle.EventStart)
//
// # State Machine
//
// Valid transitions:
//   - Initialized -> Created (ON_CREATE)
//   - Created -> Started (ON_START)
//   - Started -> Resumed (ON_RESUME)
//   - Resumed -> Started (ON_PAUSE)
//   - Started -> Created (ON_STOP)
//   - any state but Destroyed -> Destroyed (ON_DESTROY)
//
// The engine never infers or synthesizes events. Drivers must emit the full
// sequence themselves, e.g. ON_PAUSE then ON_STOP before ON_DESTROY if
// observers need to see the owner stop.
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Calls must be serialized by
// the caller; re-entrant HandleEvent calls made from inside a dispatch pass
// are rejected with ErrReentrantEvent.
//
// # Version
//
// See version.go for version constants that can be used programmatically.
package lifecycle
