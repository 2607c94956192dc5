// Package livedata provides observable values whose observers follow the
// lifecycle of an owner.
//
// An observer bound with Observe only receives values while its owner is at
// least Started, receives the latest value when it becomes active again, and
// is dropped automatically when the owner is destroyed:
//
//	name := livedata.New[string]()
//	_ = name.Observe(host, livedata.ObserverFunc(func(s string) {
//	    fmt.Println("name is", s)
//	}))
//	name.Set("alice") // delivered once host is Started
//
// Mediator, Map and SwitchMap derive values from other values. A mediator
// only listens to its sources while it has active observers.
//
// Values are not safe for concurrent use; like the lifecycle engine they are
// driven from a single goroutine.
package livedata
