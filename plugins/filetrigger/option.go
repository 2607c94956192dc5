package filetrigger

import "github.com/bft-labs/lifecycle/pkg/log"

// Option configures a Trigger.
type Option func(*Trigger)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(t *Trigger) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithErrorHandler registers fn for unparseable lines, rejected events and
// read failures. Read failures are reported with an empty line.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(t *Trigger) {
		t.onError = fn
	}
}

// WithStopOnDestroy makes Run return once the sink reaches Destroyed.
//
// Usage:
//
//	host := lifecycle.NewHost("worker")
//	trig := filetrigger.New("/run/worker.events", host.Lifecycle(),
//	    filetrigger.WithStopOnDestroy(),
//	)
//	err := trig.Run(ctx)
func WithStopOnDestroy() Option {
	return func(t *Trigger) {
		t.stopOnDestroy = true
	}
}
