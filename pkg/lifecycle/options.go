package lifecycle

import "github.com/bft-labs/lifecycle/pkg/log"

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger   log.Logger
	id       string
	failFast bool
	catchUp  bool
}

func defaultOptions() options {
	return options{logger: log.NewNoopLogger()}
}

// WithLogger sets the logger used for transitions and observer failures.
// If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithID sets the engine identifier used in log entries. A random UUID is
// used otherwise.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithFailFast stops a dispatch pass at the first failing observer. The
// transition stays committed; the remaining observers are skipped for that
// event and the returned DispatchError has Aborted set.
func WithFailFast() Option {
	return func(o *options) {
		o.failFast = true
	}
}

// WithCatchUp replays the events already applied to the engine to every
// observer registered outside a dispatch pass, so late observers see the
// same sequence as early ones. Registrations made during a dispatch pass
// are never replayed.
func WithCatchUp() Option {
	return func(o *options) {
		o.catchUp = true
	}
}
