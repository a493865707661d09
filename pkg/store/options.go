package store

import (
	"github.com/rs/zerolog"
)

type options struct {
	logger   zerolog.Logger
	observer Observer
	serial   bool
}

func defaultOptions() options {
	return options{
		logger:   zerolog.Nop(),
		observer: NoopObserver{},
	}
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger used for operation tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver registers an Observer for remote call outcomes.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observer = observer
		}
	}
}

// WithSerialOps makes the store run one operation at a time, in arrival
// order. Without it concurrent operations race and the last completion wins.
func WithSerialOps() Option {
	return func(o *options) {
		o.serial = true
	}
}
