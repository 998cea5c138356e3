package session

import (
	"time"

	"go.uber.org/zap"
)

const (
	DefaultSaveDelay   = 500 * time.Millisecond
	DefaultSearchDelay = 250 * time.Millisecond
)

type options struct {
	logger *zap.Logger
	delay  time.Duration
}

// Option configures an Editor or a Search.
type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDelay sets the quiet period before a debounced save or search runs.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

func buildOptions(delay time.Duration, opts []Option) options {
	o := options{logger: zap.NewNop(), delay: delay}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
