package auth

import (
	"time"

	"go.uber.org/zap"
)

// Observer receives auth outcomes, typically for metrics.
type Observer interface {
	LoginAttempt(result string)
	Registration(result string)
	TokenRejected(reason string)
}

type noopObserver struct{}

func (noopObserver) LoginAttempt(string)  {}
func (noopObserver) Registration(string)  {}
func (noopObserver) TokenRejected(string) {}

// Option configures a Resolver or a Service.
type Option func(*options)

type options struct {
	now      func() time.Time
	log      *zap.Logger
	observer Observer
}

func defaultOptions() options {
	return options{now: time.Now, log: zap.NewNop(), observer: noopObserver{}}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces the wall clock used for token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}
