// Package service holds the business rules that sit between the HTTP
// handlers and storage: uniqueness and referential checks, pagination
// arithmetic and timestamps.
//
// Services return three kinds of errors:
//
//   - *ValidationError (errors.Is(err, ErrValidation)) for rejected input;
//   - storage.ErrNotFound (wrapped) when the target record does not exist;
//   - anything else, which is an internal failure.
package service

import "time"

// Option configures a service.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock replaces time.Now as the source of created/updated timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func newOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// now returns the current time in UTC at the precision every supported
// database can store.
func (o options) now() time.Time {
	return o.clock().UTC().Truncate(time.Microsecond)
}
