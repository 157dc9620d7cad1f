// Package admission implements the Admission Controller (C5): an atomic
// in-flight counter bounded by a configured ceiling, with a slot-release
// guarantee on every exit path including panics.
package admission

import (
	"sync/atomic"

	appErr "codejudge/pkg/errors"
)

// Controller bounds concurrent executions. The in-flight counter is the
// single source of truth for spec.md §8's slot-accounting invariant: it
// must return to zero once every admitted request has exited, by whatever
// path, and must never exceed maxRequests+1 transiently.
type Controller struct {
	inFlight    atomic.Int64
	maxRequests int64

	onAdmit    func()
	onRelease  func()
	onThrottle func()
}

// Option configures optional metric hooks.
type Option func(*Controller)

// WithMetrics wires the inFlight gauge and throttle counter callbacks.
func WithMetrics(onAdmit, onRelease, onThrottle func()) Option {
	return func(c *Controller) {
		c.onAdmit = onAdmit
		c.onRelease = onRelease
		c.onThrottle = onThrottle
	}
}

// New creates a Controller with the given admission ceiling.
func New(maxRequests int, opts ...Option) *Controller {
	c := &Controller{maxRequests: int64(maxRequests)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// released is returned by TryAcquire; callers must invoke it exactly once,
// on every exit path, to release the slot.
type released func()

// TryAcquire attempts to reserve one admission slot. On success it returns
// a release function the caller must defer immediately. On throttle it
// returns ok=false and a nil release function; the throttle metric has
// already been incremented and no slot was consumed.
func (c *Controller) TryAcquire() (release released, ok bool) {
	for {
		current := c.inFlight.Load()
		if current >= c.maxRequests {
			if c.onThrottle != nil {
				c.onThrottle()
			}
			return nil, false
		}
		if c.inFlight.CompareAndSwap(current, current+1) {
			if c.onAdmit != nil {
				c.onAdmit()
			}
			released := false
			return func() {
				if released {
					return
				}
				released = true
				c.inFlight.Add(-1)
				if c.onRelease != nil {
					c.onRelease()
				}
			}, true
		}
	}
}

// InFlight returns the current in-flight count, for the gauge and tests.
func (c *Controller) InFlight() int64 {
	return c.inFlight.Load()
}

// ErrThrottled is the structured error TryAcquire's caller should surface
// as HTTP 429 with the fixed body spec.md §4.5 mandates.
func ErrThrottled() error {
	return appErr.QueueFull().WithMessage("Request throttled, service reached max allowed requests")
}
