// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package monotime

import (
	"errors"
	"sync/atomic"

	"gopkg.in/op/go-logging.v1"

	"github.com/katzenpost/clock/core/allocator"
	"github.com/katzenpost/clock/core/clockerr"
	"github.com/katzenpost/clock/core/clocksource"
	"github.com/katzenpost/clock/core/nanotime"
	"github.com/katzenpost/clock/core/threadlocal"
	"github.com/katzenpost/clock/internal/instrument"
)

const (
	op = "monotime"

	systemClock = "system"
	steadyClock = "steady"
)

// Clock reads a clock source, and enforces per-goroutine monotonicity of its
// steady time readings.
type Clock struct {
	source  clocksource.Source
	storage threadlocal.Storage
	guard   *Guard

	log atomic.Pointer[logging.Logger]
}

// Option configures a Clock.
type Option func(*Clock)

// WithLogger sets the logger anomalies are reported to.
func WithLogger(l *logging.Logger) Option {
	return func(c *Clock) {
		c.SetLogger(l)
	}
}

func newClock(src clocksource.Source, st threadlocal.Storage) *Clock {
	c := &Clock{
		source:  src,
		storage: st,
		guard:   NewGuard(st),
	}
	c.log.Store(logging.MustGetLogger("monotime"))
	return c
}

// New returns a Clock reading src, keeping steady time history in st.
func New(src clocksource.Source, st threadlocal.Storage, opts ...Option) (*Clock, error) {
	if src == nil {
		return nil, clockerr.New(clockerr.InvalidArgument, op, "no clock source")
	}
	if st == nil {
		return nil, clockerr.New(clockerr.InvalidArgument, op, "no thread-local storage")
	}
	c := newClock(src, st)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetLogger replaces the logger anomalies are reported to.  The logger's
// backend must not stamp records by reading this Clock, as a failing read
// would then recurse.  The core/log backend reads the clock source directly.
func (c *Clock) SetLogger(l *logging.Logger) {
	if l != nil {
		c.log.Store(l)
	}
}

// Source returns the clock source.
func (c *Clock) Source() clocksource.Source {
	return c.source
}

// Storage returns the goroutine local storage strategy.
func (c *Clock) Storage() threadlocal.Storage {
	return c.storage
}

// SystemTimeNow returns the current wall clock time.
func (c *Clock) SystemTimeNow() (TimePoint, error) {
	now, err := c.source.SystemTime()
	if err != nil {
		c.failed(systemClock, err)
		return 0, err
	}
	instrument.Reading(systemClock)
	return now, nil
}

// SteadyTimeNow returns the current steady clock time, failing with a
// NonMonotonic error if the source returned a value older than one already
// returned to the calling goroutine.
func (c *Clock) SteadyTimeNow() (TimePoint, error) {
	now, err := c.source.SteadyTime()
	if err != nil {
		c.failed(steadyClock, err)
		return 0, err
	}
	if nanotime.SanityChecks {
		if err = c.guard.Check(now); err != nil {
			c.failed(steadyClock, err)
			return 0, err
		}
	}
	instrument.Reading(steadyClock)
	return now, nil
}

// ThreadSpecificInit sets up the calling goroutine's steady clock state with
// the allocator a.
func (c *Clock) ThreadSpecificInit(a allocator.Allocator) error {
	if !nanotime.SanityChecks {
		return nil
	}
	return c.storage.EnsureInitialized(a)
}

// ThreadSpecificFini releases the calling goroutine's steady clock state.
func (c *Clock) ThreadSpecificFini() error {
	if !nanotime.SanityChecks {
		return nil
	}
	return c.storage.Destroy()
}

// Since returns the steady time elapsed since start.
func (c *Clock) Since(start TimePoint) (Duration, error) {
	now, err := c.SteadyTimeNow()
	if err != nil {
		return 0, err
	}
	return now - start, nil
}

func (c *Clock) failed(clock string, err error) {
	kind := clockerr.KindOf(err)
	instrument.Failure(clock, kind.String())

	log := c.log.Load()
	var cerr *clockerr.Error
	if !errors.As(err, &cerr) {
		log.Errorf("%s clock (%s): %v", clock, c.source.Name(), err)
		return
	}
	switch cerr.Kind {
	case clockerr.NonMonotonic, clockerr.Overflow:
		log.Warningf("%s clock (%s): %v", clock, c.source.Name(), err)
	default:
		log.Errorf("%s clock (%s): %v", clock, c.source.Name(), err)
	}
}
