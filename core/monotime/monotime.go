// monotime.go - Monotonic clock.
// Copyright (C) 2017  Yawning Angel.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package monotime implements the process-wide system and steady clocks.
//
// Steady time readings are checked against the last reading accepted on the
// calling goroutine, and a reading that would appear to go backward is
// reported as an error instead of being returned.  The check keeps a small
// amount of goroutine local state, which may be set up ahead of time with
// ThreadSpecificInit and released with ThreadSpecificFini.  Building with
// the notimesanity tag removes the check and the state entirely.
package monotime

import (
	"github.com/katzenpost/clock/core/allocator"
	"github.com/katzenpost/clock/core/clocksource"
	"github.com/katzenpost/clock/core/threadlocal"
)

// TimePoint is an instant in nanoseconds.  System time points count from the
// Unix epoch, steady time points from an unspecified origin.
type TimePoint = int64

// Duration is a difference of two TimePoints in nanoseconds.
type Duration = int64

var defaultClock = newClock(clocksource.Platform(), threadlocal.Default())

// Default returns the process-wide clock used by the package level
// functions.
func Default() *Clock {
	return defaultClock
}

// SystemTimeNow returns the current wall clock time.
func SystemTimeNow() (TimePoint, error) {
	return defaultClock.SystemTimeNow()
}

// SteadyTimeNow returns the current steady clock time.  The value is never
// smaller than one previously returned to the calling goroutine.
//
// The first call on a goroutine may allocate, unless ThreadSpecificInit was
// called on it beforehand.  The goroutine's state is kept until
// ThreadSpecificFini is called on it, as the runtime has no hook on
// goroutine exit.  Long running processes that spawn goroutines which read
// the steady clock should start them with worker.Worker.Go, which releases
// the state on return, or call ThreadSpecificFini before returning.
func SteadyTimeNow() (TimePoint, error) {
	return defaultClock.SteadyTimeNow()
}

// ThreadSpecificInit sets up the calling goroutine's steady clock state with
// the allocator a, so that SteadyTimeNow does not allocate.  Repeated calls
// are no-ops.
func ThreadSpecificInit(a allocator.Allocator) error {
	return defaultClock.ThreadSpecificInit(a)
}

// ThreadSpecificFini releases the calling goroutine's steady clock state.
// The next SteadyTimeNow call on the goroutine starts with no history.
func ThreadSpecificFini() error {
	return defaultClock.ThreadSpecificFini()
}

// Since returns the steady time elapsed since start.
func Since(start TimePoint) (Duration, error) {
	return defaultClock.Since(start)
}
