// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris

package clocksource

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/katzenpost/clock/core/clockerr"
	"github.com/katzenpost/clock/core/nanotime"
)

// timespecClock is a clock_gettime(2) clock id.
type timespecClock struct {
	id   int32
	name string
}

// timespecSource reads both clocks with clock_gettime(2), which returns
// seconds and nanoseconds directly.
type timespecSource struct {
	name   string
	system timespecClock

	// steady lists the monotonic clocks in order of preference.  The
	// first one the kernel accepts is used from then on.
	steady     []timespecClock
	steadyOnce sync.Once
	steadyUsed timespecClock
}

func (s *timespecSource) Name() string {
	return s.name
}

func (s *timespecSource) SystemTime() (int64, error) {
	return readTimespec(s.system)
}

func (s *timespecSource) SteadyTime() (int64, error) {
	s.steadyOnce.Do(s.pickSteady)
	return readTimespec(s.steadyUsed)
}

// SteadyClockName returns the name of the monotonic clock in use.
func (s *timespecSource) SteadyClockName() string {
	s.steadyOnce.Do(s.pickSteady)
	return s.steadyUsed.name
}

func (s *timespecSource) pickSteady() {
	s.steadyUsed = s.steady[len(s.steady)-1]
	for _, c := range s.steady[:len(s.steady)-1] {
		var ts unix.Timespec
		if err := unix.ClockGettime(c.id, &ts); err == nil {
			s.steadyUsed = c
			return
		}
	}
}

func readTimespec(c timespecClock) (int64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(c.id, &ts); err != nil {
		return 0, clockerr.New(clockerr.Generic, op, fmt.Sprintf("clock_gettime(%s): %v", c.name, err))
	}
	sec, nsec := ts.Unix()
	return nanotime.FromTimespec(sec, nsec)
}
