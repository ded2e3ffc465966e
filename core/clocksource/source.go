// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package clocksource reads the platform's wall clock and monotonic clock.
//
// Exactly one platform source is compiled in for a given target.  Every
// source hands its raw reading to the nanotime conversion layer, so all of
// them report nanoseconds with the same overflow semantics.
package clocksource

const op = "clocksource"

// Source is a pair of platform clocks.
type Source interface {
	// Name returns a short name for the source.
	Name() string

	// SystemTime returns wall clock time in nanoseconds since the Unix
	// epoch.  The value is subject to adjustment.
	SystemTime() (int64, error)

	// SteadyTime returns monotonic clock time in nanoseconds since an
	// arbitrary origin.
	SteadyTime() (int64, error)
}

// Platform returns the clock source for the target platform.
func Platform() Source {
	return platform
}
