// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package clocksource

import "golang.org/x/sys/unix"

// CLOCK_MONOTONIC_RAW is not subject to NTP frequency slewing, but older
// kernels and some sandboxes refuse it.
var platform Source = &timespecSource{
	name:   "posix",
	system: timespecClock{unix.CLOCK_REALTIME, "CLOCK_REALTIME"},
	steady: []timespecClock{
		{unix.CLOCK_MONOTONIC_RAW, "CLOCK_MONOTONIC_RAW"},
		{unix.CLOCK_MONOTONIC, "CLOCK_MONOTONIC"},
	},
}
