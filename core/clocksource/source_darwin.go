// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package clocksource

import "golang.org/x/sys/unix"

// The Mach calendar clock is the realtime clock, and the Mach system clock
// counts mach_absolute_time() since boot, which libSystem exposes as
// CLOCK_UPTIME_RAW.  Both are read through libSystem rather than by holding
// a clock service port.
var platform Source = &timespecSource{
	name:   "mach",
	system: timespecClock{unix.CLOCK_REALTIME, "CALENDAR_CLOCK"},
	steady: []timespecClock{
		{unix.CLOCK_UPTIME_RAW, "SYSTEM_CLOCK"},
	},
}
