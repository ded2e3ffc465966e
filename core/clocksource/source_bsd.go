// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build freebsd || netbsd || openbsd || dragonfly || solaris

package clocksource

import "golang.org/x/sys/unix"

var platform Source = &timespecSource{
	name:   "posix",
	system: timespecClock{unix.CLOCK_REALTIME, "CLOCK_REALTIME"},
	steady: []timespecClock{
		{unix.CLOCK_MONOTONIC, "CLOCK_MONOTONIC"},
	},
}
