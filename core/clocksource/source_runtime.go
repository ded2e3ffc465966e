// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package clocksource

import (
	"time"

	"github.com/katzenpost/clock/core/nanotime"
)

var monoBase = time.Now()

type runtimeSource struct{}

// Runtime returns a source backed by the Go runtime's clocks.  Steady time
// is the delta from when the package was initialized.
func Runtime() Source {
	return runtimeSource{}
}

func (runtimeSource) Name() string {
	return "runtime"
}

func (runtimeSource) SystemTime() (int64, error) {
	now := time.Now()
	return nanotime.FromTimespec(now.Unix(), int64(now.Nanosecond()))
}

func (runtimeSource) SteadyTime() (int64, error) {
	// time.Since uses the monotonic reading carried by monoBase.
	d := time.Since(monoBase)
	return nanotime.FromTimespec(int64(d/time.Second), int64(d%time.Second))
}
