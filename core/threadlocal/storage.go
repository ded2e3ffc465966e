// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package threadlocal stores the last steady timestamp observed by each
// goroutine.
//
// Three strategies implement the same Storage contract: Disabled keeps
// nothing, Native keeps a plain slot per goroutine, and Keyed keeps a cell
// allocated with a caller supplied allocator under a process-wide key.
// Default returns the strategy selected at build time: the notimesanity tag
// selects Disabled, the timetsd tag forces Keyed, otherwise Native is used.
package threadlocal

import (
	"math"

	"github.com/petermattis/goid"

	"github.com/katzenpost/clock/core/allocator"
)

const op = "threadlocal"

// Sentinel is the value of a slot that has never been written, meaning no
// prior observation.  Every timestamp compares greater or equal to it.
const Sentinel = int64(math.MinInt64)

// Storage is a per-goroutine int64 slot.  Every method operates on the slot
// belonging to the calling goroutine.
type Storage interface {
	// Name returns the name of the strategy.
	Name() string

	// Get returns the stored value, creating the slot if needed.
	Get() (int64, error)

	// Set stores v, creating the slot if needed.
	Set(v int64) error

	// EnsureInitialized creates the slot with the supplied allocator if it
	// does not exist yet.  Repeated calls are cheap and never allocate.
	EnsureInitialized(a allocator.Allocator) error

	// Destroy releases the slot.  It is a no-op if there is none.
	Destroy() error
}

func goroutineID() int64 {
	return goid.Get()
}
