// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package allocator provides a pluggable memory allocator handle for the
// places in the clock subsystem that need heap storage of their own.
package allocator

import "sync/atomic"

// Allocator is a set of allocation routines sharing one opaque state value.
// The state is passed back to every routine unmodified.
type Allocator struct {
	// Allocate returns size bytes of storage, or nil on failure.
	Allocate func(size int, state interface{}) []byte

	// Deallocate releases storage previously returned by Allocate or
	// Reallocate.
	Deallocate func(p []byte, state interface{})

	// Reallocate resizes p to size bytes, or returns nil on failure.
	Reallocate func(p []byte, size int, state interface{}) []byte

	// State is the opaque allocator state.
	State interface{}
}

// IsValid returns true iff the allocator can both allocate and deallocate.
func (a *Allocator) IsValid() bool {
	return a != nil && a.Allocate != nil && a.Deallocate != nil
}

// Default returns an allocator backed by the Go heap.
func Default() Allocator {
	return Allocator{
		Allocate:   defaultAllocate,
		Deallocate: defaultDeallocate,
		Reallocate: defaultReallocate,
	}
}

func defaultAllocate(size int, _ interface{}) []byte {
	if size < 0 {
		return nil
	}
	return make([]byte, size)
}

func defaultDeallocate(_ []byte, _ interface{}) {}

func defaultReallocate(p []byte, size int, _ interface{}) []byte {
	if size < 0 {
		return nil
	}
	if size <= cap(p) {
		return p[:size]
	}
	b := make([]byte, size)
	copy(b, p)
	return b
}

// Counting wraps another allocator and keeps track of how many allocations,
// reallocations and deallocations went through it.  It optionally fails
// every allocation, which is how callers exercise their out of memory paths.
type Counting struct {
	allocs   atomic.Int64
	reallocs atomic.Int64
	frees    atomic.Int64
	fail     atomic.Bool

	base Allocator
}

// NewCounting returns a Counting allocator forwarding to base.
func NewCounting(base Allocator) *Counting {
	return &Counting{base: base}
}

// Allocator returns the allocator handle to hand out to callers.
func (c *Counting) Allocator() Allocator {
	return Allocator{
		Allocate: func(size int, _ interface{}) []byte {
			if c.fail.Load() {
				return nil
			}
			c.allocs.Add(1)
			return c.base.Allocate(size, c.base.State)
		},
		Deallocate: func(p []byte, _ interface{}) {
			c.frees.Add(1)
			c.base.Deallocate(p, c.base.State)
		},
		Reallocate: func(p []byte, size int, _ interface{}) []byte {
			if c.fail.Load() {
				return nil
			}
			c.reallocs.Add(1)
			return c.base.Reallocate(p, size, c.base.State)
		},
		State: c,
	}
}

// SetFail toggles failing every subsequent allocation.
func (c *Counting) SetFail(fail bool) {
	c.fail.Store(fail)
}

// Allocs returns the number of successful allocations.
func (c *Counting) Allocs() int64 {
	return c.allocs.Load()
}

// Reallocs returns the number of successful reallocations.
func (c *Counting) Reallocs() int64 {
	return c.reallocs.Load()
}

// Frees returns the number of deallocations.
func (c *Counting) Frees() int64 {
	return c.frees.Load()
}

// Live returns the number of allocations not yet released.
func (c *Counting) Live() int64 {
	return c.allocs.Load() - c.frees.Load()
}
