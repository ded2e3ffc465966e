// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package threadlocal

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/katzenpost/clock/core/allocator"
)

// Native is a Storage holding a plain int64 per goroutine, managed by the Go
// heap.  The allocator passed to EnsureInitialized is ignored.
type Native struct {
	slots *xsync.MapOf[int64, *int64]
}

// NewNative returns a new Native storage.
func NewNative() *Native {
	return &Native{
		slots: xsync.NewMapOf[int64, *int64](),
	}
}

// Name implements Storage.
func (n *Native) Name() string { return "native" }

// slot returns the calling goroutine's slot.  Only the owning goroutine ever
// dereferences it, so reads and writes need no synchronization.
func (n *Native) slot() *int64 {
	s, _ := n.slots.LoadOrCompute(goroutineID(), func() *int64 {
		v := Sentinel
		return &v
	})
	return s
}

// Get implements Storage.
func (n *Native) Get() (int64, error) {
	return *n.slot(), nil
}

// Set implements Storage.
func (n *Native) Set(v int64) error {
	*n.slot() = v
	return nil
}

// EnsureInitialized touches the slot, so that it exists before the first
// steady time read.
func (n *Native) EnsureInitialized(allocator.Allocator) error {
	n.slot()
	return nil
}

// Destroy drops the calling goroutine's slot.
func (n *Native) Destroy() error {
	n.slots.Delete(goroutineID())
	return nil
}

// Len returns the number of live slots.
func (n *Native) Len() int {
	return n.slots.Size()
}
