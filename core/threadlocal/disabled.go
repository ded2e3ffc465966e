// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package threadlocal

import "github.com/katzenpost/clock/core/allocator"

// Disabled is a Storage that stores nothing and never allocates.
type Disabled struct{}

// Name implements Storage.
func (Disabled) Name() string { return "disabled" }

// Get always returns Sentinel.
func (Disabled) Get() (int64, error) { return Sentinel, nil }

// Set discards v.
func (Disabled) Set(int64) error { return nil }

// EnsureInitialized is a no-op.
func (Disabled) EnsureInitialized(allocator.Allocator) error { return nil }

// Destroy is a no-op.
func (Disabled) Destroy() error { return nil }
