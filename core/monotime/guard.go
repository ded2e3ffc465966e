// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package monotime

import (
	"fmt"

	"github.com/katzenpost/clock/core/clockerr"
	"github.com/katzenpost/clock/core/threadlocal"
)

// Guard rejects steady time readings older than the last one accepted on
// the calling goroutine.
type Guard struct {
	storage threadlocal.Storage
}

// NewGuard returns a Guard keeping its history in st.
func NewGuard(st threadlocal.Storage) *Guard {
	return &Guard{storage: st}
}

// Check accepts current if it is not smaller than the last accepted value,
// and records it as the new last value.  A rejected value leaves the last
// value untouched.
func (g *Guard) Check(current int64) error {
	last, err := g.storage.Get()
	if err != nil {
		return err
	}

	if last > current {
		return clockerr.New(clockerr.NonMonotonic, op, fmt.Sprintf("non-monotonic steady time: %d after %d", current, last))
	}

	return g.storage.Set(current)
}
