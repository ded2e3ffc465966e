// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !notimesanity && !timetsd

package threadlocal

var defaultStorage Storage = NewNative()

// Default returns the process-wide storage selected at build time.
func Default() Storage {
	return defaultStorage
}
