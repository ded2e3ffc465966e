// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build !notimesanity

package nanotime

// SanityChecks is true when overflow and monotonicity checks are compiled in.
const SanityChecks = true
