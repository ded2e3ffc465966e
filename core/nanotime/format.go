// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package nanotime

import "fmt"

// FormatNanoseconds renders a time point as a nanosecond count, zero padded
// to 19 digits.
func FormatNanoseconds(timepoint int64) string {
	return fmt.Sprintf("%.19d", timepoint)
}

// FormatSeconds renders a time point as seconds with a nanosecond fraction,
// "SSSSSSSSSS.NNNNNNNNN".  Seconds and the fraction are split with integer
// arithmetic so there is no floating point rounding.
func FormatSeconds(timepoint int64) string {
	sign := ""
	magnitude := uint64(timepoint)
	if timepoint < 0 {
		sign = "-"
		magnitude = uint64(-(timepoint + 1)) + 1
	}
	ns := uint64(nsPerSecond)
	return fmt.Sprintf("%s%.10d.%.9d", sign, magnitude/ns, magnitude%ns)
}
