// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package nanotime converts platform clock readings into a single signed
// 64-bit nanosecond count, refusing to silently wrap on overflow.
//
// The overflow checks may be compiled out with the notimesanity build tag,
// for platforms where they are known to never trigger.
package nanotime

import (
	"math"

	"github.com/katzenpost/clock/core/clockerr"
)

const (
	op = "nanotime"

	nsPerSecond      = int64(1000 * 1000 * 1000)
	nsPerMillisecond = int64(1000 * 1000)
	nsPerMicrosecond = int64(1000)

	// FileTimeEpochOffset is the number of 100 nanosecond intervals between
	// January 1st 1601 and January 1st 1970.
	FileTimeEpochOffset = int64(116444736000000000)

	fileTimeTick = int64(100)
)

// SToNs converts seconds to nanoseconds.  The conversion is not checked
// for overflow.
func SToNs(seconds int64) int64 {
	return seconds * nsPerSecond
}

// MsToNs converts milliseconds to nanoseconds.  The conversion is not
// checked for overflow.
func MsToNs(milliseconds int64) int64 {
	return milliseconds * nsPerMillisecond
}

// UsToNs converts microseconds to nanoseconds.  The conversion is not
// checked for overflow.
func UsToNs(microseconds int64) int64 {
	return microseconds * nsPerMicrosecond
}

// NsToS converts nanoseconds to whole seconds, truncating.
func NsToS(nanoseconds int64) int64 {
	return nanoseconds / nsPerSecond
}

// NsToMs converts nanoseconds to whole milliseconds, truncating.
func NsToMs(nanoseconds int64) int64 {
	return nanoseconds / nsPerMillisecond
}

// NsToUs converts nanoseconds to whole microseconds, truncating.
func NsToUs(nanoseconds int64) int64 {
	return nanoseconds / nsPerMicrosecond
}

func wouldBeNegative(seconds, subseconds int64) bool {
	return seconds < 0 || (seconds == 0 && subseconds < 0)
}

// FromTimespec converts a (seconds, nanoseconds) pair, as returned by
// clock_gettime and friends, into nanoseconds.  nsec must be in [0, 1e9).
func FromTimespec(sec, nsec int64) (int64, error) {
	if wouldBeNegative(sec, nsec) {
		return 0, clockerr.New(clockerr.Generic, op, "unexpected negative time")
	}

	if SanityChecks {
		if nsec < 0 || nsec >= nsPerSecond {
			return 0, clockerr.New(clockerr.InvalidArgument, op, "sub-second component out of range")
		}
		if sec > math.MaxInt64/nsPerSecond {
			return 0, clockerr.New(clockerr.Overflow, op, "overflow converting seconds to nanoseconds")
		}
		if nsec > 0 && sec*nsPerSecond > math.MaxInt64-nsec {
			return 0, clockerr.New(clockerr.Overflow, op, "overflow adding sub-second nanoseconds")
		}
	}

	return sec*nsPerSecond + nsec, nil
}

// FromFileTime converts a count of 100 nanosecond ticks since January 1st
// 1601 into nanoseconds since the Unix epoch.
func FromFileTime(ticks int64) (int64, error) {
	if ticks < FileTimeEpochOffset {
		return 0, clockerr.New(clockerr.Generic, op, "unexpected negative time")
	}
	ticks -= FileTimeEpochOffset

	if SanityChecks && ticks > math.MaxInt64/fileTimeTick {
		return 0, clockerr.New(clockerr.Overflow, op, "system time overflow")
	}

	return ticks * fileTimeTick, nil
}

// FromPerformanceCounter converts a performance counter value and its
// frequency in ticks per second into nanoseconds.
//
// Whole seconds and the remaining ticks are converted separately, as
// multiplying the raw count by 1e9 overflows after a few hours of uptime on
// common counter frequencies.
func FromPerformanceCounter(count, frequency int64) (int64, error) {
	if frequency <= 0 {
		return 0, clockerr.New(clockerr.Generic, op, "invalid performance counter frequency")
	}
	if count < 0 {
		return 0, clockerr.New(clockerr.Generic, op, "unexpected negative time")
	}

	wholeSeconds := count / frequency
	remainderCount := count % frequency

	if SanityChecks {
		if remainderCount > math.MaxInt64/nsPerSecond {
			return 0, clockerr.New(clockerr.Overflow, op, "overflow in steady time for 'remainder_count'")
		}
		if wholeSeconds > math.MaxInt64/nsPerSecond {
			return 0, clockerr.New(clockerr.Overflow, op, "overflow in steady time for 'whole_seconds'")
		}
	}

	remainderNs := SToNs(remainderCount) / frequency
	totalSecondsNs := SToNs(wholeSeconds)

	if SanityChecks && remainderNs > 0 && totalSecondsNs > math.MaxInt64-remainderNs {
		return 0, clockerr.New(clockerr.Overflow, op, "overflow in steady time during addition")
	}

	return totalSecondsNs + remainderNs, nil
}
