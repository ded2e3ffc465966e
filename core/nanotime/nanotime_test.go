// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package nanotime

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katzenpost/clock/core/clockerr"
)

func requireSanityChecks(t *testing.T) {
	if !SanityChecks {
		t.Skip("built with notimesanity")
	}
}

func TestUnitConversions(t *testing.T) {
	assert := assert.New(t)

	assert.EqualValues(2000000000, SToNs(2))
	assert.EqualValues(3000000, MsToNs(3))
	assert.EqualValues(4000, UsToNs(4))

	assert.EqualValues(1, NsToS(1999999999), "truncates toward zero")
	assert.EqualValues(-1, NsToS(-1500000000), "truncates toward zero")
	assert.EqualValues(1, NsToMs(1999999))
	assert.EqualValues(1, NsToUs(1999))
	assert.EqualValues(0, NsToUs(999))
}

func TestFromTimespec(t *testing.T) {
	require := require.New(t)

	for _, v := range []struct {
		sec, nsec, expected int64
	}{
		{0, 0, 0},
		{0, 1, 1},
		{1, 5, 1000000005},
		{1700000000, 123456789, 1700000000123456789},
		{math.MaxInt64 / nsPerSecond, 854775807, math.MaxInt64},
		{math.MaxInt64 / nsPerSecond, 854775806, math.MaxInt64 - 1},
	} {
		ns, err := FromTimespec(v.sec, v.nsec)
		require.NoError(err, "FromTimespec(%d, %d)", v.sec, v.nsec)
		require.Equal(v.expected, ns, "FromTimespec(%d, %d)", v.sec, v.nsec)
	}
}

func TestFromTimespecOverflow(t *testing.T) {
	requireSanityChecks(t)
	require := require.New(t)

	_, err := FromTimespec(math.MaxInt64/nsPerSecond+1, 0)
	require.True(errors.Is(err, clockerr.ErrOverflow), "seconds overflow: %v", err)

	_, err = FromTimespec(math.MaxInt64/nsPerSecond, 999999999)
	require.True(errors.Is(err, clockerr.ErrOverflow), "addition overflow: %v", err)

	_, err = FromTimespec(math.MaxInt64/nsPerSecond, 854775808)
	require.True(errors.Is(err, clockerr.ErrOverflow), "one past the boundary: %v", err)
}

func TestFromTimespecNegative(t *testing.T) {
	require := require.New(t)

	_, err := FromTimespec(-1, 0)
	require.Error(err)
	require.Equal(clockerr.Generic, clockerr.KindOf(err))
	require.Equal("nanotime: unexpected negative time", err.Error())

	_, err = FromTimespec(0, -1)
	require.Error(err)
	require.Equal(clockerr.Generic, clockerr.KindOf(err))
}

func TestFromTimespecSubsecondRange(t *testing.T) {
	requireSanityChecks(t)
	require := require.New(t)

	_, err := FromTimespec(5, nsPerSecond)
	require.True(errors.Is(err, clockerr.ErrInvalidArgument), "%v", err)

	_, err = FromTimespec(5, -1)
	require.True(errors.Is(err, clockerr.ErrInvalidArgument), "%v", err)
}

func TestFromFileTime(t *testing.T) {
	require := require.New(t)

	ns, err := FromFileTime(FileTimeEpochOffset)
	require.NoError(err)
	require.Zero(ns, "1970-01-01 is the Unix epoch")

	ns, err = FromFileTime(FileTimeEpochOffset + 10)
	require.NoError(err)
	require.EqualValues(1000, ns)

	ns, err = FromFileTime(FileTimeEpochOffset + math.MaxInt64/fileTimeTick)
	require.NoError(err)
	require.EqualValues(9223372036854775800, ns)

	_, err = FromFileTime(0)
	require.Equal(clockerr.Generic, clockerr.KindOf(err), "pre-1970 time")

	_, err = FromFileTime(math.MinInt64)
	require.Equal(clockerr.Generic, clockerr.KindOf(err), "no wrap around on subtraction")
}

func TestFromFileTimeOverflow(t *testing.T) {
	requireSanityChecks(t)

	_, err := FromFileTime(FileTimeEpochOffset + math.MaxInt64/fileTimeTick + 1)
	require.True(t, errors.Is(err, clockerr.ErrOverflow), "%v", err)
}

func TestFromPerformanceCounter(t *testing.T) {
	require := require.New(t)

	ns, err := FromPerformanceCounter(25000001, 10000000)
	require.NoError(err)
	require.EqualValues(2500000100, ns, "2.5000001 s at 10 MHz")

	ns, err = FromPerformanceCounter(1, 3)
	require.NoError(err)
	require.EqualValues(333333333, ns, "sub-nanosecond remainder truncates")

	ns, err = FromPerformanceCounter(7, 3)
	require.NoError(err)
	require.EqualValues(2333333333, ns)

	ns, err = FromPerformanceCounter(math.MaxInt64, nsPerSecond)
	require.NoError(err)
	require.EqualValues(int64(math.MaxInt64), ns, "1 GHz counter maps 1:1")

	ns, err = FromPerformanceCounter(0, 3)
	require.NoError(err)
	require.Zero(ns)

	_, err = FromPerformanceCounter(1, 0)
	require.Equal(clockerr.Generic, clockerr.KindOf(err), "zero frequency")

	_, err = FromPerformanceCounter(-1, 10000000)
	require.Equal(clockerr.Generic, clockerr.KindOf(err), "negative count")
}

func TestFromPerformanceCounterOverflow(t *testing.T) {
	requireSanityChecks(t)
	require := require.New(t)

	// Whole seconds past the representable range.
	_, err := FromPerformanceCounter(math.MaxInt64/nsPerSecond+1, 1)
	require.True(errors.Is(err, clockerr.ErrOverflow), "%v", err)

	// A counter frequency so high the remainder alone overflows.
	_, err = FromPerformanceCounter(math.MaxInt64/nsPerSecond+1, 1<<40)
	require.True(errors.Is(err, clockerr.ErrOverflow), "%v", err)

	// 6/7ths of a second on top of the largest whole second count.
	_, err = FromPerformanceCounter((math.MaxInt64/nsPerSecond)*7+6, 7)
	require.True(errors.Is(err, clockerr.ErrOverflow), "%v", err)
}

func TestFormat(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0000000000000000042", FormatNanoseconds(42))
	assert.Equal("9223372036854775807", FormatNanoseconds(math.MaxInt64))
	assert.Equal("-0000000000000000005", FormatNanoseconds(-5))

	assert.Equal("0000000000.000000000", FormatSeconds(0))
	assert.Equal("0000000001.500000000", FormatSeconds(1500000000))
	assert.Equal("1700000000.123456789", FormatSeconds(1700000000123456789))
	assert.Equal("-0000000001.500000000", FormatSeconds(-1500000000))
	assert.Equal("-9223372036.854775808", FormatSeconds(math.MinInt64))
}
