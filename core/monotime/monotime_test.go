// monotime_test.go - Monotonic clock tests.
// Copyright (C) 2017  Yawning Angel.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package monotime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katzenpost/clock/core/allocator"
	"github.com/katzenpost/clock/core/clockerr"
	"github.com/katzenpost/clock/core/nanotime"
	"github.com/katzenpost/clock/core/threadlocal"
)

// scriptedSource replays canned steady readings.
type scriptedSource struct {
	sync.Mutex

	steady []int64
	err    error
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) SystemTime() (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return 1500000000 * 1000000000, nil
}

func (s *scriptedSource) SteadyTime() (int64, error) {
	s.Lock()
	defer s.Unlock()

	if s.err != nil {
		return 0, s.err
	}
	v := s.steady[0]
	s.steady = s.steady[1:]
	return v, nil
}

func requireSanityChecks(t *testing.T) {
	if !nanotime.SanityChecks {
		t.Skip("built without time sanity checks")
	}
}

func TestMonotime(t *testing.T) {
	require := require.New(t)

	now, err := SystemTimeNow()
	require.NoError(err)
	require.InDelta(time.Now().UnixNano(), now, float64(time.Second), "system time tracks the wall clock")

	// Validate timekeeping, by sleeping for a fixed interval and ensuring that
	// the steady clock advances by approximately how much we expect.
	const sleepTime = 100 * time.Millisecond

	before, err := SteadyTimeNow()
	require.NoError(err)
	time.Sleep(sleepTime)
	elapsed, err := Since(before)
	require.NoError(err)
	require.GreaterOrEqual(elapsed, int64(sleepTime-time.Millisecond), "Interval subtraction")
	require.Less(elapsed, int64(10*sleepTime), "Interval subtraction")

	require.NoError(ThreadSpecificFini())
}

func TestGuard(t *testing.T) {
	require := require.New(t)

	g := NewGuard(threadlocal.NewNative())
	defer g.storage.Destroy()

	for _, v := range []int64{0, 1, 2, 3, 3} {
		require.NoError(g.Check(v), "%d", v)
	}

	err := g.Check(2)
	require.True(errors.Is(err, clockerr.ErrNonMonotonic), "%v", err)
	require.Contains(err.Error(), "monotime: ")

	require.NoError(g.Check(3), "a rejected value is not recorded")
	require.NoError(g.Check(4))
}

func TestGuardPerGoroutine(t *testing.T) {
	require := require.New(t)

	g := NewGuard(threadlocal.NewKeyed())
	defer g.storage.Destroy()

	require.NoError(g.Check(100))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer g.storage.Destroy()
		require.NoError(g.Check(1), "goroutines have independent history")
	}()
	wg.Wait()

	require.Error(g.Check(99))
}

func TestClockSteady(t *testing.T) {
	requireSanityChecks(t)
	require := require.New(t)

	src := &scriptedSource{steady: []int64{10, 20, 15, 20, 30}}
	c, err := New(src, threadlocal.NewNative())
	require.NoError(err)
	defer c.ThreadSpecificFini()

	for _, want := range []int64{10, 20} {
		got, err := c.SteadyTimeNow()
		require.NoError(err)
		require.Equal(want, got)
	}

	_, err = c.SteadyTimeNow()
	require.True(errors.Is(err, clockerr.ErrNonMonotonic), "%v", err)

	got, err := c.SteadyTimeNow()
	require.NoError(err, "equal readings are accepted")
	require.EqualValues(20, got)

	d, err := c.Since(10)
	require.NoError(err)
	require.EqualValues(20, d)
}

func TestClockSourceErrors(t *testing.T) {
	require := require.New(t)

	src := &scriptedSource{err: clockerr.New(clockerr.Overflow, "clocksource", "time value overflows")}
	c, err := New(src, threadlocal.NewNative())
	require.NoError(err)

	_, err = c.SystemTimeNow()
	require.True(errors.Is(err, clockerr.ErrOverflow), "%v", err)
	_, err = c.SteadyTimeNow()
	require.True(errors.Is(err, clockerr.ErrOverflow), "%v", err)
	_, err = c.Since(0)
	require.Error(err)
}

func TestNewInvalid(t *testing.T) {
	require := require.New(t)

	_, err := New(nil, threadlocal.NewNative())
	require.True(errors.Is(err, clockerr.ErrInvalidArgument), "%v", err)

	_, err = New(&scriptedSource{}, nil)
	require.True(errors.Is(err, clockerr.ErrInvalidArgument), "%v", err)
}

func TestThreadSpecificLifecycle(t *testing.T) {
	requireSanityChecks(t)
	require := require.New(t)

	src := &scriptedSource{steady: []int64{5, 6, 7}}
	c, err := New(src, threadlocal.NewKeyed())
	require.NoError(err)

	counting := allocator.NewCounting(allocator.Default())

	// Fini before Init is a no-op.
	require.NoError(c.ThreadSpecificFini())
	require.Zero(counting.Frees())

	require.NoError(c.ThreadSpecificInit(counting.Allocator()))
	require.NoError(c.ThreadSpecificInit(counting.Allocator()))
	require.EqualValues(1, counting.Allocs(), "init is idempotent")

	for range 3 {
		_, err = c.SteadyTimeNow()
		require.NoError(err)
	}
	require.EqualValues(1, counting.Allocs(), "reads after init do not allocate")

	require.NoError(c.ThreadSpecificFini())
	require.NoError(c.ThreadSpecificFini())
	require.EqualValues(1, counting.Frees())
	require.Zero(counting.Live())
}

func TestThreadSpecificBadAlloc(t *testing.T) {
	requireSanityChecks(t)
	require := require.New(t)

	c, err := New(&scriptedSource{}, threadlocal.NewKeyed())
	require.NoError(err)

	counting := allocator.NewCounting(allocator.Default())
	counting.SetFail(true)
	err = c.ThreadSpecificInit(counting.Allocator())
	require.True(errors.Is(err, clockerr.ErrBadAlloc), "%v", err)
	require.Equal(clockerr.BadAlloc, clockerr.KindOf(err))
}

func TestDisabledStorage(t *testing.T) {
	require := require.New(t)

	src := &scriptedSource{steady: []int64{30, 20, 10}}
	c, err := New(src, threadlocal.Disabled{})
	require.NoError(err)

	counting := allocator.NewCounting(allocator.Default())
	require.NoError(c.ThreadSpecificInit(counting.Allocator()))
	for _, want := range []int64{30, 20, 10} {
		got, err := c.SteadyTimeNow()
		require.NoError(err, "nothing to compare against")
		require.Equal(want, got)
	}
	require.NoError(c.ThreadSpecificFini())
	require.Zero(counting.Allocs())
}
