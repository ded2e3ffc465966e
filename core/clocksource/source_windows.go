// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package clocksource

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/katzenpost/clock/core/clockerr"
	"github.com/katzenpost/clock/core/nanotime"
)

var (
	kernel32                      = windows.NewLazySystemDLL("kernel32.dll")
	procQueryPerformanceCounter   = kernel32.NewProc("QueryPerformanceCounter")
	procQueryPerformanceFrequency = kernel32.NewProc("QueryPerformanceFrequency")
)

var platform Source = new(windowsSource)

type windowsSource struct {
	freqOnce sync.Once
	freq     int64
	freqErr  error
}

func (s *windowsSource) Name() string {
	return "windows"
}

func (s *windowsSource) SystemTime() (int64, error) {
	var ft windows.Filetime
	windows.GetSystemTimePreciseAsFileTime(&ft)
	ticks := int64(ft.HighDateTime)<<32 | int64(ft.LowDateTime)
	return nanotime.FromFileTime(ticks)
}

func (s *windowsSource) SteadyTime() (int64, error) {
	// The counter frequency is fixed at boot.
	s.freqOnce.Do(func() {
		s.freq, s.freqErr = queryInt64(procQueryPerformanceFrequency)
	})
	if s.freqErr != nil {
		return 0, s.freqErr
	}

	count, err := queryInt64(procQueryPerformanceCounter)
	if err != nil {
		return 0, err
	}
	return nanotime.FromPerformanceCounter(count, s.freq)
}

// queryInt64 calls a kernel32 routine filling in a single LARGE_INTEGER,
// which reports failure by returning zero.
func queryInt64(proc *windows.LazyProc) (int64, error) {
	if err := proc.Find(); err != nil {
		return 0, clockerr.New(clockerr.Generic, op, fmt.Sprintf("%s: %v", proc.Name, err))
	}
	var v int64
	r1, _, e1 := proc.Call(uintptr(unsafe.Pointer(&v)))
	if r1 == 0 {
		return 0, clockerr.New(clockerr.Generic, op, fmt.Sprintf("%s: %v", proc.Name, e1))
	}
	return v, nil
}
