// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package ntpcheck measures the offset of the process system clock from an
// NTP server.
package ntpcheck

import (
	"errors"
	"fmt"
	"time"

	"github.com/beevik/ntp"

	"github.com/katzenpost/clock/config"
	"github.com/katzenpost/clock/core/monotime"
	"github.com/katzenpost/clock/core/nanotime"
)

// ErrOffsetExceeded is returned when the system clock is further from the
// server's clock than tolerated.
var ErrOffsetExceeded = errors.New("ntpcheck: system clock offset exceeds tolerance")

// QueryFunc queries an NTP server.
type QueryFunc func(server string, opts ntp.QueryOptions) (*ntp.Response, error)

// Result is the outcome of a check.
type Result struct {
	Server  string
	Stratum uint8

	// Offset is how far the system clock is behind the server's clock.
	Offset time.Duration

	// RTT is the round trip time reported by the server exchange.
	RTT time.Duration

	// Elapsed is the steady time the query took locally.
	Elapsed time.Duration

	// System is the system time read once the response was received.
	System monotime.TimePoint
}

// Checker queries an NTP server, and compares its time to the process
// system clock.
type Checker struct {
	cfg   *config.NTP
	clock *monotime.Clock
	query QueryFunc
}

// New returns a Checker.
func New(cfg *config.NTP, clock *monotime.Clock) *Checker {
	return &Checker{
		cfg:   cfg,
		clock: clock,
		query: ntp.QueryWithOptions,
	}
}

// Check queries the server once.  A result is returned along with
// ErrOffsetExceeded if the offset is out of tolerance.
func (c *Checker) Check() (*Result, error) {
	start, err := c.clock.SteadyTimeNow()
	if err != nil {
		return nil, err
	}

	opts := ntp.QueryOptions{
		Timeout: time.Duration(nanotime.MsToNs(int64(c.cfg.TimeoutMillis))),
	}
	resp, err := c.query(c.cfg.Server, opts)
	if err != nil {
		return nil, fmt.Errorf("ntpcheck: query to %v failed: %w", c.cfg.Server, err)
	}
	if err = resp.Validate(); err != nil {
		return nil, fmt.Errorf("ntpcheck: invalid response from %v: %w", c.cfg.Server, err)
	}

	elapsed, err := c.clock.Since(start)
	if err != nil {
		return nil, err
	}
	system, err := c.clock.SystemTimeNow()
	if err != nil {
		return nil, err
	}

	r := &Result{
		Server:  c.cfg.Server,
		Stratum: resp.Stratum,
		Offset:  resp.ClockOffset,
		RTT:     resp.RTT,
		Elapsed: time.Duration(elapsed),
		System:  system,
	}

	tolerance := time.Duration(nanotime.MsToNs(int64(c.cfg.MaxOffsetMillis)))
	if r.Offset > tolerance || r.Offset < -tolerance {
		return r, fmt.Errorf("%w: %v > %v", ErrOffsetExceeded, r.Offset.Abs(), tolerance)
	}
	return r, nil
}
