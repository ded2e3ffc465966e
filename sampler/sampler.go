// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package sampler audits the process clocks by reading them from many
// goroutines at once, and recording every failed or suspicious reading.
package sampler

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gopkg.in/op/go-logging.v1"

	"github.com/katzenpost/clock/config"
	"github.com/katzenpost/clock/core/allocator"
	"github.com/katzenpost/clock/core/clockerr"
	"github.com/katzenpost/clock/core/monotime"
	"github.com/katzenpost/clock/core/nanotime"
	"github.com/katzenpost/clock/core/threadlocal"
	"github.com/katzenpost/clock/core/worker"
	"github.com/katzenpost/clock/internal/instrument"
	"github.com/katzenpost/clock/internal/samplestore"
)

const (
	systemClock = "system"
	steadyClock = "steady"

	// KindSystemRegression is the anomaly kind of a system clock reading
	// further in the past than the configured tolerance allows.
	KindSystemRegression = "system_regression"
)

// Recorder persists anomalies.
type Recorder interface {
	Record(a *samplestore.Anomaly) (uint64, error)
}

// Stats summarizes a sampling run.
type Stats struct {
	Readings  int64
	Anomalies int64
	Allocs    int64
	Frees     int64
}

// Sampler reads the clocks from a set of worker goroutines.
type Sampler struct {
	worker.Worker

	cfg   *config.Sampler
	clock *monotime.Clock
	rec   Recorder
	log   *logging.Logger

	allocators []*allocator.Counting

	readings  atomic.Int64
	anomalies atomic.Int64
}

// New returns a Sampler reading clock as configured by cfg.  Anomalies are
// handed to rec, which may be nil.
func New(cfg *config.Sampler, clock *monotime.Clock, rec Recorder, log *logging.Logger) (*Sampler, error) {
	if cfg == nil || clock == nil || log == nil {
		return nil, errors.New("sampler: missing config, clock or logger")
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("sampler: invalid number of workers: %d", cfg.Workers)
	}
	s := &Sampler{
		cfg:        cfg,
		clock:      clock,
		rec:        rec,
		log:        log,
		allocators: make([]*allocator.Counting, cfg.Workers),
	}
	for i := range s.allocators {
		s.allocators[i] = allocator.NewCounting(allocator.Default())
	}
	s.SetClock(clock)
	return s, nil
}

// Start launches the sampling goroutines.
func (s *Sampler) Start() {
	s.log.Noticef("Starting %d samplers (%s storage, %d samples each).", s.cfg.Workers, s.clock.Storage().Name(), s.cfg.Samples)
	for i := range s.allocators {
		id := i
		s.Go(func() {
			s.sample(id)
		})
	}
}

// Run samples until every goroutine has taken its readings, and returns the
// run's statistics.
func (s *Sampler) Run() Stats {
	s.Start()
	s.Wait()
	return s.Stats()
}

// Stats returns the statistics gathered so far.
func (s *Sampler) Stats() Stats {
	st := Stats{
		Readings:  s.readings.Load(),
		Anomalies: s.anomalies.Load(),
	}
	for _, a := range s.allocators {
		st.Allocs += a.Allocs()
		st.Frees += a.Frees()
	}
	return st
}

func (s *Sampler) sample(id int) {
	instrument.SamplerStarted()
	defer instrument.SamplerStopped()

	if err := s.clock.ThreadSpecificInit(s.allocators[id].Allocator()); err != nil {
		s.anomaly(id, steadyClock, err, threadlocal.Sentinel)
		return
	}

	interval := time.Duration(nanotime.MsToNs(int64(s.cfg.IntervalMillis)))
	tolerance := nanotime.MsToNs(int64(s.cfg.SystemToleranceMillis))
	lastSteady := threadlocal.Sentinel
	var lastSystem int64
	for i := 0; i < s.cfg.Samples; i++ {
		select {
		case <-s.HaltCh():
			return
		default:
		}

		if now, err := s.clock.SteadyTimeNow(); err != nil {
			s.anomaly(id, steadyClock, err, lastSteady)
		} else {
			s.readings.Add(1)
			lastSteady = now
		}

		if now, err := s.clock.SystemTimeNow(); err != nil {
			s.anomaly(id, systemClock, err, lastSystem)
		} else {
			s.readings.Add(1)
			if lastSystem != 0 && lastSystem-now > tolerance {
				s.record(&samplestore.Anomaly{
					Worker:   id,
					Clock:    systemClock,
					Kind:     KindSystemRegression,
					Message:  fmt.Sprintf("system time stepped back %s", time.Duration(lastSystem-now)),
					Previous: lastSystem,
				})
			}
			lastSystem = now
		}

		if interval > 0 {
			select {
			case <-s.HaltCh():
				return
			case <-time.After(interval):
			}
		}
	}
}

func (s *Sampler) anomaly(id int, clock string, err error, previous int64) {
	s.record(&samplestore.Anomaly{
		Worker:   id,
		Clock:    clock,
		Kind:     clockerr.KindOf(err).String(),
		Message:  err.Error(),
		Previous: previous,
	})
}

func (s *Sampler) record(a *samplestore.Anomaly) {
	s.anomalies.Add(1)
	if when, err := s.clock.SystemTimeNow(); err == nil {
		a.When = when
	}
	s.log.Warningf("Worker %d: %s clock anomaly (%s): %s", a.Worker, a.Clock, a.Kind, a.Message)

	if s.rec == nil {
		return
	}
	if _, err := s.rec.Record(a); err != nil {
		s.log.Errorf("Failed to record anomaly: %v", err)
		return
	}
	instrument.AnomalyRecorded()
}
