// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build noprometheus

package instrument

import "gopkg.in/op/go-logging.v1"

// Init does nothing
func Init(address string, log *logging.Logger) {}

// Reading increments the counter of successful readings of clock
func Reading(clock string) {}

// Failure increments the counter of failed readings of clock
func Failure(clock, kind string) {}

// AnomalyRecorded increments the counter of persisted anomalies
func AnomalyRecorded() {}

// SamplerStarted increments the number of active samplers
func SamplerStarted() {}

// SamplerStopped decrements the number of active samplers
func SamplerStopped() {}
