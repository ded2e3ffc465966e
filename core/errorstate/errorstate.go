// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package errorstate records the most recent failure reported by the clock
// subsystem, along with the call site that reported it, so that callers can
// retrieve context after an error return.
package errorstate

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
)

// State is a recorded failure.
type State struct {
	Message string
	File    string
	Line    int
}

// String renders the state as "message, at file:line".
func (s State) String() string {
	if s.File == "" {
		return s.Message
	}
	return fmt.Sprintf("%s, at %s:%d", s.Message, s.File, s.Line)
}

var (
	mu    sync.Mutex
	state State
	isSet bool
)

// Set records msg as the current error, attributed to the caller of Set.
func Set(msg string) {
	SetDepth(1, msg)
}

// SetDepth records msg as the current error, attributed to the caller depth
// frames above the caller of SetDepth.
func SetDepth(depth int, msg string) {
	s := State{Message: msg}
	if _, file, line, ok := runtime.Caller(depth + 1); ok {
		s.File = filepath.Base(file)
		s.Line = line
	}

	mu.Lock()
	defer mu.Unlock()
	state = s
	isSet = true
}

// Get returns the current error, if any.
func Get() (State, bool) {
	mu.Lock()
	defer mu.Unlock()
	return state, isSet
}

// IsSet returns true iff an error is recorded.
func IsSet() bool {
	mu.Lock()
	defer mu.Unlock()
	return isSet
}

// String returns the current error rendered as a string, or "error not set".
func String() string {
	s, ok := Get()
	if !ok {
		return "error not set"
	}
	return s.String()
}

// Reset clears the current error.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	state = State{}
	isSet = false
}
