// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package clockerr defines the failures reported by the clock subsystem.
package clockerr

import (
	"errors"

	"github.com/katzenpost/clock/core/errorstate"
)

// Kind classifies a failure.
type Kind int

const (
	// Generic is an unexpected failure of an OS primitive, or a value the
	// clocks never legitimately produce.
	Generic Kind = iota

	// InvalidArgument is a required argument that was not provided.
	InvalidArgument

	// Overflow is a conversion that would exceed the int64 nanosecond range.
	Overflow

	// NonMonotonic is a steady time reading older than one already accepted
	// on the calling goroutine.
	NonMonotonic

	// BadAlloc is a failure to allocate goroutine local storage.
	BadAlloc
)

// String returns the name of the Kind.
func (k Kind) String() string {
	switch k {
	case Generic:
		return "generic"
	case InvalidArgument:
		return "invalid_argument"
	case Overflow:
		return "overflow"
	case NonMonotonic:
		return "non_monotonic"
	case BadAlloc:
		return "bad_alloc"
	default:
		return "unknown"
	}
}

// Error is a clock subsystem failure.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return e.Op + ": " + e.Msg
}

// Is matches any error of the same Kind when target is one of the sentinel
// errors exported by this package.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op == "" && t.Msg == "" {
		return t.Kind == e.Kind
	}
	return *t == *e
}

// Sentinels for use with errors.Is.
var (
	ErrGeneric         = &Error{Kind: Generic}
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrOverflow        = &Error{Kind: Overflow}
	ErrNonMonotonic    = &Error{Kind: NonMonotonic}
	ErrBadAlloc        = &Error{Kind: BadAlloc}
)

// New returns a new Error, and records msg with the error state, attributed
// to the caller of New.
func New(kind Kind, op, msg string) *Error {
	errorstate.SetDepth(1, msg)
	return &Error{
		Kind: kind,
		Op:   op,
		Msg:  msg,
	}
}

// KindOf returns the Kind of err, or Generic if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Generic
}
