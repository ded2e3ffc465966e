// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package threadlocal

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/katzenpost/clock/core/allocator"
	"github.com/katzenpost/clock/core/clockerr"
)

// maxKeys bounds the number of keys a process may create.
const maxKeys = 1024

// cellSize is the size of the allocated timestamp storage.
const cellSize = 8

var keysCreated atomic.Int32

// cell is the storage for one goroutine's timestamp.  It remembers the
// allocator that produced it, so that it is released with the matching
// deallocator.
type cell struct {
	mem       []byte
	allocator allocator.Allocator
}

func (c *cell) timestamp() int64 {
	return int64(binary.LittleEndian.Uint64(c.mem))
}

func (c *cell) setTimestamp(v int64) {
	binary.LittleEndian.PutUint64(c.mem, uint64(v))
}

func freeCell(c *cell) {
	c.allocator.Deallocate(c.mem, c.allocator.State)
}

// key associates a value with each goroutine.  The destructor is run on a
// goroutine's value when it is destroyed.
type key struct {
	values     *xsync.MapOf[int64, *cell]
	destructor func(*cell)
}

func newKey(destructor func(*cell)) (*key, error) {
	if keysCreated.Add(1) > maxKeys {
		keysCreated.Add(-1)
		return nil, clockerr.New(clockerr.Generic, op, "the process-wide limit on the number of keys has been exceeded")
	}
	return &key{
		values:     xsync.NewMapOf[int64, *cell](),
		destructor: destructor,
	}, nil
}

func (k *key) get(gid int64) *cell {
	c, _ := k.values.Load(gid)
	return c
}

func (k *key) set(gid int64, c *cell) {
	if c == nil {
		k.values.Delete(gid)
		return
	}
	k.values.Store(gid, c)
}

// Keyed is a Storage backed by cells allocated on first use, one per
// goroutine, registered under a process-wide key that is created exactly
// once.
type Keyed struct {
	keyOnce sync.Once
	key     *key
	keyErr  error
}

// NewKeyed returns a new Keyed storage.
func NewKeyed() *Keyed {
	return new(Keyed)
}

// Name implements Storage.
func (s *Keyed) Name() string { return "keyed" }

func (s *Keyed) makeKey() {
	s.key, s.keyErr = newKey(freeCell)
}

// EnsureInitialized implements Storage.  The cell is allocated with a, and
// will be released with a's deallocator.
func (s *Keyed) EnsureInitialized(a allocator.Allocator) error {
	s.keyOnce.Do(s.makeKey)
	if s.keyErr != nil {
		// Failure of the one time key creation is cached.
		return s.keyErr
	}

	gid := goroutineID()
	if s.key.get(gid) != nil {
		return nil
	}

	if !a.IsValid() {
		return clockerr.New(clockerr.InvalidArgument, op, "invalid allocator")
	}
	mem := a.Allocate(cellSize, a.State)
	if len(mem) < cellSize {
		if mem != nil {
			a.Deallocate(mem, a.State)
		}
		return clockerr.New(clockerr.BadAlloc, op, "failed to allocate thread-local storage for last steady timestamp")
	}

	c := &cell{
		mem:       mem[:cellSize],
		allocator: a,
	}
	c.setTimestamp(Sentinel)
	s.key.set(gid, c)
	return nil
}

func (s *Keyed) cell() (*cell, error) {
	if err := s.EnsureInitialized(allocator.Default()); err != nil {
		return nil, err
	}
	c := s.key.get(goroutineID())
	if c == nil {
		return nil, clockerr.New(clockerr.Generic, op, "getspecific: unexpectedly returned nil")
	}
	return c, nil
}

// Get implements Storage.
func (s *Keyed) Get() (int64, error) {
	c, err := s.cell()
	if err != nil {
		return 0, err
	}
	return c.timestamp(), nil
}

// Set implements Storage.
func (s *Keyed) Set(v int64) error {
	c, err := s.cell()
	if err != nil {
		return err
	}
	c.setTimestamp(v)
	return nil
}

// Destroy frees the calling goroutine's cell with the allocator it was
// created with, and dissociates it from the key.  A later call to
// EnsureInitialized may use a different allocator.
func (s *Keyed) Destroy() error {
	s.keyOnce.Do(s.makeKey)
	if s.keyErr != nil {
		// No key, so there can not be a cell.
		return nil
	}

	gid := goroutineID()
	c := s.key.get(gid)
	if c == nil {
		return nil
	}
	s.key.set(gid, nil)
	s.key.destructor(c)
	return nil
}

// Len returns the number of goroutines holding a cell.
func (s *Keyed) Len() int {
	s.keyOnce.Do(s.makeKey)
	if s.keyErr != nil {
		return 0
	}
	return s.key.values.Size()
}
