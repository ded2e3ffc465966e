// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package samplestore persists clock anomalies observed by the sampler.
package samplestore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/katzenpost/clock/core/utils"
)

const (
	// StorageVersion is the version of our on disk format.
	StorageVersion = 0

	metadataBucket  = "metadata"
	versionKey      = "version"
	anomaliesBucket = "anomalies"
)

// ErrClosed is returned when using a closed Store.
var ErrClosed = errors.New("samplestore: store is closed")

// Anomaly is a clock reading that failed.
type Anomaly struct {
	// Seq is the position of the anomaly in the store, assigned by Record.
	Seq uint64 `cbor:"-"`

	// Worker is the index of the sampling goroutine.
	Worker int

	// Clock is the clock that was read, "system" or "steady".
	Clock string

	// Kind is the error kind of the failed reading.
	Kind string

	// Message is the error message.
	Message string

	// Previous is the last steady time accepted on the goroutine, if known.
	Previous int64

	// When is the system time the anomaly was recorded at, in nanoseconds
	// since the Unix epoch, or zero if the system clock failed too.
	When int64
}

// Store is a bbolt backed anomaly log.
type Store struct {
	db *bolt.DB
}

// Open opens the store at path, creating it as needed.
func Open(path string) (*Store, error) {
	if err := utils.EnsureParentDir(path, 0700); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bolt.Tx) error {
		metaBucket, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		if _, err = tx.CreateBucketIfNotExists([]byte(anomaliesBucket)); err != nil {
			return err
		}

		if b := metaBucket.Get([]byte(versionKey)); b != nil {
			if len(b) != 1 || b[0] != StorageVersion {
				return fmt.Errorf("samplestore: incompatible version: %d", uint(b[0]))
			}
			return nil
		}
		return metaBucket.Put([]byte(versionKey), []byte{StorageVersion})
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Record appends a to the store, and returns its sequence number.
func (s *Store) Record(a *Anomaly) (uint64, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	raw, err := cbor.Marshal(a)
	if err != nil {
		return 0, err
	}

	var seq uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(anomaliesBucket))
		if seq, err = bkt.NextSequence(); err != nil {
			return err
		}
		var k [8]byte
		binary.BigEndian.PutUint64(k[:], seq)
		return bkt.Put(k[:], raw)
	})
	if err != nil {
		return 0, err
	}
	a.Seq = seq
	return seq, nil
}

// All returns every recorded anomaly in the order recorded.
func (s *Store) All() ([]*Anomaly, error) {
	if s.db == nil {
		return nil, ErrClosed
	}

	var anomalies []*Anomaly
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(anomaliesBucket)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(k) != 8 {
				return fmt.Errorf("samplestore: malformed key: %x", k)
			}
			a := new(Anomaly)
			if err := cbor.Unmarshal(v, a); err != nil {
				return err
			}
			a.Seq = binary.BigEndian.Uint64(k)
			anomalies = append(anomalies, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return anomalies, nil
}

// Count returns the number of recorded anomalies.
func (s *Store) Count() (int, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(anomaliesBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
