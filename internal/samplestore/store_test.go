// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package samplestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func TestStore(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "state", "anomalies.db")
	s, err := Open(path)
	require.NoError(err)

	n, err := s.Count()
	require.NoError(err)
	require.Zero(n)

	first := &Anomaly{
		Worker:   2,
		Clock:    "steady",
		Kind:     "non_monotonic",
		Message:  "monotime: non-monotonic steady time: 5 after 9",
		Previous: 9,
		When:     1700000000000000000,
	}
	seq, err := s.Record(first)
	require.NoError(err)
	require.EqualValues(1, seq)
	require.EqualValues(1, first.Seq)

	seq, err = s.Record(&Anomaly{Worker: 0, Clock: "system", Kind: "generic"})
	require.NoError(err)
	require.EqualValues(2, seq)
	require.NoError(s.Close())
	require.NoError(s.Close())

	_, err = s.Record(first)
	require.ErrorIs(err, ErrClosed)

	// Reopen, and check the anomalies survived.
	s, err = Open(path)
	require.NoError(err)
	defer s.Close()

	all, err := s.All()
	require.NoError(err)
	require.Len(all, 2)
	require.Equal(first, all[0])
	require.Equal("system", all[1].Clock)
	require.EqualValues(2, all[1].Seq)

	n, err = s.Count()
	require.NoError(err)
	require.Equal(2, n)
}

func TestIncompatibleVersion(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "anomalies.db")
	db, err := bolt.Open(path, 0600, nil)
	require.NoError(err)
	require.NoError(db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		return bkt.Put([]byte(versionKey), []byte{StorageVersion + 1})
	}))
	require.NoError(db.Close())

	_, err = Open(path)
	require.ErrorContains(err, "incompatible version")
}
