// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	f := filepath.Join(dir, "samples.db")

	ok, err := Exists(f)
	require.NoError(err)
	require.False(ok)

	require.NoError(os.WriteFile(f, []byte("x"), 0600))
	ok, err = Exists(f)
	require.NoError(err)
	require.True(ok)
}

func TestEnsureParentDir(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	f := filepath.Join(dir, "a", "b", "samples.db")
	require.NoError(EnsureParentDir(f, 0700))
	fi, err := os.Stat(filepath.Dir(f))
	require.NoError(err)
	require.True(fi.IsDir())
	require.NoError(EnsureParentDir(f, 0700))

	blocker := filepath.Join(dir, "file")
	require.NoError(os.WriteFile(blocker, nil, 0600))
	require.Error(EnsureParentDir(filepath.Join(blocker, "samples.db"), 0700))
}
