// SPDX-FileCopyrightText: Copyright (C) 2026 The Katzenpost Authors
// SPDX-License-Identifier: AGPL-3.0-only

// Package utils provides file system helpers.
package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Exists returns true iff f exists.  Errors other than the file not existing
// are returned as is.
func Exists(f string) (bool, error) {
	_, err := os.Stat(f)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// EnsureParentDir creates the directory containing f if it does not exist
// yet, and checks that it is a directory.
func EnsureParentDir(f string, mode os.FileMode) error {
	dir := filepath.Dir(f)
	fi, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(dir, mode)
	}
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("utils: %v is not a directory", dir)
	}
	return nil
}
