/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package reportstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"chainguard.dev/tutoreval/verdict"
)

// File stores reports below a local directory.
type File struct {
	dir string
}

var _ Store = (*File)(nil)

// NewFile returns a Store rooted at dir. The directory is created on first write.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("report directory is required")
	}
	return &File{dir: dir}, nil
}

// Put implements Store.
func (f *File) Put(_ context.Context, r *verdict.Report) (string, error) {
	data, err := encode(r)
	if err != nil {
		return "", err
	}
	name := filepath.Join(f.dir, filepath.FromSlash(objectKey("", r)))
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// Write then rename so readers never see a partial report.
	tmp := name + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}
	return name, nil
}
