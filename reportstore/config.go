/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package reportstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Backend names a Store implementation.
type Backend string

const (
	BackendNone Backend = "none"
	BackendFile Backend = "file"
	BackendGCS  Backend = "gcs"
	BackendS3   Backend = "s3"
)

// ErrUnsupportedBackend is returned by Open for an unknown backend name.
var ErrUnsupportedBackend = errors.New("unsupported report store backend")

// Config selects and configures the report store.
type Config struct {
	Backend Backend `env:"REPORT_STORE,default=none"`
	// Dir is the root of the file backend.
	Dir string `env:"REPORT_DIR,default=reports"`
	// GCSBucket and GCSPrefix locate the gcs backend.
	GCSBucket string `env:"GCS_BUCKET"`
	GCSPrefix string `env:"GCS_PREFIX"`

	S3 S3Config
}

// Open builds the Store described by cfg. BackendNone yields a nil Store,
// which Save treats as a no-op.
func Open(ctx context.Context, cfg Config, gcsOpts ...option.ClientOption) (Store, error) {
	switch cfg.Backend {
	case BackendNone, "":
		return nil, nil
	case BackendFile:
		f, err := NewFile(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return f, nil
	case BackendGCS:
		if cfg.GCSBucket == "" {
			return nil, errors.New("GCS_BUCKET is required for the gcs backend")
		}
		client, err := storage.NewClient(ctx, gcsOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		g, err := NewGCS(client, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			return nil, err
		}
		return g, nil
	case BackendS3:
		s, err := NewS3(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}
