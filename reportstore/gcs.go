/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package reportstore

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/tutoreval/verdict"
	"cloud.google.com/go/storage"
)

// GCS stores reports as objects in a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ Store = (*GCS)(nil)

// NewGCS returns a Store writing to bucket under prefix.
func NewGCS(client *storage.Client, bucket, prefix string) (*GCS, error) {
	if client == nil {
		return nil, errors.New("storage client cannot be nil")
	}
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// Put implements Store.
func (g *GCS) Put(ctx context.Context, r *verdict.Report) (string, error) {
	data, err := encode(r)
	if err != nil {
		return "", err
	}
	key := objectKey(g.prefix, r)

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write gs://%s/%s: %w", g.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gs://%s/%s: %w", g.bucket, key, err)
	}
	return fmt.Sprintf("gs://%s/%s", g.bucket, key), nil
}
