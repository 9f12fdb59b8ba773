/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package reportstore persists evaluation reports as JSON documents on the
// local filesystem, in Google Cloud Storage or in an S3-compatible bucket.
//
// Persistence is a side effect of an evaluation, never a condition for it:
// Save logs and swallows every failure.
package reportstore

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"chainguard.dev/tutoreval/report"
	"chainguard.dev/tutoreval/verdict"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
)

// Store writes reports somewhere durable.
type Store interface {
	// Put writes r and returns where it was written.
	Put(ctx context.Context, r *verdict.Report) (string, error)
}

// Save writes r to s and returns its location, or "" when s is nil or the
// write failed. Failures are logged, not returned.
func Save(ctx context.Context, s Store, r *verdict.Report) string {
	if s == nil || r == nil {
		return ""
	}
	log := clog.FromContext(ctx).With("report_id", r.ID)
	loc, err := s.Put(ctx, r)
	if err != nil {
		log.With("error", err).Warn("Failed to persist report")
		return ""
	}
	log.With("location", loc).Info("Persisted report")
	return loc
}

// objectKey is the slash-separated name a report is stored under:
// <prefix>/reports/YYYY/MM/DD/<id>.json.
func objectKey(prefix string, r *verdict.Report) string {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	day := "undated"
	if !r.CreatedAt.IsZero() {
		day = r.CreatedAt.UTC().Format("2006/01/02")
	}
	return path.Join(prefix, "reports", day, id+".json")
}

func encode(r *verdict.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}
