/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"strings"
	"time"

	"chainguard.dev/tutoreval/reportstore"
	"chainguard.dev/tutoreval/retry"
	"chainguard.dev/tutoreval/transport"
	"cloud.google.com/go/compute/metadata"
	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/oauth2/google"
)

type config struct {
	LLM   transport.Config
	Retry retry.Config `env:",prefix=LLM_"`
	Store reportstore.Config

	Concurrency int           `env:"EVAL_CONCURRENCY,default=4"`
	CallTimeout time.Duration `env:"EVAL_CALL_TIMEOUT,default=120s"`
	RunTimeout  time.Duration `env:"EVAL_RUN_TIMEOUT,default=15m"`

	// RubricDir holds additional rubric templates (*.yaml, *.yml, *.json).
	RubricDir string `env:"RUBRIC_DIR"`
	// MetricsFile receives Prometheus run metrics in text format.
	MetricsFile string `env:"METRICS_TEXTFILE"`
}

func loadConfig(ctx context.Context) (*config, error) {
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	if cfg.LLM.Provider == transport.Vertex {
		detectVertex(ctx, &cfg.LLM)
	}
	return &cfg, nil
}

// detectVertex fills in the Google Cloud project and region when they are
// not configured, from the metadata server or application default credentials.
func detectVertex(ctx context.Context, cfg *transport.Config) {
	log := clog.FromContext(ctx)

	if cfg.Project == "" {
		if metadata.OnGCE() {
			if projectID, err := metadata.ProjectIDWithContext(ctx); err == nil && projectID != "" {
				cfg.Project = projectID
			}
		}
		if cfg.Project == "" {
			creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
			if err == nil && creds.ProjectID != "" {
				cfg.Project = creds.ProjectID
			}
		}
		if cfg.Project != "" {
			log.With("project_id", cfg.Project).Info("Detected Google Cloud project")
		}
	}

	if cfg.Region == "" && metadata.OnGCE() {
		zone, err := metadata.ZoneWithContext(ctx)
		if err != nil {
			log.With("error", err).Warn("Failed to get zone from metadata")
			return
		}
		if i := strings.LastIndex(zone, "-"); i > 0 {
			cfg.Region = zone[:i]
			log.With("region", cfg.Region).Info("Detected Google Cloud region")
		}
	}
}

// newTransport creates the model transport; tests replace it.
var newTransport = func(ctx context.Context, cfg *config, opts ...transport.Option) (transport.Interface, error) {
	opts = append([]transport.Option{transport.WithRetry(cfg.Retry)}, opts...)
	return transport.New(ctx, cfg.LLM, opts...)
}
