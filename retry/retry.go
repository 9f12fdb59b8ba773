/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry runs model calls with exponential backoff and jitter.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config controls how often and how patiently a call is retried.
type Config struct {
	// MaxRetries is the number of retries after the first attempt; 0 disables retrying.
	MaxRetries int `env:"MAX_RETRIES,default=3"`
	// BaseBackoff is the delay before the first retry; it doubles per attempt.
	BaseBackoff time.Duration `env:"BASE_BACKOFF,default=2s"`
	// MaxBackoff caps the doubled delay.
	MaxBackoff time.Duration `env:"MAX_BACKOFF,default=30s"`
	// MaxJitter bounds the random delay added to every backoff.
	MaxJitter time.Duration `env:"MAX_JITTER,default=500ms"`
}

// Validate rejects negative settings.
func (c Config) Validate() error {
	switch {
	case c.MaxRetries < 0:
		return errors.New("max retries cannot be negative")
	case c.BaseBackoff < 0:
		return errors.New("base backoff cannot be negative")
	case c.MaxBackoff < 0:
		return errors.New("max backoff cannot be negative")
	case c.MaxJitter < 0:
		return errors.New("max jitter cannot be negative")
	}
	return nil
}

// Default returns the settings used for gateway rate limits and overloads.
// Evaluation calls already run under a per-call deadline, so the budget is
// smaller than a quota-oriented policy would use.
func Default() Config {
	return Config{
		MaxRetries:  3,
		BaseBackoff: 2 * time.Second,
		MaxBackoff:  30 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// Backoff returns the delay before retry number attempt (0-based), without jitter.
func (c Config) Backoff(attempt int) time.Duration {
	if attempt > 30 {
		return c.MaxBackoff
	}
	return min(c.BaseBackoff<<attempt, c.MaxBackoff)
}

// Do calls fn until it succeeds, returns an error that isRetryable rejects,
// exhausts the retry budget, or ctx is done.
func Do[T any](ctx context.Context, cfg Config, operation string, isRetryable func(error) bool, fn func() (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			return result, nil
		}
		if !isRetryable(lastErr) || ctx.Err() != nil {
			return result, lastErr
		}
		if attempt == cfg.MaxRetries {
			break
		}

		wait := cfg.Backoff(attempt) + jitter(cfg.MaxJitter)
		clog.FromContext(ctx).With("operation", operation).
			With("attempt", attempt+1).
			With("max_retries", cfg.MaxRetries).
			With("backoff", wait).
			With("error", lastErr.Error()).
			Warn("Transient model error, retrying")

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(wait):
		}
	}
	return result, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}

func jitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}
