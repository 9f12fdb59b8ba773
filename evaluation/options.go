/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"errors"
	"fmt"
	"time"

	"chainguard.dev/tutoreval/judge"
	"chainguard.dev/tutoreval/metrics"
	"chainguard.dev/tutoreval/verdict"
)

// Option configures an Evaluator.
type Option func(*Evaluator) error

// WithPolicy sets the aggregation policy.
func WithPolicy(p *verdict.Policy) Option {
	return func(e *Evaluator) error {
		if p == nil {
			return errors.New("policy cannot be nil")
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid policy: %w", err)
		}
		e.policy = p
		return nil
	}
}

// WithConcurrency bounds the number of sub-dimensions judged at once.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		e.concurrency = n
		return nil
	}
}

// WithCallTimeout bounds each model call, retries included.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Evaluator) error {
		if d <= 0 {
			return fmt.Errorf("call timeout must be positive, got %v", d)
		}
		e.callTimeout = d
		return nil
	}
}

// WithRunTimeout bounds a whole evaluation run.
func WithRunTimeout(d time.Duration) Option {
	return func(e *Evaluator) error {
		if d <= 0 {
			return fmt.Errorf("run timeout must be positive, got %v", d)
		}
		e.runTimeout = d
		return nil
	}
}

// WithModel records the model name on reports.
func WithModel(name string) Option {
	return func(e *Evaluator) error {
		e.model = name
		return nil
	}
}

// WithJudgeOptions passes options to the underlying judge.
func WithJudgeOptions(opts ...judge.Option) Option {
	return func(e *Evaluator) error {
		e.judgeOpts = append(e.judgeOpts, opts...)
		return nil
	}
}

// WithAttributeEnricher adds attributes to the judgment metrics.
func WithAttributeEnricher(enricher metrics.AttributeEnricher) Option {
	return func(e *Evaluator) error {
		e.genai.SetAttributeEnricher(enricher)
		return nil
	}
}
