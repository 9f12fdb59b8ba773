/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judge scores a transcript on a single rubric criterion: it renders
// the grounded prompt, asks the model and interprets the reply.
package judge

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/tutoreval/interpret"
	"chainguard.dev/tutoreval/prompts"
	"chainguard.dev/tutoreval/rubric"
	"chainguard.dev/tutoreval/transport"
	"github.com/chainguard-dev/clog"
)

// Request contains the criterion to score and its grounding material.
type Request struct {
	Criterion rubric.Criterion
	Inputs    prompts.Inputs
}

// Interface scores one criterion.
//
// Errors wrap prompts.ErrMissingGrounding when no call was made, are a
// *interpret.ParseFailure when the reply could not be decoded, and otherwise
// come from the transport.
type Interface interface {
	Judge(ctx context.Context, request *Request) (*interpret.Judgment, error)
}

type judge struct {
	transport   transport.Interface
	system      string
	temperature float64
	maxTokens   int64
}

// Option configures a judge.
type Option func(*judge) error

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(j *judge) error {
		if t < 0 || t > 2 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", t)
		}
		j.temperature = t
		return nil
	}
}

// WithMaxTokens sets the reply token limit.
func WithMaxTokens(n int64) Option {
	return func(j *judge) error {
		if n <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", n)
		}
		j.maxTokens = n
		return nil
	}
}

// WithSystemPrompt replaces the evaluator persona.
func WithSystemPrompt(s string) Option {
	return func(j *judge) error {
		j.system = s
		return nil
	}
}

// New creates a judge that calls t.
func New(t transport.Interface, opts ...Option) (Interface, error) {
	if t == nil {
		return nil, errors.New("transport cannot be nil")
	}
	j := &judge{
		transport:   t,
		system:      prompts.SystemPrompt,
		temperature: prompts.Temperature,
		maxTokens:   prompts.MaxTokens,
	}
	for _, opt := range opts {
		if err := opt(j); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return j, nil
}

// Judge implements Interface.
func (j *judge) Judge(ctx context.Context, request *Request) (*interpret.Judgment, error) {
	c := request.Criterion
	log := clog.FromContext(ctx).With("dimension", c.Dimension).With("sub_dimension", c.SubDimension)

	prompt, err := prompts.Build(c, request.Inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	resp, err := j.transport.Complete(ctx, &transport.Request{
		System:      j.system,
		Prompt:      prompt,
		Temperature: j.temperature,
		MaxTokens:   j.maxTokens,
	})
	if err != nil {
		return nil, err
	}
	log.With("prompt_tokens", resp.PromptTokens).
		With("completion_tokens", resp.CompletionTokens).
		Debug("Model replied")

	judgment, err := interpret.Parse(resp.Text)
	if err != nil {
		return nil, err
	}
	judgment.Dimension = c.Dimension
	judgment.SubDimension = c.SubDimension
	judgment.FullScore = c.FullScore
	judgment.Clamp()
	return judgment, nil
}
