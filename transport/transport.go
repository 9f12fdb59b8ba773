/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package transport sends single-turn prompts to a language model.
//
// Three families of endpoints are supported behind one Interface:
//
//   - OpenAI-compatible chat completion gateways (the default), including
//     gateways that authenticate with an "api-key" header;
//   - Anthropic, either directly or through Vertex AI;
//   - Gemini, either through the Gemini API or Vertex AI.
//
// Every implementation retries rate limits and overloads with backoff,
// records token usage and latency, and reports failures as *Error.
package transport

import (
	"context"
	"errors"
	"fmt"
)

// Interface completes one prompt.
type Interface interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Request is a single system + user exchange.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int64
}

// Response is the model's text reply.
type Response struct {
	Text             string
	Model            string
	PromptTokens     int64
	CompletionTokens int64
}

// ErrEmptyResponse is returned when the model answered without any text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Error is a failed model call. StatusCode is 0 when no HTTP response was received.
type Error struct {
	Provider   Provider
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s call failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
