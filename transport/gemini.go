/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/tutoreval/retry"
	"google.golang.org/genai"
)

type geminiClient struct {
	client   *genai.Client
	model    string
	provider Provider
	opts     *options
}

func newGemini(ctx context.Context, cfg Config, o *options) (*geminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &geminiClient{client: client, model: cfg.Model, provider: Gemini, opts: o}, nil
}

func newGeminiVertex(ctx context.Context, cfg Config, o *options) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:    cfg.Project,
		Location:   cfg.Region,
		Backend:    genai.BackendVertexAI,
		HTTPClient: o.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex gemini client: %w", err)
	}
	return &geminiClient{client: client, model: cfg.Model, provider: Vertex, opts: o}, nil
}

func (c *geminiClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	start := time.Now()
	resp, err := retry.Do(ctx, c.opts.retry, "generate_content", isRetryableVertexError, func() (*genai.GenerateContentResponse, error) {
		return c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	})
	c.opts.metrics.RecordCallDuration(ctx, c.model, time.Since(start))
	if err != nil {
		return nil, &Error{Provider: c.provider, StatusCode: geminiStatus(err), Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Provider: c.provider, Err: ErrEmptyResponse}
	}

	out := &Response{Text: text, Model: c.model}
	if u := resp.UsageMetadata; u != nil {
		out.PromptTokens = int64(u.PromptTokenCount)
		out.CompletionTokens = int64(u.CandidatesTokenCount)
	}
	c.opts.metrics.RecordTokens(ctx, c.model, out.PromptTokens, out.CompletionTokens)
	return out, nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// isRetryableVertexError checks if an error is a retryable Gemini error.
// Returns true for rate limit, quota exhaustion, and transient server errors.
func isRetryableVertexError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Resource exhausted") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "Overloaded") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "quota exceeded") ||
		strings.Contains(errStr, "Internal error") ||
		strings.Contains(errStr, "server error")
}
