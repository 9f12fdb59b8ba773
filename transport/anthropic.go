/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"errors"
	"strings"
	"time"

	"chainguard.dev/tutoreval/retry"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
)

// defaultAnthropicMaxTokens is used when a request leaves MaxTokens unset;
// the Messages API requires a value.
const defaultAnthropicMaxTokens = 4096

type anthropicClient struct {
	client   anthropic.Client
	model    string
	provider Provider
	opts     *options
}

func newAnthropic(cfg Config, o *options) *anthropicClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	return &anthropicClient{
		client:   anthropic.NewClient(reqOpts...),
		model:    cfg.Model,
		provider: Anthropic,
		opts:     o,
	}
}

func newAnthropicVertex(ctx context.Context, cfg Config, o *options) *anthropicClient {
	return &anthropicClient{
		client: anthropic.NewClient(
			vertex.WithGoogleAuth(ctx, cfg.Region, cfg.Project),
			option.WithMaxRetries(0),
		),
		model:    cfg.Model,
		provider: Vertex,
		opts:     o,
	}
}

func (c *anthropicClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	start := time.Now()
	msg, err := retry.Do(ctx, c.opts.retry, "create_message", isRetryableClaudeError, func() (*anthropic.Message, error) {
		return c.client.Messages.New(ctx, params)
	})
	c.opts.metrics.RecordCallDuration(ctx, c.model, time.Since(start))
	if err != nil {
		return nil, &Error{Provider: c.provider, StatusCode: claudeStatus(err), Err: err}
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, &Error{Provider: c.provider, Err: ErrEmptyResponse}
	}

	c.opts.metrics.RecordTokens(ctx, c.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)
	return &Response{
		Text:             text.String(),
		Model:            c.model,
		PromptTokens:     msg.Usage.InputTokens,
		CompletionTokens: msg.Usage.OutputTokens,
	}, nil
}

func claudeStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// isRetryableClaudeError reports rate limit, overloaded and transient server errors.
func isRetryableClaudeError(err error) bool {
	switch claudeStatus(err) {
	case 429, 503, 504, 529:
		return true
	}
	return false
}
