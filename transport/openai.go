/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"chainguard.dev/tutoreval/retry"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIClient struct {
	client openai.Client
	model  string
	opts   *options
}

func newOpenAI(cfg Config, o *options) *openAIClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(normalizeBaseURL(cfg.BaseURL)),
		// Gateways in front of Azure-style deployments read the key from this header.
		option.WithHeader("api-key", cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	return &openAIClient{
		client: openai.NewClient(reqOpts...),
		model:  ResolveModel(cfg.Model),
		opts:   o,
	}
}

func (c *openAIClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	start := time.Now()
	resp, err := retry.Do(ctx, c.opts.retry, "chat_completion", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
		return c.client.Chat.Completions.New(ctx, params)
	})
	c.opts.metrics.RecordCallDuration(ctx, c.model, time.Since(start))
	if err != nil {
		return nil, &Error{Provider: OpenAI, StatusCode: openAIStatus(err), Err: err}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &Error{Provider: OpenAI, Err: ErrEmptyResponse}
	}

	c.opts.metrics.RecordTokens(ctx, c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return &Response{
		Text:             resp.Choices[0].Message.Content,
		Model:            c.model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func openAIStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// isRetryableOpenAIError reports rate limits and transient gateway failures.
func isRetryableOpenAIError(err error) bool {
	switch openAIStatus(err) {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
