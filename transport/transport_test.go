/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/tutoreval/retry"
	"github.com/google/go-cmp/cmp"
)

func fastRetry() Option {
	return WithRetry(retry.Config{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{{
		name: "openai complete",
		cfg:  Config{Provider: OpenAI, APIKey: "k", BaseURL: "https://gw/v1", Model: "gpt-4o"},
	}, {
		name: "empty provider defaults to openai",
		cfg:  Config{APIKey: "k", Model: "gpt-4o"},
		want: ErrMissingBaseURL,
	}, {
		name: "openai without key",
		cfg:  Config{Provider: OpenAI, BaseURL: "https://gw/v1", Model: "gpt-4o"},
		want: ErrMissingAPIKey,
	}, {
		name: "missing model",
		cfg:  Config{Provider: OpenAI, APIKey: "k", BaseURL: "https://gw/v1"},
		want: ErrMissingModel,
	}, {
		name: "anthropic needs only a key",
		cfg:  Config{Provider: Anthropic, APIKey: "k", Model: "claude-sonnet-4-5"},
	}, {
		name: "gemini without key",
		cfg:  Config{Provider: Gemini, Model: "gemini-2.5-pro"},
		want: ErrMissingAPIKey,
	}, {
		name: "vertex complete",
		cfg:  Config{Provider: Vertex, Project: "p", Region: "us-east5", Model: "claude-sonnet-4@20250514"},
	}, {
		name: "vertex without project",
		cfg:  Config{Provider: Vertex, Region: "us-east5", Model: "gemini-2.5-pro"},
		want: ErrMissingProject,
	}, {
		name: "vertex with unroutable model",
		cfg:  Config{Provider: Vertex, Project: "p", Region: "us-east5", Model: "gpt-4o"},
		want: ErrUnsupportedProvider,
	}, {
		name: "unknown provider",
		cfg:  Config{Provider: "bedrock", APIKey: "k", Model: "m"},
		want: ErrUnsupportedProvider,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.want) || (tt.want == nil && err != nil) {
				t.Errorf("Validate(): got = %v, wanted = %v", err, tt.want)
			}
		})
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "claude-sonnet-4.5", want: "Claude Sonnet 4.5"},
		{in: " Claude-Haiku-4.5 ", want: "Claude Haiku 4.5"},
		{in: "gpt-4.1-mini", want: "gpt-4.1-mini"},
		{in: "gemini-2.5-pro", want: "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		if got := ResolveModel(tt.in); got != tt.want {
			t.Errorf("ResolveModel(%q): got = %q, wanted = %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "http://llm.example.com/api/openai/v1/chat/completions", want: "http://llm.example.com/api/openai/v1/"},
		{in: "http://llm.example.com/api/openai/v1/", want: "http://llm.example.com/api/openai/v1/"},
		{in: "https://api.openai.com/v1", want: "https://api.openai.com/v1/"},
	}
	for _, tt := range tests {
		if got := normalizeBaseURL(tt.in); got != tt.want {
			t.Errorf("normalizeBaseURL(%q): got = %q, wanted = %q", tt.in, got, tt.want)
		}
	}
}

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestOpenAIComplete(t *testing.T) {
	var (
		calls atomic.Int32
		got   chatRequest
		key   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/openai/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error": {"message": "slow down", "type": "rate_limit"}}`)
			return
		}
		key = r.Header.Get("api-key")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "c1", "object": "chat.completion", "created": 1, "model": "Claude Sonnet 4.5",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"score\": 8}"}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 12, "total_tokens": 132}}`)
	}))
	defer srv.Close()

	tr, err := New(context.Background(), Config{
		Provider: OpenAI,
		APIKey:   "secret",
		BaseURL:  srv.URL + "/api/openai/v1/chat/completions",
		Model:    "claude-sonnet-4.5",
	}, fastRetry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := tr.Complete(context.Background(), &Request{System: "sys", Prompt: "grade this", Temperature: 0.3, MaxTokens: 4000})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	want := &Response{Text: `{"score": 8}`, Model: "Claude Sonnet 4.5", PromptTokens: 120, CompletionTokens: 12}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("Complete() mismatch (-want +got):\n%s", diff)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls: got = %d, wanted = 2", n)
	}
	if key != "secret" {
		t.Errorf("api-key header: got = %q, wanted = %q", key, "secret")
	}
	if got.Model != "Claude Sonnet 4.5" || got.Temperature != 0.3 || got.MaxTokens != 4000 {
		t.Errorf("request: got = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "grade this" {
		t.Errorf("messages: got = %+v", got.Messages)
	}
}

func TestOpenAIPermanentError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": {"message": "bad key", "type": "auth"}}`)
	}))
	defer srv.Close()

	tr, err := New(context.Background(), Config{Provider: OpenAI, APIKey: "bad", BaseURL: srv.URL, Model: "gpt-4o"}, fastRetry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = tr.Complete(context.Background(), &Request{Prompt: "p"})

	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("Complete() error: got = %v, wanted = *Error", err)
	}
	if te.StatusCode != http.StatusUnauthorized || te.Provider != OpenAI {
		t.Errorf("Error: got = %+v, wanted status 401 from openai", te)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls: got = %d, wanted = 1", n)
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "c1", "object": "chat.completion", "created": 1, "model": "gpt-4o", "choices": []}`)
	}))
	defer srv.Close()

	tr, err := New(context.Background(), Config{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := tr.Complete(context.Background(), &Request{Prompt: "p"}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Complete() error: got = %v, wanted = %v", err, ErrEmptyResponse)
	}
}

func TestAnthropicComplete(t *testing.T) {
	var body struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &body); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "{\"score\": "}, {"type": "text", "text": "4}"}],
			"stop_reason": "end_turn", "usage": {"input_tokens": 50, "output_tokens": 5}}`)
	}))
	defer srv.Close()

	tr, err := New(context.Background(), Config{Provider: Anthropic, APIKey: "k", BaseURL: srv.URL, Model: "claude-sonnet-4-5"}, fastRetry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	resp, err := tr.Complete(context.Background(), &Request{System: "persona", Prompt: "p", Temperature: 0.2})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	want := &Response{Text: `{"score": 4}`, Model: "claude-sonnet-4-5", PromptTokens: 50, CompletionTokens: 5}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("Complete() mismatch (-want +got):\n%s", diff)
	}
	if body.MaxTokens != defaultAnthropicMaxTokens {
		t.Errorf("max_tokens: got = %d, wanted = %d", body.MaxTokens, defaultAnthropicMaxTokens)
	}
	if len(body.System) != 1 || body.System[0].Text != "persona" {
		t.Errorf("system: got = %+v, wanted persona", body.System)
	}
}

func TestAnthropicRetriesOverload(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(529)
		io.WriteString(w, `{"type": "error", "error": {"type": "overloaded_error", "message": "Overloaded"}}`)
	}))
	defer srv.Close()

	tr, err := New(context.Background(), Config{Provider: Anthropic, APIKey: "k", BaseURL: srv.URL, Model: "claude-haiku-4-5"}, fastRetry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = tr.Complete(context.Background(), &Request{Prompt: "p"})

	var te *Error
	if !errors.As(err, &te) || te.StatusCode != 529 {
		t.Fatalf("Complete() error: got = %v, wanted status 529", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls: got = %d, wanted = 3", n)
	}
}

func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"score\": 2}"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 30, "candidatesTokenCount": 4}}`)
	}))
	defer srv.Close()

	tr, err := New(context.Background(), Config{Provider: Gemini, APIKey: "k", BaseURL: srv.URL, Model: "gemini-2.5-flash"}, fastRetry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	resp, err := tr.Complete(context.Background(), &Request{System: "persona", Prompt: "p", Temperature: 0.3, MaxTokens: 100})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	want := &Response{Text: `{"score": 2}`, Model: "gemini-2.5-flash", PromptTokens: 30, CompletionTokens: 4}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("Complete() mismatch (-want +got):\n%s", diff)
	}
}

func TestIsRetryableVertexError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: errors.New("Error 429, Message: Resource exhausted, Status: RESOURCE_EXHAUSTED"), want: true},
		{err: errors.New("Error 503, Message: Overloaded"), want: true},
		{err: errors.New("Error 400, Message: invalid argument"), want: false},
		{err: nil, want: false},
	}
	for _, tt := range tests {
		if got := isRetryableVertexError(tt.err); got != tt.want {
			t.Errorf("isRetryableVertexError(%v): got = %v, wanted = %v", tt.err, got, tt.want)
		}
	}
}
