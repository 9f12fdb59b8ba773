/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"chainguard.dev/tutoreval/metrics"
	"chainguard.dev/tutoreval/retry"
)

// Provider selects the model endpoint family.
type Provider string

const (
	// OpenAI is any OpenAI-compatible chat completion endpoint.
	OpenAI Provider = "openai"
	// Anthropic is the Anthropic Messages API.
	Anthropic Provider = "anthropic"
	// Gemini is the Gemini API authenticated with an API key.
	Gemini Provider = "gemini"
	// Vertex routes claude-* models to Anthropic and gemini-* models to
	// Gemini on Vertex AI, authenticated with application default credentials.
	Vertex Provider = "vertex"
)

var (
	ErrMissingAPIKey       = errors.New("llm api key is required")
	ErrMissingBaseURL      = errors.New("llm base url is required")
	ErrMissingModel        = errors.New("llm model is required")
	ErrMissingProject      = errors.New("vertex project and region are required")
	ErrUnsupportedProvider = errors.New("unsupported llm provider")
)

// Config describes how to reach the model.
type Config struct {
	Provider Provider `env:"LLM_PROVIDER,default=openai"`
	APIKey   string   `env:"LLM_API_KEY"`
	BaseURL  string   `env:"LLM_BASE_URL"`
	Model    string   `env:"LLM_MODEL,default=gpt-4o"`

	// Project and Region are only used by the vertex provider.
	Project string `env:"GOOGLE_CLOUD_PROJECT"`
	Region  string `env:"GOOGLE_CLOUD_REGION,default=us-east5"`
}

// Validate reports missing credentials or endpoints before any call is made.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return ErrMissingModel
	}
	switch c.Provider {
	case OpenAI, "":
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
		if c.BaseURL == "" {
			return ErrMissingBaseURL
		}
	case Anthropic, Gemini:
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
	case Vertex:
		if c.Project == "" || c.Region == "" {
			return ErrMissingProject
		}
		if _, err := vertexFamily(c.Model); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProvider, c.Provider)
	}
	return nil
}

// Option configures a transport.
type Option func(*options) error

type options struct {
	retry      retry.Config
	httpClient *http.Client
	metrics    *metrics.GenAI
}

// WithRetry overrides the retry policy for transient errors.
func WithRetry(cfg retry.Config) Option {
	return func(o *options) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid retry config: %w", err)
		}
		o.retry = cfg
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) error {
		if c == nil {
			return errors.New("http client cannot be nil")
		}
		o.httpClient = c
		return nil
	}
}

// WithAttributeEnricher adds attributes to the token and latency metrics.
func WithAttributeEnricher(enricher metrics.AttributeEnricher) Option {
	return func(o *options) error {
		o.metrics.SetAttributeEnricher(enricher)
		return nil
	}
}

// New validates cfg and creates the transport for its provider.
func New(ctx context.Context, cfg Config, opts ...Option) (Interface, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{
		retry:   retry.Default(),
		metrics: metrics.NewGenAI("chainguard.dev/tutoreval"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	switch cfg.Provider {
	case OpenAI, "":
		return newOpenAI(cfg, o), nil
	case Anthropic:
		return newAnthropic(cfg, o), nil
	case Gemini:
		c, err := newGemini(ctx, cfg, o)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		family, _ := vertexFamily(cfg.Model)
		if family == Anthropic {
			return newAnthropicVertex(ctx, cfg, o), nil
		}
		c, err := newGeminiVertex(ctx, cfg, o)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// vertexFamily picks the SDK that serves model on Vertex AI.
func vertexFamily(model string) (Provider, error) {
	lower := strings.ToLower(model)
	switch {
	case strings.HasPrefix(lower, "claude-"):
		return Anthropic, nil
	case strings.HasPrefix(lower, "gemini-"):
		return Gemini, nil
	}
	return "", fmt.Errorf("%w: %s on vertex (expected claude-* or gemini-*)", ErrUnsupportedProvider, model)
}
