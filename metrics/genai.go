/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Judgment outcomes recorded by RecordJudgment.
const (
	OutcomeScored           = "scored"
	OutcomeMissingGrounding = "missing_grounding"
	OutcomeTransportError   = "transport_error"
	OutcomeParseFailure     = "parse_failure"
)

// GenAI provides OpenTelemetry instruments for model calls: token usage,
// call latency and per sub-dimension judgment outcomes. Instruments that fail
// to initialize degrade to no-ops.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	judgments        metric.Int64Counter
	callDuration     metric.Float64Histogram
	attrEnricher     AttributeEnricher
}

// NewGenAI creates the instruments on the named meter. The model is recorded
// as an attribute, so one meter name should be shared by all transports.
func NewGenAI(meterName string) *GenAI {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	promptTokens, err := meter.Int64Counter("genai.token.prompt",
		metric.WithDescription("The number of prompt tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create prompt tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		promptTokens = noop.Int64Counter{}
	}

	completionTokens, err := meter.Int64Counter("genai.token.completion",
		metric.WithDescription("The number of completion tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create completion tokens counter, metrics will be disabled", "error", err, "meter", meterName)
		completionTokens = noop.Int64Counter{}
	}

	judgments, err := meter.Int64Counter("tutoreval.judgments",
		metric.WithDescription("The number of sub-dimension judgments by outcome"),
		metric.WithUnit("{judgments}"))
	if err != nil {
		slog.Warn("Failed to create judgment counter, metrics will be disabled", "error", err, "meter", meterName)
		judgments = noop.Int64Counter{}
	}

	callDuration, err := meter.Float64Histogram("genai.call.duration",
		metric.WithDescription("Latency of model calls including retries"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create call duration histogram, metrics will be disabled", "error", err, "meter", meterName)
		callDuration = noop.Float64Histogram{}
	}

	return &GenAI{
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
		judgments:        judgments,
		callDuration:     callDuration,
	}
}

// SetAttributeEnricher installs an enricher applied to every measurement.
func (m *GenAI) SetAttributeEnricher(enricher AttributeEnricher) {
	m.attrEnricher = enricher
}

func (m *GenAI) attributes(ctx context.Context, base []attribute.KeyValue, extra []attribute.KeyValue) metric.MeasurementOption {
	if m.attrEnricher != nil {
		base = m.attrEnricher(ctx, base)
	}
	return metric.WithAttributes(append(base, extra...)...)
}

// RecordTokens records prompt and completion token usage for one call.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64, attrs ...attribute.KeyValue) {
	opt := m.attributes(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs)
	m.promptTokens.Add(ctx, promptTokens, opt)
	m.completionTokens.Add(ctx, completionTokens, opt)
}

// RecordCallDuration records how long a model call took.
func (m *GenAI) RecordCallDuration(ctx context.Context, model string, d time.Duration, attrs ...attribute.KeyValue) {
	m.callDuration.Record(ctx, d.Seconds(), m.attributes(ctx, []attribute.KeyValue{attribute.String("model", model)}, attrs))
}

// RecordJudgment counts one sub-dimension judgment with the given outcome.
func (m *GenAI) RecordJudgment(ctx context.Context, dimension, outcome string, attrs ...attribute.KeyValue) {
	m.judgments.Add(ctx, 1, m.attributes(ctx, []attribute.KeyValue{
		attribute.String("dimension", dimension),
		attribute.String("outcome", outcome),
	}, attrs))
}
