/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// AttributeEnricher adds attributes to every recorded measurement, for
// example the template or tenant an evaluation runs for.
type AttributeEnricher func(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue

// WithTemplate returns an enricher that tags measurements with the rubric template id.
func WithTemplate(id string) AttributeEnricher {
	return func(_ context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue {
		return append(baseAttrs, attribute.String("template", id))
	}
}
