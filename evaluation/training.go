/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"context"
	"fmt"

	"chainguard.dev/tutoreval/interpret"
	"chainguard.dev/tutoreval/prompts"
	"chainguard.dev/tutoreval/transport"
	"github.com/chainguard-dev/clog"
)

// GenerateTraining asks the model for a training configuration of the given
// kind derived from a teaching document and returns it as Markdown.
func GenerateTraining(ctx context.Context, t transport.Interface, kind prompts.TrainingKind, doc string) (string, error) {
	system, prompt, err := prompts.BuildTraining(kind, doc)
	if err != nil {
		return "", err
	}

	resp, err := t.Complete(ctx, &transport.Request{
		System:      system,
		Prompt:      prompt,
		Temperature: kind.Temperature(),
		MaxTokens:   prompts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", kind, err)
	}

	clog.FromContext(ctx).With("kind", string(kind)).
		With("prompt_tokens", resp.PromptTokens).
		With("completion_tokens", resp.CompletionTokens).
		Info("Generated training configuration")
	return interpret.StripFences(resp.Text), nil
}
