/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements tutoreval, a command-line tool that grades
// tutoring-agent dialogues against a rubric with a language model.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/chainguard-dev/clog/gcp/init"
)

// Exit codes for different failure modes.
const (
	ExitSuccess = 0 // Evaluation passed or command succeeded
	ExitFailed  = 1 // Evaluation completed but did not pass
	ExitError   = 2 // Configuration or runtime error
)

// FailedEvaluationError indicates that the evaluation ran to completion but
// the dialogue did not meet the pass criteria.
type FailedEvaluationError struct {
	Level string
	Score float64
	Max   float64
}

func (e *FailedEvaluationError) Error() string {
	return fmt.Sprintf("evaluation did not pass: %s (%.2f/%.2f)", e.Level, e.Score, e.Max)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var failed *FailedEvaluationError
		if errors.As(err, &failed) {
			os.Exit(ExitFailed)
		}
		os.Exit(ExitError)
	}
}
