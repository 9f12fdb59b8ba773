/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package evaluation runs a tutoring transcript through every enabled
// criterion of a rubric template and aggregates the judgments into a report.
//
// One model call is made per enabled sub-dimension, with a bounded number in
// flight. Failures of individual calls degrade that sub-dimension to a zero
// score instead of failing the run:
//
//	e, err := evaluation.New(t, evaluation.WithConcurrency(4))
//	report, err := e.Evaluate(ctx, &evaluation.Request{
//		TeachingDoc: doc,
//		Transcript:  transcript,
//	})
package evaluation
