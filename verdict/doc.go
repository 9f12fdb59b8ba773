/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package verdict rolls sub-dimension judgments up into an evaluation report.
//
// A dimension scores the sum of its sub-dimension scores. The total is the
// weighted sum of dimension scores and the maximum the weighted sum of full
// scores, so a template whose weights are all 1.0 reduces to a plain sum.
//
// A Policy maps scores to qualitative levels with ratio bands, decides
// whether the run passes, and applies veto rules. Veto rules read the
// structured score and rating already present in the judgments; a fired
// rule fails the run and replaces its level with the policy's VetoLevel
// whatever the total score.
//
//	report, err := verdict.DefaultPolicy().Aggregate(rubric.Default(), judgments)
package verdict
