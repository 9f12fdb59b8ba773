/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package verdict

import (
	"time"

	"chainguard.dev/tutoreval/interpret"
)

// SubScore is the outcome of one sub-dimension within a dimension.
type SubScore struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	FullScore  float64 `json:"full_score"`
	Rating     string  `json:"rating"`
	ScoreRange string  `json:"score_range"`
	Degraded   bool    `json:"degraded,omitempty"`
}

// DimensionResult rolls up the sub-dimension judgments of one dimension.
type DimensionResult struct {
	Key           string     `json:"dimension"`
	Name          string     `json:"name"`
	Score         float64    `json:"score"`
	FullScore     float64    `json:"full_score"`
	Weight        float64    `json:"weight"`
	WeightedScore float64    `json:"weighted_score"`
	Level         string     `json:"level"`
	Analysis      string     `json:"analysis"`
	Evidence      []string   `json:"evidence"`
	Issues        []string   `json:"issues"`
	Suggestions   []string   `json:"suggestions"`
	SubScores     []SubScore `json:"sub_scores"`
}

// Report is the outcome of one evaluation run.
type Report struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id,omitempty"`
	Template  string    `json:"template"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	TotalScore            float64                     `json:"total_score"`
	MaxScore              float64                     `json:"max_score"`
	Dimensions            []DimensionResult           `json:"dimensions"`
	ExecutiveSummary      string                      `json:"executive_summary"`
	CriticalIssues        []string                    `json:"critical_issues"`
	ActionableSuggestions []string                    `json:"actionable_suggestions"`
	StageSuggestions      []interpret.StageSuggestion `json:"stage_suggestions,omitempty"`
	FinalLevel            string                      `json:"final_level"`
	PassCriteriaMet       bool                        `json:"pass_criteria_met"`
	VetoReasons           []string                    `json:"veto_reasons"`

	// Judgments are the per sub-dimension verdicts, raw replies included.
	Judgments []*interpret.Judgment `json:"judgments,omitempty"`
}

// Vetoed reports whether any veto rule fired.
func (r *Report) Vetoed() bool {
	return len(r.VetoReasons) > 0
}
