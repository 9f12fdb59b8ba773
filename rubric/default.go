/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

// DefaultID is the identity of the built-in template.
const DefaultID = "default"

// Built-in dimension keys.
const (
	GoalCompletion        = "goal_completion"
	WorkflowAdherence     = "workflow_adherence"
	InteractionExperience = "interaction_experience"
	AccuracyBoundaries    = "accuracy_boundaries"
	TeachingStrategy      = "teaching_strategy"
)

// Built-in sub-dimension keys referenced outside the catalog.
const (
	Factuality       = "factuality"
	SafetyGuardrails = "safety_guardrails"
)

type defaultSub struct {
	key   string
	score float64
}

var defaultLayout = []struct {
	key  string
	subs []defaultSub
}{{
	key: GoalCompletion,
	subs: []defaultSub{
		{"knowledge_coverage", 10},
		{"ability_coverage", 10},
	},
}, {
	key: WorkflowAdherence,
	subs: []defaultSub{
		{"entry_criteria", 4},
		{"internal_sequence", 4},
		{"global_stage_flow", 4},
		{"exit_criteria", 4},
		{"nonlinear_navigation", 4},
	},
}, {
	key: InteractionExperience,
	subs: []defaultSub{
		{"persona_stylization", 4},
		{"naturalness", 4},
		{"contextual_coherence", 4},
		{"loop_stasis", 4},
		{"conciseness", 4},
	},
}, {
	key: AccuracyBoundaries,
	subs: []defaultSub{
		{Factuality, 5},
		{"logical_consistency", 5},
		{"admittance_ignorance", 3},
		{SafetyGuardrails, 3},
		{"distraction_resistance", 4},
	},
}, {
	key: TeachingStrategy,
	subs: []defaultSub{
		{"socratic_frequency", 5},
		{"positive_reinforcement", 5},
		{"correction_pathway", 5},
		{"deep_probing", 5},
	},
}}

// Default returns a fresh copy of the built-in template: five equally
// weighted dimensions worth 100 points in total. Callers own the result.
func Default() *Template {
	t := &Template{
		ID:          DefaultID,
		Name:        "默认评测模板",
		Description: "教学智能体对话质量五维评测",
		Public:      true,
	}
	for _, d := range defaultLayout {
		dim := Dimension{Key: d.key, Enabled: true, Weight: 1}
		for _, s := range d.subs {
			dim.SubDimensions = append(dim.SubDimensions, SubDimension{
				Key:       s.key,
				Enabled:   true,
				FullScore: s.score,
			})
		}
		t.Dimensions = append(t.Dimensions, dim)
	}
	return t
}
