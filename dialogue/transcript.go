/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dialogue

// Speaker identifies who produced a turn.
type Speaker string

const (
	// Assistant is the tutoring agent under evaluation.
	Assistant Speaker = "assistant"
	// User is the student talking to the agent.
	User Speaker = "user"
)

// Label returns the display label used when formatting turns for prompts.
func (s Speaker) Label() string {
	switch s {
	case Assistant:
		return "智能体"
	case User:
		return "学生"
	default:
		return string(s)
	}
}

// DefaultStage names the stage that collects turns not routed to an explicit stage.
const DefaultStage = "对话记录"

// Turn is a single utterance.
type Turn struct {
	Speaker Speaker `json:"role"`
	Text    string  `json:"content"`
	// Round is the dialogue round the turn belongs to, 0 when unknown.
	Round int `json:"round"`
}

// Stage is a named, ordered group of turns.
type Stage struct {
	Name  string `json:"stage_name"`
	Turns []Turn `json:"messages"`
}

// Metadata describes where a transcript came from.
type Metadata struct {
	SourceID    string `json:"task_id"`
	SubjectTier string `json:"student_level"`
	CreatedAt   string `json:"created_at"`
	TotalRounds int    `json:"total_rounds"`
}

// Transcript is the structured form of a tutoring dialogue.
type Transcript struct {
	Metadata Metadata `json:"metadata"`
	Stages   []Stage  `json:"stages"`
}

// Turns returns every turn of the transcript in stage order.
func (t *Transcript) Turns() []Turn {
	var turns []Turn
	for _, s := range t.Stages {
		turns = append(turns, s.Turns...)
	}
	return turns
}

// Len returns the number of turns in the transcript.
func (t *Transcript) Len() int {
	n := 0
	for _, s := range t.Stages {
		n += len(s.Turns)
	}
	return n
}
