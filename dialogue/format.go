/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dialogue

import (
	"fmt"
	"strings"
)

const (
	headerRule = "============================================================"
	turnRule   = "--------------------------------------------------------------------------------"
)

// Serialize renders t in the canonical log shape read by Parse.
func Serialize(t *Transcript) string {
	var b strings.Builder

	md := t.Metadata
	for _, kv := range [][2]string{
		{keyCreatedAt, md.CreatedAt},
		{keySourceID, md.SourceID},
		{keySubjectTier, md.SubjectTier},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, "%s: %s\n", kv[0], kv[1])
		}
	}
	b.WriteString(headerRule + "\n")

	staged := false
	for _, s := range t.Stages {
		if s.Name != DefaultStage {
			staged = true
			break
		}
	}

	highest := 0
	for _, s := range t.Stages {
		for _, turn := range s.Turns {
			if staged {
				fmt.Fprintf(&b, "%s %s | 第 %d 轮\n", stepPrefix, s.Name, turn.Round)
			} else {
				fmt.Fprintf(&b, "[第 %d 轮]\n", turn.Round)
			}
			label := "用户"
			if turn.Speaker == Assistant {
				label = "AI"
			}
			fmt.Fprintf(&b, "%s: %s\n%s\n", label, turn.Text, turnRule)
			highest = max(highest, turn.Round)
		}
	}

	// Preserve rounds announced by headers that carried no turns.
	if md.TotalRounds > highest {
		fmt.Fprintf(&b, "[第 %d 轮]\n", md.TotalRounds)
	}
	return b.String()
}

// Format renders t as Markdown for inclusion in an evaluation prompt.
func Format(t *Transcript) string {
	var b strings.Builder
	for _, s := range t.Stages {
		fmt.Fprintf(&b, "## %s\n\n", s.Name)
		for _, turn := range s.Turns {
			fmt.Fprintf(&b, "**%s(第%d轮):** %s\n\n", turn.Speaker.Label(), turn.Round, turn.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
