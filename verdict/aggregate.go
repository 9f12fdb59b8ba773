/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package verdict

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"chainguard.dev/tutoreval/interpret"
	"chainguard.dev/tutoreval/rubric"
)

var (
	// ErrMissingJudgment is returned when an enabled sub-dimension has no judgment.
	ErrMissingJudgment = errors.New("missing judgment")
	// ErrDuplicateJudgment is returned when a sub-dimension was judged twice.
	ErrDuplicateJudgment = errors.New("duplicate judgment")
)

// summaryItems bounds the highlights and issues quoted in the executive summary.
const summaryItems = 3

type subKey struct{ dimension, sub string }

// Aggregate combines the judgments of every enabled sub-dimension of t into
// a report. Nil judgments and judgments for criteria t does not enable are
// ignored, so a criterion whose only judgment is nil is missing. The result
// depends only on the set of judgments, not on their order.
func (p *Policy) Aggregate(t *rubric.Template, judgments []*interpret.Judgment) (*Report, error) {
	if t == nil {
		return nil, errors.New("template cannot be nil")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	byKey := make(map[subKey]*interpret.Judgment, len(judgments))
	for _, j := range judgments {
		if j == nil {
			continue
		}
		k := subKey{j.Dimension, j.SubDimension}
		if _, dup := byKey[k]; dup {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateJudgment, j.Dimension, j.SubDimension)
		}
		byKey[k] = j
	}

	r := &Report{
		Template:              t.ID,
		CriticalIssues:        []string{},
		ActionableSuggestions: []string{},
		VetoReasons:           []string{},
	}
	var (
		critical    = newOrderedSet()
		suggestions = newOrderedSet()
		vetoes      = newOrderedSet()
		stages      = newStageMerger()
	)

	for _, d := range t.EnabledDimensions() {
		dr := DimensionResult{
			Key:    d.Key,
			Name:   rubric.DimensionName(d.Key),
			Weight: d.Weight,
		}
		var (
			analysis    []string
			evidence    = newOrderedSet()
			issues      = newOrderedSet()
			dimSuggests = newOrderedSet()
			weak        []SubScore
		)

		for _, s := range d.SubDimensions {
			if !s.Enabled {
				continue
			}
			j, ok := byKey[subKey{d.Key, s.Key}]
			if !ok {
				return nil, fmt.Errorf("%w: %s.%s", ErrMissingJudgment, d.Key, s.Key)
			}
			r.Judgments = append(r.Judgments, j)

			name := rubric.Describe(d.Key, s.Key).Name
			score := min(max(j.Score, 0), s.FullScore)
			sub := SubScore{
				Key:        s.Key,
				Name:       name,
				Score:      score,
				FullScore:  s.FullScore,
				Rating:     j.Rating,
				ScoreRange: j.ScoreRange,
				Degraded:   j.Degraded,
			}
			dr.SubScores = append(dr.SubScores, sub)
			dr.Score += score
			dr.FullScore += s.FullScore

			if j.Rationale != "" && j.Rationale != interpret.Unknown {
				analysis = append(analysis, name+"："+j.Rationale)
			}
			evidence.add(j.Highlights...)
			issues.add(j.Issues...)
			if !p.Passes(score, s.FullScore) {
				weak = append(weak, sub)
				for _, issue := range j.Issues {
					critical.add("「" + name + "」" + issue)
				}
			}
			for _, ss := range j.StageSuggestions {
				for _, fix := range ss.PromptFixes {
					if fix.SuggestedChange != "" {
						dimSuggests.add(stageLabel(ss.Stage, fix.Section) + fix.SuggestedChange)
					}
				}
			}
			stages.add(j.StageSuggestions)

			for _, rule := range p.VetoRules {
				if rule.matches(j) {
					vetoes.add(fmt.Sprintf("%s（%s：%s/%s 分，评级 %s）",
						rule.Reason, name, formatScore(score), formatScore(s.FullScore), j.Rating))
				}
			}
		}

		for _, sub := range weak {
			dimSuggests.add(fmt.Sprintf("重点改进「%s」（当前 %s/%s 分）", sub.Name, formatScore(sub.Score), formatScore(sub.FullScore)))
		}

		dr.WeightedScore = dr.Score * dr.Weight
		dr.Level = p.Level(dr.Score, dr.FullScore)
		dr.Analysis = strings.Join(analysis, "\n")
		dr.Evidence = evidence.items()
		dr.Issues = issues.items()
		dr.Suggestions = dimSuggests.items()
		suggestions.add(dr.Suggestions...)

		r.TotalScore += dr.WeightedScore
		r.MaxScore += dr.FullScore * dr.Weight
		r.Dimensions = append(r.Dimensions, dr)
	}

	r.VetoReasons = vetoes.items()
	r.CriticalIssues = append(append([]string{}, r.VetoReasons...), critical.items()...)
	r.ActionableSuggestions = suggestions.items()
	r.StageSuggestions = stages.items()
	r.PassCriteriaMet = p.Passes(r.TotalScore, r.MaxScore) && !r.Vetoed()
	if r.Vetoed() {
		r.FinalLevel = p.VetoLevel
	} else {
		r.FinalLevel = p.Level(r.TotalScore, r.MaxScore)
	}
	r.ExecutiveSummary = summarize(r)
	return r, nil
}

func summarize(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "总分 %s/%s，评级%s", formatScore(r.TotalScore), formatScore(r.MaxScore), r.FinalLevel)
	if r.PassCriteriaMet {
		b.WriteString("，达到合格标准。")
	} else {
		b.WriteString("，未达到合格标准。")
	}

	highlights := newOrderedSet()
	issues := newOrderedSet()
	for _, d := range r.Dimensions {
		highlights.add(d.Evidence...)
		issues.add(d.Issues...)
	}
	if h := highlights.items(); len(h) > 0 {
		b.WriteString("主要亮点：" + strings.Join(h[:min(len(h), summaryItems)], "；") + "。")
	}
	if len(r.VetoReasons) > 0 {
		b.WriteString("否决原因：" + strings.Join(r.VetoReasons, "；") + "。")
	}
	if i := issues.items(); len(i) > 0 {
		b.WriteString("主要问题：" + strings.Join(i[:min(len(i), summaryItems)], "；") + "。")
	}
	return b.String()
}

func stageLabel(stage, section string) string {
	switch {
	case stage != "" && section != "":
		return "【" + stage + " / " + section + "】"
	case stage != "":
		return "【" + stage + "】"
	}
	return ""
}

// formatScore prints a score with at most two decimals.
func formatScore(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
