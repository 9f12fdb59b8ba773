/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"chainguard.dev/tutoreval/verdict"
)

// degradedMark flags rows that contain a sub-dimension scored without a
// usable model verdict.
const degradedMark = "⚠️ "

// WriteTable writes one row per dimension and a closing total row.
func WriteTable(w io.Writer, r *verdict.Report) error {
	table := newTable([]string{"维度", "得分", "满分", "权重", "加权得分", "评级"}, w)
	for _, d := range r.Dimensions {
		name := d.Name
		if hasDegraded(d) {
			name = degradedMark + name
		}
		if err := table.Append([]string{
			name,
			score(d.Score),
			score(d.FullScore),
			score(d.Weight),
			score(d.WeightedScore),
			d.Level,
		}); err != nil {
			return fmt.Errorf("failed to append row %q: %w", d.Key, err)
		}
	}
	if err := table.Append([]string{"总分", score(r.TotalScore), score(r.MaxScore), "", "", r.FinalLevel}); err != nil {
		return fmt.Errorf("failed to append total row: %w", err)
	}
	return table.Render()
}

// WriteBreakdown writes every dimension followed by its sub-dimensions as
// indented rows.
func WriteBreakdown(w io.Writer, r *verdict.Report) error {
	table := newTable([]string{"维度 / 子维度", "得分", "满分", "评级"}, w)
	for _, d := range r.Dimensions {
		if err := table.Append([]string{d.Name, score(d.Score), score(d.FullScore), d.Level}); err != nil {
			return fmt.Errorf("failed to append row %q: %w", d.Key, err)
		}
		for i, s := range d.SubScores {
			branch := "   ├─ "
			if i == len(d.SubScores)-1 {
				branch = "   └─ "
			}
			name := s.Name
			if s.Degraded {
				name = degradedMark + name
			}
			if err := table.Append([]string{branch + name, score(s.Score), score(s.FullScore), s.Rating}); err != nil {
				return fmt.Errorf("failed to append row %q: %w", s.Key, err)
			}
		}
	}
	return table.Render()
}

func hasDegraded(d verdict.DimensionResult) bool {
	for _, s := range d.SubScores {
		if s.Degraded {
			return true
		}
	}
	return false
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *verdict.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Markdown renders r as a standalone Markdown document.
func Markdown(r *verdict.Report) (string, error) {
	var b strings.Builder

	b.WriteString("# 教学对话评测报告\n\n")
	meta := []struct{ label, value string }{
		{"报告编号", r.ID},
		{"对话来源", r.SourceID},
		{"评测模板", r.Template},
		{"评测模型", r.Model},
	}
	for _, m := range meta {
		if m.value != "" {
			fmt.Fprintf(&b, "- %s：%s\n", m.label, m.value)
		}
	}
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- 生成时间：%s\n", r.CreatedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "- 总分：%s / %s\n", score(r.TotalScore), score(r.MaxScore))
	fmt.Fprintf(&b, "- 评级：%s\n", r.FinalLevel)
	fmt.Fprintf(&b, "- 是否合格：%s\n\n", yesNo(r.PassCriteriaMet))

	b.WriteString("## 总体评价\n\n")
	b.WriteString(r.ExecutiveSummary)
	b.WriteString("\n\n")

	if r.Vetoed() {
		b.WriteString("## 一票否决\n\n")
		writeList(&b, r.VetoReasons)
	}

	b.WriteString("## 维度得分\n\n")
	if err := WriteTable(&b, r); err != nil {
		return "", err
	}
	b.WriteString("\n")

	b.WriteString("## 维度详情\n\n")
	for _, d := range r.Dimensions {
		if err := writeDimension(&b, d); err != nil {
			return "", err
		}
	}

	if len(r.CriticalIssues) > 0 {
		b.WriteString("## 关键问题\n\n")
		writeList(&b, r.CriticalIssues)
	}
	if len(r.ActionableSuggestions) > 0 {
		b.WriteString("## 改进建议\n\n")
		writeList(&b, r.ActionableSuggestions)
	}
	if len(r.StageSuggestions) > 0 {
		b.WriteString("## 环节修改建议\n\n")
		for _, s := range r.StageSuggestions {
			fmt.Fprintf(&b, "### %s\n\n", s.Stage)
			for _, issue := range s.Issues {
				fmt.Fprintf(&b, "- 问题：%s\n", issue)
			}
			for _, fix := range s.PromptFixes {
				fmt.Fprintf(&b, "- 【%s】%s → %s\n", fix.Section, fix.CurrentProblem, fix.SuggestedChange)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func writeDimension(b *strings.Builder, d verdict.DimensionResult) error {
	fmt.Fprintf(b, "### %s（%s/%s，%s）\n\n", d.Name, score(d.Score), score(d.FullScore), d.Level)

	table := newTable([]string{"子维度", "得分", "满分", "评级", "档位"}, b)
	for _, s := range d.SubScores {
		name := s.Name
		if s.Degraded {
			name = degradedMark + name
		}
		if err := table.Append([]string{name, score(s.Score), score(s.FullScore), s.Rating, s.ScoreRange}); err != nil {
			return fmt.Errorf("failed to append row %q: %w", s.Key, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render %q: %w", d.Key, err)
	}
	b.WriteString("\n")

	if d.Analysis != "" {
		b.WriteString("**评分依据**\n\n")
		writeList(b, strings.Split(d.Analysis, "\n"))
	}
	if len(d.Evidence) > 0 {
		b.WriteString("**亮点**\n\n")
		writeList(b, d.Evidence)
	}
	if len(d.Issues) > 0 {
		b.WriteString("**问题**\n\n")
		writeList(b, d.Issues)
	}
	if len(d.Suggestions) > 0 {
		b.WriteString("**建议**\n\n")
		writeList(b, d.Suggestions)
	}
	return nil
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			fmt.Fprintf(b, "- %s\n", item)
		}
	}
	b.WriteString("\n")
}

func yesNo(ok bool) string {
	if ok {
		return "是"
	}
	return "否"
}
