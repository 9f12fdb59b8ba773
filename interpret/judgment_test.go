/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package interpret

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *Judgment
	}{{
		name: "fenced json block",
		raw:  "```json\n{\"score\": 8, \"rating\": \"良好\"}\n```",
		want: &Judgment{
			Score:      8,
			Rating:     "良好",
			ScoreRange: Unknown,
			Rationale:  Unknown,
			Issues:     []string{},
			Highlights: []string{},
		},
	}, {
		name: "prose around a fenced block",
		raw: "以下是我的评估：\n\n```json\n" +
			`{"score": 3.5, "rating": "合格", "score_range": "3-4分", "judgment_basis": "第2轮直接给出答案", "issues": ["第2轮直接给出答案"], "highlights": ["开场友好"]}` +
			"\n```\n\n希望对你有帮助。",
		want: &Judgment{
			Score:      3.5,
			Rating:     "合格",
			ScoreRange: "3-4分",
			Rationale:  "第2轮直接给出答案",
			Issues:     []string{"第2轮直接给出答案"},
			Highlights: []string{"开场友好"},
		},
	}, {
		name: "bare object in prose with thinking block",
		raw:  "<thinking>先看 {score} 的定义</thinking>结论如下 {\"score\": \"6\", \"rating\": 5, \"reasoning\": \"内容 {含括号} 正确\"} 完毕",
		want: &Judgment{
			Score:      6,
			Rating:     "5",
			ScoreRange: Unknown,
			Rationale:  "内容 {含括号} 正确",
			Issues:     []string{},
			Highlights: []string{},
		},
	}, {
		name: "trailing comma repaired",
		raw:  `分析完成：{"score": 2, "issues": ["重复提问",],}`,
		want: &Judgment{
			Score:      2,
			Rating:     Unknown,
			ScoreRange: Unknown,
			Rationale:  Unknown,
			Issues:     []string{"重复提问"},
			Highlights: []string{},
		},
	}, {
		name: "object issues and odd casing",
		raw: `{"Score": 1, "Rating": "较差", "Issues": [{"description": "事实错误", "severity": "high"}, {"location": "第3轮"}, "  "], ` +
			`"highlights": "语气亲切"}`,
		want: &Judgment{
			Score:      1,
			Rating:     "较差",
			ScoreRange: Unknown,
			Rationale:  Unknown,
			Issues:     []string{"事实错误", "第3轮"},
			Highlights: []string{"语气亲切"},
		},
	}, {
		name: "stage suggestions",
		raw: `{"score": 4, "stage_suggestions": [{"stage_name": "环节1：导入", "issues": ["跳过问候"], ` +
			`"prompt_fixes": [{"section": "Workflow", "current_problem": "缺少问候步骤", "suggested_change": "增加问候"}]}]}`,
		want: &Judgment{
			Score:      4,
			Rating:     Unknown,
			ScoreRange: Unknown,
			Rationale:  Unknown,
			Issues:     []string{},
			Highlights: []string{},
			StageSuggestions: []StageSuggestion{{
				Stage:  "环节1：导入",
				Issues: []string{"跳过问候"},
				PromptFixes: []PromptFix{{
					Section:         "Workflow",
					CurrentProblem:  "缺少问候步骤",
					SuggestedChange: "增加问候",
				}},
			}},
		},
	}, {
		name: "stage suggestions given as text",
		raw:  `{"score": 8, "rating": "良好", "stage_suggestions": "无"}`,
		want: &Judgment{
			Score:      8,
			Rating:     "良好",
			ScoreRange: Unknown,
			Rationale:  Unknown,
			Issues:     []string{},
			Highlights: []string{},
		},
	}, {
		name: "prompt fixes given as text",
		raw: `{"score": 3, "issues": ["节奏偏快"], "stage_suggestions": [` +
			`{"stage_name": "环节2：练习", "issues": ["没有等待学生作答"], "prompt_fixes": "改一下"}, "无"]}`,
		want: &Judgment{
			Score:      3,
			Rating:     Unknown,
			ScoreRange: Unknown,
			Rationale:  Unknown,
			Issues:     []string{"节奏偏快"},
			Highlights: []string{},
			StageSuggestions: []StageSuggestion{{
				Stage:  "环节2：练习",
				Issues: []string{"没有等待学生作答"},
			}},
		},
	}, {
		name: "malformed optional field keeps its default",
		raw:  `{"score": 5, "rating": "合格", "highlights": ["讲解清楚"], "issues": [["嵌套"]]}`,
		want: &Judgment{
			Score:      5,
			Rating:     "合格",
			ScoreRange: Unknown,
			Rationale:  Unknown,
			Issues:     []string{},
			Highlights: []string{"讲解清楚"},
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.RawResponse != tt.raw {
				t.Errorf("RawResponse: got = %q, wanted = %q", got.RawResponse, tt.raw)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreFields(Judgment{}, "RawResponse")); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFailure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no json", raw: "我认为这段对话表现良好，可以给 8 分。"},
		{name: "missing score", raw: `{"rating": "良好", "issues": []}`},
		{name: "non-numeric score", raw: "```json\n{\"score\": \"八分\"}\n```"},
		{name: "boolean score", raw: `{"score": true}`},
		{name: "unbalanced", raw: `{"score": 8, "issues": ["a"`},
		{name: "null score", raw: `{"score": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if got != nil {
				t.Errorf("Parse(): got = %+v, wanted = nil", got)
			}
			var pf *ParseFailure
			if !errors.As(err, &pf) {
				t.Fatalf("Parse() error: got = %v, wanted = *ParseFailure", err)
			}
			if pf.Raw != tt.raw {
				t.Errorf("ParseFailure.Raw: got = %q, wanted = %q", pf.Raw, tt.raw)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		score, full, want float64
	}{
		{score: -1, full: 5, want: 0},
		{score: 7, full: 5, want: 5},
		{score: 3, full: 5, want: 3},
		{score: 7, full: 0, want: 7},
	}
	for _, tt := range tests {
		j := &Judgment{Score: tt.score, FullScore: tt.full}
		j.Clamp()
		if j.Score != tt.want {
			t.Errorf("Clamp(%v of %v): got = %v, wanted = %v", tt.score, tt.full, j.Score, tt.want)
		}
	}
}

func TestFirstObject(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: `x {"a": "}"} y {"b": 1}`, want: `{"a": "}"}`, wantOK: true},
		{in: `{"a": {"b": "\"{"}}`, want: `{"a": {"b": "\"{"}}`, wantOK: true},
		{in: `no braces`, wantOK: false},
		{in: `{"open": 1`, wantOK: false},
	}
	for _, tt := range tests {
		got, ok := FirstObject(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("FirstObject(%q): got = (%q, %v), wanted = (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
