/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompts

import (
	"errors"
	"strings"
	"testing"

	"chainguard.dev/tutoreval/rubric"
	"github.com/google/go-cmp/cmp"
)

var criterion = rubric.Criterion{
	Dimension:    rubric.AccuracyBoundaries,
	SubDimension: rubric.Factuality,
	FullScore:    10,
}

const teachingDoc = "目标：教授分数加法"

const dialogueText = "## 对话记录\n\n**智能体(第1轮):** 1/4 加 2/4 等于多少？\n\n**学生(第1轮):** 3/4"

func TestBuild(t *testing.T) {
	got, err := Build(criterion, Inputs{TeachingDoc: teachingDoc, Dialogue: dialogueText})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, want := range []string{
		"dimension: " + rubric.DimensionName(rubric.AccuracyBoundaries),
		"sub_dimension: " + rubric.Describe(rubric.AccuracyBoundaries, rubric.Factuality).Name,
		"full_score: 10",
		"score_range: 9-10分",
		"```markdown\n" + teachingDoc + "\n```",
		"```markdown\n" + dialogueText + "\n```",
		`"judgment_basis"`,
		"score：", "rating：", "score_range：", "judgment_basis：", "issues：", "highlights：",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Build() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "{{") {
		t.Errorf("Build() left a placeholder unbound:\n%s", got)
	}
	if strings.Contains(got, "智能体流程配置") {
		t.Errorf("Build() rendered a process section without process config")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	in := Inputs{TeachingDoc: teachingDoc, Dialogue: dialogueText, ProcessConfig: "## 环节1：导入\n\n### Rules\n\n- 不直接给答案\n"}
	first, err := Build(criterion, in)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for range 5 {
		again, err := Build(criterion, in)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("Build() not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestBuildProcessConfig(t *testing.T) {
	tests := []struct {
		name    string
		process string
		want    []string
	}{{
		name:    "workflow stages are summarized",
		process: "## 环节1：导入\n\n### Rules（规则）\n\n1. 不直接给出答案\n",
		want:    []string{"### 环节1：导入", "**规则约束**：\n1. 不直接给出答案", "stage_suggestions"},
	}, {
		name:    "unstructured config is embedded as is",
		process: "请始终使用苏格拉底式提问。",
		want:    []string{"请始终使用苏格拉底式提问。", "stage_suggestions"},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(criterion, Inputs{TeachingDoc: teachingDoc, Dialogue: dialogueText, ProcessConfig: tt.process})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			for _, want := range append(tt.want, "智能体流程配置") {
				if !strings.Contains(got, want) {
					t.Errorf("Build() missing %q in:\n%s", want, got)
				}
			}
		})
	}
}

func TestBuildMissingGrounding(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
	}{
		{name: "no teaching doc", in: Inputs{Dialogue: dialogueText}},
		{name: "blank dialogue", in: Inputs{TeachingDoc: teachingDoc, Dialogue: " \n\t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(criterion, tt.in); !errors.Is(err, ErrMissingGrounding) {
				t.Errorf("Build() error: got = %v, wanted = %v", err, ErrMissingGrounding)
			}
		})
	}
}

func TestBuildEmbedsFenceSafely(t *testing.T) {
	doc := "示例代码：\n```go\nfmt.Println(1)\n```"
	got, err := Build(criterion, Inputs{TeachingDoc: doc, Dialogue: dialogueText})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(got, "````markdown\n"+doc+"\n````") {
		t.Errorf("Build() did not lengthen the fence around the document:\n%s", got)
	}
}

func TestBands(t *testing.T) {
	got := bands(5)
	want := []band{
		{Rating: "优秀", ScoreRange: "4.5-5分"},
		{Rating: "良好", ScoreRange: "3.8-4.5分"},
		{Rating: "合格", ScoreRange: "3-3.8分"},
		{Rating: "不足", ScoreRange: "2-3分"},
		{Rating: "较差", ScoreRange: "0-2分"},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(band{})); diff != "" {
		t.Errorf("bands() mismatch (-want +got):\n%s", diff)
	}
}

func TestJoinReference(t *testing.T) {
	tests := []struct {
		name, doc, ref, want string
	}{
		{name: "no reference", doc: "教案", ref: "  ", want: "教案"},
		{name: "with reference", doc: "教案\n", ref: "教材第三章", want: "教案\n\n## 参考文档\n\n教材第三章\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinReference(tt.doc, tt.ref); got != tt.want {
				t.Errorf("JoinReference(): got = %q, wanted = %q", got, tt.want)
			}
		})
	}
}

func TestBuildTraining(t *testing.T) {
	tests := []struct {
		kind       TrainingKind
		wantSystem string
		wantText   string
		wantTemp   float64
	}{
		{kind: TrainingScript, wantSystem: "实训剧本架构师", wantText: "## 环节N：阶段名称", wantTemp: 0.3},
		{kind: TrainingRubric, wantSystem: "评价标准生成器", wantText: "合计为 100 分", wantTemp: 0.2},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			system, prompt, err := BuildTraining(tt.kind, teachingDoc)
			if err != nil {
				t.Fatalf("BuildTraining() error = %v", err)
			}
			if !strings.Contains(system, tt.wantSystem) {
				t.Errorf("system: got = %q, wanted to contain %q", system, tt.wantSystem)
			}
			if !strings.Contains(prompt, tt.wantText) || !strings.Contains(prompt, teachingDoc) {
				t.Errorf("prompt: got = %q, wanted %q and the document", prompt, tt.wantText)
			}
			if got := tt.kind.Temperature(); got != tt.wantTemp {
				t.Errorf("Temperature(): got = %v, wanted = %v", got, tt.wantTemp)
			}
		})
	}

	if _, _, err := BuildTraining("slides", teachingDoc); err == nil {
		t.Error("BuildTraining(slides) error: got = nil, wanted = error")
	}
	if _, _, err := BuildTraining(TrainingScript, ""); !errors.Is(err, ErrMissingGrounding) {
		t.Errorf("BuildTraining(empty) error: got = %v, wanted = %v", err, ErrMissingGrounding)
	}
}
