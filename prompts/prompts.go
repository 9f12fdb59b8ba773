/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package prompts renders the grounded evaluation prompt for one rubric
// criterion and the companion training-configuration prompts.
package prompts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"chainguard.dev/tutoreval/interpret"
	"chainguard.dev/tutoreval/promptbuilder"
	"chainguard.dev/tutoreval/rubric"
	"chainguard.dev/tutoreval/schema"
	"chainguard.dev/tutoreval/workflow"
)

// SystemPrompt is the evaluator persona sent with every evaluation call.
const SystemPrompt = "你是一位资深的教学质量评估专家，擅长分析教学智能体的对话质量。你的评价客观、专业、有建设性。"

// Call settings for evaluation prompts.
const (
	Temperature = 0.3
	MaxTokens   = 4000
)

// ErrMissingGrounding is returned when the teaching document or the dialogue
// is blank, so no model call should be made.
var ErrMissingGrounding = errors.New("teaching document or dialogue is empty")

// Inputs is the grounding material shared by every criterion of a run.
type Inputs struct {
	TeachingDoc string
	// Dialogue is the rendered transcript, see dialogue.Format.
	Dialogue string
	// ProcessConfig is the optional workflow configuration of the tutor.
	ProcessConfig string
}

const header = `# 评测任务

你需要评测一个教学智能体与学生的对话，只针对下面这一个评分项打分，不要评价其他评分项。

## 评分项

` + "```yaml\n{{criterion}}\n```" + `

## 教师文档（评测依据）

{{teaching_doc}}

## 实际对话记录

{{dialogue}}
`

const processSection = `
## 智能体流程配置

{{process}}
`

const replyInstructions = `
## 输出要求（严格 JSON 格式）

只输出一个 JSON 对象，字段如下：

- score：该评分项的得分，必须是 0 到满分之间的数字
- rating：评级，必须是 "优秀"/"良好"/"合格"/"不足"/"较差" 之一
- score_range：得分所在的分数段，取自 rating_bands
- judgment_basis：详细的评分依据，引用对话中的具体轮次和原文
- issues：发现的问题列表，每条写明位置（第X轮）和问题描述
- highlights：表现亮点列表

回复的 JSON Schema 如下：

` + "```json\n{{schema}}\n```" + `

关键要求：
1. 先根据整体表现判定分数段，再给出具体得分。
2. 每个问题都必须有对话中的证据，不能编造。
3. 字符串内部的双引号必须转义，确保 JSON 合法。
`

const stageInstructions = `4. 结合流程配置，在 stage_suggestions 中按环节列出问题，并针对该环节 Prompt 的具体部分（Role / Profile / Rules / Workflow / Output Requirements）给出修改建议。
`

var (
	evaluationPrompt = promptbuilder.MustNewPrompt(header + replyInstructions)
	processPrompt    = promptbuilder.MustNewPrompt(header + processSection + replyInstructions + stageInstructions)

	replySchema = schema.ReflectType[interpret.Reply]()
)

// criterionView is the YAML shown to the model for the criterion under evaluation.
type criterionView struct {
	Dimension    string   `yaml:"dimension"`
	SubDimension string   `yaml:"sub_dimension"`
	FullScore    float64  `yaml:"full_score"`
	Summary      string   `yaml:"summary,omitempty"`
	Focus        []string `yaml:"focus,omitempty"`
	Bands        []band   `yaml:"rating_bands"`
}

type band struct {
	Rating     string `yaml:"rating"`
	ScoreRange string `yaml:"score_range"`
}

// bandRatios are the lower bounds of each rating as a fraction of the full score.
var bandRatios = []struct {
	rating string
	ratio  float64
}{
	{"优秀", 0.9},
	{"良好", 0.75},
	{"合格", 0.6},
	{"不足", 0.4},
	{"较差", 0},
}

// bands returns the score range of each rating for a criterion worth full points.
func bands(full float64) []band {
	out := make([]band, 0, len(bandRatios))
	upper := full
	for _, b := range bandRatios {
		lower := b.ratio * full
		out = append(out, band{Rating: b.rating, ScoreRange: formatScore(lower) + "-" + formatScore(upper) + "分"})
		upper = lower
	}
	return out
}

func formatScore(f float64) string {
	return strconv.FormatFloat(float64(int64(f*10+0.5))/10, 'f', -1, 64)
}

var _ promptbuilder.Bindable = Inputs{}

// Bind fills the teaching_doc and dialogue placeholders of p, plus process
// when p declares it.
func (in Inputs) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	p, err := p.BindFenced("teaching_doc", "markdown", in.TeachingDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to bind teaching document: %w", err)
	}
	if p, err = p.BindFenced("dialogue", "markdown", in.Dialogue); err != nil {
		return nil, fmt.Errorf("failed to bind dialogue: %w", err)
	}
	if _, ok := p.Placeholders()["process"]; !ok {
		return p, nil
	}
	process := strings.TrimSpace(in.ProcessConfig)
	if stages := workflow.Parse([]byte(process)); len(stages) > 0 {
		process = workflow.Context(stages)
	}
	if p, err = p.BindFenced("process", "markdown", process); err != nil {
		return nil, fmt.Errorf("failed to bind process config: %w", err)
	}
	return p, nil
}

// Build renders the evaluation prompt for c. It returns ErrMissingGrounding
// when the teaching document or dialogue is blank.
func Build(c rubric.Criterion, in Inputs) (string, error) {
	if strings.TrimSpace(in.TeachingDoc) == "" || strings.TrimSpace(in.Dialogue) == "" {
		return "", ErrMissingGrounding
	}

	desc := rubric.Describe(c.Dimension, c.SubDimension)
	view := criterionView{
		Dimension:    rubric.DimensionName(c.Dimension),
		SubDimension: desc.Name,
		FullScore:    c.FullScore,
		Summary:      desc.Summary,
		Focus:        desc.Focus,
		Bands:        bands(c.FullScore),
	}

	p := evaluationPrompt
	if strings.TrimSpace(in.ProcessConfig) != "" {
		p = processPrompt
	}

	p, err := p.BindYAML("criterion", view)
	if err != nil {
		return "", fmt.Errorf("failed to bind criterion: %w", err)
	}
	if p, err = in.Bind(p); err != nil {
		return "", err
	}
	if p, err = p.BindJSON("schema", replySchema); err != nil {
		return "", fmt.Errorf("failed to bind reply schema: %w", err)
	}
	return p.Build()
}
