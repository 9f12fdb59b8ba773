/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompts

import (
	"fmt"
	"strings"

	"chainguard.dev/tutoreval/promptbuilder"
)

// ReferenceMarker introduces the optional reference document appended to a
// teaching document.
const ReferenceMarker = "## 参考文档"

// JoinReference appends ref to doc under ReferenceMarker. A blank ref leaves
// doc unchanged.
func JoinReference(doc, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return doc
	}
	return strings.TrimRight(doc, "\n") + "\n\n" + ReferenceMarker + "\n\n" + ref + "\n"
}

// TrainingKind selects a training-configuration generator.
type TrainingKind string

const (
	// TrainingScript produces a staged training script whose stages use the
	// "## 环节N：名称" layout that workflow.Parse reads back.
	TrainingScript TrainingKind = "script"
	// TrainingRubric produces a hierarchical scoring rubric.
	TrainingRubric TrainingKind = "rubric"
)

// Temperature is the sampling temperature used for the kind.
func (k TrainingKind) Temperature() float64 {
	if k == TrainingRubric {
		return 0.2
	}
	return 0.3
}

const scriptSystem = `你是一名专业的实训剧本架构师（Training Script Architect），擅长将非标准化实训任务文档转化为结构清晰、逻辑严密的 Markdown 格式训练剧本配置。
你的输出必须是完整的 Markdown 文档，包含基础配置、训练阶段、提示词、跳转逻辑等。
不要输出 JSON，不要做评分，不要输出与剧本配置无关的内容。`

const rubricSystem = `你是一个专业的训练评价标准生成器。你的任务是根据实训任务文档，生成层级化的评价标准。
采用"主评分项-子得分点"结构，以 Markdown 格式输出。
不要输出 JSON，不要做对话评分，不要输出与评价标准无关的内容。`

var scriptPrompt = promptbuilder.MustNewPrompt(`请根据下面的实训任务文档，生成训练剧本配置。

## 实训任务文档

{{doc}}

## 输出格式

1. 先输出"# 基础配置"，写明任务名称、目标学生和整体目标。
2. 每个训练阶段使用二级标题"## 环节N：阶段名称"，依次包含以下小节：
   - ### Role：智能体在该环节扮演的角色
   - ### Profile：人设画像与说话风格
   - ### Rules：必须遵守的规则约束
   - ### Workflow：有序的对话步骤，每一步以加粗标题开头
   - ### Output Requirements：该环节的输出要求
3. 在每个环节末尾说明进入下一环节的跳转条件。
`)

var rubricPrompt = promptbuilder.MustNewPrompt(`请根据下面的实训任务文档，生成该实训的评价标准。

## 实训任务文档

{{doc}}

## 输出格式

1. 每个主评分项使用二级标题，并注明分值。
2. 每个主评分项下用列表列出子得分点，写明得分条件和扣分条件。
3. 所有主评分项的分值合计为 100 分。
`)

// BuildTraining renders the system and user prompts of a training
// configuration generator for the teaching document doc.
func BuildTraining(kind TrainingKind, doc string) (system, prompt string, err error) {
	if strings.TrimSpace(doc) == "" {
		return "", "", ErrMissingGrounding
	}

	var p *promptbuilder.Prompt
	switch kind {
	case TrainingScript:
		system, p = scriptSystem, scriptPrompt
	case TrainingRubric:
		system, p = rubricSystem, rubricPrompt
	default:
		return "", "", fmt.Errorf("unknown training kind %q", kind)
	}

	p, err = p.BindFenced("doc", "markdown", doc)
	if err != nil {
		return "", "", fmt.Errorf("failed to bind document: %w", err)
	}
	prompt, err = p.Build()
	if err != nil {
		return "", "", fmt.Errorf("failed to build %s prompt: %w", kind, err)
	}
	return system, prompt, nil
}
