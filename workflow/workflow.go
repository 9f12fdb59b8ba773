/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package workflow reads the Markdown process configuration of a tutoring
// agent and renders it as evaluation context.
//
// A configuration is a sequence of stages, each introduced by a heading such
// as "## 环节1：导入". Within a stage, headings starting with Role, Profile,
// Rules, Workflow or Output Requirements open the corresponding section:
//
//	## 环节1：导入
//	### Role：你是一位耐心的小学数学老师
//	### Rules（规则与边界约束）
//	1. 不直接给出答案
//	### Workflow（对话流程）
//	1. **问候学生**：确认学习状态
package workflow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Stage is the configuration of one workflow stage.
type Stage struct {
	Name               string   `json:"stage_name"`
	Role               string   `json:"role,omitempty"`
	Profile            string   `json:"profile,omitempty"`
	Rules              []string `json:"rules,omitempty"`
	Steps              []string `json:"workflow,omitempty"`
	OutputRequirements string   `json:"output_requirements,omitempty"`
}

type section int

const (
	sectionNone section = iota
	sectionRole
	sectionProfile
	sectionRules
	sectionSteps
	sectionOutput
)

var sectionKeywords = []struct {
	prefix string
	kind   section
}{
	{"output requirements", sectionOutput},
	{"workflow", sectionSteps},
	{"profile", sectionProfile},
	{"rules", sectionRules},
	{"role", sectionRole},
}

var (
	stagePattern = regexp.MustCompile(`^环节\s*\d+\s*[：:]`)
	qualifier    = regexp.MustCompile(`^\s*[（(][^）)]*[）)]`)
)

// Parse extracts the stages of a process configuration. Content before the
// first stage heading is ignored.
func Parse(src []byte) []Stage {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var (
		stages []Stage
		cur    *Stage
		sec    section
		prose  = map[section][]string{}
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Role = strings.Join(prose[sectionRole], "\n")
		cur.Profile = strings.Join(prose[sectionProfile], "\n")
		cur.OutputRequirements = strings.Join(prose[sectionOutput], "\n")
		stages = append(stages, *cur)
		prose = map[section][]string{}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(inlineText(node, src))
			if stagePattern.MatchString(title) {
				flush()
				cur, sec = &Stage{Name: title}, sectionNone
				continue
			}
			if cur == nil {
				continue
			}
			var inline string
			sec, inline = classify(title)
			if inline != "" && sec != sectionNone {
				prose[sec] = append(prose[sec], inline)
			}

		case *ast.List:
			if cur == nil {
				continue
			}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				switch sec {
				case sectionRules:
					cur.Rules = append(cur.Rules, strings.TrimSpace(inlineText(item, src)))
				case sectionSteps:
					cur.Steps = append(cur.Steps, stepTitle(item, src))
				case sectionRole, sectionProfile, sectionOutput:
					prose[sec] = append(prose[sec], "- "+strings.TrimSpace(inlineText(item, src)))
				}
			}

		default:
			if cur == nil {
				continue
			}
			switch sec {
			case sectionRole, sectionProfile, sectionOutput:
				if s := strings.TrimSpace(inlineText(node, src)); s != "" {
					prose[sec] = append(prose[sec], s)
				}
			}
		}
	}
	flush()
	return stages
}

// classify maps a section heading to its kind and any content written on
// the heading line itself, as in "Role：你是一位数学老师".
func classify(title string) (section, string) {
	lower := strings.ToLower(title)
	for _, kw := range sectionKeywords {
		if !strings.HasPrefix(lower, kw.prefix) {
			continue
		}
		rest := title[len(kw.prefix):]
		rest = qualifier.ReplaceAllString(rest, "")
		rest = strings.TrimSpace(rest)
		rest = strings.TrimLeft(rest, ":：")
		return kw.kind, strings.TrimSpace(rest)
	}
	return sectionNone, ""
}

// stepTitle prefers the bold lead-in of a workflow item.
func stepTitle(item ast.Node, src []byte) string {
	var bold string
	_ = ast.Walk(item, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if e, ok := n.(*ast.Emphasis); ok && entering && e.Level == 2 {
			bold = inlineText(e, src)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if bold != "" {
		return strings.TrimSpace(bold)
	}
	return strings.TrimSpace(inlineText(item, src))
}

// inlineText concatenates the text leaves below n.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.Paragraph, *ast.TextBlock:
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// Context renders stages as a Markdown section for evaluation prompts. It
// returns "" when there are no stages.
func Context(stages []Stage) string {
	if len(stages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("以下是各环节的 Prompt 配置，请在评估时将对话中的问题关联到具体环节。\n")
	for _, s := range stages {
		fmt.Fprintf(&b, "\n### %s\n", s.Name)
		if s.Role != "" {
			fmt.Fprintf(&b, "\n**角色定位**：%s\n", s.Role)
		}
		if s.Profile != "" {
			fmt.Fprintf(&b, "\n**人设画像**：\n%s\n", s.Profile)
		}
		writeNumbered(&b, "规则约束", s.Rules)
		writeNumbered(&b, "对话流程", s.Steps)
		if s.OutputRequirements != "" {
			fmt.Fprintf(&b, "\n**输出要求**：\n%s\n", s.OutputRequirements)
		}
	}
	return b.String()
}

func writeNumbered(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s**：\n", title)
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
}
