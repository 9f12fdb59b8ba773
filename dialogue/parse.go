/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dialogue

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

var (
	// ErrEmptyInput is returned when there is nothing to parse.
	ErrEmptyInput = errors.New("transcript is empty")

	// ErrUnsupportedFormat is returned for input that is neither a log nor a structured transcript.
	ErrUnsupportedFormat = errors.New("unsupported transcript format")
)

// Metadata keys recognized in log headers.
const (
	keyCreatedAt   = "日志创建时间"
	keySourceID    = "task_id"
	keySubjectTier = "学生档位"
)

// stepPrefix introduces a stage header in exported step logs.
const stepPrefix = "Step:"

// maxLabelBytes bounds how far into a line a speaker label may extend.
const maxLabelBytes = 16

var roundPattern = regexp.MustCompile(`第\s*(\d+)\s*轮`)

// Parse converts a free-form session log into a Transcript.
func Parse(raw string) (*Transcript, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	p := &parser{stage: DefaultStage}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	for line := range strings.SplitSeq(raw, "\n") {
		p.consume(line)
	}
	p.closeTurn()

	if len(p.out.Stages) == 0 {
		p.out.Stages = []Stage{{Name: DefaultStage}}
	}
	return &p.out, nil
}

type parser struct {
	out   Transcript
	stage string
	round int

	open    bool
	speaker Speaker
	lines   []string
}

func (p *parser) consume(line string) {
	trimmed := strings.TrimSpace(line)

	switch {
	case isHeader(trimmed):
		p.closeTurn()
		p.setRound(trimmed)
		return

	case isStepHeader(trimmed):
		p.closeTurn()
		p.stage = stepStage(trimmed)
		// A step without a round marker stays in the current round.
		if roundPattern.MatchString(trimmed) {
			p.setRound(trimmed)
		}
		return

	case isSeparator(trimmed):
		p.closeTurn()
		return
	}

	if speaker, rest, ok := speakerLabel(line); ok {
		p.closeTurn()
		p.open, p.speaker = true, speaker
		p.lines = append(p.lines[:0], rest)
		return
	}

	if p.open {
		p.lines = append(p.lines, line)
		return
	}

	if key, value, ok := splitField(trimmed); ok {
		switch key {
		case keyCreatedAt:
			p.out.Metadata.CreatedAt = value
		case keySourceID:
			p.out.Metadata.SourceID = value
		case keySubjectTier:
			p.out.Metadata.SubjectTier = value
		}
	}
	// Anything else outside a turn is noise.
}

func (p *parser) setRound(header string) {
	p.round = 0
	if m := roundPattern.FindStringSubmatch(header); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			p.round = n
		}
	}
	p.out.Metadata.TotalRounds = max(p.out.Metadata.TotalRounds, p.round)
}

func (p *parser) closeTurn() {
	if !p.open {
		return
	}
	p.open = false

	text := strings.TrimSpace(strings.Join(p.lines, "\n"))
	if text == "" {
		return
	}
	turn := Turn{Speaker: p.speaker, Text: text, Round: p.round}

	stages := p.out.Stages
	if n := len(stages); n > 0 && stages[n-1].Name == p.stage {
		stages[n-1].Turns = append(stages[n-1].Turns, turn)
		return
	}
	p.out.Stages = append(stages, Stage{Name: p.stage, Turns: []Turn{turn}})
}

func isHeader(s string) bool {
	return strings.HasPrefix(s, "[") && strings.Contains(s, "]")
}

// isStepHeader matches "Step: <name> | ..." lines. A "Step:" line without
// a "|" is message text.
func isStepHeader(s string) bool {
	return strings.HasPrefix(s, stepPrefix) && strings.Contains(s, "|")
}

func isSeparator(s string) bool {
	return strings.HasPrefix(s, "---") || strings.HasPrefix(s, "===")
}

// stepStage extracts the stage name from "Step: <name> | ...".
func stepStage(s string) string {
	name := strings.TrimPrefix(s, stepPrefix)
	if i := strings.Index(name, "|"); i >= 0 {
		name = name[:i]
	}
	if name = strings.TrimSpace(name); name == "" {
		return DefaultStage
	}
	return name
}

// speakerLabel recognizes "AI:" and "用户:" with ASCII or full-width punctuation.
func speakerLabel(line string) (Speaker, string, bool) {
	key, rest, ok := cutColon(strings.TrimLeft(line, " \t"))
	if !ok || len(key) > maxLabelBytes {
		return "", "", false
	}
	switch key = width.Narrow.String(strings.TrimSpace(key)); {
	case strings.EqualFold(key, "AI"):
		return Assistant, rest, true
	case key == "用户":
		return User, rest, true
	}
	return "", "", false
}

// splitField splits a "key: value" metadata line.
func splitField(s string) (string, string, bool) {
	key, value, ok := cutColon(s)
	if !ok {
		return "", "", false
	}
	key = width.Narrow.String(strings.TrimSpace(key))
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// cutColon splits s around its first ASCII or full-width colon.
func cutColon(s string) (string, string, bool) {
	i := strings.IndexAny(s, ":：")
	if i < 0 {
		return "", "", false
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return s[:i], s[i+size:], true
}
