/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package verdict

import (
	"strings"

	"chainguard.dev/tutoreval/interpret"
)

// orderedSet deduplicates trimmed strings, keeping first-seen order.
type orderedSet struct {
	seen  map[string]struct{}
	order []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]struct{}{}, order: []string{}}
}

func (s *orderedSet) add(items ...string) {
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := s.seen[item]; ok {
			continue
		}
		s.seen[item] = struct{}{}
		s.order = append(s.order, item)
	}
}

func (s *orderedSet) items() []string {
	return s.order
}

// stageMerger combines stage suggestions from many judgments by stage name.
type stageMerger struct {
	index  map[string]int
	stages []interpret.StageSuggestion
	issues []*orderedSet
	fixes  []map[interpret.PromptFix]struct{}
}

func newStageMerger() *stageMerger {
	return &stageMerger{index: map[string]int{}}
}

func (m *stageMerger) add(suggestions []interpret.StageSuggestion) {
	for _, s := range suggestions {
		name := strings.TrimSpace(s.Stage)
		if name == "" {
			continue
		}
		i, ok := m.index[name]
		if !ok {
			i = len(m.stages)
			m.index[name] = i
			m.stages = append(m.stages, interpret.StageSuggestion{Stage: name})
			m.issues = append(m.issues, newOrderedSet())
			m.fixes = append(m.fixes, map[interpret.PromptFix]struct{}{})
		}
		m.issues[i].add(s.Issues...)
		for _, fix := range s.PromptFixes {
			if _, dup := m.fixes[i][fix]; dup {
				continue
			}
			m.fixes[i][fix] = struct{}{}
			m.stages[i].PromptFixes = append(m.stages[i].PromptFixes, fix)
		}
	}
}

func (m *stageMerger) items() []interpret.StageSuggestion {
	for i := range m.stages {
		if issues := m.issues[i].items(); len(issues) > 0 {
			m.stages[i].Issues = issues
		}
	}
	return m.stages
}
