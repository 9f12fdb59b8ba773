/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type binding interface {
	render() (string, error)
}

type unbound string

func (u unbound) render() (string, error) {
	return "", fmt.Errorf("unbound placeholder: %s", string(u))
}

type literalBinding string

func (l literalBinding) render() (string, error) {
	return string(l), nil
}

type jsonBinding struct {
	data any
}

func (j jsonBinding) render() (string, error) {
	b, err := json.MarshalIndent(j.data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(b), nil
}

type yamlBinding struct {
	data any
}

func (y yamlBinding) render() (string, error) {
	b, err := yaml.Marshal(y.data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

type fencedBinding struct {
	lang string
	text string
}

func (f fencedBinding) render() (string, error) {
	fence := strings.Repeat("`", max(3, longestRun(f.text, '`')+1))
	return fence + f.lang + "\n" + strings.TrimRight(f.text, "\n") + "\n" + fence, nil
}

func longestRun(s string, r rune) int {
	best, cur := 0, 0
	for _, c := range s {
		if c == r {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}
