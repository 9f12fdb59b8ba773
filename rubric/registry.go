/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Load decodes a template from YAML or JSON and validates it.
func Load(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode rubric template: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rubric template %q: %w", t.ID, err)
	}
	return &t, nil
}

// LoadFile reads and decodes a template file.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric template: %w", err)
	}
	return Load(data)
}

// Registry resolves templates by ID. It stores and hands out copies, so
// callers can never mutate a registered template. The built-in template is
// always registered under DefaultID.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry returns a registry holding the built-in template and ts.
func NewRegistry(ts ...*Template) (*Registry, error) {
	r := &Registry{templates: map[string]*Template{DefaultID: Default()}}
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates t and stores a copy of it, replacing any template with
// the same ID.
func (r *Registry) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("rubric template %q has no id", t.Name)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid rubric template %q: %w", t.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t.Clone()
	return nil
}

// Resolve returns a copy of the template with the given ID. An empty ID
// resolves the built-in template.
func (r *Registry) Resolve(id string) (*Template, error) {
	if id == "" {
		id = DefaultID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return t.Clone(), nil
}

// Visible lists, sorted by ID, the templates an owner may use: the built-in
// template, public templates and the owner's own.
func (r *Registry) Visible(owner string) []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Template
	for id, t := range r.templates {
		if id == DefaultID || t.Public || (owner != "" && t.Owner == owner) {
			out = append(out, t.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *Template) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
