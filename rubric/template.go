/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRubric is returned when a template has nothing to score.
	ErrEmptyRubric = errors.New("rubric has no enabled sub-dimensions")

	// ErrNotFound is returned when a registry has no template with the requested ID.
	ErrNotFound = errors.New("rubric template not found")
)

// SubDimension is a scored leaf criterion.
type SubDimension struct {
	Key       string
	Enabled   bool
	FullScore float64
}

// Dimension is a top-level grading axis.
type Dimension struct {
	Key           string
	Enabled       bool
	Weight        float64
	SubDimensions SubDimensions
}

// Template is a rubric configuration. Dimensions and their sub-dimensions
// keep their declaration order, which drives evaluation and report order.
type Template struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Owner       string     `json:"owner,omitempty" yaml:"owner,omitempty"`
	Public      bool       `json:"public,omitempty" yaml:"public,omitempty"`
	Dimensions  Dimensions `json:"dimensions" yaml:"dimensions"`
}

// Criterion identifies one enabled sub-dimension and its maximum score.
type Criterion struct {
	Dimension    string  `json:"dimension"`
	SubDimension string  `json:"sub_dimension"`
	FullScore    float64 `json:"full_score"`
}

// EnabledSubDimensions lists the sub-dimensions that are enabled under an
// enabled dimension, in dimension then sub-dimension declaration order.
func (t *Template) EnabledSubDimensions() []Criterion {
	var out []Criterion
	for _, d := range t.Dimensions {
		if !d.Enabled {
			continue
		}
		for _, s := range d.SubDimensions {
			if !s.Enabled {
				continue
			}
			out = append(out, Criterion{
				Dimension:    d.Key,
				SubDimension: s.Key,
				FullScore:    s.FullScore,
			})
		}
	}
	return out
}

// TotalPossibleScore sums the full scores of EnabledSubDimensions.
func (t *Template) TotalPossibleScore() float64 {
	var total float64
	for _, c := range t.EnabledSubDimensions() {
		total += c.FullScore
	}
	return total
}

// Dimension returns the dimension with the given key.
func (t *Template) Dimension(key string) (*Dimension, bool) {
	for i := range t.Dimensions {
		if t.Dimensions[i].Key == key {
			return &t.Dimensions[i], true
		}
	}
	return nil, false
}

// EnabledDimensions returns the enabled dimensions that have at least one
// enabled sub-dimension.
func (t *Template) EnabledDimensions() []Dimension {
	var out []Dimension
	for _, d := range t.Dimensions {
		if !d.Enabled {
			continue
		}
		for _, s := range d.SubDimensions {
			if s.Enabled {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// Validate checks the structural invariants of the template.
func (t *Template) Validate() error {
	dims := make(map[string]struct{}, len(t.Dimensions))
	for _, d := range t.Dimensions {
		if d.Key == "" {
			return errors.New("dimension key is required")
		}
		if _, dup := dims[d.Key]; dup {
			return fmt.Errorf("duplicate dimension %q", d.Key)
		}
		dims[d.Key] = struct{}{}
		if d.Weight <= 0 {
			return fmt.Errorf("dimension %q: weight must be positive, got %v", d.Key, d.Weight)
		}

		subs := make(map[string]struct{}, len(d.SubDimensions))
		for _, s := range d.SubDimensions {
			if s.Key == "" {
				return fmt.Errorf("dimension %q: sub-dimension key is required", d.Key)
			}
			if _, dup := subs[s.Key]; dup {
				return fmt.Errorf("dimension %q: duplicate sub-dimension %q", d.Key, s.Key)
			}
			subs[s.Key] = struct{}{}
			if s.FullScore <= 0 {
				return fmt.Errorf("%s.%s: full score must be positive, got %v", d.Key, s.Key, s.FullScore)
			}
		}
	}
	if len(t.EnabledSubDimensions()) == 0 {
		return ErrEmptyRubric
	}
	return nil
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	c := *t
	c.Dimensions = make(Dimensions, len(t.Dimensions))
	for i, d := range t.Dimensions {
		d.SubDimensions = append(SubDimensions(nil), d.SubDimensions...)
		c.Dimensions[i] = d
	}
	return &c
}
