/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func userTemplate(id, owner string, public bool) *Template {
	return &Template{
		ID:     id,
		Name:   id,
		Owner:  owner,
		Public: public,
		Dimensions: Dimensions{{
			Key: GoalCompletion, Enabled: true, Weight: 1,
			SubDimensions: SubDimensions{{Key: "knowledge_coverage", Enabled: true, FullScore: 10}},
		}},
	}
}

func TestRegistryResolve(t *testing.T) {
	mine := userTemplate("mine", "alice", false)
	r, err := NewRegistry(mine, userTemplate("shared", "bob", true))
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	// Mutating the registered value after the fact has no effect.
	mine.Dimensions[0].SubDimensions[0].FullScore = 1000

	got, err := r.Resolve("mine")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.TotalPossibleScore() != 10 {
		t.Errorf("TotalPossibleScore(): got = %v, wanted = 10", got.TotalPossibleScore())
	}

	// Mutating a resolved value does not leak into the registry either.
	got.Dimensions[0].Enabled = false
	again, err := r.Resolve("mine")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !again.Dimensions[0].Enabled {
		t.Error("Resolve() returned a shared instance")
	}

	def, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve(\"\") error = %v", err)
	}
	if diff := cmp.Diff(Default(), def); diff != "" {
		t.Errorf("Resolve(\"\") mismatch (-want +got):\n%s", diff)
	}

	if _, err := r.Resolve("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(missing) error: got = %v, wanted = %v", err, ErrNotFound)
	}
}

func TestRegistryVisible(t *testing.T) {
	r, err := NewRegistry(
		userTemplate("alice-private", "alice", false),
		userTemplate("bob-private", "bob", false),
		userTemplate("public", "bob", true),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	var ids []string
	for _, tmpl := range r.Visible("alice") {
		ids = append(ids, tmpl.ID)
	}
	want := []string{"alice-private", DefaultID, "public"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("Visible() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	empty := &Template{ID: "empty"}
	if err := r.Register(empty); !errors.Is(err, ErrEmptyRubric) {
		t.Errorf("Register(empty) error: got = %v, wanted = %v", err, ErrEmptyRubric)
	}
	if err := r.Register(&Template{Name: "no id"}); err == nil {
		t.Error("Register(no id) error: got = nil, wanted = error")
	}
}
