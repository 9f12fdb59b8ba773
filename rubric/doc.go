/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package rubric models grading templates: ordered dimensions of scored
// sub-dimensions with weights and enabled flags, the built-in five-dimension
// template, a catalog of criterion definitions and a registry that resolves
// templates by ID.
package rubric
