/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives JSON schemas from Go types so prompts can show a
// model the exact reply shape that the interpreter decodes.
package schema

import "github.com/invopop/jsonschema"

var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	DoNotReference:             true,
	// Models routinely add fields of their own; the interpreter ignores them.
	AllowAdditionalProperties: true,
}

// Reflect returns the JSON schema of v.
func Reflect(v any) *jsonschema.Schema {
	s := reflector.Reflect(v)
	// The draft URI only adds noise to a prompt.
	s.Version = ""
	return s
}

// ReflectType returns the JSON schema of T.
func ReflectType[T any]() *jsonschema.Schema {
	var zero T
	return Reflect(&zero)
}

// Properties lists the top-level property names of s in declaration order.
func Properties(s *jsonschema.Schema) []string {
	if s.Properties == nil {
		return nil
	}
	var names []string
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}
