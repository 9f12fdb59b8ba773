/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package dialogue

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed transcript.schema.json
var transcriptSchemaJSON []byte

const transcriptSchemaName = "transcript.schema.json"

var printer = message.NewPrinter(language.English)

var transcriptSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(transcriptSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded %s: %w", transcriptSchemaName, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(transcriptSchemaName, doc); err != nil {
		return nil, fmt.Errorf("failed to add %s resource: %w", transcriptSchemaName, err)
	}
	return c.Compile(transcriptSchemaName)
})

// Load decodes a transcript in either supported shape.
func Load(data []byte) (*Transcript, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyInput
	}
	if trimmed[0] == '{' {
		return Decode(trimmed)
	}
	// Log headers also start with '[', so only well-formed JSON is rejected here.
	if json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: top-level JSON value is not an object", ErrUnsupportedFormat)
	}
	return Parse(string(data))
}

// Decode validates and decodes a structured transcript.
func Decode(data []byte) (*Transcript, error) {
	sch, err := transcriptSchema()
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, describeValidation(err))
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return &t, nil
}

func describeValidation(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var msgs []string
	var walk func(*jsonschema.ValidationError)
	walk = func(ve *jsonschema.ValidationError) {
		if len(ve.Causes) == 0 {
			msgs = append(msgs, fmt.Sprintf("/%s: %s",
				strings.Join(ve.InstanceLocation, "/"), ve.ErrorKind.LocalizedString(printer)))
			return
		}
		for _, c := range ve.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}
