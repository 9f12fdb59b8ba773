/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"strings"

	"chainguard.dev/tutoreval/dialogue"
	"chainguard.dev/tutoreval/prompts"
	"chainguard.dev/tutoreval/rubric"
	"github.com/spf13/cobra"
)

func newPromptCommand() *cobra.Command {
	var doc, reference, transcript, process, template, dimension, sub string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the evaluation prompt of one criterion without calling a model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry("")
			if err != nil {
				return err
			}
			tmpl, err := resolveTemplate(reg, template)
			if err != nil {
				return err
			}
			c, err := findCriterion(tmpl, dimension, sub)
			if err != nil {
				return err
			}
			d, err := readDocument(doc, reference)
			if err != nil {
				return err
			}
			t, err := readTranscript(transcript)
			if err != nil {
				return err
			}
			p, err := readOptional(process)
			if err != nil {
				return err
			}

			prompt, err := prompts.Build(c, prompts.Inputs{
				TeachingDoc:   d,
				Dialogue:      dialogue.Format(t),
				ProcessConfig: p,
			})
			if err != nil {
				return err
			}
			var b strings.Builder
			fmt.Fprintf(&b, "## system\n\n%s\n\n## user\n\n%s\n", prompts.SystemPrompt, prompt)
			return writeOutput(cmd, "", []byte(b.String()))
		},
	}

	f := cmd.Flags()
	f.StringVar(&doc, "doc", "", "Teaching document (Markdown)")
	f.StringVar(&reference, "reference", "", "Optional reference document")
	f.StringVar(&transcript, "dialogue", "", "Transcript file (log or JSON)")
	f.StringVar(&process, "process", "", "Optional workflow configuration")
	f.StringVar(&template, "template", "", "Rubric template id or file")
	f.StringVar(&dimension, "dimension", "", "Dimension key")
	f.StringVar(&sub, "sub", "", "Sub-dimension key")
	for _, name := range []string{"doc", "dialogue", "dimension", "sub"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func findCriterion(t *rubric.Template, dimension, sub string) (rubric.Criterion, error) {
	for _, c := range t.EnabledSubDimensions() {
		if c.Dimension == dimension && c.SubDimension == sub {
			return c, nil
		}
	}
	return rubric.Criterion{}, fmt.Errorf("%s.%s is not an enabled criterion of template %q", dimension, sub, t.ID)
}
