/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"chainguard.dev/tutoreval/evaluation"
	"chainguard.dev/tutoreval/prompts"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	var doc, reference, output string

	cmd := &cobra.Command{
		Use:   "generate <script|rubric>",
		Short: "Generate a training script or scoring rubric from a teaching document",
		Example: `  tutoreval generate script --doc lesson.md --output workflow.md
  tutoreval generate rubric --doc lesson.md --reference textbook.md`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(prompts.TrainingScript), string(prompts.TrainingRubric)},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind := prompts.TrainingKind(args[0])
			if kind != prompts.TrainingScript && kind != prompts.TrainingRubric {
				return fmt.Errorf("unknown kind %q (expected script or rubric)", args[0])
			}

			d, err := readDocument(doc, reference)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(ctx)
			if err != nil {
				return fmt.Errorf("failed to process config: %w", err)
			}
			t, err := newTransport(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to create transport: %w", err)
			}

			out, err := evaluation.GenerateTraining(ctx, t, kind, d)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, []byte(out+"\n"))
		},
	}

	cmd.Flags().StringVar(&doc, "doc", "", "Teaching document (Markdown)")
	cmd.Flags().StringVar(&reference, "reference", "", "Optional reference document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("doc")
	return cmd
}
