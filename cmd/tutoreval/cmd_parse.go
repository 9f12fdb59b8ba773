/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"encoding/json"
	"fmt"

	"chainguard.dev/tutoreval/dialogue"
	"chainguard.dev/tutoreval/workflow"
	"github.com/spf13/cobra"
)

func newParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse transcripts and workflow configurations",
	}
	cmd.AddCommand(newParseTranscriptCommand())
	cmd.AddCommand(newParseWorkflowCommand())
	return cmd
}

func newParseTranscriptCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "transcript <file>",
		Short: "Convert a transcript to structured JSON or the canonical log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTranscript(args[0])
			if err != nil {
				return err
			}
			var out []byte
			switch format {
			case "json":
				if out, err = marshalIndent(t); err != nil {
					return err
				}
			case "log":
				out = []byte(dialogue.Serialize(t))
			default:
				return fmt.Errorf("unknown format %q (expected json or log)", format)
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or log")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newParseWorkflowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow <file>",
		Short: "Show the stages of a workflow configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readOptional(args[0])
			if err != nil {
				return err
			}
			stages := workflow.Parse([]byte(src))
			if len(stages) == 0 {
				return fmt.Errorf("no stages found in %s", args[0])
			}
			out, err := marshalIndent(stages)
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", out)
		},
	}
	return cmd
}

func marshalIndent(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}
	return append(out, '\n'), nil
}
