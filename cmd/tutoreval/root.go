/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutoreval",
		Short: "Grade tutoring-agent dialogues against a rubric",
		Long: `tutoreval grades a tutoring agent's dialogue with a student.

Each enabled criterion of a rubric template is judged by a language model
against the teaching document, and the judgments are aggregated into a
weighted report with levels, veto reasons and improvement suggestions.

Model access is configured with LLM_* environment variables, optionally
loaded from a .env file.`,
		Version:      version,
		SilenceUsage: true,
	}

	envFile := cmd.PersistentFlags().String("env-file", ".env", "Load environment variables from this file if it exists")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(*envFile)
	}

	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newParseCommand())
	cmd.AddCommand(newRubricCommand())
	cmd.AddCommand(newPromptCommand())
	cmd.AddCommand(newGenerateCommand())

	return cmd
}

// loadEnvFile loads path without overriding variables already set. A missing
// file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
