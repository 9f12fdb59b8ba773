/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"strconv"

	"chainguard.dev/tutoreval/rubric"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRubricCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Inspect rubric templates",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Directory of additional templates (default: RUBRIC_DIR)")

	registry := func(cmd *cobra.Command) (*rubric.Registry, error) {
		if dir == "" {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return nil, fmt.Errorf("failed to process config: %w", err)
			}
			dir = cfg.RubricDir
		}
		return loadRegistry(dir)
	}

	var owner string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the templates visible to an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry(cmd)
			if err != nil {
				return err
			}
			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"ID", "名称", "维度", "子维度", "满分"}),
				tablewriter.WithRenderer(renderer.NewBlueprint()),
				tablewriter.WithRendition(tw.Rendition{Symbols: tw.NewSymbols(tw.StyleMarkdown)}),
			)
			for _, t := range reg.Visible(owner) {
				if err := table.Append([]string{
					t.ID,
					t.Name,
					strconv.Itoa(len(t.EnabledDimensions())),
					strconv.Itoa(len(t.EnabledSubDimensions())),
					strconv.FormatFloat(t.TotalPossibleScore(), 'f', -1, 64),
				}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	list.Flags().StringVar(&owner, "owner", "", "Include private templates of this owner")

	show := &cobra.Command{
		Use:   "show [id|file]",
		Short: "Print a template as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry(cmd)
			if err != nil {
				return err
			}
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			t, err := resolveTemplate(reg, ref)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(t)
			if err != nil {
				return fmt.Errorf("failed to encode template: %w", err)
			}
			return writeOutput(cmd, "", out)
		},
	}

	validate := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a template file is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := rubric.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d criteria, %s points\n",
				t.ID, len(t.EnabledSubDimensions()), strconv.FormatFloat(t.TotalPossibleScore(), 'f', -1, 64))
			return nil
		},
	}

	cmd.AddCommand(list, show, validate)
	return cmd
}
