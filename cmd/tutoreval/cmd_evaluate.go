/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"slices"

	"chainguard.dev/tutoreval/evaluation"
	"chainguard.dev/tutoreval/metrics"
	"chainguard.dev/tutoreval/reportstore"
	"chainguard.dev/tutoreval/transport"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	doc         string
	reference   string
	dialogue    string
	process     string
	template    string
	policy      string
	format      string
	output      string
	sourceID    string
	concurrency int
	metricsFile string
}

func newEvaluateCommand() *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a tutoring dialogue",
		Long: `Evaluate a tutoring dialogue against a rubric template.

The transcript may be a conversation log or a structured JSON transcript.
The command exits with status 1 when the evaluation completes but the
dialogue does not meet the pass criteria.`,
		Example: `  tutoreval evaluate --doc lesson.md --dialogue session.txt
  tutoreval evaluate --doc lesson.md --dialogue session.json --process workflow.md --format markdown --output report.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.doc, "doc", "", "Teaching document (Markdown)")
	f.StringVar(&opts.reference, "reference", "", "Optional reference document appended to the teaching document")
	f.StringVar(&opts.dialogue, "dialogue", "", "Transcript file (log or JSON)")
	f.StringVar(&opts.process, "process", "", "Optional workflow configuration of the agent")
	f.StringVar(&opts.template, "template", "", "Rubric template id or file (default: built-in template)")
	f.StringVar(&opts.policy, "policy", "", "Verdict policy file (YAML or JSON)")
	f.StringVarP(&opts.format, "format", "f", formatTable, "Output format: table, breakdown, markdown or json")
	f.StringVarP(&opts.output, "output", "o", "", "Write the report to this file instead of stdout")
	f.StringVar(&opts.sourceID, "source-id", "", "Identifier of the evaluated conversation (default: from the transcript)")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Maximum concurrent model calls (default: EVAL_CONCURRENCY)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus run metrics to this file (default: METRICS_TEXTFILE)")
	_ = cmd.MarkFlagRequired("doc")
	_ = cmd.MarkFlagRequired("dialogue")

	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions) error {
	ctx := cmd.Context()

	if !slices.Contains(reportFormats, opts.format) {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if opts.concurrency > 0 {
		cfg.Concurrency = opts.concurrency
	}
	if opts.metricsFile != "" {
		cfg.MetricsFile = opts.metricsFile
	}

	reg, err := loadRegistry(cfg.RubricDir)
	if err != nil {
		return err
	}
	tmpl, err := resolveTemplate(reg, opts.template)
	if err != nil {
		return err
	}
	policy, err := loadPolicy(opts.policy)
	if err != nil {
		return err
	}
	doc, err := readDocument(opts.doc, opts.reference)
	if err != nil {
		return err
	}
	transcript, err := readTranscript(opts.dialogue)
	if err != nil {
		return err
	}
	process, err := readOptional(opts.process)
	if err != nil {
		return err
	}

	enricher := metrics.WithTemplate(tmpl.ID)
	t, err := newTransport(ctx, cfg, transport.WithAttributeEnricher(enricher))
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}
	ev, err := evaluation.New(t,
		evaluation.WithPolicy(policy),
		evaluation.WithConcurrency(cfg.Concurrency),
		evaluation.WithCallTimeout(cfg.CallTimeout),
		evaluation.WithRunTimeout(cfg.RunTimeout),
		evaluation.WithModel(cfg.LLM.Model),
		evaluation.WithAttributeEnricher(enricher),
	)
	if err != nil {
		return fmt.Errorf("failed to create evaluator: %w", err)
	}

	r, err := ev.Evaluate(ctx, &evaluation.Request{
		TeachingDoc:   doc,
		Transcript:    transcript,
		ProcessConfig: process,
		Template:      tmpl,
		SourceID:      opts.sourceID,
	})
	if cfg.MetricsFile != "" {
		// Written on failure too so batch jobs record errored runs.
		defer func() {
			if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
				clog.FromContext(ctx).With("error", err).Warn("Failed to write metrics file")
			}
		}()
	}
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	clog.FromContext(ctx).With("report_id", r.ID).
		With("total_score", r.TotalScore).
		With("final_level", r.FinalLevel).
		Info("Evaluation completed")

	store, err := reportstore.Open(ctx, cfg.Store)
	if err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Report store unavailable, skipping persistence")
	}
	reportstore.Save(ctx, store, r)

	out, err := renderReport(r, opts.format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, opts.output, out); err != nil {
		return err
	}

	if !r.PassCriteriaMet {
		return &FailedEvaluationError{Level: r.FinalLevel, Score: r.TotalScore, Max: r.MaxScore}
	}
	return nil
}
