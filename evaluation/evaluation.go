/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chainguard.dev/tutoreval/dialogue"
	"chainguard.dev/tutoreval/interpret"
	"chainguard.dev/tutoreval/judge"
	"chainguard.dev/tutoreval/metrics"
	"chainguard.dev/tutoreval/prompts"
	"chainguard.dev/tutoreval/rubric"
	"chainguard.dev/tutoreval/transport"
	"chainguard.dev/tutoreval/verdict"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// ErrNoTranscript is returned when a request carries no transcript.
var ErrNoTranscript = errors.New("transcript is required")

// Diagnostics recorded on degraded judgments.
const (
	diagMissingGrounding = "缺少评测依据：教师文档或对话记录为空，未调用模型"
	diagTransport        = "模型调用失败："
	diagUnparsable       = "模型响应无法解析："
)

// Request is the input of one evaluation run.
type Request struct {
	TeachingDoc   string
	Transcript    *dialogue.Transcript
	ProcessConfig string
	// Template defaults to rubric.Default().
	Template *rubric.Template
	// SourceID defaults to the transcript's source id.
	SourceID string
}

// Evaluator runs evaluations. It holds only immutable configuration and is
// safe for concurrent use.
type Evaluator struct {
	judge       judge.Interface
	judgeOpts   []judge.Option
	transport   transport.Interface
	policy      *verdict.Policy
	concurrency int
	callTimeout time.Duration
	runTimeout  time.Duration
	model       string
	genai       *metrics.GenAI

	now   func() time.Time
	newID func() string
}

// New creates an Evaluator that sends prompts through t.
func New(t transport.Interface, opts ...Option) (*Evaluator, error) {
	if t == nil {
		return nil, errors.New("transport cannot be nil")
	}
	e := &Evaluator{
		transport:   t,
		policy:      verdict.DefaultPolicy(),
		concurrency: 4,
		callTimeout: 120 * time.Second,
		runTimeout:  15 * time.Minute,
		genai:       metrics.NewGenAI("chainguard.dev/tutoreval"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	j, err := judge.New(t, e.judgeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create judge: %w", err)
	}
	e.judge = j
	return e, nil
}

func tracer() oteltrace.Tracer {
	return otel.Tracer("chainguard.dev/tutoreval/evaluation",
		oteltrace.WithInstrumentationVersion("1.0.0"))
}

// Evaluate judges every enabled sub-dimension of the template and aggregates
// the judgments into a report.
//
// Configuration problems are returned before any model call. Once calls
// start, a failing sub-dimension is scored zero with a diagnostic issue and
// the run continues. If ctx is cancelled, Evaluate returns ctx.Err() and no
// report.
func (e *Evaluator) Evaluate(ctx context.Context, req *Request) (report *verdict.Report, err error) {
	if req == nil || req.Transcript == nil {
		return nil, ErrNoTranscript
	}
	tmpl := req.Template
	if tmpl == nil {
		tmpl = rubric.Default()
	}
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rubric template: %w", err)
	}

	sourceID := req.SourceID
	if sourceID == "" {
		sourceID = req.Transcript.Metadata.SourceID
	}
	criteria := tmpl.EnabledSubDimensions()
	inputs := prompts.Inputs{
		TeachingDoc:   req.TeachingDoc,
		Dialogue:      dialogue.Format(req.Transcript),
		ProcessConfig: req.ProcessConfig,
	}

	observer := metrics.NewRunObserver(tmpl.ID)
	ctx, span := tracer().Start(ctx, "tutoreval.evaluate", oteltrace.WithAttributes(
		attribute.String("template", tmpl.ID),
		attribute.String("source_id", sourceID),
		attribute.Int("criteria", len(criteria)),
	))
	defer func() {
		if err != nil {
			observer.Errored()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	log := clog.FromContext(ctx).With("template", tmpl.ID).With("source_id", sourceID)
	log.With("criteria", len(criteria)).
		With("turns", req.Transcript.Len()).
		Info("Starting evaluation")

	runCtx, cancel := context.WithTimeout(ctx, e.runTimeout)
	defer cancel()

	// Each goroutine writes only its own slot.
	judgments := make([]*interpret.Judgment, len(criteria))
	g := new(errgroup.Group)
	g.SetLimit(e.concurrency)
	for i, c := range criteria {
		g.Go(func() error {
			judgments[i] = e.judgeOne(runCtx, c, inputs, observer)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.With("error", err).Warn("Evaluation cancelled")
		return nil, err
	}

	report, err = e.policy.Aggregate(tmpl, judgments)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate judgments: %w", err)
	}
	report.ID = e.newID()
	report.SourceID = sourceID
	report.Model = e.model
	report.CreatedAt = e.now().UTC()

	observer.Completed(report.TotalScore, report.MaxScore, report.PassCriteriaMet, report.Vetoed())
	span.SetAttributes(
		attribute.Float64("total_score", report.TotalScore),
		attribute.String("final_level", report.FinalLevel),
		attribute.Bool("passed", report.PassCriteriaMet),
	)
	log.With("report_id", report.ID).
		With("total_score", report.TotalScore).
		With("max_score", report.MaxScore).
		With("final_level", report.FinalLevel).
		With("vetoes", len(report.VetoReasons)).
		Info("Evaluation complete")
	return report, nil
}

// judgeOne scores one criterion, turning every failure into a degraded
// zero-score judgment.
func (e *Evaluator) judgeOne(ctx context.Context, c rubric.Criterion, inputs prompts.Inputs, observer *metrics.RunObserver) *interpret.Judgment {
	ctx, span := tracer().Start(ctx, "tutoreval.judge", oteltrace.WithAttributes(
		attribute.String("dimension", c.Dimension),
		attribute.String("sub_dimension", c.SubDimension),
	))
	defer span.End()
	log := clog.FromContext(ctx).With("dimension", c.Dimension).With("sub_dimension", c.SubDimension)

	var (
		j   *interpret.Judgment
		err error
	)
	if err = ctx.Err(); err == nil {
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		j, err = e.judge.Judge(callCtx, &judge.Request{Criterion: c, Inputs: inputs})
		cancel()
	}
	if err == nil {
		e.genai.RecordJudgment(ctx, c.Dimension, metrics.OutcomeScored)
		span.SetAttributes(attribute.Float64("score", j.Score))
		span.SetStatus(codes.Ok, "")
		return j
	}

	outcome, diagnostic, raw := classify(err)
	e.genai.RecordJudgment(ctx, c.Dimension, outcome)
	observer.Degraded(outcome)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.With("outcome", outcome).With("error", err).Warn("Sub-dimension degraded to zero score")

	return &interpret.Judgment{
		Dimension:    c.Dimension,
		SubDimension: c.SubDimension,
		FullScore:    c.FullScore,
		Score:        0,
		Rating:       interpret.Unknown,
		ScoreRange:   interpret.Unknown,
		Rationale:    diagnostic,
		Issues:       []string{diagnostic},
		Highlights:   []string{},
		RawResponse:  raw,
		Degraded:     true,
	}
}

func classify(err error) (outcome, diagnostic, raw string) {
	var pf *interpret.ParseFailure
	switch {
	case errors.Is(err, prompts.ErrMissingGrounding):
		return metrics.OutcomeMissingGrounding, diagMissingGrounding, ""
	case errors.As(err, &pf):
		return metrics.OutcomeParseFailure, diagUnparsable + pf.Reason, pf.Raw
	default:
		return metrics.OutcomeTransportError, diagTransport + err.Error(), ""
	}
}
