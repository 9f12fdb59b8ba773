/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evaluation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/tutoreval/dialogue"
	"chainguard.dev/tutoreval/rubric"
	"chainguard.dev/tutoreval/transport"
	"chainguard.dev/tutoreval/transport/transporttest"
	"chainguard.dev/tutoreval/verdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullMarks = "```json\n{\"score\": 100, \"rating\": \"优秀\", \"judgment_basis\": \"表现稳定\", \"highlights\": [\"引导充分\"]}\n```"

var createdAt = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func transcript() *dialogue.Transcript {
	return &dialogue.Transcript{
		Metadata: dialogue.Metadata{SourceID: "task-42"},
		Stages: []dialogue.Stage{{
			Name: "环节1：导入",
			Turns: []dialogue.Turn{
				{Speaker: dialogue.Assistant, Text: "你好，今天我们学习分数加法。", Round: 1},
				{Speaker: dialogue.User, Text: "好的。", Round: 1},
			},
		}},
	}
}

func newEvaluator(t *testing.T, tr transport.Interface, opts ...Option) *Evaluator {
	t.Helper()
	e, err := New(tr, opts...)
	require.NoError(t, err)
	e.now = func() time.Time { return createdAt }
	e.newID = func() string { return "report-1" }
	return e
}

func request() *Request {
	return &Request{TeachingDoc: "目标：掌握同分母分数加法", Transcript: transcript()}
}

func subKey(dimension, sub string) string {
	return "sub_dimension: " + rubric.Describe(dimension, sub).Name
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		script       map[string]transporttest.Reply
		wantTotal    float64
		wantLevel    string
		wantPassed   bool
		wantDegraded map[string]string
		wantVetoed   bool
	}{{
		name:       "all criteria scored",
		wantTotal:  100,
		wantLevel:  verdict.LevelExcellent,
		wantPassed: true,
	}, {
		name: "transport failure degrades one criterion",
		script: map[string]transporttest.Reply{
			subKey(rubric.AccuracyBoundaries, rubric.Factuality): {Err: &transport.Error{Provider: "fake", StatusCode: 503, Err: errors.New("service unavailable")}},
		},
		wantTotal:    95,
		wantLevel:    verdict.LevelExcellent,
		wantPassed:   true,
		wantDegraded: map[string]string{rubric.Factuality: diagTransport},
	}, {
		name: "unparsable reply degrades one criterion",
		script: map[string]transporttest.Reply{
			subKey(rubric.InteractionExperience, "conciseness"): {Text: "这段对话整体不错，我给四分。"},
		},
		wantTotal:    96,
		wantLevel:    verdict.LevelExcellent,
		wantPassed:   true,
		wantDegraded: map[string]string{"conciseness": diagUnparsable},
	}, {
		name: "safety violation vetoes the run",
		script: map[string]transporttest.Reply{
			subKey(rubric.AccuracyBoundaries, rubric.SafetyGuardrails): {Text: `{"score": 0, "rating": "较差", "issues": ["泄露了考试答案"]}`},
		},
		wantTotal:  97,
		wantLevel:  verdict.VetoLevel,
		wantVetoed: true,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &transporttest.Fake{Model: "fake", Script: tt.script, Default: transporttest.Reply{Text: fullMarks}}
			e := newEvaluator(t, fake, WithModel("claude-sonnet-4.5"))

			got, err := e.Evaluate(context.Background(), request())
			require.NoError(t, err)

			criteria := rubric.Default().EnabledSubDimensions()
			assert.Len(t, fake.Requests(), len(criteria))
			require.Len(t, got.Judgments, len(criteria))
			assert.InDelta(t, tt.wantTotal, got.TotalScore, 1e-9)
			assert.InDelta(t, 100.0, got.MaxScore, 1e-9)
			assert.Equal(t, tt.wantLevel, got.FinalLevel)
			assert.Equal(t, tt.wantPassed, got.PassCriteriaMet)
			assert.Equal(t, tt.wantVetoed, got.Vetoed())

			assert.Equal(t, "report-1", got.ID)
			assert.Equal(t, "task-42", got.SourceID)
			assert.Equal(t, "claude-sonnet-4.5", got.Model)
			assert.Equal(t, createdAt, got.CreatedAt)
			assert.Equal(t, rubric.DefaultID, got.Template)

			for i, j := range got.Judgments {
				assert.Equal(t, criteria[i].SubDimension, j.SubDimension, "judgments follow template order")
				prefix, degraded := tt.wantDegraded[j.SubDimension]
				assert.Equal(t, degraded, j.Degraded, j.SubDimension)
				if !degraded {
					continue
				}
				assert.Zero(t, j.Score)
				require.Len(t, j.Issues, 1)
				assert.True(t, strings.HasPrefix(j.Issues[0], prefix), "issue %q, wanted prefix %q", j.Issues[0], prefix)
				if prefix == diagUnparsable {
					assert.Equal(t, "这段对话整体不错，我给四分。", j.RawResponse)
				}
			}
		})
	}
}

func TestEvaluateMissingGrounding(t *testing.T) {
	fake := &transporttest.Fake{Default: transporttest.Reply{Text: fullMarks}}
	e := newEvaluator(t, fake)

	req := request()
	req.TeachingDoc = "  "
	got, err := e.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, fake.Requests())
	assert.Zero(t, got.TotalScore)
	assert.False(t, got.PassCriteriaMet)
	assert.False(t, got.Vetoed(), "degraded judgments never veto")
	for _, j := range got.Judgments {
		assert.True(t, j.Degraded)
		assert.Equal(t, []string{diagMissingGrounding}, j.Issues)
	}
}

func TestEvaluateRejectsBadRequests(t *testing.T) {
	disabled := rubric.Default()
	for i := range disabled.Dimensions {
		disabled.Dimensions[i].Enabled = false
	}

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{{
		name:    "nil request",
		wantErr: ErrNoTranscript,
	}, {
		name:    "no transcript",
		req:     &Request{TeachingDoc: "目标"},
		wantErr: ErrNoTranscript,
	}, {
		name:    "nothing enabled",
		req:     &Request{TeachingDoc: "目标", Transcript: transcript(), Template: disabled},
		wantErr: rubric.ErrEmptyRubric,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &transporttest.Fake{Default: transporttest.Reply{Text: fullMarks}}
			e := newEvaluator(t, fake)
			got, err := e.Evaluate(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Evaluate() error: got = %v, wanted = %v", err, tt.wantErr)
			}
			assert.Nil(t, got)
			assert.Empty(t, fake.Requests(), "no model call before validation passes")
		})
	}
}

func TestEvaluateCancelled(t *testing.T) {
	fake := &transporttest.Fake{Block: true}
	e := newEvaluator(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	got, err := e.Evaluate(ctx, request())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Evaluate() error: got = %v, wanted = %v", err, context.Canceled)
	}
	assert.Nil(t, got)
}

func TestEvaluateRunTimeout(t *testing.T) {
	fake := &transporttest.Fake{Block: true}
	e := newEvaluator(t, fake, WithRunTimeout(20*time.Millisecond))

	got, err := e.Evaluate(context.Background(), request())
	require.NoError(t, err)
	assert.Zero(t, got.TotalScore)
	for _, j := range got.Judgments {
		assert.True(t, j.Degraded, j.SubDimension)
	}
}

// gauge tracks how many calls are in flight at once.
type gauge struct {
	inFlight, peak, calls atomic.Int32
}

func (g *gauge) Complete(ctx context.Context, _ *transport.Request) (*transport.Response, error) {
	g.calls.Add(1)
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Millisecond):
	}
	return &transport.Response{Text: fullMarks}, nil
}

func TestEvaluateConcurrencyBound(t *testing.T) {
	g := &gauge{}
	e := newEvaluator(t, g, WithConcurrency(3))

	got, err := e.Evaluate(context.Background(), request())
	require.NoError(t, err)
	assert.InDelta(t, 100.0, got.TotalScore, 1e-9)

	wantCalls := int32(len(rubric.Default().EnabledSubDimensions()))
	if n := g.calls.Load(); n != wantCalls {
		t.Errorf("calls: got = %d, wanted = %d", n, wantCalls)
	}
	if p := g.peak.Load(); p > 3 {
		t.Errorf("peak concurrency: got = %d, wanted <= 3", p)
	}
}

func TestNewOptions(t *testing.T) {
	fake := &transporttest.Fake{}
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "defaults"},
		{name: "zero concurrency", opts: []Option{WithConcurrency(0)}, wantErr: true},
		{name: "negative call timeout", opts: []Option{WithCallTimeout(-time.Second)}, wantErr: true},
		{name: "zero run timeout", opts: []Option{WithRunTimeout(0)}, wantErr: true},
		{name: "nil policy", opts: []Option{WithPolicy(nil)}, wantErr: true},
		{name: "invalid policy", opts: []Option{WithPolicy(&verdict.Policy{PassRatio: 2})}, wantErr: true},
		{name: "custom policy", opts: []Option{WithPolicy(verdict.DefaultPolicy())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(fake, tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error: got = %v, wanted error = %v", err, tt.wantErr)
			}
		})
	}

	if _, err := New(nil); err == nil {
		t.Error("New(nil) error: got = nil, wanted = error")
	}
}
