/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge_test

import (
	"context"
	"errors"
	"testing"

	"chainguard.dev/tutoreval/interpret"
	"chainguard.dev/tutoreval/judge"
	"chainguard.dev/tutoreval/prompts"
	"chainguard.dev/tutoreval/rubric"
	"chainguard.dev/tutoreval/transport"
	"chainguard.dev/tutoreval/transport/transporttest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var inputs = prompts.Inputs{
	TeachingDoc: "目标：教授分数加法",
	Dialogue:    "## 对话记录\n\n**智能体(第1轮):** 1/4 + 2/4 = ?\n\n**学生(第1轮):** 3/4",
}

var criterion = rubric.Criterion{Dimension: rubric.AccuracyBoundaries, SubDimension: rubric.Factuality, FullScore: 5}

func TestJudge(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  *interpret.Judgment
	}{{
		name:  "scored",
		reply: "```json\n{\"score\": 4, \"rating\": \"良好\", \"judgment_basis\": \"计算正确\"}\n```",
		want: &interpret.Judgment{
			Dimension:    rubric.AccuracyBoundaries,
			SubDimension: rubric.Factuality,
			FullScore:    5,
			Score:        4,
			Rating:       "良好",
			ScoreRange:   interpret.Unknown,
			Rationale:    "计算正确",
			Issues:       []string{},
			Highlights:   []string{},
		},
	}, {
		name:  "score above full is clamped",
		reply: `{"score": 9}`,
		want: &interpret.Judgment{
			Dimension:    rubric.AccuracyBoundaries,
			SubDimension: rubric.Factuality,
			FullScore:    5,
			Score:        5,
			Rating:       interpret.Unknown,
			ScoreRange:   interpret.Unknown,
			Rationale:    interpret.Unknown,
			Issues:       []string{},
			Highlights:   []string{},
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &transporttest.Fake{Model: "fake", Default: transporttest.Reply{Text: tt.reply}}
			j, err := judge.New(fake)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			got, err := j.Judge(context.Background(), &judge.Request{Criterion: criterion, Inputs: inputs})
			if err != nil {
				t.Fatalf("Judge() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmpopts.IgnoreFields(interpret.Judgment{}, "RawResponse")); diff != "" {
				t.Errorf("Judge() mismatch (-want +got):\n%s", diff)
			}

			reqs := fake.Requests()
			if len(reqs) != 1 {
				t.Fatalf("requests: got = %d, wanted = 1", len(reqs))
			}
			if reqs[0].System != prompts.SystemPrompt || reqs[0].Temperature != prompts.Temperature || reqs[0].MaxTokens != prompts.MaxTokens {
				t.Errorf("request settings: got = %+v", reqs[0])
			}
		})
	}
}

func TestJudgeFailures(t *testing.T) {
	transportErr := &transport.Error{Provider: transport.OpenAI, StatusCode: 401, Err: errors.New("bad key")}

	tests := []struct {
		name      string
		inputs    prompts.Inputs
		reply     transporttest.Reply
		wantCalls int
		check     func(error) bool
	}{{
		name:      "missing grounding makes no call",
		inputs:    prompts.Inputs{Dialogue: inputs.Dialogue},
		wantCalls: 0,
		check:     func(err error) bool { return errors.Is(err, prompts.ErrMissingGrounding) },
	}, {
		name:      "transport error",
		inputs:    inputs,
		reply:     transporttest.Reply{Err: transportErr},
		wantCalls: 1,
		check: func(err error) bool {
			var te *transport.Error
			return errors.As(err, &te) && te.StatusCode == 401
		},
	}, {
		name:      "unparsable reply",
		inputs:    inputs,
		reply:     transporttest.Reply{Text: "整体表现不错。"},
		wantCalls: 1,
		check: func(err error) bool {
			var pf *interpret.ParseFailure
			return errors.As(err, &pf) && pf.Raw == "整体表现不错。"
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &transporttest.Fake{Default: tt.reply}
			j, err := judge.New(fake)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			got, err := j.Judge(context.Background(), &judge.Request{Criterion: criterion, Inputs: tt.inputs})
			if got != nil {
				t.Errorf("Judge(): got = %+v, wanted = nil", got)
			}
			if !tt.check(err) {
				t.Errorf("Judge() error: got = %v", err)
			}
			if n := len(fake.Requests()); n != tt.wantCalls {
				t.Errorf("calls: got = %d, wanted = %d", n, tt.wantCalls)
			}
		})
	}
}

func TestNewOptions(t *testing.T) {
	fake := &transporttest.Fake{}
	tests := []struct {
		name    string
		opts    []judge.Option
		wantErr bool
	}{
		{name: "defaults"},
		{name: "valid overrides", opts: []judge.Option{judge.WithTemperature(0), judge.WithMaxTokens(1000), judge.WithSystemPrompt("评估者")}},
		{name: "negative temperature", opts: []judge.Option{judge.WithTemperature(-1)}, wantErr: true},
		{name: "zero max tokens", opts: []judge.Option{judge.WithMaxTokens(0)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := judge.New(fake, tt.opts...); (err != nil) != tt.wantErr {
				t.Errorf("New() error: got = %v, wanted error = %v", err, tt.wantErr)
			}
		})
	}
	if _, err := judge.New(nil); err == nil {
		t.Error("New(nil) error: got = nil, wanted = error")
	}
}
