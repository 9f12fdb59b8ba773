/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package interpret

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Unknown is the value of textual fields a model left out.
const Unknown = "未知"

// Reply is the payload a model is asked to produce.
type Reply struct {
	Score            float64           `json:"score" jsonschema:"required,description=得分，介于 0 与该子维度满分之间"`
	Rating           string            `json:"rating" jsonschema:"enum=优秀,enum=良好,enum=合格,enum=不足,enum=较差"`
	ScoreRange       string            `json:"score_range" jsonschema:"description=得分所在的评分档位，例如 8-10分"`
	JudgmentBasis    string            `json:"judgment_basis" jsonschema:"description=评分依据，引用对话中的具体轮次"`
	Issues           []string          `json:"issues" jsonschema:"description=发现的问题"`
	Highlights       []string          `json:"highlights" jsonschema:"description=表现亮点"`
	StageSuggestions []StageSuggestion `json:"stage_suggestions,omitempty" jsonschema:"description=与工作流环节相关的问题及 Prompt 修改建议"`
}

// StageSuggestion ties issues to a workflow stage.
type StageSuggestion struct {
	Stage       string      `json:"stage_name"`
	Issues      []string    `json:"issues,omitempty"`
	PromptFixes []PromptFix `json:"prompt_fixes,omitempty"`
}

// PromptFix proposes a change to one section of a stage prompt.
type PromptFix struct {
	Section         string `json:"section"`
	CurrentProblem  string `json:"current_problem"`
	SuggestedChange string `json:"suggested_change"`
}

// Judgment is the verdict for one sub-dimension.
type Judgment struct {
	Dimension        string            `json:"dimension"`
	SubDimension     string            `json:"sub_dimension"`
	FullScore        float64           `json:"full_score"`
	Score            float64           `json:"score"`
	Rating           string            `json:"rating"`
	ScoreRange       string            `json:"score_range"`
	Rationale        string            `json:"judgment_basis"`
	Issues           []string          `json:"issues"`
	Highlights       []string          `json:"highlights"`
	StageSuggestions []StageSuggestion `json:"stage_suggestions,omitempty"`
	RawResponse      string            `json:"raw_response"`
	// Degraded marks a judgment synthesized after a failed evaluation call.
	Degraded bool `json:"degraded,omitempty"`
}

// Clamp bounds the score to [0, FullScore].
func (j *Judgment) Clamp() {
	if j.Score < 0 {
		j.Score = 0
	}
	if j.FullScore > 0 && j.Score > j.FullScore {
		j.Score = j.FullScore
	}
}

// ParseFailure reports a reply that could not be decoded into a Judgment.
type ParseFailure struct {
	Raw    string
	Reason string
}

func (e *ParseFailure) Error() string {
	return "unparsable model response: " + e.Reason
}

// Parse decodes a model reply into a Judgment. The JSON payload may be
// surrounded by prose, code fences or <thinking> blocks. Errors are always
// *ParseFailure.
func Parse(raw string) (*Judgment, error) {
	reason := "no JSON object found"
	for _, c := range candidates(raw) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(c), &obj); err != nil || obj == nil {
			continue
		}
		j, err := fromObject(obj)
		if err != nil {
			reason = err.Error()
			continue
		}
		j.RawResponse = raw
		return j, nil
	}
	return nil, &ParseFailure{Raw: raw, Reason: reason}
}

// basisAliases are accepted in place of judgment_basis.
var basisAliases = []string{"rationale", "reasoning", "analysis"}

func fromObject(obj map[string]any) (*Judgment, error) {
	rawScore, ok := lookup(obj, "score")
	if !ok {
		return nil, fmt.Errorf("score is missing")
	}
	score, err := number(rawScore)
	if err != nil {
		return nil, err
	}

	var r Reply
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		if strings.EqualFold(k, "score") {
			continue
		}
		// A field of the wrong shape keeps its default.
		next := r
		if err := decodeField(k, obj[k], &next); err == nil {
			r = next
		}
	}

	basis := r.JudgmentBasis
	for _, alias := range basisAliases {
		if basis != "" {
			break
		}
		if v, ok := lookup(obj, alias); ok {
			basis, _ = v.(string)
		}
	}

	return &Judgment{
		Score:            score,
		Rating:           orUnknown(r.Rating),
		ScoreRange:       orUnknown(r.ScoreRange),
		Rationale:        orUnknown(basis),
		Issues:           compact(r.Issues),
		Highlights:       compact(r.Highlights),
		StageSuggestions: pruneStages(r.StageSuggestions),
	}, nil
}

// decodeField decodes a single top-level field into r.
func decodeField(key string, value any, r *Reply) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(flattenToText, skipNonObjects),
		Result:           r,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return dec.Decode(map[string]any{key: value})
}

// lookup finds key in obj ignoring case.
func lookup(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func number(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("score %q is not numeric", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("score of type %T is not numeric", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("score %v is not finite", f)
	}
	return f, nil
}

// textKeys are the fields consulted when a model returns an object where a
// string was expected, in order of preference.
var textKeys = []string{"text", "content", "description", "message", "issue", "suggestion"}

// flattenToText turns objects into strings when the target is a string, so
// issue lists like [{"description": "...", "severity": "high"}] decode.
func flattenToText(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from.Kind() != reflect.Map {
		return data, nil
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}
	for _, k := range textKeys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s, nil
		}
	}
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		if s, ok := obj[k].(string); ok && s != "" {
			return s, nil
		}
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// skipNonObjects replaces values that cannot describe a struct, such as
// "stage_suggestions": "无", with empty ones.
func skipNonObjects(from, to reflect.Type, data any) (any, error) {
	switch {
	case to.Kind() == reflect.Struct && from.Kind() != reflect.Map:
		return map[string]any{}, nil
	case to.Kind() == reflect.Slice && to.Elem().Kind() == reflect.Struct &&
		from.Kind() != reflect.Slice && from.Kind() != reflect.Array:
		return []any{}, nil
	}
	return data, nil
}

// pruneStages drops the empty entries left behind by skipNonObjects.
func pruneStages(in []StageSuggestion) []StageSuggestion {
	var out []StageSuggestion
	for _, ss := range in {
		if len(ss.Issues) > 0 {
			ss.Issues = compact(ss.Issues)
		}
		var fixes []PromptFix
		for _, f := range ss.PromptFixes {
			if f != (PromptFix{}) {
				fixes = append(fixes, f)
			}
		}
		ss.PromptFixes = fixes
		if ss.Stage != "" || len(ss.Issues) > 0 || len(ss.PromptFixes) > 0 {
			out = append(out, ss)
		}
	}
	return out
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Unknown
	}
	return s
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
