package analysis

import (
	"encoding/json"
	"strings"
)

// Streaming support: the model emits the analysis object as a stream of text
// fragments. Each time a fragment arrives, the accumulated prefix is closed
// into parseable JSON and merged into the running partial result. Partials
// are provisional; later partials may add or overwrite fields.

// PartialAnalysis mirrors RoastAnalysis with every field optional.
type PartialAnalysis struct {
	Overall             *string                 `json:"overall,omitempty"`
	Feedback            []FeedbackPoint         `json:"feedback,omitempty"`
	MarketReadiness     *PartialMarketReadiness `json:"marketReadiness,omitempty"`
	KenyanJobMarketTips []string                `json:"kenyanJobMarketTips,omitempty"`
}

// PartialMarketReadiness is MarketReadiness with optional fields.
type PartialMarketReadiness struct {
	Score      *float64 `json:"score,omitempty"`
	Strengths  []string `json:"strengths,omitempty"`
	Priorities []string `json:"priorities,omitempty"`
}

// CompleteJSON closes an incomplete JSON prefix so it parses: it terminates a
// dangling string, drops a trailing separator, and closes open brackets in
// reverse order. It reports false when the prefix is already malformed (a
// bracket mismatch, not mere truncation).
func CompleteJSON(prefix string) (string, bool) {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(prefix); i++ {
		ch := prefix[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, ch)
		case '}':
			if len(stack) == 0 || stack[len(stack)-1] != '{' {
				return "", false
			}
			stack = stack[:len(stack)-1]
		case ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return "", false
			}
			stack = stack[:len(stack)-1]
		}
	}

	out := prefix
	if escaped {
		out = out[:len(out)-1]
	}
	if inString {
		out += `"`
	}
	out = strings.TrimRight(out, " \t\r\n")
	switch {
	case strings.HasSuffix(out, ","):
		out = strings.TrimSuffix(out, ",")
	case strings.HasSuffix(out, ":"):
		out += "null"
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out += "}"
		} else {
			out += "]"
		}
	}
	return out, true
}

// ParsePartial closes and parses an accumulated model-output prefix. It
// reports false while the prefix cannot yet be made parseable; callers simply
// wait for more fragments.
func ParsePartial(buf []byte) (*PartialAnalysis, bool) {
	s := string(buf)
	start := strings.Index(s, "{")
	if start < 0 {
		return nil, false
	}
	completed, ok := CompleteJSON(s[start:])
	if !ok || !json.Valid([]byte(completed)) {
		return nil, false
	}
	var parsed PartialAnalysis
	if err := json.Unmarshal([]byte(completed), &parsed); err != nil {
		return nil, false
	}
	return &parsed, true
}

// Merge folds a later fragment into the running result. Pure and
// order-sensitive: scalar fields are overwritten when the fragment carries
// them, lists are replaced when the fragment's version is at least as long
// (a shorter list means a truncated re-parse, not a retraction).
func Merge(prev, next PartialAnalysis) PartialAnalysis {
	out := prev
	if next.Overall != nil {
		out.Overall = next.Overall
	}
	if len(next.Feedback) > 0 && len(next.Feedback) >= len(out.Feedback) {
		out.Feedback = next.Feedback
	}
	if next.MarketReadiness != nil {
		if out.MarketReadiness == nil {
			out.MarketReadiness = next.MarketReadiness
		} else {
			merged := *out.MarketReadiness
			if next.MarketReadiness.Score != nil {
				merged.Score = next.MarketReadiness.Score
			}
			if n := next.MarketReadiness.Strengths; len(n) > 0 && len(n) >= len(merged.Strengths) {
				merged.Strengths = n
			}
			if n := next.MarketReadiness.Priorities; len(n) > 0 && len(n) >= len(merged.Priorities) {
				merged.Priorities = n
			}
			out.MarketReadiness = &merged
		}
	}
	if n := next.KenyanJobMarketTips; len(n) > 0 && len(n) >= len(out.KenyanJobMarketTips) {
		out.KenyanJobMarketTips = n
	}
	return out
}
