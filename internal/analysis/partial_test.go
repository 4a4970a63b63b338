package analysis

import (
	"encoding/json"
	"testing"
)

func TestCompleteJSONClosesTruncation(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		want   string
	}{
		{"empty object", `{`, `{}`},
		{"dangling string value", `{"overall":"You tri`, `{"overall":"You tri"}`},
		{"after colon", `{"overall":`, `{"overall":null}`},
		{"trailing comma", `{"overall":"ok",`, `{"overall":"ok"}`},
		{"open array", `{"feedback":[{"title":"a"`, `{"feedback":[{"title":"a"}]}`},
		{"escaped quote in string", `{"overall":"said \"hi`, `{"overall":"said \"hi"}`},
		{"dangling escape", `{"overall":"line\`, `{"overall":"line"}`},
		{"already complete", `{"overall":"done"}`, `{"overall":"done"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CompleteJSON(tc.prefix)
			if !ok {
				t.Fatalf("CompleteJSON(%q) reported malformed", tc.prefix)
			}
			if got != tc.want {
				t.Fatalf("CompleteJSON(%q) = %q, want %q", tc.prefix, got, tc.want)
			}
			if !json.Valid([]byte(got)) {
				t.Fatalf("completed output is not valid JSON: %q", got)
			}
		})
	}
}

func TestCompleteJSONRejectsMismatch(t *testing.T) {
	for _, prefix := range []string{`{"a":1]`, `[}`, `{"a":[1}`} {
		if _, ok := CompleteJSON(prefix); ok {
			t.Fatalf("CompleteJSON(%q) accepted a bracket mismatch", prefix)
		}
	}
}

func TestParsePartialWaitsOnDanglingKey(t *testing.T) {
	// A cut mid-key closes into a key with no value, which is not valid
	// JSON yet. The parser waits for more fragments instead of guessing.
	if _, ok := ParsePartial([]byte(`{"overall":"ok","feed`)); ok {
		t.Fatal("expected no partial while a key is dangling")
	}
}

func TestParsePartialWaitsForObjectStart(t *testing.T) {
	if _, ok := ParsePartial([]byte("```json\n")); ok {
		t.Fatal("expected no partial before the opening brace")
	}
	parsed, ok := ParsePartial([]byte("```json\n{\"overall\":\"Eis"))
	if !ok {
		t.Fatal("expected a partial once the object starts")
	}
	if parsed.Overall == nil || *parsed.Overall != "Eis" {
		t.Fatalf("got %+v", parsed)
	}
}

func TestMergeGrowsMonotonically(t *testing.T) {
	str := func(s string) *string { return &s }
	score := func(f float64) *float64 { return &f }

	first := PartialAnalysis{Overall: str("You")}
	second := PartialAnalysis{
		Overall:  str("You tried"),
		Feedback: []FeedbackPoint{{Title: "a"}},
	}
	third := PartialAnalysis{
		Overall:  str("You tried, sawa."),
		Feedback: []FeedbackPoint{{Title: "a"}, {Title: "b"}},
		MarketReadiness: &PartialMarketReadiness{
			Score:     score(55),
			Strengths: []string{"clear layout"},
		},
	}

	merged := Merge(PartialAnalysis{}, first)
	merged = Merge(merged, second)
	merged = Merge(merged, third)

	if *merged.Overall != "You tried, sawa." {
		t.Fatalf("overall = %q", *merged.Overall)
	}
	if len(merged.Feedback) != 2 {
		t.Fatalf("feedback len = %d", len(merged.Feedback))
	}
	if merged.MarketReadiness == nil || *merged.MarketReadiness.Score != 55 {
		t.Fatalf("marketReadiness = %+v", merged.MarketReadiness)
	}
}

func TestMergeIgnoresShorterLists(t *testing.T) {
	prev := PartialAnalysis{
		Feedback:            []FeedbackPoint{{Title: "a"}, {Title: "b"}},
		KenyanJobMarketTips: []string{"one", "two"},
	}
	next := PartialAnalysis{
		Feedback:            []FeedbackPoint{{Title: "a"}},
		KenyanJobMarketTips: []string{"one"},
	}
	merged := Merge(prev, next)
	if len(merged.Feedback) != 2 || len(merged.KenyanJobMarketTips) != 2 {
		t.Fatalf("shorter re-parse replaced longer lists: %+v", merged)
	}
}

func TestMergeKeepsPrevWhenNextEmpty(t *testing.T) {
	str := func(s string) *string { return &s }
	prev := PartialAnalysis{Overall: str("done")}
	merged := Merge(prev, PartialAnalysis{})
	if merged.Overall == nil || *merged.Overall != "done" {
		t.Fatalf("got %+v", merged)
	}
}
