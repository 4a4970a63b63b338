package gemini

import (
	"context"
	"testing"

	"roast-backend/internal/llm"
)

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient(context.Background(), "", "gemini-2.5-flash"); err == nil {
		t.Fatal("expected error for missing API key")
	}
	if _, err := NewClient(context.Background(), "key", " "); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestUsageFromInfo(t *testing.T) {
	cases := []struct {
		name string
		info map[string]any
		want llm.TokenUsage
	}{
		{
			name: "snake case",
			info: map[string]any{"input_tokens": 120, "output_tokens": 340, "total_tokens": 460},
			want: llm.TokenUsage{PromptTokens: 120, CompletionTokens: 340, TotalTokens: 460},
		},
		{
			name: "int32 values",
			info: map[string]any{"input_tokens": int32(5), "candidate_tokens": int32(7), "total_tokens": int32(12)},
			want: llm.TokenUsage{PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12},
		},
		{
			name: "total derived when absent",
			info: map[string]any{"prompt_tokens": 10, "completion_tokens": 20},
			want: llm.TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
		},
		{
			name: "missing",
			info: nil,
			want: llm.TokenUsage{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := usageFromInfo(tc.info); got != tc.want {
				t.Fatalf("usageFromInfo = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestFinishReason(t *testing.T) {
	if got := finishReason(""); got != "stop" {
		t.Fatalf("empty stop reason: got %q", got)
	}
	if got := finishReason("MAX_TOKENS"); got != "max_tokens" {
		t.Fatalf("got %q", got)
	}
}
