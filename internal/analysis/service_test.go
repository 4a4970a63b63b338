package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"roast-backend/internal/llm"
)

// fakeLLM scripts model behavior for tests. Stream delivers chunks in order
// and returns the concatenation as the terminal raw output.
type fakeLLM struct {
	response string
	chunks   []string
	err      error
	lastReq  llm.GenerateRequest
}

func (f *fakeLLM) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	raw, _ := llm.ExtractJSON(f.response)
	return &llm.GenerateResult{
		Raw:          raw,
		Usage:        llm.TokenUsage{PromptTokens: 100, CompletionTokens: 200, TotalTokens: 300},
		FinishReason: "stop",
	}, nil
}

func (f *fakeLLM) Stream(ctx context.Context, req llm.GenerateRequest, onChunk llm.ChunkFunc) (*llm.GenerateResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	var full strings.Builder
	for _, chunk := range f.chunks {
		full.WriteString(chunk)
		if err := onChunk(ctx, []byte(chunk)); err != nil {
			return nil, err
		}
	}
	raw, _ := llm.ExtractJSON(full.String())
	return &llm.GenerateResult{
		Raw:          raw,
		Usage:        llm.TokenUsage{PromptTokens: 100, CompletionTokens: 200, TotalTokens: 300},
		FinishReason: "stop",
	}, nil
}

func chunksOf(s string, size int) []string {
	var out []string
	for len(s) > size {
		out = append(out, s[:size])
		s = s[size:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func TestAnalyzeHappyPath(t *testing.T) {
	client := &fakeLLM{response: validRoastJSON()}
	svc := NewService(client)

	result, err := svc.Analyze(context.Background(), Request{
		CVText:  "ten years of experience doing things worth reading about",
		Options: llm.RoastOptions{Tone: llm.ToneHeavy},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(result.Analysis.Feedback) != 4 {
		t.Fatalf("feedback len = %d", len(result.Analysis.Feedback))
	}
	if result.Usage.TotalTokens != 300 || result.FinishReason != "stop" {
		t.Fatalf("got usage %+v finish %q", result.Usage, result.FinishReason)
	}
	if client.lastReq.Temperature != llm.HeavyRoastTemperature {
		t.Fatalf("temperature = %v, want heavy", client.lastReq.Temperature)
	}
	if !strings.Contains(client.lastReq.Prompt, "worth reading about") {
		t.Fatal("prompt missing CV text")
	}
}

func TestAnalyzeSchemaMismatch(t *testing.T) {
	client := &fakeLLM{response: `{"overall": "short", "feedback": []}`}
	svc := NewService(client)

	_, err := svc.Analyze(context.Background(), Request{CVText: "text"})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestAnalyzeModelFailure(t *testing.T) {
	client := &fakeLLM{err: llm.ErrInvocation}
	svc := NewService(client)

	_, err := svc.Analyze(context.Background(), Request{CVText: "text"})
	if !errors.Is(err, llm.ErrInvocation) {
		t.Fatalf("err = %v, want ErrInvocation", err)
	}
}

func TestAnalyzeStreamEmitsGrowingPartials(t *testing.T) {
	client := &fakeLLM{chunks: chunksOf(validRoastJSON(), 40)}
	svc := NewService(client)

	var emitted []PartialAnalysis
	result, err := svc.AnalyzeStream(context.Background(), Request{CVText: "text"}, func(p PartialAnalysis) error {
		emitted = append(emitted, p)
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(emitted) == 0 {
		t.Fatal("expected at least one partial")
	}
	// Feedback never shrinks across emissions.
	last := 0
	for i, p := range emitted {
		if len(p.Feedback) < last {
			t.Fatalf("feedback shrank at emission %d", i)
		}
		last = len(p.Feedback)
	}
	if len(result.Analysis.Feedback) != 4 {
		t.Fatalf("final feedback len = %d", len(result.Analysis.Feedback))
	}
}

func TestAnalyzeStreamStopsOnEmitError(t *testing.T) {
	client := &fakeLLM{chunks: chunksOf(validRoastJSON(), 20)}
	svc := NewService(client)

	boom := errors.New("client went away")
	_, err := svc.AnalyzeStream(context.Background(), Request{CVText: "text"}, func(PartialAnalysis) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want emit error", err)
	}
}

func TestQuickScoreUsesLowTemperature(t *testing.T) {
	client := &fakeLLM{response: `{"score": 64, "quickTips": ["tighten the summary"]}`}
	svc := NewService(client)

	qs, err := svc.QuickScore(context.Background(), "cv text")
	if err != nil {
		t.Fatalf("quick score: %v", err)
	}
	if qs.Score != 64 {
		t.Fatalf("score = %v", qs.Score)
	}
	if client.lastReq.Temperature != llm.QuickScoreTemperature {
		t.Fatalf("temperature = %v", client.lastReq.Temperature)
	}
	if client.lastReq.MaxTokens != llm.QuickScoreMaxTokens {
		t.Fatalf("maxTokens = %v", client.lastReq.MaxTokens)
	}
}

func TestImprovements(t *testing.T) {
	client := &fakeLLM{response: `{"improvements": [
		{"section": "Summary", "current": "Hardworking individual", "improved": "Backend engineer with 5 years on payments infra", "reasoning": "Specific beats generic"}
	]}`}
	svc := NewService(client)

	imp, err := svc.Improvements(context.Background(), "cv text", "Backend Engineer", "fintech")
	if err != nil {
		t.Fatalf("improvements: %v", err)
	}
	if len(imp.Improvements) != 1 {
		t.Fatalf("got %+v", imp)
	}
	if !strings.Contains(client.lastReq.Prompt, "Backend Engineer") || !strings.Contains(client.lastReq.Prompt, "fintech") {
		t.Fatal("prompt missing target role or industry")
	}
}
