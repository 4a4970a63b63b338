package analysis

import (
	"context"
	"reflect"
	"time"

	"roast-backend/internal/llm"
	"roast-backend/internal/shared/metrics"
)

// Service orchestrates prompt construction, the model call and schema
// validation. One request maps to one model invocation; there is no retry.
type Service struct {
	LLM llm.Client
}

// NewService constructs a Service.
func NewService(client llm.Client) *Service {
	return &Service{LLM: client}
}

// Request is one analysis invocation, built once per upload.
type Request struct {
	CVText  string
	Options llm.RoastOptions
}

// Result is a completed analysis plus call accounting.
type Result struct {
	Analysis       *RoastAnalysis
	Usage          llm.TokenUsage
	FinishReason   string
	ProcessingTime float64 // seconds
}

// Analyze runs the batch mode: blocks until the full validated object is
// available.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	metrics.IncAnalysisStarted()
	start := time.Now()

	out, err := s.LLM.Generate(ctx, llm.GenerateRequest{
		Prompt:      llm.BuildRoastPrompt(req.CVText, req.Options),
		Temperature: llm.TemperatureFor(req.Options.Tone),
		MaxTokens:   llm.AnalysisMaxTokens,
	})
	if err != nil {
		metrics.IncAnalysisFailed()
		return nil, err
	}

	parsed, err := DecodeRoast(out.Raw)
	if err != nil {
		metrics.IncAnalysisFailed()
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(elapsed.Milliseconds()))

	return &Result{
		Analysis:       parsed,
		Usage:          out.Usage,
		FinishReason:   out.FinishReason,
		ProcessingTime: elapsed.Seconds(),
	}, nil
}

// AnalyzeStream runs the incremental mode. emit receives each new merged
// partial result on the calling goroutine; the returned Result carries the
// final validated object and usage counters. Any error discards the analysis.
func (s *Service) AnalyzeStream(ctx context.Context, req Request, emit func(PartialAnalysis) error) (*Result, error) {
	metrics.IncAnalysisStarted()
	start := time.Now()

	var (
		buf     []byte
		current PartialAnalysis
	)
	out, err := s.LLM.Stream(ctx, llm.GenerateRequest{
		Prompt:      llm.BuildRoastPrompt(req.CVText, req.Options),
		Temperature: llm.TemperatureFor(req.Options.Tone),
		MaxTokens:   llm.AnalysisMaxTokens,
	}, func(ctx context.Context, chunk []byte) error {
		buf = append(buf, chunk...)
		parsed, ok := ParsePartial(buf)
		if !ok {
			return nil
		}
		merged := Merge(current, *parsed)
		if reflect.DeepEqual(merged, current) {
			return nil
		}
		current = merged
		return emit(merged)
	})
	if err != nil {
		metrics.IncAnalysisFailed()
		return nil, err
	}

	parsed, err := DecodeRoast(out.Raw)
	if err != nil {
		metrics.IncAnalysisFailed()
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(elapsed.Milliseconds()))

	return &Result{
		Analysis:       parsed,
		Usage:          out.Usage,
		FinishReason:   out.FinishReason,
		ProcessingTime: elapsed.Seconds(),
	}, nil
}

// QuickScore runs the lighter-weight scoring call.
func (s *Service) QuickScore(ctx context.Context, cvText string) (*QuickScore, error) {
	out, err := s.LLM.Generate(ctx, llm.GenerateRequest{
		Prompt:      llm.BuildQuickScorePrompt(cvText),
		Temperature: llm.QuickScoreTemperature,
		MaxTokens:   llm.QuickScoreMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return DecodeQuickScore(out.Raw)
}

// Improvements generates before/after section rewrites for a target role.
func (s *Service) Improvements(ctx context.Context, cvText, targetRole, industry string) (*Improvements, error) {
	out, err := s.LLM.Generate(ctx, llm.GenerateRequest{
		Prompt:      llm.BuildImprovementPrompt(cvText, targetRole, industry),
		Temperature: llm.ImprovementTemperature,
		MaxTokens:   llm.AnalysisMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return DecodeImprovements(out.Raw)
}
