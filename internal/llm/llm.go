package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvocation indicates the hosted model call itself failed. It is never
// retried here; the caller decides what to tell the user.
var ErrInvocation = errors.New("model invocation failed")

// GenerateRequest captures one structured-output model call.
type GenerateRequest struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// TokenUsage carries the provider's token counters for one call.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// GenerateResult is the terminal outcome of a model call. Raw is the model's
// JSON output; schema validation happens at the caller's boundary.
type GenerateResult struct {
	Raw          json.RawMessage
	Usage        TokenUsage
	FinishReason string
}

// ChunkFunc receives raw output fragments as the model produces them.
type ChunkFunc func(ctx context.Context, chunk []byte) error

// Client abstracts the hosted model provider.
type Client interface {
	// Generate blocks until the full output is available.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	// Stream delivers output fragments through onChunk on the calling
	// goroutine, then returns the terminal result.
	Stream(ctx context.Context, req GenerateRequest, onChunk ChunkFunc) (*GenerateResult, error)
}

// ExtractJSON pulls the outermost JSON object out of model output, tolerating
// markdown fences or prose around it.
func ExtractJSON(text string) (json.RawMessage, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, false
	}
	raw := json.RawMessage(text[start : end+1])
	if !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}
