package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"roast-backend/internal/llm"
)

// Client implements llm.Client against Gemini via langchaingo.
type Client struct {
	model     llms.Model
	modelName string
}

// NewClient constructs a Gemini client. The API key is mandatory.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(modelName) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}
	model, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &Client{model: model, modelName: modelName}, nil
}

// Generate blocks until the full structured output is available.
func (c *Client) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResult, error) {
	return c.call(ctx, req, nil)
}

// Stream delivers raw output fragments through onChunk, then returns the
// terminal result. Chunks arrive on the calling goroutine.
func (c *Client) Stream(ctx context.Context, req llm.GenerateRequest, onChunk llm.ChunkFunc) (*llm.GenerateResult, error) {
	return c.call(ctx, req, onChunk)
}

func (c *Client) call(ctx context.Context, req llm.GenerateRequest, onChunk llm.ChunkFunc) (*llm.GenerateResult, error) {
	opts := []llms.CallOption{
		llms.WithTemperature(float64(req.Temperature)),
		llms.WithJSONMode(),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if onChunk != nil {
		opts = append(opts, llms.WithStreamingFunc(onChunk))
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}
	resp, err := c.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrInvocation, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no candidates", llm.ErrInvocation)
	}

	choice := resp.Choices[0]
	raw, ok := llm.ExtractJSON(choice.Content)
	if !ok {
		return nil, fmt.Errorf("%w: response is not JSON", llm.ErrInvocation)
	}

	usage := usageFromInfo(choice.GenerationInfo)
	log.Printf("llm response model=%s finish=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		c.modelName, choice.StopReason, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)

	return &llm.GenerateResult{
		Raw:          raw,
		Usage:        usage,
		FinishReason: finishReason(choice.StopReason),
	}, nil
}

// usageFromInfo reads token counters out of the provider's generation info.
// Key names differ across langchaingo provider versions, so probe the known
// spellings.
func usageFromInfo(info map[string]any) llm.TokenUsage {
	usage := llm.TokenUsage{
		PromptTokens:     intFromInfo(info, "input_tokens", "prompt_tokens", "PromptTokens"),
		CompletionTokens: intFromInfo(info, "output_tokens", "completion_tokens", "candidate_tokens", "CompletionTokens"),
		TotalTokens:      intFromInfo(info, "total_tokens", "TotalTokens"),
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}
	return usage
}

func intFromInfo(info map[string]any, keys ...string) int {
	for _, key := range keys {
		val, ok := info[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

func finishReason(stop string) string {
	if strings.TrimSpace(stop) == "" {
		return "stop"
	}
	return strings.ToLower(stop)
}

var _ llm.Client = (*Client)(nil)
