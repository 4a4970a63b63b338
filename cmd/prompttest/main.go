package main

// Manual prompt harness:
//   go run ./cmd/prompttest -cv testdata/cv.pdf -tone heavy -dry
// Without -dry it calls the model and validates the response.

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"roast-backend/internal/analysis"
	"roast-backend/internal/extract"
	"roast-backend/internal/llm"
	"roast-backend/internal/llm/gemini"
	"roast-backend/internal/shared/config"
)

func main() {
	cvPath := flag.String("cv", "", "Path to CV file (pdf or docx)")
	toneFlag := flag.String("tone", "light", "Roast tone: light or heavy")
	focusFlag := flag.String("focus", "", "Comma-separated focus areas")
	emojis := flag.Bool("emojis", false, "Allow emojis in feedback")
	targetRole := flag.String("target-role", "", "Target role for context")
	experience := flag.String("experience", "", "Experience level: entry, mid or senior")
	industry := flag.String("industry", "", "Industry for context")
	dry := flag.Bool("dry", false, "Print the built prompt without calling the model")
	outPath := flag.String("out", "", "Path to write raw JSON output (optional)")
	flag.Parse()

	if strings.TrimSpace(*cvPath) == "" {
		exitErr("cv path is required")
	}

	tone, ok := llm.ParseTone(*toneFlag)
	if !ok {
		exitErr(fmt.Sprintf("unsupported tone: %s", *toneFlag))
	}

	mimeType, err := mimeFromExt(*cvPath)
	if err != nil {
		exitErr(err.Error())
	}
	cvBytes, err := os.ReadFile(*cvPath)
	if err != nil {
		exitErr(fmt.Sprintf("read cv: %v", err))
	}

	parsed, err := extract.Parse(context.Background(), cvBytes, mimeType, filepath.Base(*cvPath))
	if err != nil {
		exitErr(fmt.Sprintf("extract cv text: %v", err))
	}

	opts := llm.RoastOptions{
		Tone:       tone,
		FocusAreas: splitFocus(*focusFlag),
		ShowEmojis: *emojis,
	}
	if *targetRole != "" || *experience != "" || *industry != "" {
		opts.UserContext = &llm.UserContext{
			TargetRole: *targetRole,
			Experience: *experience,
			Industry:   *industry,
		}
	}

	prompt := llm.BuildRoastPrompt(parsed.Text, opts)
	if *dry {
		fmt.Println(prompt)
		return
	}

	cfg := config.Load()
	client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel)
	if err != nil {
		exitErr(fmt.Sprintf("build client: %v", err))
	}

	result, err := client.Generate(context.Background(), llm.GenerateRequest{
		Prompt:      prompt,
		Temperature: llm.TemperatureFor(tone),
		MaxTokens:   llm.AnalysisMaxTokens,
	})
	if err != nil {
		exitErr(fmt.Sprintf("model call: %v", err))
	}

	if _, err := analysis.DecodeRoast(result.Raw); err != nil {
		exitErr(fmt.Sprintf("response failed validation: %v", err))
	}

	pretty, err := prettyJSON(result.Raw)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func splitFocus(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mimeFromExt(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf", nil
	case ".doc":
		return "application/msword", nil
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document", nil
	default:
		return "", fmt.Errorf("unsupported cv file type: %s", filepath.Ext(path))
	}
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
