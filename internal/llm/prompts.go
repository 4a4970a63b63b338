package llm

import (
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed prompts/kenyan_context.txt
	kenyanContext string
	//go:embed prompts/tone_light.txt
	toneLight string
	//go:embed prompts/tone_heavy.txt
	toneHeavy string
	//go:embed prompts/roast_contract.txt
	roastContract string
)

// Tone selects how blunt the critique is.
type Tone string

const (
	ToneLight Tone = "light"
	ToneHeavy Tone = "heavy"
)

// ParseTone validates a raw tone value.
func ParseTone(raw string) (Tone, bool) {
	switch Tone(strings.ToLower(strings.TrimSpace(raw))) {
	case ToneLight:
		return ToneLight, true
	case ToneHeavy:
		return ToneHeavy, true
	default:
		return "", false
	}
}

// UserContext is the optional career context a caller can supply.
type UserContext struct {
	TargetRole string
	Experience string
	Industry   string
}

// RoastOptions are the user-selected knobs for one analysis.
type RoastOptions struct {
	Tone        Tone
	FocusAreas  []string
	ShowEmojis  bool
	UserContext *UserContext
}

// BuildRoastPrompt assembles the full roast instruction for one CV. Pure and
// deterministic: the same inputs always produce the same string, and the
// schema constraints are embedded verbatim so the output can be validated.
func BuildRoastPrompt(cvText string, opts RoastOptions) string {
	tone := toneLight
	if opts.Tone == ToneHeavy {
		tone = toneHeavy
	}

	emoji := "No emojis in response."
	if opts.ShowEmojis {
		emoji = "Include relevant emojis throughout."
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(kenyanContext))
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(tone))
	b.WriteString("\n\n")
	b.WriteString(emoji)
	if len(opts.FocusAreas) > 0 {
		b.WriteString("\n\nFOCUS AREAS: ")
		b.WriteString(strings.Join(opts.FocusAreas, ", "))
	}
	if uc := opts.UserContext; uc != nil {
		b.WriteString("\n\nUSER CONTEXT:")
		b.WriteString("\n- Target Role: " + orNotSpecified(uc.TargetRole))
		b.WriteString("\n- Experience Level: " + orNotSpecified(uc.Experience))
		b.WriteString("\n- Industry: " + orNotSpecified(uc.Industry))
	}
	b.WriteString("\n\n")
	b.WriteString(strings.TrimSpace(roastContract))
	b.WriteString("\n\nCV CONTENT:\n")
	b.WriteString(cvText)
	return b.String()
}

// BuildQuickScorePrompt asks for a coarse 0-100 score plus up to three tips.
func BuildQuickScorePrompt(cvText string) string {
	return fmt.Sprintf(`Quickly score this CV out of 100 for the Kenyan job market and provide up to 3 quick improvement tips.

Consider: formatting, content quality, relevance to Kenyan employers, and completeness.

Respond with JSON only: {"score": 0, "quickTips": ["..."]}. The score must be between 0 and 100 and quickTips must contain at most 3 entries.

CV: %s`, cvText)
}

// BuildImprovementPrompt asks for before/after rewrites of weak sections.
func BuildImprovementPrompt(cvText, targetRole, industry string) string {
	return fmt.Sprintf(`Analyze this CV and suggest specific improvements for a %s role in %s in Kenya.

Provide before/after examples for key sections that need improvement.

Respond with JSON only: {"improvements": [{"section": "...", "current": "...", "improved": "...", "reasoning": "..."}]}.

CV: %s`, targetRole, industry, cvText)
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not specified"
	}
	return v
}
