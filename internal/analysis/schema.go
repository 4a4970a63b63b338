package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The model is an untrusted collaborator: its output is validated here, at
// the boundary, and a mismatch is treated like a network failure rather than
// a programming error.

// Severity grades one feedback point.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// FeedbackCategories is the closed set of categories a feedback point may use.
var FeedbackCategories = []string{
	"Content & Writing",
	"Format & Design",
	"Skills & Experience",
	"Contact Info",
	"NGO/UN Applications",
	"Government Jobs",
	"Career Progression",
	"Industry Specific",
}

const (
	minFeedbackPoints = 4
	maxFeedbackPoints = 8
	maxListEntries    = 3
)

// FeedbackPoint is one critique item of the roast.
type FeedbackPoint struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	Severity      Severity `json:"severity"`
	Tip           string   `json:"tip"`
	KenyanContext string   `json:"kenyanContext,omitempty"`
}

// MarketReadiness is a 0-100 suitability score plus qualitative lists.
type MarketReadiness struct {
	Score      float64  `json:"score"`
	Strengths  []string `json:"strengths"`
	Priorities []string `json:"priorities"`
}

// RoastAnalysis is the full schema-validated model output for one CV.
type RoastAnalysis struct {
	Overall             string          `json:"overall"`
	Feedback            []FeedbackPoint `json:"feedback"`
	MarketReadiness     MarketReadiness `json:"marketReadiness"`
	KenyanJobMarketTips []string        `json:"kenyanJobMarketTips"`
}

// Validate enforces the contract the prompt promises: presence, enum
// membership and array length bounds.
func (a *RoastAnalysis) Validate() error {
	if strings.TrimSpace(a.Overall) == "" {
		return fmt.Errorf("overall: required")
	}
	if n := len(a.Feedback); n < minFeedbackPoints || n > maxFeedbackPoints {
		return fmt.Errorf("feedback: expected %d-%d points, got %d", minFeedbackPoints, maxFeedbackPoints, n)
	}
	for i, fp := range a.Feedback {
		if err := fp.validate(); err != nil {
			return fmt.Errorf("feedback[%d]: %w", i, err)
		}
	}
	if err := a.MarketReadiness.validate(); err != nil {
		return fmt.Errorf("marketReadiness: %w", err)
	}
	if len(a.KenyanJobMarketTips) > maxListEntries {
		return fmt.Errorf("kenyanJobMarketTips: at most %d entries, got %d", maxListEntries, len(a.KenyanJobMarketTips))
	}
	return nil
}

func (fp *FeedbackPoint) validate() error {
	if strings.TrimSpace(fp.Title) == "" {
		return fmt.Errorf("title: required")
	}
	if strings.TrimSpace(fp.Content) == "" {
		return fmt.Errorf("content: required")
	}
	if !validCategory(fp.Category) {
		return fmt.Errorf("category: unknown value %q", fp.Category)
	}
	switch fp.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return fmt.Errorf("severity: unknown value %q", fp.Severity)
	}
	if strings.TrimSpace(fp.Tip) == "" {
		return fmt.Errorf("tip: required")
	}
	return nil
}

func (mr *MarketReadiness) validate() error {
	if mr.Score < 0 || mr.Score > 100 {
		return fmt.Errorf("score: out of range %v", mr.Score)
	}
	if len(mr.Strengths) > maxListEntries {
		return fmt.Errorf("strengths: at most %d entries, got %d", maxListEntries, len(mr.Strengths))
	}
	if len(mr.Priorities) > maxListEntries {
		return fmt.Errorf("priorities: at most %d entries, got %d", maxListEntries, len(mr.Priorities))
	}
	return nil
}

func validCategory(category string) bool {
	for _, c := range FeedbackCategories {
		if c == category {
			return true
		}
	}
	return false
}

// QuickScore is a coarse assessment from a lighter-weight model call.
type QuickScore struct {
	Score     float64  `json:"score"`
	QuickTips []string `json:"quickTips"`
}

// Validate enforces the quick-score bounds.
func (q *QuickScore) Validate() error {
	if q.Score < 0 || q.Score > 100 {
		return fmt.Errorf("score: out of range %v", q.Score)
	}
	if len(q.QuickTips) > maxListEntries {
		return fmt.Errorf("quickTips: at most %d entries, got %d", maxListEntries, len(q.QuickTips))
	}
	return nil
}

// SectionImprovement is one before/after rewrite suggestion.
type SectionImprovement struct {
	Section   string `json:"section"`
	Current   string `json:"current"`
	Improved  string `json:"improved"`
	Reasoning string `json:"reasoning"`
}

// Improvements is the structured rewrite output.
type Improvements struct {
	Improvements []SectionImprovement `json:"improvements"`
}

// Validate requires at least one complete rewrite suggestion.
func (imp *Improvements) Validate() error {
	if len(imp.Improvements) == 0 {
		return fmt.Errorf("improvements: empty")
	}
	for i, s := range imp.Improvements {
		if strings.TrimSpace(s.Section) == "" || strings.TrimSpace(s.Improved) == "" {
			return fmt.Errorf("improvements[%d]: section and improved are required", i)
		}
	}
	return nil
}

// DecodeRoast parses and validates raw model output into a RoastAnalysis.
func DecodeRoast(raw json.RawMessage) (*RoastAnalysis, error) {
	var parsed RoastAnalysis
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := parsed.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return &parsed, nil
}

// DecodeQuickScore parses and validates raw model output into a QuickScore.
func DecodeQuickScore(raw json.RawMessage) (*QuickScore, error) {
	var parsed QuickScore
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := parsed.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return &parsed, nil
}

// DecodeImprovements parses and validates raw model output into Improvements.
func DecodeImprovements(raw json.RawMessage) (*Improvements, error) {
	var parsed Improvements
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if err := parsed.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return &parsed, nil
}
