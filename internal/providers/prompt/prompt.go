package prompt

import (
	"context"
	"strings"
)

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"

	CategoryGeneral = "general"
)

// Analysis is the moderation verdict for a prompt.
type Analysis struct {
	IsAppropriate  bool   `json:"is_appropriate"`
	Suggestions    string `json:"suggestions,omitempty"`
	Category       string `json:"category"`
	Provider       string `json:"provider"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Enhancement is a rewritten prompt. Enhanced is false when the original
// prompt was returned unchanged.
type Enhancement struct {
	Prompt         string `json:"prompt"`
	Enhanced       bool   `json:"enhanced"`
	Provider       string `json:"provider"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (*Analysis, error)
}

type Enhancer interface {
	Enhance(ctx context.Context, prompt string) (*Enhancement, error)
}

// StaticAnalyzer accepts every prompt.
type StaticAnalyzer struct{}

func NewStaticAnalyzer() *StaticAnalyzer {
	return &StaticAnalyzer{}
}

func (s *StaticAnalyzer) Analyze(ctx context.Context, prompt string) (*Analysis, error) {
	return &Analysis{IsAppropriate: true, Category: CategoryGeneral, Provider: staticProviderName}, nil
}

// StaticEnhancer returns the prompt trimmed.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

func (s *StaticEnhancer) Enhance(ctx context.Context, prompt string) (*Enhancement, error) {
	return &Enhancement{Prompt: strings.TrimSpace(prompt), Provider: staticProviderName}, nil
}

var (
	_ Analyzer = (*StaticAnalyzer)(nil)
	_ Enhancer = (*StaticEnhancer)(nil)
)
