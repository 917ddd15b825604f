package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"artcreator/internal/providers/gemini"
)

// TextGenerator is the subset of the Gemini client the providers need.
type TextGenerator interface {
	GenerateText(ctx context.Context, text string, cfg gemini.Config) (string, error)
}

type GeminiOptions struct {
	Client     TextGenerator
	OnFallback func(reason string, err error)
}

// GeminiAnalyzer asks Gemini whether a prompt is appropriate and which
// category it belongs to.
type GeminiAnalyzer struct {
	client     TextGenerator
	onFallback func(reason string, err error)
}

// GeminiEnhancer asks Gemini to rewrite a prompt with more visual detail.
type GeminiEnhancer struct {
	client     TextGenerator
	onFallback func(reason string, err error)
}

type analysisPayload struct {
	IsAppropriate *bool  `json:"isAppropriate"`
	Suggestions   string `json:"suggestions"`
	Category      string `json:"category"`
}

func NewGeminiAnalyzer(opts GeminiOptions) (*GeminiAnalyzer, error) {
	if opts.Client == nil {
		return nil, errors.New("gemini client is required")
	}
	return &GeminiAnalyzer{client: opts.Client, onFallback: opts.OnFallback}, nil
}

func NewGeminiEnhancer(opts GeminiOptions) (*GeminiEnhancer, error) {
	if opts.Client == nil {
		return nil, errors.New("gemini client is required")
	}
	return &GeminiEnhancer{client: opts.Client, onFallback: opts.OnFallback}, nil
}

func (g *GeminiAnalyzer) Analyze(ctx context.Context, prompt string) (*Analysis, error) {
	text, err := g.client.GenerateText(ctx, buildAnalysisPrompt(prompt), gemini.Config{})
	if err != nil {
		return g.useFallback(fallbackReason(err), err), nil
	}
	parsed, err := parseModelPayload[analysisPayload](text)
	if err != nil {
		return g.useFallback("decode_payload", err), nil
	}
	res := &Analysis{
		IsAppropriate: true,
		Suggestions:   strings.TrimSpace(parsed.Suggestions),
		Category:      normalizeCategory(parsed.Category),
		Provider:      geminiProviderName,
	}
	if parsed.IsAppropriate != nil {
		res.IsAppropriate = *parsed.IsAppropriate
	}
	return res, nil
}

func (g *GeminiAnalyzer) useFallback(reason string, err error) *Analysis {
	emitFallback(g.onFallback, reason, err)
	return &Analysis{
		IsAppropriate:  true,
		Category:       CategoryGeneral,
		Provider:       staticProviderName,
		FallbackReason: reason,
	}
}

func (g *GeminiEnhancer) Enhance(ctx context.Context, prompt string) (*Enhancement, error) {
	original := strings.TrimSpace(prompt)
	text, err := g.client.GenerateText(ctx, buildEnhancePrompt(prompt), gemini.Config{})
	if err != nil {
		return g.useFallback(original, fallbackReason(err), err), nil
	}
	enhanced := cleanEnhancedPrompt(text)
	if enhanced == "" {
		return g.useFallback(original, "empty_response", gemini.ErrEmptyCandidate), nil
	}
	return &Enhancement{Prompt: enhanced, Enhanced: enhanced != original, Provider: geminiProviderName}, nil
}

func (g *GeminiEnhancer) useFallback(original, reason string, err error) *Enhancement {
	emitFallback(g.onFallback, reason, err)
	return &Enhancement{Prompt: original, Provider: staticProviderName, FallbackReason: reason}
}

func emitFallback(fn func(string, error), reason string, err error) {
	if fn != nil {
		fn(reason, err)
	}
}

func fallbackReason(err error) string {
	var statusErr *gemini.StatusError
	switch {
	case errors.Is(err, gemini.ErrMissingAPIKey):
		return "missing_api_key"
	case errors.Is(err, gemini.ErrEmptyCandidate):
		return "empty_response"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("http_status_%d", statusErr.Code)
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "http_request"
	}
}

func buildAnalysisPrompt(prompt string) string {
	return fmt.Sprintf(`Analyze this image generation prompt for appropriateness and categorize it:

Prompt: "%s"

Respond in this exact JSON format:
{
  "isAppropriate": true/false,
  "suggestions": "optional suggestions if inappropriate or could be improved",
  "category": "nature|portrait|abstract|architecture|fantasy|animals|technology|art"
}`, prompt)
}

func buildEnhancePrompt(prompt string) string {
	return fmt.Sprintf(`You are an expert at creating detailed, vivid image generation prompts.

User will give you a basic prompt idea. Your job is to:
1. Analyze the prompt for clarity and completeness
2. Enhance it with specific visual details, lighting, composition, and style
3. Make it more descriptive while keeping the original intent
4. Add artistic elements that will create stunning, high-quality images

Keep the enhanced prompt under 200 words and make it extremely detailed and visually descriptive.

Original prompt: "%s"

Enhanced prompt:`, prompt)
}

var (
	_ Analyzer = (*GeminiAnalyzer)(nil)
	_ Enhancer = (*GeminiEnhancer)(nil)
)
