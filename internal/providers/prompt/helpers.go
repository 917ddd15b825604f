package prompt

import (
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var allowedCategories = map[string]struct{}{
	"nature":       {},
	"portrait":     {},
	"abstract":     {},
	"architecture": {},
	"fantasy":      {},
	"animals":      {},
	"technology":   {},
	"art":          {},
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"nature", []string{"landscape", "mountain", "forest"}},
	{"animals", []string{"animal", "cat", "dog"}},
	{"architecture", []string{"building", "house", "city"}},
	{"technology", []string{"tech", "robot", "computer"}},
	{"abstract", []string{"abstract", "geometric"}},
}

// Categorize guesses a gallery category from keywords in the prompt. The
// first matching group wins; prompts without a match are "art".
func Categorize(prompt string) string {
	lower := cases.Fold().String(prompt)
	for _, group := range categoryKeywords {
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				return group.category
			}
		}
	}
	return "art"
}

// CategoryLabel renders a category for display, e.g. "architecture" as
// "Architecture".
func CategoryLabel(category string) string {
	return cases.Title(language.English).String(category)
}

func normalizeCategory(raw string) string {
	c := cases.Fold().String(strings.TrimSpace(raw))
	if _, ok := allowedCategories[c]; ok {
		return c
	}
	return CategoryGeneral
}

func cleanEnhancedPrompt(raw string) string {
	text := trimCodeFence(raw)
	text = strings.TrimSpace(strings.TrimPrefix(text, "Enhanced prompt:"))
	return strings.Trim(text, "\"")
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONObject(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

// extractJSONObject returns the span from the first '{' to the last '}'.
func extractJSONObject(raw string) string {
	text := trimCodeFence(raw)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
