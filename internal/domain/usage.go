package domain

// UsageEventType enumerates recorded usage events.
type UsageEventType string

const (
	UsageGeneration    UsageEventType = "GENERATION"
	UsagePromptAnalyze UsageEventType = "PROMPT_ANALYZE"
	UsagePromptEnhance UsageEventType = "PROMPT_ENHANCE"
)

// UsageEvent is an append-only analytics record.
type UsageEvent struct {
	UserID       string
	GenerationID string
	Type         UsageEventType
	Success      bool
	LatencyMS    int
	Country      string
	Properties   map[string]any
}

// StatsSummary aggregates usage across all users.
type StatsSummary struct {
	TotalUsers           int64 `json:"total_users"`
	ImagesGenerated      int64 `json:"images_generated"`
	ImagesLast24h        int64 `json:"images_last_24h"`
	GenerationsSucceeded int64 `json:"generations_succeeded"`
	GenerationsFailed    int64 `json:"generations_failed"`
}
