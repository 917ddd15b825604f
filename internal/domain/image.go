package domain

import "time"

// GeneratedImage is a single rendered result handed back to the caller. It is
// never mutated after creation.
type GeneratedImage struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	FallbackURL string    `json:"fallback_url,omitempty"`
	Prompt      string    `json:"prompt"`
	Seed        int64     `json:"seed"`
	Timestamp   time.Time `json:"timestamp"`
}

// GalleryEntry is a persisted gallery row.
type GalleryEntry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	GenerationID   string    `json:"generation_id,omitempty"`
	Prompt         string    `json:"prompt"`
	OriginalPrompt string    `json:"original_prompt,omitempty"`
	ImageURL       string    `json:"image_url"`
	ImageSize      string    `json:"image_size"`
	Seed           int64     `json:"seed"`
	Category       string    `json:"category"`
	IsPublic       bool      `json:"is_public"`
	CreatedAt      time.Time `json:"created_at"`
}
