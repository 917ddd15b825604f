package domain

import "context"

// ProfileRepository defines access to credit profiles.
type ProfileRepository interface {
	Ensure(ctx context.Context, userID, email string) (*Profile, error)
	Get(ctx context.Context, userID string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	ConsumeCredit(ctx context.Context, userID string) (*Profile, error)
	GrantCredits(ctx context.Context, userID string, amount int) (*Profile, error)
	SetBlocked(ctx context.Context, userID string, blocked bool) (*Profile, error)
	ResetDaily(ctx context.Context, allowance int) (int64, error)
}

// GalleryRepository persists generated images.
type GalleryRepository interface {
	Save(ctx context.Context, entry *GalleryEntry) error
	ListPublic(ctx context.Context, limit, offset int) ([]GalleryEntry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]GalleryEntry, error)
}

// UsageRepository records usage events and reads aggregates.
type UsageRepository interface {
	Record(ctx context.Context, event UsageEvent) error
	Summary(ctx context.Context) (*StatsSummary, error)
}
