package generation

import (
	"context"
	"errors"
	"sync"

	"artcreator/internal/domain"
	"artcreator/internal/providers/image"
	"artcreator/internal/providers/prompt"
)

type fakeProfiles struct {
	mu         sync.Mutex
	profile    domain.Profile
	consumeErr error
	consumed   int
}

func (f *fakeProfiles) Ensure(ctx context.Context, userID, email string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.profile
	p.UserID = userID
	return &p, nil
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return f.Ensure(ctx, userID, "")
}

func (f *fakeProfiles) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeProfiles) ConsumeCredit(ctx context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	if f.profile.DailyCredits <= 0 {
		return nil, domain.ErrInsufficientCredits
	}
	f.profile.DailyCredits--
	f.profile.CreditsUsedToday++
	f.consumed++
	p := f.profile
	return &p, nil
}

func (f *fakeProfiles) GrantCredits(ctx context.Context, userID string, amount int) (*domain.Profile, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProfiles) SetBlocked(ctx context.Context, userID string, blocked bool) (*domain.Profile, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProfiles) ResetDaily(ctx context.Context, allowance int) (int64, error) {
	return 0, errors.New("not implemented")
}

type fakeGallery struct {
	mu      sync.Mutex
	entries []domain.GalleryEntry
	err     error
}

func (f *fakeGallery) Save(ctx context.Context, entry *domain.GalleryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeGallery) ListPublic(ctx context.Context, limit, offset int) ([]domain.GalleryEntry, error) {
	return f.entries, nil
}

func (f *fakeGallery) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.GalleryEntry, error) {
	return f.entries, nil
}

type fakeUsage struct {
	mu     sync.Mutex
	events []domain.UsageEvent
}

func (f *fakeUsage) Record(ctx context.Context, event domain.UsageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeUsage) Summary(ctx context.Context) (*domain.StatsSummary, error) {
	return &domain.StatsSummary{}, nil
}

type fakeImages struct {
	err  error
	last image.Request
}

func (f *fakeImages) Generate(ctx context.Context, req image.Request) ([]domain.GeneratedImage, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.GeneratedImage, req.Count)
	for i := range out {
		out[i] = domain.GeneratedImage{ID: string(rune('a' + i)), URL: "https://img/" + string(rune('a'+i)), Prompt: req.Prompt, Seed: int64(i)}
	}
	return out, nil
}

type fakeAnalyzer struct {
	analysis prompt.Analysis
}

func (f fakeAnalyzer) Analyze(ctx context.Context, text string) (*prompt.Analysis, error) {
	a := f.analysis
	return &a, nil
}

type fakeEnhancer struct {
	prompt string
	err    error
}

func (f fakeEnhancer) Enhance(ctx context.Context, text string) (*prompt.Enhancement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &prompt.Enhancement{Prompt: f.prompt, Enhanced: true, Provider: "gemini"}, nil
}
