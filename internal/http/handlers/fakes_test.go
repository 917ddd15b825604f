package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"artcreator/internal/domain"
	"artcreator/internal/generation"
	"artcreator/internal/middleware"
	"artcreator/internal/providers/prompt"
)

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	err      error
}

func (f *fakeProfiles) Ensure(ctx context.Context, userID, email string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.profiles == nil {
		f.profiles = map[string]*domain.Profile{}
	}
	p, ok := f.profiles[userID]
	if !ok {
		p = &domain.Profile{UserID: userID, Email: email, DailyCredits: 5}
		f.profiles[userID] = p
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeProfiles) ConsumeCredit(ctx context.Context, userID string) (*domain.Profile, error) {
	return nil, errors.New("not used")
}

func (f *fakeProfiles) GrantCredits(ctx context.Context, userID string, amount int) (*domain.Profile, error) {
	return nil, errors.New("not used")
}

func (f *fakeProfiles) SetBlocked(ctx context.Context, userID string, blocked bool) (*domain.Profile, error) {
	return nil, errors.New("not used")
}

func (f *fakeProfiles) ResetDaily(ctx context.Context, allowance int) (int64, error) {
	return 0, errors.New("not used")
}

type fakeGallery struct {
	entries    []domain.GalleryEntry
	lastLimit  int
	lastOffset int
	lastUserID string
	listErr    error
}

func (f *fakeGallery) Save(ctx context.Context, entry *domain.GalleryEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeGallery) ListPublic(ctx context.Context, limit, offset int) ([]domain.GalleryEntry, error) {
	f.lastLimit, f.lastOffset = limit, offset
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeGallery) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.GalleryEntry, error) {
	f.lastLimit, f.lastOffset, f.lastUserID = limit, offset, userID
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.GalleryEntry{}
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeUsage struct {
	mu      sync.Mutex
	events  []domain.UsageEvent
	summary *domain.StatsSummary
	err     error
}

func (f *fakeUsage) Record(ctx context.Context, event domain.UsageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeUsage) Summary(ctx context.Context) (*domain.StatsSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakePrecheck struct {
	err   error
	calls int
}

func (f *fakePrecheck) Precheck(ctx context.Context, userID, email, text string) (*domain.Profile, error) {
	f.calls++
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrInvalidPrompt
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Profile{UserID: userID, DailyCredits: 5}, nil
}

type fakeGenerations struct {
	mu       sync.Mutex
	items    map[string]generation.Generation
	started  []generation.Request
	startErr error
	nextID   int
}

func (f *fakeGenerations) Start(req generation.Request) (generation.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return generation.Generation{}, f.startErr
	}
	f.nextID++
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gen := generation.Generation{
		ID:        "gen-" + strconv.Itoa(f.nextID),
		UserID:    req.UserID,
		Status:    generation.StatusQueued,
		Prompt:    req.Prompt,
		Size:      req.Size.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.started = append(f.started, req)
	f.put(gen)
	return gen, nil
}

func (f *fakeGenerations) put(gen generation.Generation) {
	if f.items == nil {
		f.items = map[string]generation.Generation{}
	}
	f.items[gen.ID] = gen
}

func (f *fakeGenerations) Get(id string) (generation.Generation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen, ok := f.items[id]
	return gen, ok
}

func (f *fakeGenerations) Active(userID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, gen := range f.items {
		if gen.UserID == userID && !gen.Status.Done() {
			return id, true
		}
	}
	return "", false
}

type fakeFetcher struct {
	mu            sync.Mutex
	data          map[string][]byte
	err           error
	calls         int
	generationIDs []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, generationID string, img domain.GeneratedImage) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.generationIDs = append(f.generationIDs, generationID)
	if f.err != nil {
		return nil, f.err
	}
	return f.data[img.ID], nil
}

type testApp struct {
	*App
	profiles    *fakeProfiles
	gallery     *fakeGallery
	usage       *fakeUsage
	precheck    *fakePrecheck
	generations *fakeGenerations
	fetcher     *fakeFetcher
}

func newTestApp() *testApp {
	t := &testApp{
		profiles:    &fakeProfiles{},
		gallery:     &fakeGallery{},
		usage:       &fakeUsage{summary: &domain.StatsSummary{TotalUsers: 3, ImagesGenerated: 12}},
		precheck:    &fakePrecheck{},
		generations: &fakeGenerations{},
		fetcher:     &fakeFetcher{data: map[string][]byte{}},
	}
	t.App = &App{
		Logger:      zerolog.Nop(),
		Profiles:    t.profiles,
		Gallery:     t.gallery,
		Usage:       t.usage,
		Analyzer:    prompt.NewStaticAnalyzer(),
		Enhancer:    prompt.NewStaticEnhancer(),
		Precheck:    t.precheck,
		Generations: t.generations,
		Fetcher:     t.fetcher,
	}
	return t
}

// router mounts the handlers the way the API does, with the caller identity
// taken from the X-Test-User header instead of a token.
func (t *testApp) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/healthz", t.Health)
	r.Get("/v1/image-sizes", t.ImageSizes)
	r.Get("/v1/gallery", t.PublicGallery)
	r.Get("/v1/stats", t.StatsSummary)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := middleware.ContextWithUserID(req.Context(), req.Header.Get("X-Test-User"))
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		r.Get("/v1/me", t.Me)
		r.Get("/v1/me/images", t.MyImages)
		r.Post("/v1/generations", t.CreateGeneration)
		r.Get("/v1/generations/{id}", t.GetGeneration)
		r.Get("/v1/generations/{id}/zip", t.GenerationZip)
		r.Post("/v1/prompts/analyze", t.AnalyzePrompt)
		r.Post("/v1/prompts/enhance", t.EnhancePrompt)
	})
	return r
}

func (t *testApp) do(method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	t.router().ServeHTTP(rec, req)
	return rec
}
