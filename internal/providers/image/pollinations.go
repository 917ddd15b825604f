package image

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"artcreator/internal/domain"
)

const (
	DefaultBaseURL = "https://image.pollinations.ai"
	DefaultModel   = "flux"
	DefaultCount   = 4

	fallbackBaseURL = "https://picsum.photos/seed"
	maxRandomSeed   = 1_000_000
)

// Request describes one generation. Seed is optional; a nil or zero seed
// draws a random seed per image.
type Request struct {
	Prompt string
	Size   domain.ImageSize
	Count  int
	Seed   *int64
}

// Generator renders a prompt into image URLs.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]domain.GeneratedImage, error)
}

type PollinationsOptions struct {
	BaseURL string
	Model   string

	// Prefetch issues a GET for every URL so the renderer produces the images
	// before they are handed out.
	Prefetch      bool
	PrefetchLimit int
	HTTPClient    *http.Client

	Now       func() time.Time
	RandomInt func(n int64) int64
}

// PollinationsGenerator builds image.pollinations.ai URLs.
type PollinationsGenerator struct {
	baseURL       string
	model         string
	prefetch      bool
	prefetchLimit int
	client        *http.Client
	now           func() time.Time
	randomInt     func(n int64) int64
}

func NewPollinationsGenerator(opts PollinationsOptions) *PollinationsGenerator {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	limit := opts.PrefetchLimit
	if limit <= 0 {
		limit = 2
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	randomInt := opts.RandomInt
	if randomInt == nil {
		randomInt = rand.Int64N
	}
	return &PollinationsGenerator{
		baseURL:       baseURL,
		model:         model,
		prefetch:      opts.Prefetch,
		prefetchLimit: limit,
		client:        client,
		now:           now,
		randomInt:     randomInt,
	}
}

func (g *PollinationsGenerator) Generate(ctx context.Context, req Request) ([]domain.GeneratedImage, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, domain.ErrInvalidPrompt
	}
	count := req.Count
	if count <= 0 {
		count = DefaultCount
	}
	size := req.Size
	if size.Width <= 0 || size.Height <= 0 {
		size = domain.DefaultImageSize()
	}

	images := make([]domain.GeneratedImage, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var seed int64
		if req.Seed != nil && *req.Seed != 0 {
			seed = *req.Seed + int64(i)
		} else {
			seed = g.randomInt(maxRandomSeed)
		}
		ts := g.now()
		id := fmt.Sprintf("%d-%d", ts.UnixMilli(), i)
		images = append(images, domain.GeneratedImage{
			ID:          id,
			URL:         g.imageURL(prompt, size, seed, i),
			FallbackURL: FallbackURL(id),
			Prompt:      prompt,
			Seed:        seed,
			Timestamp:   ts,
		})
	}

	if g.prefetch {
		if err := g.warm(ctx, images); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
		}
	}
	return images, nil
}

// RenderSeed is the seed value placed in the image URL for the i-th image.
func RenderSeed(prompt string, seed int64, i int) int64 {
	h := int64(Hash(prompt + strconv.FormatInt(seed, 10) + strconv.Itoa(i)))
	variation := (h + int64(i)) % 4
	return h + variation
}

func (g *PollinationsGenerator) imageURL(prompt string, size domain.ImageSize, seed int64, i int) string {
	return fmt.Sprintf("%s/prompt/%s?width=%d&height=%d&seed=%d&model=%s&nologo=true",
		g.baseURL, EncodeURIComponent(prompt), size.Width, size.Height, RenderSeed(prompt, seed, i), EncodeURIComponent(g.model))
}

// FallbackURL is the placeholder shown when an image fails to load.
func FallbackURL(id string) string {
	return fmt.Sprintf("%s/%s/1024/1024", fallbackBaseURL, EncodeURIComponent(id))
}

func (g *PollinationsGenerator) warm(ctx context.Context, images []domain.GeneratedImage) error {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(g.prefetchLimit)
	for _, img := range images {
		url := img.URL
		group.Go(func() error {
			req, err := http.NewRequestWithContext(gctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := g.client.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				_ = resp.Body.Close()
			}()
			_, _ = io.Copy(io.Discard, resp.Body)
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("prefetch %s: status %d", img.ID, resp.StatusCode)
			}
			return nil
		})
	}
	return group.Wait()
}

var _ Generator = (*PollinationsGenerator)(nil)
