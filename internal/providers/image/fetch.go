package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"artcreator/internal/domain"
	"artcreator/internal/storage"
)

const maxImageBytes = 20 << 20

// Store is the cache the fetcher writes downloaded images to.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Fetcher downloads rendered images, caching the bytes per generation.
type Fetcher struct {
	client *http.Client
	store  Store
	logger zerolog.Logger
}

func NewFetcher(client *http.Client, store Store, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	return &Fetcher{client: client, store: store, logger: logger}
}

// CacheKey is the storage key of a downloaded image. Image ids repeat across
// generations started in the same millisecond, so the generation id scopes
// them.
func CacheKey(generationID, id string) string {
	return "images/" + generationID + "/" + id + ".png"
}

// Fetch returns the bytes for img of the given generation. When the primary
// URL fails the fallback placeholder is downloaded instead. Without a
// generation id nothing is cached.
func (f *Fetcher) Fetch(ctx context.Context, generationID string, img domain.GeneratedImage) ([]byte, error) {
	cache := f.store != nil && strings.TrimSpace(generationID) != ""
	key := CacheKey(generationID, img.ID)
	if cache {
		data, err := f.store.Read(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			f.logger.Warn().Err(err).Str("image_id", img.ID).Msg("image cache read failed")
		}
	}

	data, err := f.download(ctx, img.URL)
	if err != nil && img.FallbackURL != "" {
		f.logger.Warn().Err(err).Str("image_id", img.ID).Msg("image download failed, using fallback")
		data, err = f.download(ctx, img.FallbackURL)
	}
	if err != nil {
		return nil, err
	}

	if cache {
		if _, werr := f.store.Write(ctx, key, data); werr != nil {
			f.logger.Warn().Err(werr).Str("image_id", img.ID).Msg("image cache write failed")
		}
	}
	return data, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	return data, nil
}
