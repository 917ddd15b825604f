package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"artcreator/internal/domain"
	"artcreator/internal/generation"
	"artcreator/pkg/zip"
)

const downloadConcurrency = 2

// GenerationZip bundles the images of a finished generation into one archive.
func (a *App) GenerationZip(w http.ResponseWriter, r *http.Request) {
	gen, ok := a.ownedGeneration(r)
	if !ok {
		a.fail(w, r, domain.ErrNotFound)
		return
	}
	if gen.Status != generation.StatusSucceeded || gen.Result == nil || len(gen.Result.Images) == 0 {
		a.error(w, http.StatusConflict, "not_ready", "Generation has no images to download yet.")
		return
	}

	images := gen.Result.Images
	entries := make([]zip.Entry, len(images))
	group, ctx := errgroup.WithContext(r.Context())
	group.SetLimit(downloadConcurrency)
	for i, img := range images {
		group.Go(func() error {
			data, err := a.Fetcher.Fetch(ctx, gen.ID, img)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", img.ID, err)
			}
			entries[i] = zip.Entry{Filename: "ai-generated-" + img.ID + ".png", Data: data, Modified: img.Timestamp}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		a.log(r).Error().Err(err).Str("generation_id", gen.ID).Msg("image download failed")
		a.error(w, http.StatusBadGateway, "download_failed", "Failed to download images. Please try again.")
		return
	}

	var buf bytes.Buffer
	if err := zip.Write(&buf, entries); err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ai-generated-%s.zip"`, gen.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
