package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"artcreator/internal/domain"
	"artcreator/internal/infra"
	"artcreator/internal/sqlinline"
)

const maxGalleryPage = 100

// GalleryRepositoryPG implements domain.GalleryRepository using PostgreSQL.
type GalleryRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewGalleryRepository(sql infra.SQLExecutor) *GalleryRepositoryPG {
	return &GalleryRepositoryPG{sql: sql}
}

// Save inserts entry and fills in its generated id and timestamp.
func (r *GalleryRepositoryPG) Save(ctx context.Context, entry *domain.GalleryEntry) error {
	var generationID *string
	if entry.GenerationID != "" {
		generationID = &entry.GenerationID
	}
	category := entry.Category
	if category == "" {
		category = "general"
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertGalleryImage,
		entry.UserID,
		generationID,
		entry.Prompt,
		entry.OriginalPrompt,
		entry.ImageURL,
		entry.ImageSize,
		entry.Seed,
		category,
		entry.IsPublic,
	)
	return row.Scan(&entry.ID, &entry.CreatedAt)
}

func (r *GalleryRepositoryPG) ListPublic(ctx context.Context, limit, offset int) ([]domain.GalleryEntry, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.sql.Query(ctx, sqlinline.QListPublicImages, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanGallery(rows)
}

func (r *GalleryRepositoryPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.GalleryEntry, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.sql.Query(ctx, sqlinline.QListUserImages, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanGallery(rows)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxGalleryPage {
		limit = maxGalleryPage
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func scanGallery(rows pgx.Rows) ([]domain.GalleryEntry, error) {
	defer rows.Close()
	entries := []domain.GalleryEntry{}
	for rows.Next() {
		var e domain.GalleryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.GenerationID, &e.Prompt, &e.OriginalPrompt, &e.ImageURL, &e.ImageSize, &e.Seed, &e.Category, &e.IsPublic, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ domain.GalleryRepository = (*GalleryRepositoryPG)(nil)
