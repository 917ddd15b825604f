package repo

import (
	"context"
	"encoding/json"

	"artcreator/internal/domain"
	"artcreator/internal/infra"
	"artcreator/internal/sqlinline"
)

// UsageRepositoryPG records usage events in PostgreSQL.
type UsageRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewUsageRepository(sql infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{sql: sql}
}

func (r *UsageRepositoryPG) Record(ctx context.Context, event domain.UsageEvent) error {
	props := event.Properties
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertUsageEvent,
		nullable(event.UserID),
		nullable(event.GenerationID),
		string(event.Type),
		event.Success,
		event.LatencyMS,
		event.Country,
		raw,
	)
	return err
}

func (r *UsageRepositoryPG) Summary(ctx context.Context) (*domain.StatsSummary, error) {
	var s domain.StatsSummary
	row := r.sql.QueryRow(ctx, sqlinline.QStatsSummary)
	if err := row.Scan(&s.TotalUsers, &s.ImagesGenerated, &s.ImagesLast24h, &s.GenerationsSucceeded, &s.GenerationsFailed); err != nil {
		return nil, err
	}
	return &s, nil
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

var _ domain.UsageRepository = (*UsageRepositoryPG)(nil)
