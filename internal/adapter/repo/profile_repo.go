package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"artcreator/internal/domain"
	"artcreator/internal/infra"
	"artcreator/internal/sqlinline"
)

// ProfileRepositoryPG implements domain.ProfileRepository backed by PostgreSQL.
type ProfileRepositoryPG struct {
	sql            infra.SQLExecutor
	defaultCredits int
}

// NewProfileRepository creates a repository that seeds new profiles with
// defaultCredits.
func NewProfileRepository(sql infra.SQLExecutor, defaultCredits int) *ProfileRepositoryPG {
	return &ProfileRepositoryPG{sql: sql, defaultCredits: defaultCredits}
}

// Ensure returns the profile for userID, creating it on first access.
func (r *ProfileRepositoryPG) Ensure(ctx context.Context, userID, email string) (*domain.Profile, error) {
	p, err := scanProfile(r.sql.QueryRow(ctx, sqlinline.QEnsureProfile, userID, email, r.defaultCredits))
	if errors.Is(err, domain.ErrNotFound) {
		// A concurrent first insert was not yet visible to this statement's
		// snapshot; it is committed once on conflict returns.
		return r.Get(ctx, userID)
	}
	return p, err
}

func (r *ProfileRepositoryPG) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QSelectProfile, userID))
}

func (r *ProfileRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QSelectProfileByEmail, email))
}

// ConsumeCredit atomically spends one credit. It returns
// domain.ErrInsufficientCredits when no credit is left or the account is
// blocked by the time the update runs.
func (r *ProfileRepositoryPG) ConsumeCredit(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := scanProfile(r.sql.QueryRow(ctx, sqlinline.QConsumeCredit, userID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInsufficientCredits
	}
	return p, err
}

func (r *ProfileRepositoryPG) GrantCredits(ctx context.Context, userID string, amount int) (*domain.Profile, error) {
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QGrantCredits, userID, amount))
}

func (r *ProfileRepositoryPG) SetBlocked(ctx context.Context, userID string, blocked bool) (*domain.Profile, error) {
	return scanProfile(r.sql.QueryRow(ctx, sqlinline.QSetProfileBlocked, userID, blocked))
}

// ResetDaily tops every profile up to allowance and clears today's usage. It
// returns the number of profiles touched.
func (r *ProfileRepositoryPG) ResetDaily(ctx context.Context, allowance int) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QResetDailyCredits, allowance)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.UserID, &p.Email, &p.DailyCredits, &p.CreditsUsedToday, &p.IsBlocked, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ domain.ProfileRepository = (*ProfileRepositoryPG)(nil)
