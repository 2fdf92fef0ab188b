package preference

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftly/post-scheduler/internal/domain"
	"github.com/draftly/post-scheduler/internal/repositories"
	"github.com/draftly/post-scheduler/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PreferenceRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

// Get returns the scheduling preferences stored for a user
func (p *Pgx) Get(ctx context.Context, userID string) (*domain.Preference, error) {
	query, args, err := repositories.SqBuilder.
		Select("user_id", "timezone", "posting_time").
		From("preferences").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var pref domain.Preference
	err = p.pg.QueryRow(ctx, query, args...).Scan(&pref.UserID, &pref.Timezone, &pref.PostingTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &pref, nil
}

// Upsert creates or replaces a user's scheduling preferences
func (p *Pgx) Upsert(ctx context.Context, pref domain.Preference) error {
	query, args, err := repositories.SqBuilder.
		Insert("preferences").
		Columns("user_id", "timezone", "posting_time", "updated_at").
		Values(pref.UserID, pref.Timezone, pref.PostingTime, time.Now().UTC()).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET timezone = EXCLUDED.timezone, posting_time = EXCLUDED.posting_time, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	_, err = p.pg.Exec(ctx, query, args...)
	return err
}
