package post

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

const postColumns = "id, user_id, content, status, topics, scheduled_at, posted_at, created_at, updated_at"

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("PostRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

// GetByID returns a single post
func (p *Pgx) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(postColumns).
		From("posts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	row := p.pg.QueryRow(ctx, query, args...)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// GetScheduledWindow returns scheduled posts inside [after, before]
func (p *Pgx) GetScheduledWindow(ctx context.Context, after, before time.Time, size int) ([]*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(postColumns).
		From("posts").
		Where(sq.Eq{"status": domain.PostStatusScheduled}).
		Where(sq.GtOrEq{"scheduled_at": after}).
		Where(sq.LtOrEq{"scheduled_at": before}).
		OrderBy("scheduled_at ASC").
		Limit(uint64(size)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// SetSchedule sets or clears a post's schedule instant
func (p *Pgx) SetSchedule(ctx context.Context, id string, at *time.Time) (*domain.Post, error) {
	builder := repositories.SqBuilder.
		Update("posts").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + postColumns)

	if at != nil {
		builder = builder.
			Set("scheduled_at", at.UTC()).
			Set("status", domain.PostStatusScheduled)
	} else {
		builder = builder.
			Set("scheduled_at", nil).
			Set("status", domain.PostStatusDraft)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	row := p.pg.QueryRow(ctx, query, args...)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// BatchUpdateSchedules applies all shifts inside one transaction using a
// single pgx batch round-trip.
func (p *Pgx) BatchUpdateSchedules(ctx context.Context, updates []domain.ScheduleUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := p.pg.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, u := range updates {
		query, args, err := repositories.SqBuilder.
			Update("posts").
			Set("scheduled_at", u.ScheduledAt.UTC()).
			Set("updated_at", time.Now().UTC()).
			Where(sq.Eq{"id": u.ID}).
			ToSql()
		if err != nil {
			return repositories.ErrBadQuery
		}
		batch.Queue(query, args...)
	}

	br := tx.SendBatch(ctx, batch)
	for range updates {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateStatus moves a post to the given lifecycle status
func (p *Pgx) UpdateStatus(ctx context.Context, id string, status domain.PostStatus) error {
	query, args, err := repositories.SqBuilder.
		Update("posts").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDue returns scheduled posts whose instant is at or before now
func (p *Pgx) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(postColumns).
		From("posts").
		Where(sq.Eq{"status": domain.PostStatusScheduled}).
		Where(sq.LtOrEq{"scheduled_at": now.UTC()}).
		OrderBy("scheduled_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// MarkPosted transitions a scheduled post to posted
func (p *Pgx) MarkPosted(ctx context.Context, id string, postedAt time.Time) error {
	query, args, err := repositories.SqBuilder.
		Update("posts").
		Set("status", domain.PostStatusPosted).
		Set("posted_at", postedAt.UTC()).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "status": domain.PostStatusScheduled}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID, &post.UserID, &post.Content, &post.Status, &post.Topics,
		&post.ScheduledAt, &post.PostedAt, &post.CreatedAt, &post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &post, nil
}

func scanPosts(rows pgx.Rows) ([]*domain.Post, error) {
	var posts []*domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}
