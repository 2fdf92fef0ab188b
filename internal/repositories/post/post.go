package post

import (
	"context"
	"errors"
	"time"

	"github.com/draftly/post-scheduler/internal/domain"
)

var ErrNotFound = errors.New("post not found")

//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=mocks/mock.go
type Repository interface {
	// GetByID returns a single post
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// GetScheduledWindow returns scheduled posts with scheduled_at inside
	// [after, before], capped at size, ordered by scheduled_at ascending
	GetScheduledWindow(ctx context.Context, after, before time.Time, size int) ([]*domain.Post, error)

	// SetSchedule sets a post's schedule instant; a nil instant clears the
	// schedule and returns the post to draft
	SetSchedule(ctx context.Context, id string, at *time.Time) (*domain.Post, error)

	// BatchUpdateSchedules applies multiple schedule shifts in one transaction
	BatchUpdateSchedules(ctx context.Context, updates []domain.ScheduleUpdate) error

	// UpdateStatus moves a post to the given lifecycle status
	UpdateStatus(ctx context.Context, id string, status domain.PostStatus) error

	// ListDue returns scheduled posts whose instant is at or before now
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.Post, error)

	// MarkPosted transitions a scheduled post to posted, stamping posted_at
	MarkPosted(ctx context.Context, id string, postedAt time.Time) error
}
