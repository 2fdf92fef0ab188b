package domain

import "time"

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusScheduled PostStatus = "scheduled"
	PostStatusPosted    PostStatus = "posted"
	PostStatusCanceled  PostStatus = "canceled"
	PostStatusDismissed PostStatus = "dismissed"
	PostStatusSuggested PostStatus = "suggested"
	PostStatusSaved     PostStatus = "saved"
)

// Post is a piece of content in any stage of its lifecycle. ScheduledAt is
// always an absolute UTC instant; wall-clock date and time are derived from it
// in a caller-selected timezone at edit time, never stored per post.
type Post struct {
	ID          string
	UserID      string
	Content     string
	Status      PostStatus
	Topics      []string
	ScheduledAt *time.Time
	PostedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsScheduled reports whether the post participates in conflict detection.
func (p *Post) IsScheduled() bool {
	return p.Status == PostStatusScheduled && p.ScheduledAt != nil
}

// ScheduleUpdate is a single entry of a batch schedule shift.
type ScheduleUpdate struct {
	ID          string
	ScheduledAt time.Time
}
