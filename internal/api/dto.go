package api

import (
	"time"

	"github.com/draftly/post-scheduler/internal/domain"
	"github.com/draftly/post-scheduler/internal/scheduler"
)

const dateLayout = "2006-01-02"

type openSessionRequest struct {
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
	Mode   string `json:"mode"`
}

type selectionRequest struct {
	Date     *string `json:"date,omitempty"`
	Hour     *string `json:"hour,omitempty"`
	Minute   *string `json:"minute,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

type monthRequest struct {
	Month string `json:"month"` // "2006-01"
}

type submitRequest struct {
	Resolution string `json:"resolution"` // "", "anyway", "push", "cancel"
}

type preferenceRequest struct {
	Timezone    string `json:"timezone"`
	PostingTime string `json:"posting_time"`
}

type selectionResponse struct {
	Date     string `json:"date"`
	Hour     string `json:"hour"`
	Minute   string `json:"minute"`
	Timezone string `json:"timezone"`
}

type postResponse struct {
	ID          string     `json:"id"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	Topics      []string   `json:"topics,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

type sessionResponse struct {
	ID          string            `json:"id"`
	PostID      string            `json:"post_id"`
	Mode        string            `json:"mode"`
	Selection   selectionResponse `json:"selection"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	Conflicts   []postResponse    `json:"conflicts"`
	State       string            `json:"state"`
}

type submitResponse struct {
	State     string         `json:"state"`
	Post      *postResponse  `json:"post,omitempty"`
	Conflicts []postResponse `json:"conflicts,omitempty"`
	Shifted   int            `json:"shifted"`
}

type windowResponse struct {
	Items []postResponse `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toPostResponse(p *domain.Post) postResponse {
	return postResponse{
		ID:          p.ID,
		Content:     p.Content,
		Status:      string(p.Status),
		Topics:      p.Topics,
		ScheduledAt: p.ScheduledAt,
		PostedAt:    p.PostedAt,
	}
}

func toPostResponses(posts []*domain.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	return out
}

func toSessionResponse(s *scheduler.Session) sessionResponse {
	resp := sessionResponse{
		ID:     s.ID,
		PostID: s.PostID,
		Mode:   string(s.Mode),
		Selection: selectionResponse{
			Date:     s.Selection.Date.Format(dateLayout),
			Hour:     s.Selection.Hour,
			Minute:   s.Selection.Minute,
			Timezone: s.Selection.Timezone,
		},
		Conflicts: toPostResponses(s.Conflicts),
		State:     string(s.State),
	}
	if !s.ScheduledAt.IsZero() {
		at := s.ScheduledAt
		resp.ScheduledAt = &at
	}
	return resp
}

func toSubmitResponse(r *scheduler.SubmitResult) submitResponse {
	resp := submitResponse{
		State:     string(r.State),
		Conflicts: toPostResponses(r.Conflicts),
		Shifted:   r.Shifted,
	}
	if r.Post != nil {
		p := toPostResponse(r.Post)
		resp.Post = &p
	}
	return resp
}
