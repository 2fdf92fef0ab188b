package scheduler

import (
	"context"
	"time"

	"github.com/draftly/post-scheduler/internal/domain"
	"github.com/draftly/post-scheduler/internal/schedule"
)

type Mode string

const (
	ModeSchedule   Mode = "schedule"
	ModeReschedule Mode = "reschedule"
)

// Resolution is the user's answer to a conflict prompt. An initial submit
// carries ResolutionNone.
type Resolution string

const (
	ResolutionNone   Resolution = ""
	ResolutionAnyway Resolution = "anyway"
	ResolutionPush   Resolution = "push"
	ResolutionCancel Resolution = "cancel"
)

type State string

const (
	StateIdle           State = "idle"
	StateConflictPrompt State = "conflict_prompt"
	StateSubmitting     State = "submitting"
	StateSuccess        State = "success"
)

// Session is a snapshot of one scheduling-modal lifecycle. Conflicts and
// ScheduledAt are recomputed on every read from the current selection and
// window.
type Session struct {
	ID          string
	PostID      string
	Mode        Mode
	Selection   schedule.Selection
	ScheduledAt time.Time
	Conflicts   []*domain.Post
	State       State
}

// SelectionUpdate carries the fields of a selection edit; nil fields are
// left unchanged.
type SelectionUpdate struct {
	Date     *time.Time
	Hour     *string
	Minute   *string
	Timezone *string
}

type OpenOpts struct {
	PostID string
	UserID string
	Mode   Mode
}

// SubmitResult reports where a submit attempt landed.
type SubmitResult struct {
	State     State
	Post      *domain.Post
	Conflicts []*domain.Post
	Shifted   int
}

//go:generate go run go.uber.org/mock/mockgen -source=scheduler.go -destination=mocks/mock.go
type Client interface {
	// Open starts a scheduling session for a post, resolving defaults from
	// the user's preferences. Runs exactly once per session.
	Open(ctx context.Context, opts OpenOpts) (*Session, error)

	// Get returns the current session snapshot.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// UpdateSelection applies a selection edit and recomputes conflicts.
	UpdateSelection(ctx context.Context, sessionID string, update SelectionUpdate) (*Session, error)

	// ChangeMonth refetches the scheduled window for a newly visible
	// calendar month. A failed fetch keeps the previous window.
	ChangeMonth(ctx context.Context, sessionID string, month time.Time) (*Session, error)

	// ApplyPreferences offers late-arriving preferences to the session.
	// A no-op once the session has initialized its selection.
	ApplyPreferences(ctx context.Context, sessionID string, pref domain.Preference) (*Session, error)

	// Submit runs the scheduling state machine for the session.
	Submit(ctx context.Context, sessionID string, resolution Resolution) (*SubmitResult, error)

	// Close discards the session and all transient state.
	Close(sessionID string)
}
