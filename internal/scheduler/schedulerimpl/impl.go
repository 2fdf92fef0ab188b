package schedulerimpl

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"

	"github.com/draftly/post-scheduler/internal/domain"
	"github.com/draftly/post-scheduler/internal/metrics"
	"github.com/draftly/post-scheduler/internal/repositories/post"
	"github.com/draftly/post-scheduler/internal/repositories/preference"
	"github.com/draftly/post-scheduler/internal/schedule"
	"github.com/draftly/post-scheduler/internal/scheduler"
	"github.com/draftly/post-scheduler/pkg/config"
	apperrors "github.com/draftly/post-scheduler/pkg/errors"
	"github.com/draftly/post-scheduler/pkg/logger"
)

type Opts struct {
	fx.In

	PostRepo post.Repository
	PrefRepo preference.Repository
	Logger   logger.Logger
	Config   *config.Config
	Metrics  metrics.Recorder
	Clock    clockwork.Clock
}

type SchedulerImpl struct {
	PostRepo post.Repository
	PrefRepo preference.Repository
	Logger   logger.Logger
	Config   *config.Config
	Metrics  metrics.Recorder
	Clock    clockwork.Clock

	mu       sync.Mutex
	sessions map[string]*session
}

// session is the mutable state of one modal-open lifecycle. Sessions are
// isolated: nothing is shared across them and closing one discards it whole.
type session struct {
	mu sync.Mutex

	id     string
	postID string
	userID string
	mode   scheduler.Mode

	sel         schedule.Selection
	window      []*domain.Post
	windowMonth time.Time

	initialized bool
	submitting  bool
	state       scheduler.State
}

func New(opts Opts) *SchedulerImpl {
	return &SchedulerImpl{
		PostRepo: opts.PostRepo,
		PrefRepo: opts.PrefRepo,
		Logger:   opts.Logger.WithComponent("Scheduler"),
		Config:   opts.Config,
		Metrics:  opts.Metrics,
		Clock:    opts.Clock,
		sessions: make(map[string]*session),
	}
}

var _ scheduler.Client = (*SchedulerImpl)(nil)

// Open starts a scheduling session for a post, resolving defaults from the
// user's preferences
func (s *SchedulerImpl) Open(ctx context.Context, opts scheduler.OpenOpts) (*scheduler.Session, error) {
	p, err := s.PostRepo.GetByID(ctx, opts.PostID)
	if err != nil {
		return nil, err
	}

	pref := s.lookupPreferences(ctx, opts.UserID)

	sess := &session{
		id:     uuid.NewString(),
		postID: p.ID,
		userID: opts.UserID,
		mode:   opts.Mode,
		state:  scheduler.StateIdle,
	}

	if err := s.initSelection(sess, p, pref); err != nil {
		return nil, err
	}

	// Window open failures are not fatal: conflict detection simply runs
	// against an empty window until a refetch succeeds.
	s.refreshWindow(ctx, sess, sess.sel.Date)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return s.snapshot(sess), nil
}

// initSelection fills the session's selection exactly once. Reschedule mode
// reuses the post's stored instant when it has one; otherwise both modes
// default to today at the preferred posting time.
func (s *SchedulerImpl) initSelection(sess *session, p *domain.Post, pref domain.Preference) error {
	if sess.initialized {
		return nil
	}

	tz := pref.Timezone
	if tz == "" {
		tz = s.Config.Scheduler.DefaultTimezone
	}
	if tz == "" {
		tz = "Local"
	}

	postingTime := pref.PostingTime
	if postingTime == "" {
		postingTime = s.Config.Scheduler.DefaultPostingTime
	}

	var sel schedule.Selection
	var err error
	if sess.mode == scheduler.ModeReschedule && p.ScheduledAt != nil {
		sel, err = schedule.SelectionFromInstant(*p.ScheduledAt, tz)
	} else {
		loc, lerr := time.LoadLocation(tz)
		if lerr != nil {
			return lerr
		}
		sel, err = schedule.NewSelection(s.Clock.Now().In(loc), postingTime, tz)
	}
	if err != nil {
		return err
	}

	sess.sel = sel
	sess.initialized = true
	return nil
}

func (s *SchedulerImpl) lookupPreferences(ctx context.Context, userID string) domain.Preference {
	pref, err := s.PrefRepo.Get(ctx, userID)
	if err != nil {
		if !apperrors.Is(err, preference.ErrNotFound) {
			s.Logger.Warn("Failed to load preferences, using defaults", "user_id", userID, "error", err)
		}
		return domain.Preference{UserID: userID}
	}
	return *pref
}

// Get returns the current session snapshot
func (s *SchedulerImpl) Get(_ context.Context, sessionID string) (*scheduler.Session, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// UpdateSelection applies a selection edit and recomputes conflicts
func (s *SchedulerImpl) UpdateSelection(ctx context.Context, sessionID string, update scheduler.SelectionUpdate) (*scheduler.Session, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if update.Date != nil {
		sess.sel.Date = *update.Date
	}
	if update.Hour != nil {
		sess.sel.Hour = *update.Hour
	}
	if update.Minute != nil {
		sess.sel.Minute = *update.Minute
	}
	if update.Timezone != nil {
		if _, err := time.LoadLocation(*update.Timezone); err != nil {
			sess.mu.Unlock()
			return nil, apperrors.Wrap(err, "invalid timezone")
		}
		sess.sel.Timezone = *update.Timezone
	}
	sess.state = scheduler.StateIdle
	sess.mu.Unlock()

	return s.snapshot(sess), nil
}

// ChangeMonth refetches the scheduled window for a newly visible month
func (s *SchedulerImpl) ChangeMonth(ctx context.Context, sessionID string, month time.Time) (*scheduler.Session, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	s.refreshWindow(ctx, sess, month)
	return s.snapshot(sess), nil
}

// ApplyPreferences offers late-arriving preferences to the session. The
// one-shot init guard makes this a no-op after Open so an async preference
// load can never clobber edits in progress.
func (s *SchedulerImpl) ApplyPreferences(_ context.Context, sessionID string, pref domain.Preference) (*scheduler.Session, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if !sess.initialized {
		tz := pref.Timezone
		if tz == "" {
			tz = "Local"
		}
		postingTime := pref.PostingTime
		if postingTime == "" {
			postingTime = s.Config.Scheduler.DefaultPostingTime
		}
		if loc, lerr := time.LoadLocation(tz); lerr == nil {
			if sel, serr := schedule.NewSelection(s.Clock.Now().In(loc), postingTime, tz); serr == nil {
				sess.sel = sel
				sess.initialized = true
			}
		}
	}
	sess.mu.Unlock()

	return s.snapshot(sess), nil
}

// Close discards the session and all transient state
func (s *SchedulerImpl) Close(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *SchedulerImpl) lookup(sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return sess, nil
}

// refreshWindow fetches scheduled posts for the month containing day, padded
// by the configured number of days on both sides. On failure the previous
// window stays in place so conflict detection keeps working on stale data.
func (s *SchedulerImpl) refreshWindow(ctx context.Context, sess *session, day time.Time) {
	sess.mu.Lock()
	tz := sess.sel.Timezone
	sess.mu.Unlock()

	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	pad := s.Config.Scheduler.WindowPadDays
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)
	after := monthStart.AddDate(0, 0, -pad)
	before := monthStart.AddDate(0, 1, 0).AddDate(0, 0, pad)

	window, err := s.PostRepo.GetScheduledWindow(ctx, after.UTC(), before.UTC(), s.Config.Scheduler.WindowSize)
	if err != nil {
		s.Logger.Error("Failed to fetch scheduled window, keeping stale data",
			"session_id", sess.id, "month", monthStart.Format("2006-01"), "error", err)
		return
	}

	sess.mu.Lock()
	sess.window = window
	sess.windowMonth = monthStart
	sess.mu.Unlock()
}

// snapshot renders the session for callers, recomputing the candidate
// instant and the conflict set from the current selection and window.
func (s *SchedulerImpl) snapshot(sess *session) *scheduler.Session {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := &scheduler.Session{
		ID:        sess.id,
		PostID:    sess.postID,
		Mode:      sess.mode,
		Selection: sess.sel,
		State:     sess.state,
	}

	if at, err := schedule.Instant(sess.sel); err == nil {
		snap.ScheduledAt = at
	}

	conflicts, err := schedule.DetectConflicts(schedule.PolicySameDay, sess.sel, sess.window, sess.postID)
	if err == nil {
		snap.Conflicts = conflicts
	}

	return snap
}
