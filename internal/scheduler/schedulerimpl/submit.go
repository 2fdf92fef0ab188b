package schedulerimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/draftly/post-scheduler/internal/domain"
	"github.com/draftly/post-scheduler/internal/schedule"
	"github.com/draftly/post-scheduler/internal/scheduler"
	apperrors "github.com/draftly/post-scheduler/pkg/errors"
)

// Submit runs the scheduling state machine:
//
//	IDLE -> VALIDATING -> (CONFLICT_PROMPT | SUBMITTING) -> (SUCCESS | FAILURE)
//
// An initial submit that finds conflicts stops at the prompt without touching
// the backend; the caller resumes with a resolution. While a backend call is
// in flight, further submits are no-ops.
func (s *SchedulerImpl) Submit(ctx context.Context, sessionID string, resolution scheduler.Resolution) (*scheduler.SubmitResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()

	if sess.submitting {
		sess.mu.Unlock()
		return &scheduler.SubmitResult{State: scheduler.StateSubmitting}, nil
	}

	if resolution == scheduler.ResolutionCancel {
		sess.state = scheduler.StateIdle
		sess.mu.Unlock()
		return &scheduler.SubmitResult{State: scheduler.StateIdle}, nil
	}

	sel := sess.sel
	window := make([]*domain.Post, len(sess.window))
	copy(window, sess.window)

	valid, err := schedule.ValidForNow(sel, s.Clock.Now(), s.minLead())
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	if !valid {
		sess.state = scheduler.StateIdle
		sess.mu.Unlock()
		s.Metrics.RecordSubmit("invalid_time")
		return nil, apperrors.ErrInvalidTime
	}

	conflicts, err := schedule.DetectConflicts(schedule.PolicySameDay, sel, window, sess.postID)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	if len(conflicts) > 0 && resolution == scheduler.ResolutionNone {
		sess.state = scheduler.StateConflictPrompt
		sess.mu.Unlock()
		s.Metrics.RecordConflicts(len(conflicts))
		return &scheduler.SubmitResult{State: scheduler.StateConflictPrompt, Conflicts: conflicts}, nil
	}

	at, err := schedule.Instant(sel)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}

	sess.submitting = true
	sess.state = scheduler.StateSubmitting
	sess.mu.Unlock()

	result, err := s.performSubmit(ctx, sess, sel, window, resolution, at)

	sess.mu.Lock()
	sess.submitting = false
	if err != nil {
		sess.state = scheduler.StateIdle
	} else {
		sess.state = result.State
	}
	sess.mu.Unlock()

	return result, err
}

// performSubmit does the backend calls: an optional cascade push followed by
// the schedule write. A failed push aborts the whole submit; the original
// schedule is never applied on top of an unresolved conflict.
func (s *SchedulerImpl) performSubmit(ctx context.Context, sess *session, sel schedule.Selection, window []*domain.Post, resolution scheduler.Resolution, at time.Time) (*scheduler.SubmitResult, error) {
	shifted := 0

	if resolution == scheduler.ResolutionPush {
		plan, err := schedule.PlanPush(window, sel.Date, sel.Timezone)
		if err != nil {
			return nil, err
		}

		if len(plan) > 0 {
			updates := make([]domain.ScheduleUpdate, 0, len(plan))
			for _, shift := range plan {
				updates = append(updates, domain.ScheduleUpdate{ID: shift.Post.ID, ScheduledAt: shift.NewAt})
			}

			if err := s.PostRepo.BatchUpdateSchedules(ctx, updates); err != nil {
				s.Metrics.RecordSubmit("push_failed")
				return nil, fmt.Errorf("%w: %w", apperrors.ErrPush, err)
			}

			shifted = len(plan)
			s.Metrics.RecordPush(shifted)
			s.Logger.Info("Cascade push applied", "session_id", sess.id, "shifted", shifted)

			// Refetch strictly after a successful push so the next prompt
			// sees the freed day.
			s.refreshWindow(ctx, sess, sel.Date)
		}
	}

	p, err := s.PostRepo.SetSchedule(ctx, sess.postID, &at)
	if err != nil {
		s.Metrics.RecordSubmit("failed")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSubmit, err)
	}

	s.Metrics.RecordSubmit("success")
	return &scheduler.SubmitResult{State: scheduler.StateSuccess, Post: p, Shifted: shifted}, nil
}

func (s *SchedulerImpl) minLead() time.Duration {
	return time.Duration(s.Config.Scheduler.MinLeadMinutes) * time.Minute
}
