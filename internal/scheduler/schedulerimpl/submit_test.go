package schedulerimpl

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/draftly/post-scheduler/internal/domain"
	"github.com/draftly/post-scheduler/internal/scheduler"
	apperrors "github.com/draftly/post-scheduler/pkg/errors"
)

func TestSubmitWithoutConflicts(t *testing.T) {
	f := newFixture(t)

	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, nil)

	// Tomorrow at the default 09:00 UTC.
	target := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)
	if _, err := f.impl.UpdateSelection(context.Background(), sess.ID, scheduler.SelectionUpdate{Date: &target}); err != nil {
		t.Fatalf("UpdateSelection() error = %v", err)
	}

	wantAt := time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)
	f.postRepo.EXPECT().
		SetSchedule(gomock.Any(), "p1", gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, at *time.Time) (*domain.Post, error) {
			if !at.Equal(wantAt) {
				t.Errorf("SetSchedule at = %v, want %v", at, wantAt)
			}
			return scheduledPost(id, *at), nil
		})

	result, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionNone)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.State != scheduler.StateSuccess {
		t.Errorf("state = %s, want success", result.State)
	}
	if result.Post == nil || result.Post.Status != domain.PostStatusScheduled {
		t.Errorf("result post = %+v, want scheduled", result.Post)
	}
}

func TestSubmitStopsAtConflictPrompt(t *testing.T) {
	f := newFixture(t)

	window := []*domain.Post{
		scheduledPost("blocker", time.Date(2024, time.June, 11, 8, 0, 0, 0, time.UTC)),
	}
	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, window)

	target := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)
	if _, err := f.impl.UpdateSelection(context.Background(), sess.ID, scheduler.SelectionUpdate{Date: &target}); err != nil {
		t.Fatalf("UpdateSelection() error = %v", err)
	}

	// No SetSchedule expectation: the prompt must not touch the backend.
	result, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionNone)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.State != scheduler.StateConflictPrompt {
		t.Errorf("state = %s, want conflict_prompt", result.State)
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].ID != "blocker" {
		t.Errorf("conflicts = %+v, want [blocker]", result.Conflicts)
	}
}

func TestSubmitAnywayIgnoresConflicts(t *testing.T) {
	f := newFixture(t)

	window := []*domain.Post{
		scheduledPost("blocker", time.Date(2024, time.June, 11, 8, 0, 0, 0, time.UTC)),
	}
	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, window)

	target := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)
	if _, err := f.impl.UpdateSelection(context.Background(), sess.ID, scheduler.SelectionUpdate{Date: &target}); err != nil {
		t.Fatalf("UpdateSelection() error = %v", err)
	}

	f.postRepo.EXPECT().
		SetSchedule(gomock.Any(), "p1", gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, at *time.Time) (*domain.Post, error) {
			return scheduledPost(id, *at), nil
		})

	result, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionAnyway)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.State != scheduler.StateSuccess {
		t.Errorf("state = %s, want success", result.State)
	}
	if result.Shifted != 0 {
		t.Errorf("shifted = %d, want 0", result.Shifted)
	}
}

func TestSubmitCancelReturnsToIdle(t *testing.T) {
	f := newFixture(t)

	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, nil)

	result, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionCancel)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.State != scheduler.StateIdle {
		t.Errorf("state = %s, want idle", result.State)
	}
}

func TestSubmitRejectsPastTimeToday(t *testing.T) {
	f := newFixture(t)

	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, nil)

	// Clock is at 12:00 UTC; the default selection is today 09:00.
	_, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionNone)
	if !apperrors.Is(err, apperrors.ErrInvalidTime) {
		t.Fatalf("Submit() error = %v, want ErrInvalidTime", err)
	}

	after, err := f.impl.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.State != scheduler.StateIdle {
		t.Errorf("state after invalid time = %s, want idle", after.State)
	}
}

func TestSubmitPushShiftsChainThenSchedules(t *testing.T) {
	f := newFixture(t)

	window := []*domain.Post{
		scheduledPost("d11", time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)),
		scheduledPost("d12", time.Date(2024, time.June, 12, 10, 0, 0, 0, time.UTC)),
		scheduledPost("d14", time.Date(2024, time.June, 14, 11, 0, 0, 0, time.UTC)),
	}
	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, window)

	target := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)
	if _, err := f.impl.UpdateSelection(context.Background(), sess.ID, scheduler.SelectionUpdate{Date: &target}); err != nil {
		t.Fatalf("UpdateSelection() error = %v", err)
	}

	batch := f.postRepo.EXPECT().
		BatchUpdateSchedules(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, updates []domain.ScheduleUpdate) error {
			if len(updates) != 2 {
				t.Fatalf("batch size = %d, want 2 (d11, d12; d14 is after the gap)", len(updates))
			}
			want := map[string]time.Time{
				"d11": time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC),
				"d12": time.Date(2024, time.June, 13, 10, 0, 0, 0, time.UTC),
			}
			for _, u := range updates {
				if !u.ScheduledAt.Equal(want[u.ID]) {
					t.Errorf("update %s = %v, want %v", u.ID, u.ScheduledAt, want[u.ID])
				}
			}
			return nil
		})

	// The window refetch must strictly follow a successful push, and the
	// schedule write comes last.
	refetch := f.postRepo.EXPECT().
		GetScheduledWindow(gomock.Any(), gomock.Any(), gomock.Any(), 100).
		Return(nil, nil).
		After(batch)
	f.postRepo.EXPECT().
		SetSchedule(gomock.Any(), "p1", gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, at *time.Time) (*domain.Post, error) {
			return scheduledPost(id, *at), nil
		}).
		After(refetch)

	result, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionPush)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.State != scheduler.StateSuccess {
		t.Errorf("state = %s, want success", result.State)
	}
	if result.Shifted != 2 {
		t.Errorf("shifted = %d, want 2", result.Shifted)
	}
}

func TestSubmitPushFailureAbortsSchedule(t *testing.T) {
	f := newFixture(t)

	window := []*domain.Post{
		scheduledPost("d11", time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)),
	}
	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, window)

	target := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)
	if _, err := f.impl.UpdateSelection(context.Background(), sess.ID, scheduler.SelectionUpdate{Date: &target}); err != nil {
		t.Fatalf("UpdateSelection() error = %v", err)
	}

	f.postRepo.EXPECT().
		BatchUpdateSchedules(gomock.Any(), gomock.Any()).
		Return(errors.New("backend down"))

	// No SetSchedule and no refetch: the original schedule is never applied
	// on top of a failed push.
	_, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionPush)
	if !apperrors.Is(err, apperrors.ErrPush) {
		t.Fatalf("Submit() error = %v, want ErrPush", err)
	}

	after, err := f.impl.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if after.State != scheduler.StateIdle {
		t.Errorf("state after push failure = %s, want idle (retryable)", after.State)
	}
}

func TestSubmitPushWithFreeTargetDay(t *testing.T) {
	f := newFixture(t)

	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, nil)

	target := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)
	if _, err := f.impl.UpdateSelection(context.Background(), sess.ID, scheduler.SelectionUpdate{Date: &target}); err != nil {
		t.Fatalf("UpdateSelection() error = %v", err)
	}

	// No batch call for an empty shift set; scheduling proceeds directly.
	f.postRepo.EXPECT().
		SetSchedule(gomock.Any(), "p1", gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, at *time.Time) (*domain.Post, error) {
			return scheduledPost(id, *at), nil
		})

	result, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionPush)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.State != scheduler.StateSuccess || result.Shifted != 0 {
		t.Errorf("result = %+v, want success with 0 shifted", result)
	}
}

func TestSubmitFailureIsRetryable(t *testing.T) {
	f := newFixture(t)

	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, nil)

	target := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)
	if _, err := f.impl.UpdateSelection(context.Background(), sess.ID, scheduler.SelectionUpdate{Date: &target}); err != nil {
		t.Fatalf("UpdateSelection() error = %v", err)
	}

	first := f.postRepo.EXPECT().
		SetSchedule(gomock.Any(), "p1", gomock.Any()).
		Return(nil, errors.New("backend down"))
	f.postRepo.EXPECT().
		SetSchedule(gomock.Any(), "p1", gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, at *time.Time) (*domain.Post, error) {
			return scheduledPost(id, *at), nil
		}).
		After(first)

	if _, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionNone); !apperrors.Is(err, apperrors.ErrSubmit) {
		t.Fatalf("Submit() error = %v, want ErrSubmit", err)
	}

	result, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionNone)
	if err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
	if result.State != scheduler.StateSuccess {
		t.Errorf("retry state = %s, want success", result.State)
	}
}

func TestSubmitDuplicateWhileInFlight(t *testing.T) {
	f := newFixture(t)

	sess := f.open(t, draftPost("p1"), scheduler.ModeSchedule, nil, nil)

	target := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)
	if _, err := f.impl.UpdateSelection(context.Background(), sess.ID, scheduler.SelectionUpdate{Date: &target}); err != nil {
		t.Fatalf("UpdateSelection() error = %v", err)
	}

	started := make(chan struct{})
	release := make(chan struct{})

	f.postRepo.EXPECT().
		SetSchedule(gomock.Any(), "p1", gomock.Any()).
		DoAndReturn(func(_ context.Context, id string, at *time.Time) (*domain.Post, error) {
			close(started)
			<-release
			return scheduledPost(id, *at), nil
		}).
		Times(1)

	done := make(chan *scheduler.SubmitResult, 1)
	go func() {
		result, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionNone)
		if err != nil {
			t.Errorf("first Submit() error = %v", err)
		}
		done <- result
	}()

	<-started

	// Second submit while the first is in flight: a no-op, no second call.
	second, err := f.impl.Submit(context.Background(), sess.ID, scheduler.ResolutionNone)
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if second.State != scheduler.StateSubmitting {
		t.Errorf("second submit state = %s, want submitting", second.State)
	}

	close(release)
	first := <-done
	if first.State != scheduler.StateSuccess {
		t.Errorf("first submit state = %s, want success", first.State)
	}
}
