package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/mock/gomock"

	"github.com/draftly/post-scheduler/internal/dismiss"
	"github.com/draftly/post-scheduler/internal/domain"
	"github.com/draftly/post-scheduler/internal/metrics"
	"github.com/draftly/post-scheduler/internal/ratelimit"
	mock_post "github.com/draftly/post-scheduler/internal/repositories/post/mocks"
	mock_preference "github.com/draftly/post-scheduler/internal/repositories/preference/mocks"
	"github.com/draftly/post-scheduler/internal/schedule"
	"github.com/draftly/post-scheduler/internal/scheduler"
	mock_scheduler "github.com/draftly/post-scheduler/internal/scheduler/mocks"
	"github.com/draftly/post-scheduler/pkg/config"
	apperrors "github.com/draftly/post-scheduler/pkg/errors"
	"github.com/draftly/post-scheduler/pkg/logger"
)

type apiFixture struct {
	server    *Server
	router    http.Handler
	scheduler *mock_scheduler.MockClient
	postRepo  *mock_post.MockRepository
	prefRepo  *mock_preference.MockRepository
	clock     *clockwork.FakeClock
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Scheduler.WindowSize = 100
	cfg.Dismiss.UndoSeconds = 3

	log := logger.New(logger.Opts{})
	clock := clockwork.NewFakeClock()

	sched := mock_scheduler.NewMockClient(ctrl)
	postRepo := mock_post.NewMockRepository(ctrl)
	prefRepo := mock_preference.NewMockRepository(ctrl)

	server := New(Opts{
		Scheduler: sched,
		PostRepo:  postRepo,
		PrefRepo:  prefRepo,
		Dismisses: dismiss.NewRegistry(log, clock, 3*time.Second),
		Metrics:   metrics.NewCollector(),
		Limiter:   ratelimit.NewInMemoryLimiter(100, time.Second, 100),
		Logger:    log,
		Config:    cfg,
	})

	return &apiFixture{
		server:    server,
		router:    server.Router(),
		scheduler: sched,
		postRepo:  postRepo,
		prefRepo:  prefRepo,
		clock:     clock,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func testSession() *scheduler.Session {
	return &scheduler.Session{
		ID:     "s1",
		PostID: "p1",
		Mode:   scheduler.ModeSchedule,
		Selection: schedule.Selection{
			Date:     time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
			Hour:     "09",
			Minute:   "00",
			Timezone: "UTC",
		},
		ScheduledAt: time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC),
		State:       scheduler.StateIdle,
	}
}

func TestOpenSession(t *testing.T) {
	f := newAPIFixture(t)

	f.scheduler.EXPECT().
		Open(gomock.Any(), scheduler.OpenOpts{PostID: "p1", UserID: "u1", Mode: scheduler.ModeSchedule}).
		Return(testSession(), nil)

	rec := f.do(t, http.MethodPost, "/api/v1/sessions", openSessionRequest{
		PostID: "p1",
		UserID: "u1",
		Mode:   "schedule",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != "s1" || resp.Selection.Date != "2024-06-10" || resp.Selection.Hour != "09" {
		t.Errorf("response = %+v", resp)
	}
}

func TestOpenSessionValidation(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name string
		body openSessionRequest
	}{
		{"missing post id", openSessionRequest{UserID: "u1", Mode: "schedule"}},
		{"missing user id", openSessionRequest{PostID: "p1", Mode: "schedule"}},
		{"bad mode", openSessionRequest{PostID: "p1", UserID: "u1", Mode: "later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/sessions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSubmitErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid time", apperrors.ErrInvalidTime, http.StatusUnprocessableEntity},
		{"push failed", apperrors.ErrPush, http.StatusBadGateway},
		{"submit failed", apperrors.ErrSubmit, http.StatusBadGateway},
		{"unknown session", apperrors.ErrSessionNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(t)
			f.scheduler.EXPECT().
				Submit(gomock.Any(), "s1", scheduler.ResolutionNone).
				Return(nil, tt.err)

			rec := f.do(t, http.MethodPost, "/api/v1/sessions/s1/submit", submitRequest{})
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSubmitConflictPrompt(t *testing.T) {
	f := newAPIFixture(t)

	at := time.Date(2024, time.June, 10, 8, 0, 0, 0, time.UTC)
	f.scheduler.EXPECT().
		Submit(gomock.Any(), "s1", scheduler.ResolutionNone).
		Return(&scheduler.SubmitResult{
			State:     scheduler.StateConflictPrompt,
			Conflicts: []*domain.Post{{ID: "blocker", Status: domain.PostStatusScheduled, ScheduledAt: &at}},
		}, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/sessions/s1/submit", submitRequest{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp submitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.State != "conflict_prompt" || len(resp.Conflicts) != 1 {
		t.Errorf("response = %+v, want conflict_prompt with 1 conflict", resp)
	}
}

func TestUpdateSelectionBadDate(t *testing.T) {
	f := newAPIFixture(t)

	bad := "June 10"
	rec := f.do(t, http.MethodPatch, "/api/v1/sessions/s1/selection", selectionRequest{Date: &bad})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestScheduledWindow(t *testing.T) {
	f := newAPIFixture(t)

	at := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	f.postRepo.EXPECT().
		GetScheduledWindow(gomock.Any(), gomock.Any(), gomock.Any(), 50).
		Return([]*domain.Post{{ID: "p1", Status: domain.PostStatusScheduled, ScheduledAt: &at}}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/posts/scheduled?after_date=2024-06-01&before_date=2024-06-30&size=50", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp windowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "p1" {
		t.Errorf("items = %+v", resp.Items)
	}
}

func TestDismissAndUndo(t *testing.T) {
	f := newAPIFixture(t)

	f.postRepo.EXPECT().GetByID(gomock.Any(), "p1").Return(&domain.Post{ID: "p1"}, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/posts/p1/dismiss", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("dismiss status = %d, want 202", rec.Code)
	}

	// Undo inside the window cancels the status change; no UpdateStatus call.
	rec = f.do(t, http.MethodPost, "/api/v1/posts/p1/undo", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("undo status = %d, want 204", rec.Code)
	}

	f.clock.Advance(5 * time.Second)

	rec = f.do(t, http.MethodPost, "/api/v1/posts/p1/undo", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second undo status = %d, want 404", rec.Code)
	}
}

func TestDismissFiresAfterWindow(t *testing.T) {
	f := newAPIFixture(t)

	f.postRepo.EXPECT().GetByID(gomock.Any(), "p1").Return(&domain.Post{ID: "p1"}, nil)

	updated := make(chan struct{})
	f.postRepo.EXPECT().
		UpdateStatus(gomock.Any(), "p1", domain.PostStatusDismissed).
		DoAndReturn(func(_ context.Context, _ string, _ domain.PostStatus) error {
			close(updated)
			return nil
		})

	rec := f.do(t, http.MethodPost, "/api/v1/posts/p1/dismiss", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("dismiss status = %d, want 202", rec.Code)
	}

	f.clock.Advance(3 * time.Second)

	select {
	case <-updated:
	case <-time.After(time.Second):
		t.Fatal("post was never dismissed after the undo window")
	}
}

func TestUpsertPreferenceValidation(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPut, "/api/v1/preferences/u1", preferenceRequest{Timezone: "Not/AZone"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad timezone status = %d, want 400", rec.Code)
	}

	rec = f.do(t, http.MethodPut, "/api/v1/preferences/u1", preferenceRequest{PostingTime: "9am"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad posting time status = %d, want 400", rec.Code)
	}

	f.prefRepo.EXPECT().Upsert(gomock.Any(), domain.Preference{
		UserID:      "u1",
		Timezone:    "Europe/Berlin",
		PostingTime: "08:30",
	}).Return(nil)

	rec = f.do(t, http.MethodPut, "/api/v1/preferences/u1", preferenceRequest{Timezone: "Europe/Berlin", PostingTime: "08:30"})
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestCloseSession(t *testing.T) {
	f := newAPIFixture(t)

	f.scheduler.EXPECT().Close("s1")

	rec := f.do(t, http.MethodDelete, "/api/v1/sessions/s1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	f := newAPIFixture(t)

	// Exhaust a tiny limiter.
	f.server.limiter = ratelimit.NewInMemoryLimiter(1, time.Minute, 1)
	f.router = f.server.Router()

	f.scheduler.EXPECT().Get(gomock.Any(), "s1").Return(testSession(), nil)

	if rec := f.do(t, http.MethodGet, "/api/v1/sessions/s1", nil); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/v1/sessions/s1", nil); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
}
