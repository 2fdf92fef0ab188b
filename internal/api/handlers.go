package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/draftly/post-scheduler/internal/domain"
	"github.com/draftly/post-scheduler/internal/repositories/post"
	"github.com/draftly/post-scheduler/internal/scheduler"
	apperrors "github.com/draftly/post-scheduler/pkg/errors"
)

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PostID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "post_id and user_id are required")
		return
	}

	mode := scheduler.Mode(req.Mode)
	if mode != scheduler.ModeSchedule && mode != scheduler.ModeReschedule {
		writeError(w, http.StatusBadRequest, "mode must be schedule or reschedule")
		return
	}

	sess, err := s.scheduler.Open(r.Context(), scheduler.OpenOpts{
		PostID: req.PostID,
		UserID: req.UserID,
		Mode:   mode,
	})
	if err != nil {
		s.writeSchedulerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.scheduler.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeSchedulerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleUpdateSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := scheduler.SelectionUpdate{
		Hour:     req.Hour,
		Minute:   req.Minute,
		Timezone: req.Timezone,
	}
	if req.Date != nil {
		day, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		update.Date = &day
	}

	sess, err := s.scheduler.UpdateSelection(r.Context(), chi.URLParam(r, "sessionID"), update)
	if err != nil {
		s.writeSchedulerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleChangeMonth(w http.ResponseWriter, r *http.Request) {
	var req monthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	month, err := time.Parse("2006-01", req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	sess, err := s.scheduler.ChangeMonth(r.Context(), chi.URLParam(r, "sessionID"), month)
	if err != nil {
		s.writeSchedulerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.scheduler.Submit(r.Context(), chi.URLParam(r, "sessionID"), scheduler.Resolution(req.Resolution))
	if err != nil {
		s.writeSchedulerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmitResponse(result))
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	s.scheduler.Close(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScheduledWindow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	after, err := time.Parse(dateLayout, q.Get("after_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "after_date must be YYYY-MM-DD")
		return
	}
	before, err := time.Parse(dateLayout, q.Get("before_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "before_date must be YYYY-MM-DD")
		return
	}

	// Callers may request fewer results; the configured cap is the ceiling.
	size := s.config.Scheduler.WindowSize
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "size must be a positive integer")
			return
		}
		if n < size {
			size = n
		}
	}

	// before_date is inclusive: extend to end of day.
	items, err := s.postRepo.GetScheduledWindow(r.Context(), after, before.AddDate(0, 0, 1), size)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to fetch scheduled posts")
		return
	}

	writeJSON(w, http.StatusOK, windowResponse{Items: toPostResponses(items)})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	if _, err := s.postRepo.GetByID(r.Context(), postID); err != nil {
		if apperrors.Is(err, post.ErrNotFound) {
			writeError(w, http.StatusNotFound, "post not found")
			return
		}
		writeError(w, http.StatusBadGateway, "failed to load post")
		return
	}

	// The action outlives the request; drop the request's cancellation.
	s.dismisses.Schedule(context.WithoutCancel(r.Context()), postID, func(ctx context.Context, id string) {
		if err := s.postRepo.UpdateStatus(ctx, id, domain.PostStatusDismissed); err != nil {
			s.logger.Error("Failed to dismiss post", "post_id", id, "error", err)
		}
	})

	writeJSON(w, http.StatusAccepted, map[string]int{
		"undo_window_seconds": s.config.Dismiss.UndoSeconds,
	})
}

func (s *Server) handleUndoDismiss(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	if !s.dismisses.Cancel(postID) {
		writeError(w, http.StatusNotFound, "no pending dismissal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpsertPreference(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			writeError(w, http.StatusBadRequest, "invalid timezone")
			return
		}
	}
	if req.PostingTime != "" {
		if _, err := time.Parse("15:04", req.PostingTime); err != nil {
			writeError(w, http.StatusBadRequest, "posting_time must be HH:MM")
			return
		}
	}

	err := s.prefRepo.Upsert(r.Context(), domain.Preference{
		UserID:      chi.URLParam(r, "userID"),
		Timezone:    req.Timezone,
		PostingTime: req.PostingTime,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to save preferences")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeSchedulerError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrSessionNotFound), apperrors.Is(err, post.ErrNotFound):
		writeError(w, http.StatusNotFound, apperrors.GetMessage(err))
	case apperrors.Is(err, apperrors.ErrInvalidTime):
		writeError(w, http.StatusUnprocessableEntity, apperrors.GetMessage(err))
	case apperrors.Is(err, apperrors.ErrPush), apperrors.Is(err, apperrors.ErrSubmit):
		writeError(w, http.StatusBadGateway, apperrors.GetMessage(err))
	default:
		s.logger.Error("Unhandled scheduler error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
