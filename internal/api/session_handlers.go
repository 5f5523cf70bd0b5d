package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/examprep/internal/errors"
	"github.com/vytor/examprep/internal/services"
)

// gradeRequest keeps quality a pointer so a missing field is not read as a
// blackout.
type gradeRequest struct {
	CardID        int64   `json:"card_id"`
	Quality       *int    `json:"quality"`
	AnswerSeconds float64 `json:"answer_seconds"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	view, err := s.StudyService.StartSession(r.Context(), deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.StudyService.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleSubmitGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Quality == nil {
		handleError(w, r, errors.NewValidationError("quality", "is required"))
		return
	}
	if req.AnswerSeconds < 0 {
		handleError(w, r, errors.NewValidationError("answer_seconds", "cannot be negative"))
		return
	}

	result, err := s.StudyService.SubmitGrade(r.Context(), chi.URLParam(r, "id"), services.GradeInput{
		CardID:        req.CardID,
		Quality:       *req.Quality,
		AnswerSeconds: req.AnswerSeconds,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleAbortSession(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StudyService.AbortSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
