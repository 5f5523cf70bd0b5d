package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vytor/examprep/internal/errors"
	"github.com/vytor/examprep/internal/models"
)

type createDeckRequest struct {
	Name    string            `json:"name"`
	Subject string            `json:"subject"`
	Source  models.DeckSource `json:"source"`
}

type addCardRequest struct {
	Variant models.Variant  `json:"variant"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.DeckService.ListDecks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, decks)
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	deck, err := s.DeckService.CreateDeck(r.Context(), models.Deck{
		Name:    req.Name,
		Subject: req.Subject,
		Source:  req.Source,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var reassignTo int64
	if raw := r.URL.Query().Get("reassign_to"); raw != "" {
		reassignTo, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || reassignTo <= 0 {
			handleError(w, r, errors.NewValidationError("reassign_to", "must be a deck id"))
			return
		}
	}
	if err := s.DeckService.DeleteDeck(r.Context(), id, reassignTo); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeckSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	summary, err := s.DeckService.DeckSummary(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.DeckService.ListCards(r.Context(), models.CardFilter{
		DeckID:  id,
		Variant: models.Variant(r.URL.Query().Get("variant")),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req addCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.DeckService.AddCard(r.Context(), id, req.Variant, req.Payload)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	history, err := s.DeckService.CardHistory(r.Context(), id, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if history == nil {
		history = []models.ReviewLog{}
	}
	writeJSON(w, r, http.StatusOK, history)
}
