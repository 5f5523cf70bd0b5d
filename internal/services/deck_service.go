package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/vytor/examprep/internal/errors"
	"github.com/vytor/examprep/internal/flashcard"
	"github.com/vytor/examprep/internal/logger"
	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/repository"
	"github.com/vytor/examprep/internal/study"
)

const defaultHistoryLimit = 50

// DeckService handles deck and card management
type DeckService interface {
	DeckSummary(ctx context.Context, deckID int64) (*models.DeckSummary, error)
	ListDecks(ctx context.Context) ([]models.DeckWithSummary, error)
	CreateDeck(ctx context.Context, deck models.Deck) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id int64, reassignTo int64) error
	AddCard(ctx context.Context, deckID int64, variant models.Variant, payload json.RawMessage) (*models.Card, error)
	ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	CardHistory(ctx context.Context, cardID int64, limit int) ([]models.ReviewLog, error)
}

type deckService struct {
	decks   repository.DeckRepository
	cards   repository.CardRepository
	reviews repository.ReviewRepository
	now     func() time.Time
}

// NewDeckService creates a new DeckService
func NewDeckService(decks repository.DeckRepository, cards repository.CardRepository, reviews repository.ReviewRepository) DeckService {
	return &deckService{decks: decks, cards: cards, reviews: reviews, now: time.Now}
}

func (s *deckService) requireDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load deck %d: %v", id, err)
		return nil, internal(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}

func (s *deckService) DeckSummary(ctx context.Context, deckID int64) (*models.DeckSummary, error) {
	if _, err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}
	cards, err := s.cards.List(ctx, models.CardFilter{DeckID: deckID})
	if err != nil {
		logger.FromContext(ctx).Error("failed to list cards for deck %d: %v", deckID, err)
		return nil, internal(err)
	}
	summary := study.Summarize(cards, s.now().UTC())
	return &summary, nil
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.DeckWithSummary, error) {
	log := logger.FromContext(ctx)

	decks, err := s.decks.List(ctx)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, internal(err)
	}
	cards, err := s.cards.List(ctx, models.CardFilter{})
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, internal(err)
	}

	byDeck := make(map[int64][]models.Card, len(decks))
	for _, c := range cards {
		byDeck[c.DeckID] = append(byDeck[c.DeckID], c)
	}

	now := s.now().UTC()
	out := make([]models.DeckWithSummary, 0, len(decks))
	for _, d := range decks {
		out = append(out, models.DeckWithSummary{Deck: d, Summary: study.Summarize(byDeck[d.ID], now)})
	}
	return out, nil
}

func (s *deckService) CreateDeck(ctx context.Context, deck models.Deck) (*models.Deck, error) {
	deck.Name = strings.TrimSpace(deck.Name)
	if deck.Name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	switch deck.Source {
	case "":
		deck.Source = models.DeckSourceUser
	case models.DeckSourceUser, models.DeckSourceSystem:
	default:
		return nil, errors.NewValidationError("source", "must be user or system")
	}

	id, err := s.decks.Insert(ctx, deck)
	if err != nil {
		logger.FromContext(ctx).Error("failed to insert deck: %v", err)
		return nil, internal(err)
	}
	logger.FromContext(ctx).Info("deck created: id=%d name=%q", id, deck.Name)
	return s.requireDeck(ctx, id)
}

func (s *deckService) DeleteDeck(ctx context.Context, id int64, reassignTo int64) error {
	if _, err := s.requireDeck(ctx, id); err != nil {
		return err
	}
	if reassignTo != 0 {
		if reassignTo == id {
			return errors.NewValidationError("reassign_to", "cannot be the deck being deleted")
		}
		if _, err := s.requireDeck(ctx, reassignTo); err != nil {
			return err
		}
	}

	if err := s.decks.Delete(ctx, id, reassignTo); err != nil {
		logger.FromContext(ctx).Error("failed to delete deck %d: %v", id, err)
		return internal(err)
	}
	logger.FromContext(ctx).Info("deck deleted: id=%d reassign_to=%d", id, reassignTo)
	return nil
}

func (s *deckService) AddCard(ctx context.Context, deckID int64, variant models.Variant, payload json.RawMessage) (*models.Card, error) {
	if !variant.Valid() {
		return nil, errors.NewValidationError("variant", "unknown card variant "+string(variant))
	}
	if len(payload) == 0 || !json.Valid(payload) {
		return nil, errors.NewValidationError("payload", "must be valid JSON")
	}
	if _, err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}

	card := models.Card{
		DeckID:  deckID,
		Variant: variant,
		Payload: payload,
		SRS:     flashcard.NewState(s.now().UTC()),
	}
	id, err := s.cards.Insert(ctx, card)
	if err != nil {
		logger.FromContext(ctx).Error("failed to insert card: %v", err)
		return nil, internal(err)
	}

	stored, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, internal(err)
	}
	if stored == nil {
		return nil, errors.NewCardNotFoundError(id)
	}
	return stored, nil
}

func (s *deckService) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	if filter.Variant != "" && !filter.Variant.Valid() {
		return nil, errors.NewValidationError("variant", "unknown card variant "+string(filter.Variant))
	}
	if filter.DeckID != 0 {
		if _, err := s.requireDeck(ctx, filter.DeckID); err != nil {
			return nil, err
		}
	}
	cards, err := s.cards.List(ctx, filter)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list cards: %v", err)
		return nil, internal(err)
	}
	return cards, nil
}

func (s *deckService) CardHistory(ctx context.Context, cardID int64, limit int) ([]models.ReviewLog, error) {
	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return nil, internal(err)
	}
	if card == nil {
		return nil, errors.NewCardNotFoundError(cardID)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	history, err := s.reviews.ListForCard(ctx, cardID, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load history for card %d: %v", cardID, err)
		return nil, internal(err)
	}
	return history, nil
}
