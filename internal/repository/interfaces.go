package repository

import (
	"context"

	"github.com/vytor/examprep/internal/models"
)

// CardRepository handles card data access.
//
// Update is a compare-and-swap on Card.Version: it succeeds only when the stored
// version equals card.Version, and returns the new version. A mismatch yields a
// STALE_STATE AppError; a missing card yields CARD_NOT_FOUND.
type CardRepository interface {
	Get(ctx context.Context, id int64) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	Insert(ctx context.Context, card models.Card) (int64, error)
	Update(ctx context.Context, card models.Card) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// DeckRepository handles deck data access
type DeckRepository interface {
	Get(ctx context.Context, id int64) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	Insert(ctx context.Context, deck models.Deck) (int64, error)
	// Delete removes the deck. With reassignTo > 0 its cards move to that
	// deck first; otherwise they are deleted along with it.
	Delete(ctx context.Context, id int64, reassignTo int64) error
}

// ReviewRepository stores the per-attempt review history
type ReviewRepository interface {
	Insert(ctx context.Context, review models.ReviewLog) error
	ListForCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewLog, error)
}
