package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/examprep/internal/db"
	"github.com/vytor/examprep/internal/flashcard"
	"github.com/vytor/examprep/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// InsertDeck inserts a user deck directly and returns its id.
func InsertDeck(t *testing.T, database *db.DB, name string) int64 {
	t.Helper()
	res, err := database.ExecContext(context.Background(),
		`INSERT INTO decks (name, subject, source) VALUES (?, ?, ?)`, name, "law", models.DeckSourceUser)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// NewCard returns an unsaved basic card that is fresh as of now.
func NewCard(deckID int64, now time.Time) models.Card {
	return models.Card{
		DeckID:  deckID,
		Variant: models.VariantBasic,
		Payload: json.RawMessage(`{"front":"Art. 121","back":"Matar alguém"}`),
		SRS:     flashcard.NewState(now),
	}
}
