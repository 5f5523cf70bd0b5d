package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/examprep/internal/logger"
	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/repository"
)

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Get(ctx context.Context, id int64) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck: id=%d", id)

	var d models.Deck
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, subject, source, created_at
FROM decks
WHERE id = ?
`, id).Scan(&d.ID, &d.Name, &d.Subject, &d.Source, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("deck not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, err
	}
	return &d, nil
}

func (r *deckRepository) List(ctx context.Context) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, subject, source, created_at
FROM decks
ORDER BY name ASC, id ASC
`)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, err
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.Subject, &d.Source, &d.CreatedAt); err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (r *deckRepository) Insert(ctx context.Context, d models.Deck) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: name=%s, source=%s", d.Name, d.Source)

	source := d.Source
	if source == "" {
		source = models.DeckSourceUser
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO decks (name, subject, source)
VALUES (?, ?, ?)
`, d.Name, d.Subject, string(source))
	if err != nil {
		log.Error("failed to insert deck: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *deckRepository) Delete(ctx context.Context, id int64, reassignTo int64) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%d, reassign_to=%d", id, reassignTo)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if reassignTo > 0 {
			res, err := tx.ExecContext(ctx, `UPDATE cards SET deck_id = ?, version = version + 1 WHERE deck_id = ?`, reassignTo, id)
			if err != nil {
				log.Error("failed to reassign cards: %v", err)
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				log.Info("reassigned %d cards from deck %d to deck %d", n, id, reassignTo)
			}
		}
		// Remaining cards go with the deck (ON DELETE CASCADE).
		if _, err := tx.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
			log.Error("failed to delete deck: %v", err)
			return err
		}
		return nil
	})
}
