package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/examprep/internal/logger"
	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Insert(ctx context.Context, rv models.ReviewLog) error {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("inserting review history: card_id=%d, quality=%d, time=%.2fs", rv.CardID, rv.Quality, rv.AnswerSeconds)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_history (card_id, quality, answer_seconds, interval_days, ease_factor, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?)
`, rv.CardID, rv.Quality, rv.AnswerSeconds, rv.IntervalDays, rv.EaseFactor, utc(rv.ReviewedAt))
	if err != nil {
		log.Error("failed to insert review history: %v", err)
	}
	return err
}

func (r *reviewRepository) ListForCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewLog, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("listing review history: card_id=%d, limit=%d", cardID, limit)

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, card_id, quality, answer_seconds, interval_days, ease_factor, reviewed_at
FROM review_history
WHERE card_id = ?
ORDER BY id DESC
LIMIT ?
`, cardID, limit)
	if err != nil {
		log.Error("failed to list review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var reviews []models.ReviewLog
	for rows.Next() {
		var rv models.ReviewLog
		if err := rows.Scan(&rv.ID, &rv.CardID, &rv.Quality, &rv.AnswerSeconds, &rv.IntervalDays, &rv.EaseFactor, &rv.ReviewedAt); err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}
