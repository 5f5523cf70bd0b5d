package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Masterminds/squirrel"
	apperrors "github.com/vytor/examprep/internal/errors"
	"github.com/vytor/examprep/internal/logger"
	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/repository"
)

var cardColumns = []string{
	"id", "deck_id", "variant", "payload",
	"interval_days", "repetitions", "ease_factor", "next_review_at", "last_reviewed_at", "last_quality",
	"total_reviews", "correct_reviews", "current_streak", "average_answer_seconds",
	"version", "created_at",
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func scanCard(row rowScanner) (models.Card, error) {
	var (
		c              models.Card
		payload        string
		lastReviewedAt sql.NullTime
		lastQuality    sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.DeckID, &c.Variant, &payload,
		&c.SRS.IntervalDays, &c.SRS.Repetitions, &c.SRS.EaseFactor, &c.SRS.NextReviewAt, &lastReviewedAt, &lastQuality,
		&c.Stats.TotalReviews, &c.Stats.CorrectReviews, &c.Stats.CurrentStreak, &c.Stats.AverageAnswerSeconds,
		&c.Version, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	c.Payload = json.RawMessage(payload)
	if lastReviewedAt.Valid {
		t := lastReviewedAt.Time
		c.SRS.LastReviewedAt = &t
	}
	if lastQuality.Valid {
		q := int(lastQuality.Int64)
		c.SRS.LastQuality = &q
	}
	return c, nil
}

func payloadText(p json.RawMessage) string {
	if len(p) == 0 {
		return "{}"
	}
	return string(p)
}

func (r *cardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%d", id)

	query, args, err := sqlBuilder.Select(cardColumns...).From("cards").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: deck_id=%d, variant=%s", filter.DeckID, filter.Variant)

	query := sqlBuilder.Select(cardColumns...).From("cards")
	if filter.DeckID != 0 {
		query = query.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if filter.Variant != "" {
		query = query.Where(squirrel.Eq{"variant": string(filter.Variant)})
	}
	query = query.OrderBy("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	defer rows.Close()
	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: deck_id=%d, variant=%s", c.DeckID, c.Variant)

	query, args, err := sqlBuilder.Insert("cards").
		Columns("deck_id", "variant", "payload",
			"interval_days", "repetitions", "ease_factor", "next_review_at", "last_reviewed_at", "last_quality",
			"total_reviews", "correct_reviews", "current_streak", "average_answer_seconds").
		Values(c.DeckID, string(c.Variant), payloadText(c.Payload),
			c.SRS.IntervalDays, c.SRS.Repetitions, c.SRS.EaseFactor, utc(c.SRS.NextReviewAt), utcPtr(c.SRS.LastReviewedAt), c.SRS.LastQuality,
			c.Stats.TotalReviews, c.Stats.CorrectReviews, c.Stats.CurrentStreak, c.Stats.AverageAnswerSeconds).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get card id: %v", err)
		return 0, err
	}
	log.Debug("card inserted: id=%d", id)
	return id, nil
}

func (r *cardRepository) Update(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card: id=%d, version=%d, interval=%.4f, ease=%.2f", c.ID, c.Version, c.SRS.IntervalDays, c.SRS.EaseFactor)

	query, args, err := sqlBuilder.Update("cards").
		SetMap(map[string]any{
			"deck_id":                c.DeckID,
			"variant":                string(c.Variant),
			"payload":                payloadText(c.Payload),
			"interval_days":          c.SRS.IntervalDays,
			"repetitions":            c.SRS.Repetitions,
			"ease_factor":            c.SRS.EaseFactor,
			"next_review_at":         utc(c.SRS.NextReviewAt),
			"last_reviewed_at":       utcPtr(c.SRS.LastReviewedAt),
			"last_quality":           c.SRS.LastQuality,
			"total_reviews":          c.Stats.TotalReviews,
			"correct_reviews":        c.Stats.CorrectReviews,
			"current_streak":         c.Stats.CurrentStreak,
			"average_answer_seconds": c.Stats.AverageAnswerSeconds,
			"version":                squirrel.Expr("version + 1"),
		}).
		Where(squirrel.Eq{"id": c.ID, "version": c.Version}).
		ToSql()
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update card: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		return c.Version + 1, nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM cards WHERE id = ?`, c.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card vanished before update: id=%d", c.ID)
		return 0, apperrors.NewCardNotFoundError(c.ID)
	}
	if err != nil {
		return 0, err
	}
	log.Warn("stale card update rejected: id=%d, version=%d", c.ID, c.Version)
	return 0, apperrors.NewStaleStateError(c.ID)
}

func (r *cardRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete card: %v", err)
	}
	return err
}
