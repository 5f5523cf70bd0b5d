package study

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/examprep/internal/errors"
	"github.com/vytor/examprep/internal/flashcard"
	"github.com/vytor/examprep/internal/logger"
	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/repository"
)

// Session walks an ordered queue of cards, grading each through the scheduler
// and writing the result back through the card repository.
//
// A Session is safe for concurrent use; calls are serialized.
type Session struct {
	mu sync.Mutex

	id        string
	deckID    int64
	queue     []int64
	index     int
	graded    int
	correct   int
	status    models.SessionStatus
	startedAt time.Time
	endedAt   time.Time
	lastSeen  time.Time

	cards     repository.CardRepository
	scheduler *flashcard.Scheduler
}

// GradeResult is what a successful Submit returns.
type GradeResult struct {
	Card  models.Card         `json:"card"`
	Stats models.SessionStats `json:"stats"`
}

// NewSession starts a session over queue at startedAt. An empty queue yields
// a session that is already completed.
func NewSession(id string, deckID int64, queue []int64, startedAt time.Time, cards repository.CardRepository, scheduler *flashcard.Scheduler) *Session {
	s := &Session{
		id:        id,
		deckID:    deckID,
		queue:     append([]int64(nil), queue...),
		status:    models.SessionActive,
		startedAt: startedAt,
		lastSeen:  startedAt,
		cards:     cards,
		scheduler: scheduler,
	}
	if len(s.queue) == 0 {
		s.finish(models.SessionCompleted, startedAt)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) DeckID() int64 { return s.deckID }

func (s *Session) StartedAt() time.Time { return s.startedAt }

// EndedAt returns when the session closed, or the zero time while active.
func (s *Session) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// LastActivity returns the time of the most recent grade, abort or Touch.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Touch marks the session as in use at now.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(now)
}

// Status returns the current lifecycle state.
func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentCardID returns the id of the card awaiting a grade, or 0 once the
// session is closed.
func (s *Session) CurrentCardID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.SessionActive {
		return 0
	}
	return s.queue[s.index]
}

// Queue returns a copy of the ordered card ids.
func (s *Session) Queue() []int64 {
	q := make([]int64, len(s.queue))
	copy(q, s.queue)
	return q
}

// Submit grades the current card. cardID may be 0 to mean "whatever is
// current"; otherwise it must name the current card.
//
// On STALE_STATE the session does not advance and the same call can be
// retried; Submit always reads the card fresh. A card that disappeared from
// the repository is skipped and reported as CARD_NOT_FOUND.
func (s *Session) Submit(ctx context.Context, cardID int64, quality int, answerSeconds float64, now time.Time) (*GradeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithFields(map[string]any{
		"session_id": s.id,
		"quality":    quality,
	})
	s.touchLocked(now)

	if s.status != models.SessionActive {
		return nil, errors.NewSessionClosedError(s.id, string(s.status))
	}
	if quality < 0 || quality > 5 {
		return nil, errors.NewInvalidGradeError(quality)
	}

	current := s.queue[s.index]
	if cardID != 0 && cardID != current {
		log.Warn("grade for card %d does not match current card %d", cardID, current)
		return nil, errors.NewCardNotFoundError(cardID)
	}

	card, err := s.cards.Get(ctx, current)
	if err != nil {
		return nil, err
	}
	if card == nil {
		log.Warn("card %d vanished mid-session, skipping", current)
		s.advance(now)
		return nil, errors.NewCardNotFoundError(current)
	}

	srs, err := s.scheduler.Grade(card.SRS, quality, now)
	if err != nil {
		return nil, err
	}
	updated := *card
	updated.SRS = srs
	updated.Stats = flashcard.ApplyStats(card.Stats, quality, answerSeconds)

	version, err := s.cards.Update(ctx, updated)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeCardNotFound) {
			s.advance(now)
		}
		return nil, err
	}
	updated.Version = version

	s.graded++
	if quality >= 3 {
		s.correct++
	}
	s.advance(now)

	log.Debug("card %d graded: interval=%.4f days, ease=%.2f, next=%s",
		current, srs.IntervalDays, srs.EaseFactor, srs.NextReviewAt.Format(time.RFC3339))
	return &GradeResult{Card: updated, Stats: s.stats(now)}, nil
}

// Abort closes an active session. Grades already submitted stay persisted.
func (s *Session) Abort(now time.Time) (models.SessionStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(now)

	if s.status != models.SessionActive {
		return s.stats(now), errors.NewSessionClosedError(s.id, string(s.status))
	}
	s.finish(models.SessionAborted, now)
	return s.stats(now), nil
}

// Stats reports the session counters as of now.
func (s *Session) Stats(now time.Time) models.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats(now)
}

func (s *Session) touchLocked(now time.Time) {
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

func (s *Session) advance(now time.Time) {
	s.index++
	if s.index >= len(s.queue) {
		s.finish(models.SessionCompleted, now)
	}
}

func (s *Session) finish(status models.SessionStatus, now time.Time) {
	s.status = status
	s.endedAt = now
}

func (s *Session) stats(now time.Time) models.SessionStats {
	end := now
	if s.status != models.SessionActive {
		end = s.endedAt
	}
	stats := models.SessionStats{
		Status:          s.status,
		CardsGraded:     s.graded,
		CorrectCount:    s.correct,
		Remaining:       len(s.queue) - s.index,
		DurationSeconds: end.Sub(s.startedAt).Seconds(),
	}
	if s.graded > 0 {
		stats.Accuracy = float64(s.correct) / float64(s.graded)
	}
	return stats
}
