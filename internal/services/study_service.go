package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/examprep/internal/errors"
	"github.com/vytor/examprep/internal/flashcard"
	"github.com/vytor/examprep/internal/logger"
	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/repository"
	"github.com/vytor/examprep/internal/study"
	"github.com/vytor/examprep/internal/worker"
)

const (
	// Closed sessions stay readable for this long before the registry drops them.
	sessionRetention = time.Hour
	// Active sessions with no activity for this long are abandoned.
	defaultIdleTimeout = 24 * time.Hour
)

// StudyService runs study sessions over a deck.
type StudyService interface {
	StartSession(ctx context.Context, deckID int64) (*SessionView, error)
	SubmitGrade(ctx context.Context, sessionID string, in GradeInput) (*study.GradeResult, error)
	AbortSession(ctx context.Context, sessionID string) (*models.SessionStats, error)
	GetSession(ctx context.Context, sessionID string) (*SessionView, error)
}

// GradeInput is one answer to the current card. CardID may be 0.
type GradeInput struct {
	CardID        int64   `json:"card_id"`
	Quality       int     `json:"quality"`
	AnswerSeconds float64 `json:"answer_seconds"`
}

type SessionView struct {
	ID            string              `json:"id"`
	DeckID        int64               `json:"deck_id"`
	CurrentCardID int64               `json:"current_card_id,omitempty"`
	Queue         []int64             `json:"queue"`
	StartedAt     time.Time           `json:"started_at"`
	Stats         models.SessionStats `json:"stats"`
}

// StudyOption customizes a StudyService.
type StudyOption func(*studyService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StudyOption {
	return func(s *studyService) { s.now = now }
}

// WithIdleTimeout sets how long an active session may go untouched before it
// is dropped. Non-positive values keep the default.
func WithIdleTimeout(d time.Duration) StudyOption {
	return func(s *studyService) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithReviewPool records review history on pool instead of inline.
func WithReviewPool(pool *worker.Pool) StudyOption {
	return func(s *studyService) { s.pool = pool }
}

type studyService struct {
	cards     repository.CardRepository
	decks     repository.DeckRepository
	reviews   repository.ReviewRepository
	scheduler *flashcard.Scheduler
	limits    study.Limits
	pool      *worker.Pool
	now       func() time.Time

	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*study.Session
}

// NewStudyService creates a new StudyService
func NewStudyService(
	cards repository.CardRepository,
	decks repository.DeckRepository,
	reviews repository.ReviewRepository,
	scheduler *flashcard.Scheduler,
	limits study.Limits,
	opts ...StudyOption,
) StudyService {
	s := &studyService{
		cards:     cards,
		decks:     decks,
		reviews:   reviews,
		scheduler: scheduler,
		limits:    limits,
		now:         time.Now,
		idleTimeout: defaultIdleTimeout,
		sessions:    make(map[string]*study.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *studyService) StartSession(ctx context.Context, deckID int64) (*SessionView, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deckID)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to load deck: %v", err)
		return nil, internal(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	cards, err := s.cards.List(ctx, models.CardFilter{DeckID: deckID})
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, internal(err)
	}

	now := s.now().UTC()
	queue := study.PlanSession(cards, now, s.limits)
	session := study.NewSession(uuid.NewString(), deckID, queue, now, s.cards, s.scheduler)

	s.mu.Lock()
	s.pruneLocked(now)
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	log.Info("session %s started with %d of %d cards", session.ID(), len(queue), len(cards))
	return s.view(session, now), nil
}

func (s *studyService) SubmitGrade(ctx context.Context, sessionID string, in GradeInput) (*study.GradeResult, error) {
	now := s.now().UTC()
	session, err := s.lookup(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}

	result, err := session.Submit(ctx, in.CardID, in.Quality, in.AnswerSeconds, now)
	if err != nil {
		if _, ok := errors.As(err); !ok {
			logger.FromContext(ctx).Error("grade failed: session_id=%s: %v", sessionID, err)
		}
		return nil, internal(err)
	}

	s.recordReview(ctx, models.ReviewLog{
		CardID:        result.Card.ID,
		Quality:       in.Quality,
		AnswerSeconds: in.AnswerSeconds,
		IntervalDays:  result.Card.SRS.IntervalDays,
		EaseFactor:    result.Card.SRS.EaseFactor,
		ReviewedAt:    now,
	})
	return result, nil
}

// recordReview hands the history write to the pool, writing inline when the
// pool is absent, full, or stopped. History is best effort.
func (s *studyService) recordReview(ctx context.Context, review models.ReviewLog) {
	log := logger.FromContext(ctx)
	job := &worker.RecordReviewJob{Repo: s.reviews, Review: review}

	if s.pool != nil {
		err := s.pool.Submit(job)
		if err == nil {
			return
		}
		log.Debug("review pool rejected job (%v), writing inline", err)
	}
	if err := job.Run(ctx); err != nil {
		log.Warn("failed to record review for card %d: %v", review.CardID, err)
	}
}

func (s *studyService) AbortSession(ctx context.Context, sessionID string) (*models.SessionStats, error) {
	now := s.now().UTC()
	session, err := s.lookup(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}
	stats, err := session.Abort(now)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("session %s aborted after %d grades", sessionID, stats.CardsGraded)
	return &stats, nil
}

func (s *studyService) GetSession(ctx context.Context, sessionID string) (*SessionView, error) {
	now := s.now().UTC()
	session, err := s.lookup(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}
	session.Touch(now)
	return s.view(session, now), nil
}

// lookup returns a live session. An expired one is dropped on the spot so it
// reads as unknown even before the next prune.
func (s *studyService) lookup(ctx context.Context, id string, now time.Time) (*study.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	if !s.expired(session, now) {
		return session, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	if !s.expired(current, now) {
		return current, nil
	}
	s.evictLocked(id, current, now)
	logger.FromContext(ctx).Debug("session %s expired", id)
	return nil, errors.NewNotFoundError("session", id)
}

func (s *studyService) expired(session *study.Session, now time.Time) bool {
	if session.Status() == models.SessionActive {
		return now.Sub(session.LastActivity()) > s.idleTimeout
	}
	return now.Sub(session.EndedAt()) > sessionRetention
}

func (s *studyService) pruneLocked(now time.Time) {
	for id, session := range s.sessions {
		if s.expired(session, now) {
			s.evictLocked(id, session, now)
		}
	}
}

// evictLocked drops a session, aborting it first if it was abandoned mid-queue.
func (s *studyService) evictLocked(id string, session *study.Session, now time.Time) {
	if session.Status() == models.SessionActive {
		idleSince := session.LastActivity()
		if stats, err := session.Abort(now); err == nil {
			logger.Info("session %s abandoned after %d grades, idle since %s",
				id, stats.CardsGraded, idleSince.Format(time.RFC3339))
		}
	}
	delete(s.sessions, id)
}

func (s *studyService) view(session *study.Session, now time.Time) *SessionView {
	return &SessionView{
		ID:            session.ID(),
		DeckID:        session.DeckID(),
		CurrentCardID: session.CurrentCardID(),
		Queue:         session.Queue(),
		StartedAt:     session.StartedAt(),
		Stats:         session.Stats(now),
	}
}

// internal wraps err as INTERNAL_ERROR unless it already carries a code.
func internal(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewInternalError(err)
}
