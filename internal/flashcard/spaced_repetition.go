package flashcard

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/vytor/examprep/internal/errors"
	"github.com/vytor/examprep/internal/models"
)

const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5
	InitialEaseFactor = 2.5

	// relearnDays is ten minutes expressed in days.
	relearnDays = 10.0 / (24 * 60)
	fuzzFactor  = 0.05
)

// Quality multipliers applied to a successful interval.
var qualityMultiplier = map[int]float64{
	3: 1.00,
	4: 1.15,
	5: 1.30,
}

// Rand supplies the fuzz offset. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Scheduler computes SM-2 style review transitions.
// It holds no card state; the only dependency is the fuzz source.
type Scheduler struct {
	rng Rand
}

// NewScheduler returns a Scheduler drawing fuzz from rng.
// A nil rng uses the process-wide generator, which is safe for concurrent use.
func NewScheduler(rng Rand) *Scheduler {
	if rng == nil {
		rng = globalRand{}
	}
	return &Scheduler{rng: rng}
}

// NewState returns the scheduling state of a card created at now: due immediately.
func NewState(now time.Time) models.SRSState {
	return models.SRSState{
		IntervalDays: 0,
		Repetitions:  0,
		EaseFactor:   InitialEaseFactor,
		NextReviewAt: now,
	}
}

// Grade applies a review with the given quality (0=blackout .. 5=trivial) at now
// and returns the new state. The input state is not modified.
func (s *Scheduler) Grade(state models.SRSState, quality int, now time.Time) (models.SRSState, error) {
	if quality < 0 || quality > 5 {
		return state, errors.NewInvalidGradeError(quality)
	}

	next := state
	if quality >= 3 {
		next.IntervalDays = s.successInterval(state, quality)
		next.Repetitions = state.Repetitions + 1
	} else {
		next.IntervalDays = failureInterval(state.IntervalDays, quality)
		next.Repetitions = 0
	}
	next.EaseFactor = nextEaseFactor(state.EaseFactor, quality)
	next.NextReviewAt = dueAt(now, next.IntervalDays)

	reviewedAt := now
	q := quality
	next.LastReviewedAt = &reviewedAt
	next.LastQuality = &q
	return next, nil
}

func (s *Scheduler) successInterval(state models.SRSState, quality int) float64 {
	var base float64
	switch state.Repetitions {
	case 0:
		base = 1
	case 1:
		base = 6
	default:
		base = math.Round(state.IntervalDays * clampEase(state.EaseFactor))
		base = s.fuzz(base)
	}
	return math.Max(1, math.Round(base*qualityMultiplier[quality]))
}

// fuzz spreads intervals by up to 5% (at least one day) either way.
func (s *Scheduler) fuzz(base float64) float64 {
	spread := max(1, int(math.Floor(base*fuzzFactor)))
	offset := s.rng.IntN(2*spread+1) - spread
	return math.Max(1, base+float64(offset))
}

func failureInterval(interval float64, quality int) float64 {
	switch quality {
	case 2:
		return math.Max(1, math.Round(interval*0.6))
	case 1:
		return 1
	default:
		return relearnDays
	}
}

func nextEaseFactor(ef float64, quality int) float64 {
	miss := float64(5 - quality)
	return clampEase(ef + 0.1 - miss*(0.08+miss*0.02))
}

func clampEase(ef float64) float64 {
	return math.Min(MaxEaseFactor, math.Max(MinEaseFactor, ef))
}

func dueAt(now time.Time, intervalDays float64) time.Time {
	if intervalDays < 1 {
		minutes := math.Round(intervalDays * 24 * 60)
		return now.Add(time.Duration(minutes) * time.Minute)
	}
	return now.Add(time.Duration(math.Round(intervalDays)) * 24 * time.Hour)
}

// ApplyStats folds one review into a card's cumulative counters.
// answerSeconds <= 0 means the attempt was not timed.
func ApplyStats(stats models.CardStats, quality int, answerSeconds float64) models.CardStats {
	stats.TotalReviews++
	if quality >= 3 {
		stats.CorrectReviews++
		stats.CurrentStreak++
	} else {
		stats.CurrentStreak = 0
	}
	if answerSeconds > 0 {
		if stats.AverageAnswerSeconds <= 0 {
			stats.AverageAnswerSeconds = answerSeconds
		} else {
			stats.AverageAnswerSeconds += (answerSeconds - stats.AverageAnswerSeconds) / float64(stats.TotalReviews)
		}
	}
	return stats
}
