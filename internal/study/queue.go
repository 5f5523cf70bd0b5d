package study

import (
	"sort"
	"time"

	"github.com/vytor/examprep/internal/models"
)

// Limits caps what a single study session pulls in.
type Limits struct {
	NewCards int // never-reviewed cards; 0 admits none
	MaxCards int // total queue length; 0 means unlimited
}

func sortByDue(cards []models.Card) []models.Card {
	sorted := make([]models.Card, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].SRS.NextReviewAt, sorted[j].SRS.NextReviewAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// BuildQueue orders card ids by next review time, most overdue first, with
// ties broken by id. It does not filter.
func BuildQueue(cards []models.Card) []int64 {
	sorted := sortByDue(cards)
	ids := make([]int64, len(sorted))
	for i, c := range sorted {
		ids[i] = c.ID
	}
	return ids
}

// SelectDue keeps the cards due at now, admitting at most limits.NewCards new
// cards and limits.MaxCards in total. Caps are applied in due order so the
// most overdue material wins.
func SelectDue(cards []models.Card, now time.Time, limits Limits) []models.Card {
	var (
		selected []models.Card
		newCount int
	)
	for _, c := range sortByDue(cards) {
		if !c.SRS.IsDue(now) {
			break
		}
		if limits.MaxCards > 0 && len(selected) >= limits.MaxCards {
			break
		}
		// Lapsed cards also have zero repetitions but are reviews, not new material.
		if c.SRS.LastReviewedAt == nil {
			if newCount >= limits.NewCards {
				continue
			}
			newCount++
		}
		selected = append(selected, c)
	}
	return selected
}

// PlanSession is the default session policy: all due cards plus capped new
// ones, in queue order.
func PlanSession(cards []models.Card, now time.Time, limits Limits) []int64 {
	return BuildQueue(SelectDue(cards, now, limits))
}

// Summarize counts a deck's cards for display.
func Summarize(cards []models.Card, now time.Time) models.DeckSummary {
	summary := models.DeckSummary{Total: len(cards)}
	for _, c := range cards {
		if c.SRS.IsDue(now) {
			summary.Due++
		}
		if c.SRS.IsNew() {
			summary.New++
		}
	}
	return summary
}
