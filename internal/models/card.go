package models

import (
	"encoding/json"
	"time"
)

// Variant is the card's content type. The scheduler treats every variant the same.
type Variant string

const (
	VariantBasic          Variant = "basic"
	VariantBasicInverted  Variant = "basic_inverted"
	VariantCloze          Variant = "cloze"
	VariantMultipleChoice Variant = "multiple_choice"
	VariantTrueFalse      Variant = "true_false"
	VariantTypeAnswer     Variant = "type_answer"
	VariantImageOcclusion Variant = "image_occlusion"
)

var variants = map[Variant]bool{
	VariantBasic:          true,
	VariantBasicInverted:  true,
	VariantCloze:          true,
	VariantMultipleChoice: true,
	VariantTrueFalse:      true,
	VariantTypeAnswer:     true,
	VariantImageOcclusion: true,
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return variants[v]
}

// SRSState is the per-card scheduling state.
type SRSState struct {
	IntervalDays   float64    `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	EaseFactor     float64    `json:"ease_factor"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	LastQuality    *int       `json:"last_quality"`
}

// IsDue reports whether the card should be shown at now.
func (s SRSState) IsDue(now time.Time) bool {
	return !s.NextReviewAt.After(now)
}

// IsNew reports whether the card has never been successfully reviewed.
func (s SRSState) IsNew() bool {
	return s.Repetitions == 0
}

type CardStats struct {
	TotalReviews         int     `json:"total_reviews"`
	CorrectReviews       int     `json:"correct_reviews"`
	CurrentStreak        int     `json:"current_streak"`
	AverageAnswerSeconds float64 `json:"average_answer_seconds"`
}

type Card struct {
	ID        int64           `json:"id"`
	DeckID    int64           `json:"deck_id"`
	Variant   Variant         `json:"variant"`
	Payload   json.RawMessage `json:"payload"`
	SRS       SRSState        `json:"srs"`
	Stats     CardStats       `json:"stats"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
}

type CardFilter struct {
	DeckID  int64
	Variant Variant
	Limit   int
	Offset  int
}

// ReviewLog is one graded attempt, kept for history and timing stats.
type ReviewLog struct {
	ID            int64     `json:"id"`
	CardID        int64     `json:"card_id"`
	Quality       int       `json:"quality"`
	AnswerSeconds float64   `json:"answer_seconds"`
	IntervalDays  float64   `json:"interval_days"`
	EaseFactor    float64   `json:"ease_factor"`
	ReviewedAt    time.Time `json:"reviewed_at"`
}
