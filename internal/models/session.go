package models

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAborted   SessionStatus = "aborted"
)

type SessionStats struct {
	Status          SessionStatus `json:"status"`
	CardsGraded     int           `json:"cards_graded"`
	CorrectCount    int           `json:"correct_count"`
	Accuracy        float64       `json:"accuracy"`
	Remaining       int           `json:"remaining"`
	DurationSeconds float64       `json:"duration_seconds"`
}
