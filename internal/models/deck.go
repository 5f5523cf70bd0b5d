package models

import "time"

// DeckSource records who authored a deck.
type DeckSource string

const (
	DeckSourceSystem DeckSource = "system"
	DeckSourceUser   DeckSource = "user"
)

type Deck struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Subject   string     `json:"subject"`
	Source    DeckSource `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
}

type DeckSummary struct {
	Total int `json:"total"`
	Due   int `json:"due"`
	New   int `json:"new"`
}

type DeckWithSummary struct {
	Deck
	Summary DeckSummary `json:"summary"`
}
