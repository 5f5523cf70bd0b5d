package api

import (
	"time"

	"github.com/vytor/examprep/internal/db"
	"github.com/vytor/examprep/internal/services"
)

type Server struct {
	DB             *db.DB
	DeckService    services.DeckService
	StudyService   services.StudyService
	RequestTimeout time.Duration
	// RateLimiter is optional; nil disables limiting.
	RateLimiter *RateLimiter
}
