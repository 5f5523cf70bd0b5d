package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/examprep/internal/db"
	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/repository"
	"github.com/vytor/examprep/internal/repository/sqlite"
	"github.com/vytor/examprep/internal/testutil"
)

type ReviewRepositorySuite struct {
	suite.Suite
	db      *db.DB
	reviews repository.ReviewRepository
	cards   repository.CardRepository
	cardID  int64
	now     time.Time
}

func (s *ReviewRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.reviews = sqlite.NewReviewRepository(s.db.DB)
	s.cards = sqlite.NewCardRepository(s.db.DB)
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	deckID := testutil.InsertDeck(s.T(), s.db, "Penal")
	id, err := s.cards.Insert(context.Background(), testutil.NewCard(deckID, s.now))
	s.Require().NoError(err)
	s.cardID = id
}

func (s *ReviewRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ReviewRepositorySuite) TestListNewestFirst() {
	ctx := context.Background()
	for i, q := range []int{3, 5, 1} {
		s.Require().NoError(s.reviews.Insert(ctx, models.ReviewLog{
			CardID:        s.cardID,
			Quality:       q,
			AnswerSeconds: 6.5,
			IntervalDays:  float64(i + 1),
			EaseFactor:    2.5,
			ReviewedAt:    s.now.Add(time.Duration(i) * time.Hour),
		}))
	}

	history, err := s.reviews.ListForCard(ctx, s.cardID, 10)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Assert().Equal(1, history[0].Quality)
	s.Assert().Equal(5, history[1].Quality)
	s.Assert().Equal(3, history[2].Quality)
	s.Assert().True(s.now.Add(2*time.Hour).Equal(history[0].ReviewedAt))
	s.Assert().Equal(6.5, history[0].AnswerSeconds)

	limited, err := s.reviews.ListForCard(ctx, s.cardID, 2)
	s.Require().NoError(err)
	s.Assert().Len(limited, 2)
}

func (s *ReviewRepositorySuite) TestEmptyHistory() {
	history, err := s.reviews.ListForCard(context.Background(), s.cardID, 0)
	s.Require().NoError(err)
	s.Assert().Empty(history)
}

func (s *ReviewRepositorySuite) TestHistoryRemovedWithCard() {
	ctx := context.Background()
	s.Require().NoError(s.reviews.Insert(ctx, models.ReviewLog{
		CardID: s.cardID, Quality: 4, IntervalDays: 1, EaseFactor: 2.5, ReviewedAt: s.now,
	}))

	s.Require().NoError(s.cards.Delete(ctx, s.cardID))

	history, err := s.reviews.ListForCard(ctx, s.cardID, 10)
	s.Require().NoError(err)
	s.Assert().Empty(history)
}

func (s *ReviewRepositorySuite) TestInsertForMissingCardFails() {
	err := s.reviews.Insert(context.Background(), models.ReviewLog{
		CardID: 999, Quality: 3, IntervalDays: 1, EaseFactor: 2.5, ReviewedAt: s.now,
	})
	s.Assert().Error(err)
}

func TestReviewRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewRepositorySuite))
}
