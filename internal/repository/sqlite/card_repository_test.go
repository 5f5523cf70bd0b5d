package sqlite_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/examprep/internal/db"
	"github.com/vytor/examprep/internal/errors"
	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/repository"
	"github.com/vytor/examprep/internal/repository/sqlite"
	"github.com/vytor/examprep/internal/testutil"
)

type CardRepositorySuite struct {
	suite.Suite
	db      *db.DB
	repo    repository.CardRepository
	reviews repository.ReviewRepository
	deckID  int64
	now     time.Time
}

func (s *CardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCardRepository(s.db.DB)
	s.reviews = sqlite.NewReviewRepository(s.db.DB)
	s.deckID = testutil.InsertDeck(s.T(), s.db, "Direito Penal")
	s.now = time.Date(2026, 5, 10, 14, 30, 0, 0, time.UTC)
}

func (s *CardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CardRepositorySuite) insert(card models.Card) int64 {
	id, err := s.repo.Insert(context.Background(), card)
	s.Require().NoError(err)
	s.Require().Greater(id, int64(0))
	return id
}

func (s *CardRepositorySuite) TestInsertAndGetFreshCard() {
	id := s.insert(testutil.NewCard(s.deckID, s.now))

	card, err := s.repo.Get(context.Background(), id)
	s.Require().NoError(err)
	s.Require().NotNil(card)

	s.Assert().Equal(s.deckID, card.DeckID)
	s.Assert().Equal(models.VariantBasic, card.Variant)
	s.Assert().JSONEq(`{"front":"Art. 121","back":"Matar alguém"}`, string(card.Payload))
	s.Assert().Equal(0, card.SRS.Repetitions)
	s.Assert().Equal(2.5, card.SRS.EaseFactor)
	s.Assert().Equal(0.0, card.SRS.IntervalDays)
	s.Assert().WithinDuration(s.now, card.SRS.NextReviewAt, time.Millisecond)
	s.Assert().Nil(card.SRS.LastReviewedAt)
	s.Assert().Nil(card.SRS.LastQuality)
	s.Assert().Equal(int64(1), card.Version)
}

func (s *CardRepositorySuite) TestGetMissing() {
	card, err := s.repo.Get(context.Background(), 999)
	s.Require().NoError(err)
	s.Assert().Nil(card)
}

func (s *CardRepositorySuite) TestUpdateBumpsVersion() {
	ctx := context.Background()
	id := s.insert(testutil.NewCard(s.deckID, s.now))
	card, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)

	reviewed := s.now
	q := 4
	card.SRS = models.SRSState{
		IntervalDays:   6,
		Repetitions:    2,
		EaseFactor:     2.5,
		NextReviewAt:   s.now.Add(6 * 24 * time.Hour),
		LastReviewedAt: &reviewed,
		LastQuality:    &q,
	}
	card.Stats = models.CardStats{TotalReviews: 2, CorrectReviews: 2, CurrentStreak: 2, AverageAnswerSeconds: 3.25}

	version, err := s.repo.Update(ctx, *card)
	s.Require().NoError(err)
	s.Assert().Equal(int64(2), version)

	stored, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(6.0, stored.SRS.IntervalDays)
	s.Assert().Equal(2, stored.SRS.Repetitions)
	s.Require().NotNil(stored.SRS.LastReviewedAt)
	s.Assert().WithinDuration(s.now, *stored.SRS.LastReviewedAt, time.Millisecond)
	s.Require().NotNil(stored.SRS.LastQuality)
	s.Assert().Equal(4, *stored.SRS.LastQuality)
	s.Assert().Equal(card.Stats, stored.Stats)
	s.Assert().Equal(int64(2), stored.Version)
}

func (s *CardRepositorySuite) TestUpdateRejectsStaleVersion() {
	ctx := context.Background()
	id := s.insert(testutil.NewCard(s.deckID, s.now))

	first, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	second := *first

	first.SRS.Repetitions = 1
	_, err = s.repo.Update(ctx, *first)
	s.Require().NoError(err)

	second.SRS.Repetitions = 0
	second.SRS.IntervalDays = 10.0 / 1440
	_, err = s.repo.Update(ctx, second)
	s.Require().Error(err)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeStaleState))

	stored, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(1, stored.SRS.Repetitions, "losing writer must not overwrite")
}

func (s *CardRepositorySuite) TestUpdateMissingCard() {
	card := testutil.NewCard(s.deckID, s.now)
	card.ID = 4242
	card.Version = 1

	_, err := s.repo.Update(context.Background(), card)
	s.Require().Error(err)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeCardNotFound))
}

func (s *CardRepositorySuite) TestListFiltersByDeckAndVariant() {
	ctx := context.Background()
	other := testutil.InsertDeck(s.T(), s.db, "Constitucional")

	a := s.insert(testutil.NewCard(s.deckID, s.now))
	cloze := testutil.NewCard(s.deckID, s.now)
	cloze.Variant = models.VariantCloze
	cloze.Payload = json.RawMessage(`{"text":"{{c1::Matar}} alguém"}`)
	b := s.insert(cloze)
	s.insert(testutil.NewCard(other, s.now))

	cards, err := s.repo.List(ctx, models.CardFilter{DeckID: s.deckID})
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Assert().Equal(a, cards[0].ID)
	s.Assert().Equal(b, cards[1].ID)

	cards, err = s.repo.List(ctx, models.CardFilter{DeckID: s.deckID, Variant: models.VariantCloze})
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Assert().Equal(b, cards[0].ID)

	cards, err = s.repo.List(ctx, models.CardFilter{Limit: 2, Offset: 1})
	s.Require().NoError(err)
	s.Assert().Len(cards, 2)
}

func (s *CardRepositorySuite) TestDelete() {
	ctx := context.Background()
	id := s.insert(testutil.NewCard(s.deckID, s.now))

	s.Require().NoError(s.repo.Delete(ctx, id))

	card, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Nil(card)
}

func (s *CardRepositorySuite) TestReviewHistory() {
	ctx := context.Background()
	id := s.insert(testutil.NewCard(s.deckID, s.now))

	s.Require().NoError(s.reviews.Insert(ctx, models.ReviewLog{
		CardID: id, Quality: 3, AnswerSeconds: 5.5, IntervalDays: 1, EaseFactor: 2.36, ReviewedAt: s.now,
	}))
	s.Require().NoError(s.reviews.Insert(ctx, models.ReviewLog{
		CardID: id, Quality: 0, IntervalDays: 10.0 / 1440, EaseFactor: 1.56, ReviewedAt: s.now.Add(time.Hour),
	}))

	history, err := s.reviews.ListForCard(ctx, id, 10)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Assert().Equal(0, history[0].Quality, "newest first")
	s.Assert().Equal(3, history[1].Quality)
	s.Assert().Equal(5.5, history[1].AnswerSeconds)
	s.Assert().WithinDuration(s.now, history[1].ReviewedAt, time.Millisecond)
}

func TestCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(CardRepositorySuite))
}
