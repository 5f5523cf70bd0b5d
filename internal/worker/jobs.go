package worker

import (
	"context"

	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/repository"
)

// RecordReviewJob appends one graded attempt to the review history.
type RecordReviewJob struct {
	Repo   repository.ReviewRepository
	Review models.ReviewLog
}

func (j *RecordReviewJob) Name() string { return "record_review" }

func (j *RecordReviewJob) Run(ctx context.Context) error {
	return j.Repo.Insert(ctx, j.Review)
}
