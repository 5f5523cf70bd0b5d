package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/examprep/internal/models"
	"github.com/vytor/examprep/internal/testutil/mocks"
	"github.com/vytor/examprep/internal/worker"
)

type funcJob struct {
	fn func(context.Context) error
}

func (j funcJob) Name() string { return "func" }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsEveryQueuedJobBeforeStopping(t *testing.T) {
	p := worker.NewPool("test", 2, 16)
	p.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(funcJob{fn: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}
	p.Stop()

	assert.Equal(t, int32(10), ran.Load())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := worker.NewPool("test", 1, 1)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(funcJob{fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, worker.ErrPoolClosed)
}

func TestPool_SubmitDoesNotBlockWhenFull(t *testing.T) {
	p := worker.NewPool("test", 1, 1)
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	blocker := funcJob{fn: func(context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}

	p.Start(context.Background())
	require.NoError(t, p.Submit(blocker))
	<-started
	require.NoError(t, p.Submit(blocker))

	assert.ErrorIs(t, p.Submit(blocker), worker.ErrQueueFull)

	close(release)
	p.Stop()
}

func TestPool_SurvivesFailingAndPanickingJobs(t *testing.T) {
	p := worker.NewPool("test", 1, 4)
	p.Start(context.Background())

	done := make(chan struct{})
	require.NoError(t, p.Submit(funcJob{fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, p.Submit(funcJob{fn: func(context.Context) error { panic("boom") }}))
	require.NoError(t, p.Submit(funcJob{fn: func(context.Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died before reaching the last job")
	}
	p.Stop()
}

func TestRecordReviewJob(t *testing.T) {
	repo := new(mocks.MockReviewRepository)
	review := models.ReviewLog{CardID: 3, Quality: 4, IntervalDays: 6, EaseFactor: 2.5}
	repo.On("Insert", mock.Anything, review).Return(nil)

	job := &worker.RecordReviewJob{Repo: repo, Review: review}

	assert.Equal(t, "record_review", job.Name())
	require.NoError(t, job.Run(context.Background()))
	repo.AssertExpectations(t)
}
