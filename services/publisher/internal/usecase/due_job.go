package usecase

import (
	"context"
	"sync"
	"time"

	"social-publisher/pkg/logger"
	"social-publisher/services/publisher/internal/entity"
	"social-publisher/services/publisher/internal/repo/persistent"

	"golang.org/x/sync/errgroup"
)

const dueJobActor = "scheduler"

type DueJobSummary struct {
	Processed int `json:"processed"`
	Posted    int `json:"posted"`
	Blocked   int `json:"blocked"`
	Failed    int `json:"failed"`
}

type DuePostJob interface {
	Run(ctx context.Context, now time.Time) (*DueJobSummary, error)
}

type duePostJob struct {
	postRepo    persistent.PostRepository
	publish     PublishUseCase
	batchSize   int
	concurrency int
	logger      *logger.Logger
}

func NewDuePostJob(postRepo persistent.PostRepository, publish PublishUseCase, batchSize, concurrency int, logger *logger.Logger) DuePostJob {
	if concurrency < 1 {
		concurrency = 1
	}
	return &duePostJob{
		postRepo:    postRepo,
		publish:     publish,
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run publishes every due post once. Individual publish outcomes never fail the job.
func (j *duePostJob) Run(ctx context.Context, now time.Time) (*DueJobSummary, error) {
	posts, err := j.postRepo.ListDue(ctx, now, j.batchSize)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		summary = &DueJobSummary{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for _, post := range posts {
		post := post
		g.Go(func() error {
			result := j.publish.Publish(gctx, entity.RequestFromPost(post), dueJobActor)

			mu.Lock()
			defer mu.Unlock()
			summary.Processed++
			switch {
			case result.Success:
				summary.Posted++
			case result.Error.Blocking():
				summary.Blocked++
			default:
				summary.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	j.logger.Info("Due-post run: %d processed, %d posted, %d blocked, %d failed",
		summary.Processed, summary.Posted, summary.Blocked, summary.Failed)
	return summary, nil
}
