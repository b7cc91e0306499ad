package preview

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/linkstash-app/linkstash/internal/core/domain"
	"github.com/linkstash-app/linkstash/internal/platform/observability"
	"github.com/linkstash-app/linkstash/internal/platform/worker"
)

// backfillEmbargo keeps the backfill pass from racing links that were
// enqueued moments ago and are still being fetched.
const backfillEmbargo = time.Minute

// PendingLister lists links that still need a preview.
type PendingLister interface {
	ListPreviewPending(ctx context.Context, limit int) ([]domain.Link, error)
}

// QueueConfig configures the preview work queue.
type QueueConfig struct {
	Workers      int
	Size         int
	Backfill     bool
	BackfillMax  int
	PollInterval time.Duration
}

// Queue feeds created links to a bounded pool of preview workers. Links are
// independent, so workers run concurrently without shared state; each link is
// written at most once.
type Queue struct {
	cfg       QueueConfig
	jobs      chan domain.Link
	persister *Persister
	pending   PendingLister
	logger    *zerolog.Logger
}

// NewQueue creates a preview queue.
func NewQueue(cfg QueueConfig, persister *Persister, pending PendingLister, logger *zerolog.Logger) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	if cfg.Size <= 0 {
		cfg.Size = 256
	}

	if cfg.BackfillMax <= 0 {
		cfg.BackfillMax = 100
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Minute
	}

	return &Queue{
		cfg:       cfg,
		jobs:      make(chan domain.Link, cfg.Size),
		persister: persister,
		pending:   pending,
		logger:    logger,
	}
}

// Enqueue hands a freshly created link to the workers. Non-blocking: when the
// queue is full the link is left for the backfill pass instead.
func (q *Queue) Enqueue(link domain.Link) {
	select {
	case q.jobs <- link:
		observability.PreviewQueueDepth.Set(float64(len(q.jobs)))
	default:
		q.logger.Warn().Str("link_id", link.ID).Msg("preview queue full, deferring to backfill")
	}
}

// Run starts the worker pool and, when enabled, a periodic backfill pass that
// re-enqueues links whose preview is still missing. Blocks until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for i := 0; i < q.cfg.Workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			q.workerLoop(ctx)
		}()
	}

	var err error
	if q.cfg.Backfill {
		err = worker.Loop(ctx, worker.Config{
			Name:         "preview-backfill",
			PollInterval: q.cfg.PollInterval,
			Process:      q.backfill,
			Logger:       q.logger,
		})
	} else {
		<-ctx.Done()
		err = ctx.Err()
	}

	wg.Wait()

	return err
}

func (q *Queue) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case link := <-q.jobs:
			observability.PreviewQueueDepth.Set(float64(len(q.jobs)))
			q.process(ctx, link)
		}
	}
}

func (q *Queue) process(ctx context.Context, link domain.Link) {
	defer worker.RecoverPanic(q.logger, "preview fetch")

	q.persister.OnLinkCreated(ctx, link)
}

// backfill re-enqueues links that still lack a preview. Redelivery is safe:
// the preview write is an idempotent overwrite.
func (q *Queue) backfill(ctx context.Context) error {
	links, err := q.pending.ListPreviewPending(ctx, q.cfg.BackfillMax)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-backfillEmbargo)

	for _, link := range links {
		if link.CreatedAt.After(cutoff) {
			continue
		}

		q.Enqueue(link)
	}

	return nil
}
