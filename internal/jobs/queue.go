// Package jobs runs background work on a River queue backed by the
// application's Postgres pool.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/zerolog"
)

const defaultMaxWorkers = 2

// Queue owns the River client
type Queue struct {
	client *river.Client[pgx.Tx]
	logger zerolog.Logger
}

// Migrate creates or upgrades River's own tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to apply river migrations: %w", err)
	}
	for _, v := range res.Versions {
		logger.Info().Int("version", v.Version).Msg("Applied river migration")
	}
	return nil
}

// NewQueue builds a client that runs the expiry sweep every interval, and
// once as soon as the client starts.
func NewQueue(pool *pgxpool.Pool, sweeper Sweeper, interval time.Duration, logger zerolog.Logger) (*Queue, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("archive interval must be positive, got %s", interval)
	}

	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, NewArchiveExpiredWorker(sweeper, logger)); err != nil {
		return nil, fmt.Errorf("failed to register archive worker: %w", err)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: defaultMaxWorkers},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(interval),
				func() (river.JobArgs, *river.InsertOpts) {
					return ArchiveExpiredArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create river client: %w", err)
	}

	return &Queue{client: client, logger: logger}, nil
}

// Start begins fetching and working jobs. It returns once the client is running.
func (q *Queue) Start(ctx context.Context) error {
	if err := q.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start river client: %w", err)
	}
	q.logger.Info().Msg("Job queue started")
	return nil
}

// Stopped is closed once the client has fully stopped.
func (q *Queue) Stopped() <-chan struct{} {
	return q.client.Stopped()
}

// Stop waits for running jobs to finish or ctx to expire.
func (q *Queue) Stop(ctx context.Context) error {
	if err := q.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop river client: %w", err)
	}
	q.logger.Info().Msg("Job queue stopped")
	return nil
}
