package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
)

// ArchiveExpiredKind is the River kind of the expiry sweep.
const ArchiveExpiredKind = "archive_expired_announcements"

// Sweeper archives every announcement whose expiry has passed and reports how many moved.
type Sweeper interface {
	ArchiveExpired(ctx context.Context) (int64, error)
}

// ArchiveExpiredArgs carries no payload; each run sweeps everything that is due.
type ArchiveExpiredArgs struct{}

// Kind implements river.JobArgs
func (ArchiveExpiredArgs) Kind() string { return ArchiveExpiredKind }

// InsertOpts keeps at most one sweep queued per minute, so a manual trigger
// racing the periodic one does not double up.
func (ArchiveExpiredArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 3,
		UniqueOpts:  river.UniqueOpts{ByPeriod: time.Minute},
	}
}

// ArchiveExpiredWorker runs the sweep.
type ArchiveExpiredWorker struct {
	river.WorkerDefaults[ArchiveExpiredArgs]
	sweeper Sweeper
	logger  zerolog.Logger
}

// NewArchiveExpiredWorker creates the sweep worker
func NewArchiveExpiredWorker(sweeper Sweeper, logger zerolog.Logger) *ArchiveExpiredWorker {
	return &ArchiveExpiredWorker{sweeper: sweeper, logger: logger}
}

// Work implements river.Worker
func (w *ArchiveExpiredWorker) Work(ctx context.Context, _ *river.Job[ArchiveExpiredArgs]) error {
	n, err := w.sweeper.ArchiveExpired(ctx)
	if err != nil {
		return fmt.Errorf("archive expired announcements: %w", err)
	}
	w.logger.Debug().Int64("archived", n).Msg("Expiry sweep finished")
	return nil
}

// Timeout bounds a single sweep.
func (w *ArchiveExpiredWorker) Timeout(*river.Job[ArchiveExpiredArgs]) time.Duration {
	return time.Minute
}
