package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/database"
	"github.com/erinpaul2002/careops-backend/services/idempotency"
	"github.com/erinpaul2002/careops-backend/services/notification"
)

const (
	// DefaultPollInterval bounds worst-case reminder latency.
	DefaultPollInterval = 30 * time.Second
	// DefaultBatchSize caps how many due jobs one tick claims.
	DefaultBatchSize = 10
	// staleLockAge is how long a running job may hold its lock before the
	// tick assumes its worker died and re-queues it.
	staleLockAge = 10 * time.Minute
)

// Worker is the polling loop that drives deferred work: each tick purges
// expired idempotency records, reclaims stale claims, then claims and runs a
// batch of due jobs. Jobs that fail stay failed; there is no automatic
// retry, only the critical alert log line.
type Worker struct {
	Store     *database.Store
	Ledger    idempotency.Ledger
	Messenger notification.Messenger
	Logger    *zap.Logger

	PollInterval time.Duration
	BatchSize    int

	id   string
	stop chan struct{}
	done chan struct{}
}

// NewWorker builds a worker with the default loop parameters.
func NewWorker(store *database.Store, ledger idempotency.Ledger, messenger notification.Messenger, logger *zap.Logger) *Worker {
	return &Worker{
		Store:        store,
		Ledger:       ledger,
		Messenger:    messenger,
		Logger:       logger,
		PollInterval: DefaultPollInterval,
		BatchSize:    DefaultBatchSize,
		id:           "worker-" + uuid.New().String(),
	}
}

// Start runs the loop in background until Stop.
func (w *Worker) Start() {
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.PollInterval)
		defer ticker.Stop()
		w.Logger.Info("scheduler worker started",
			zap.String("worker_id", w.id),
			zap.Duration("poll_interval", w.PollInterval))
		for {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
				w.Tick(time.Now().UTC())
			}
		}
	}()
}

// Stop halts the loop; a claimed job finishes its tick first.
func (w *Worker) Stop() {
	if w.stop == nil {
		return
	}
	close(w.stop)
	<-w.done
}

// Tick executes one scheduling pass. Exported so tests can drive the loop
// with a controlled clock.
func (w *Worker) Tick(now time.Time) {
	ctx := context.Background()

	if n := w.Ledger.Sweep(ctx, now); n > 0 {
		w.Logger.Debug("idempotency sweep", zap.Int("purged", n))
	}
	if n := w.Store.ReclaimStaleJobs(now, staleLockAge); n > 0 {
		w.Logger.Warn("reclaimed stale jobs", zap.Int("count", n))
	}

	for _, job := range w.Store.ClaimDueJobs(now, w.BatchSize, w.id) {
		if err := w.execute(ctx, job, now); err != nil {
			w.Store.FailJob(job.ID, err.Error())
			// No automatic retry: a failed job needs operator attention.
			w.Logger.Error("scheduled job failed",
				zap.String("alert", "critical"),
				zap.String("job_id", job.ID),
				zap.String("kind", string(job.Kind)),
				zap.Int("attempts", job.Attempts+1),
				zap.Error(err))
			continue
		}
		w.Store.CompleteJob(job.ID)
	}
}
