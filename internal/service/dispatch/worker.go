package dispatch

import (
	"context"
	"time"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/logx"
)

// Worker drives dispatch from the outbox table: it claims pending jobs on an
// interval, reaps stale ACCEPTED orders, and requeues jobs abandoned by a
// crashed worker. The Kafka consumer, when configured, shortcuts the poll
// latency by claiming a specific order's job as soon as its event arrives;
// the poller remains the durable path.
type Worker struct {
	pool   *Pool
	queue  JobQueue
	orders OrderStore
	outbox config.Outbox
	stale  time.Duration
	logger logx.Logger
	now    func() time.Time
}

// NewWorker creates a dispatch Worker.
func NewWorker(pool *Pool, queue JobQueue, orders OrderStore, outbox config.Outbox, staleAfter time.Duration, logger logx.Logger) *Worker {
	return &Worker{
		pool:   pool,
		queue:  queue,
		orders: orders,
		outbox: outbox,
		stale:  staleAfter,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run polls until ctx is cancelled, then waits for in-flight dispatches.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.outbox.PollInterval)
	defer ticker.Stop()

	w.logger.Info("dispatch worker started",
		logx.Duration("poll_interval", w.outbox.PollInterval))

	for {
		select {
		case <-ctx.Done():
			w.pool.Wait()
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	jobs, err := w.queue.Claim(ctx, w.outbox.BatchSize)
	if err != nil {
		w.logger.Error("outbox claim failed", logx.Err(err))
		return
	}
	for _, job := range jobs {
		w.dispatchJob(ctx, job.ID, job.OrderID)
	}
	w.housekeep(ctx)
}

// HandleOrderAccepted is the Kafka fast path. Claiming the outbox row first
// keeps the poller from dispatching the same order twice; an event whose row
// is already claimed (or was never written) is simply dropped.
func (w *Worker) HandleOrderAccepted(ctx context.Context, orderID int64) error {
	job, err := w.queue.ClaimByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if job == nil {
		w.logger.Debug("order event without pending dispatch job",
			logx.Int64("order_id", orderID))
		return nil
	}
	w.dispatchJob(ctx, job.ID, job.OrderID)
	return nil
}

func (w *Worker) dispatchJob(ctx context.Context, jobID, orderID int64) {
	err := w.pool.Submit(ctx, orderID, func(dispatchErr error) {
		if dispatchErr != nil {
			// Leave the job claimed; ReleaseStale will requeue it later.
			return
		}
		if err := w.queue.Done(context.WithoutCancel(ctx), jobID); err != nil {
			w.logger.Error("outbox done failed",
				logx.Int64("job_id", jobID),
				logx.Err(err),
			)
		}
	})
	if err != nil && ctx.Err() == nil {
		w.logger.Error("dispatch submit failed",
			logx.Int64("order_id", orderID),
			logx.Err(err),
		)
	}
}

// housekeep requeues abandoned jobs and reaps stale ACCEPTED orders left
// behind by a crash mid-dispatch.
func (w *Worker) housekeep(ctx context.Context) {
	if w.stale <= 0 {
		return
	}
	cutoff := w.now().Add(-w.stale)

	if n, err := w.queue.ReleaseStale(ctx, cutoff); err != nil {
		w.logger.Error("outbox release failed", logx.Err(err))
	} else if n > 0 {
		w.logger.Warn("requeued abandoned dispatch jobs", logx.Int64("count", n))
	}

	if n, err := w.orders.ReapStale(ctx, cutoff); err != nil {
		w.logger.Error("stale order reap failed", logx.Err(err))
	} else if n > 0 {
		w.logger.Warn("reaped stale accepted orders", logx.Int64("count", n))
	}
}
