package app

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/service/dispatch"
	"delivery-dispatch/internal/transport/kafka"
)

// WorkerRunner runs the dispatch worker
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun starts the dispatch worker using the provided DI container
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger logx.Logger,
	worker *dispatch.Worker,
	consumer *kafka.Consumer,
) error {
	defer closeWorker(pool, logger, consumer)

	logger.Info("dispatch-worker started")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(gCtx) })
	if consumer != nil {
		g.Go(func() error { return consumer.Run(gCtx) })
	}
	return g.Wait()
}

func closeWorker(pool *pgxpool.Pool, logger logx.Logger, consumer *kafka.Consumer) {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}
