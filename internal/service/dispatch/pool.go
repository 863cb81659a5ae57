package dispatch

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"delivery-dispatch/internal/logx"
)

// Pool runs dispatches on background goroutines, capped by a weighted
// semaphore so a flood of accepted orders cannot exhaust the process.
type Pool struct {
	engine *Engine
	sem    *semaphore.Weighted
	logger logx.Logger
	wg     sync.WaitGroup
}

// NewPool creates a dispatch pool allowing up to maxConcurrent dispatches.
func NewPool(engine *Engine, maxConcurrent int64, logger logx.Logger) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pool{
		engine: engine,
		sem:    semaphore.NewWeighted(maxConcurrent),
		logger: logger,
	}
}

// Submit schedules a dispatch for the order, blocking while the pool is
// saturated. The dispatch itself runs on its own goroutine; done (optional)
// is called when it finishes.
func (p *Pool) Submit(ctx context.Context, orderID int64, done func(err error)) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)

		_, err := p.engine.Dispatch(ctx, orderID)
		if err != nil && ctx.Err() == nil {
			p.logger.Error("dispatch error",
				logx.Int64("order_id", orderID),
				logx.Err(err),
			)
		}
		if done != nil {
			done(err)
		}
	}()
	return nil
}

// Wait blocks until every in-flight dispatch has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
