package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"delivery-dispatch/internal/config"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/sms"
)

// Outcome is the terminal result of a dispatch.
type Outcome string

// List of dispatch outcomes
const (
	OutcomeAssigned   Outcome = "assigned"
	OutcomeUnassigned Outcome = "unassigned"
	OutcomeFailed     Outcome = "failed"
	OutcomeSkipped    Outcome = "skipped"
)

// Metrics groups the engine's counters. Any field may be nil.
type Metrics struct {
	Batches  prometheus.Counter
	Outcomes *prometheus.CounterVec // labeled by outcome
}

func (m Metrics) incBatch() {
	if m.Batches != nil {
		m.Batches.Inc()
	}
}

func (m Metrics) incOutcome(o Outcome) {
	if m.Outcomes != nil {
		m.Outcomes.WithLabelValues(string(o)).Inc()
	}
}

// Engine solicits couriers for accepted orders in proximity-ordered batches
// until one accepts, the candidate pool saturates, or the batch budget runs
// out. The engine never assigns: it only notifies and watches the order row
// for the arbiter's commit.
type Engine struct {
	orders      OrderStore
	couriers    CourierStore
	restaurants RestaurantStore
	gateway     sms.Gateway
	cfg         config.Dispatch
	metrics     Metrics
	logger      logx.Logger
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewEngine creates a dispatch Engine.
func NewEngine(
	orders OrderStore,
	couriers CourierStore,
	restaurants RestaurantStore,
	gateway sms.Gateway,
	cfg config.Dispatch,
	metrics Metrics,
	logger logx.Logger,
) *Engine {
	return &Engine{
		orders:      orders,
		couriers:    couriers,
		restaurants: restaurants,
		gateway:     gateway,
		cfg:         cfg,
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Dispatch runs the full solicitation loop for one order. It is safe to
// replay: an order that is no longer ACCEPTED-and-unassigned is left alone.
func (e *Engine) Dispatch(ctx context.Context, orderID int64) (Outcome, error) {
	log := e.logger.With(logx.Int64("order_id", orderID))

	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return e.fail(ctx, log, orderID, err)
	}
	if order == nil {
		return OutcomeFailed, fmt.Errorf("dispatch order %d: order not found", orderID)
	}
	if order.Status != domain.OrderAccepted || order.AssignedCourierID != nil {
		log.Info("dispatch skipped, order not awaiting assignment",
			logx.String("status", string(order.Status)))
		if order.AssignedCourierID != nil {
			return OutcomeAssigned, nil
		}
		return OutcomeSkipped, nil
	}

	restaurant, err := e.restaurants.Get(ctx, order.RestaurantID)
	if err != nil {
		return e.fail(ctx, log, orderID, err)
	}
	if restaurant == nil || restaurant.Location == nil {
		// Fatal for dispatch. Not surfaced to the original caller.
		log.Error("restaurant location missing, dispatch aborted",
			logx.Int64("restaurant_id", order.RestaurantID))
		return e.terminate(ctx, log, orderID, domain.OrderAssignmentFailed, OutcomeFailed)
	}
	origin := *restaurant.Location

	solicited := make(map[int64]struct{})

	for attempt := 0; ; attempt++ {
		if attempt >= e.cfg.MaxBatches {
			log.Warn("dispatch batch budget exhausted",
				logx.Int("max_batches", e.cfg.MaxBatches))
			return e.terminate(ctx, log, orderID, domain.OrderUnassigned, OutcomeUnassigned)
		}

		nearby, err := e.couriers.NearestAvailable(ctx, origin.Lon, origin.Lat, e.cfg.BatchSize)
		if err != nil {
			return e.fail(ctx, log, orderID, err)
		}

		batch := make([]domain.NearbyCourier, 0, len(nearby))
		for _, nc := range nearby {
			if _, seen := solicited[nc.Courier.ID]; !seen {
				batch = append(batch, nc)
			}
		}
		if len(batch) == 0 {
			// Either the pool is empty or every nearby courier has already
			// been solicited; the search has saturated.
			log.Warn("no couriers left to solicit",
				logx.Int("attempt", attempt+1),
				logx.Int("nearby", len(nearby)))
			return e.terminate(ctx, log, orderID, domain.OrderUnassigned, OutcomeUnassigned)
		}

		e.metrics.incBatch()
		log.Info("soliciting courier batch",
			logx.Int("attempt", attempt+1),
			logx.Int("batch_size", len(batch)))

		for _, nc := range batch {
			solicited[nc.Courier.ID] = struct{}{}
			e.solicit(ctx, log, order, restaurant, nc)
		}

		assigned, err := e.awaitAcceptance(ctx, orderID)
		if err != nil {
			return e.fail(ctx, log, orderID, err)
		}
		if assigned {
			log.Info("dispatch complete, courier accepted",
				logx.Int("attempt", attempt+1))
			e.metrics.incOutcome(OutcomeAssigned)
			return OutcomeAssigned, nil
		}

		log.Info("no acceptance within batch window",
			logx.Int("attempt", attempt+1))
		if err := e.sleep(ctx, e.cfg.InterBatchDelay); err != nil {
			return OutcomeFailed, err
		}
	}
}

// solicit sends a single courier the acceptance SMS. Gateway failures are
// logged and counted by the instrumented gateway; they never abort a batch.
func (e *Engine) solicit(ctx context.Context, log logx.Logger, order *domain.Order, restaurant *domain.Restaurant, nc domain.NearbyCourier) {
	url := sms.AcceptanceURL(e.cfg.BaseURL, nc.Courier.ID, order.ID)
	body := sms.SolicitationBody(restaurant.Name, nc.DistanceKm, order.TotalAmount, url)

	id, err := e.gateway.Send(ctx, nc.Courier.Phone, body)
	if err != nil {
		return
	}
	log.Debug("courier solicited",
		logx.Int64("courier_id", nc.Courier.ID),
		logx.Float64("distance_km", nc.DistanceKm),
		logx.String("message_id", id))
}

// awaitAcceptance polls the order until it gains an assignment or the batch
// window closes. Polling against the store keeps crash recovery trivial; an
// arbiter-signalled fast path could be layered on top but must not replace
// this.
func (e *Engine) awaitAcceptance(ctx context.Context, orderID int64) (bool, error) {
	deadline := e.now().Add(e.cfg.BatchWindow)
	for {
		order, err := e.orders.Get(ctx, orderID)
		if err != nil {
			return false, err
		}
		if order == nil {
			return false, fmt.Errorf("order %d disappeared during dispatch", orderID)
		}
		if order.AssignedCourierID != nil {
			return true, nil
		}

		remaining := deadline.Sub(e.now())
		if remaining <= 0 {
			return false, nil
		}
		wait := e.cfg.PollInterval
		if wait > remaining {
			wait = remaining
		}
		if err := e.sleep(ctx, wait); err != nil {
			return false, err
		}
	}
}

func (e *Engine) terminate(ctx context.Context, log logx.Logger, orderID int64, status domain.OrderStatus, outcome Outcome) (Outcome, error) {
	ok, err := e.orders.MarkDispatchTerminal(ctx, orderID, status)
	if err != nil {
		return OutcomeFailed, err
	}
	if !ok {
		// The arbiter won the final race; the order is assigned after all.
		log.Info("terminal update skipped, order already assigned")
		e.metrics.incOutcome(OutcomeAssigned)
		return OutcomeAssigned, nil
	}
	log.Info("dispatch terminated",
		logx.String("status", string(status)))
	e.metrics.incOutcome(outcome)
	return outcome, nil
}

// fail marks the order ASSIGNMENT_FAILED on an internal error, best effort.
func (e *Engine) fail(ctx context.Context, log logx.Logger, orderID int64, cause error) (Outcome, error) {
	log.Error("dispatch failed", logx.Err(cause))
	if _, err := e.orders.MarkDispatchTerminal(ctx, orderID, domain.OrderAssignmentFailed); err != nil {
		log.Error("could not mark order assignment failed", logx.Err(err))
	}
	e.metrics.incOutcome(OutcomeFailed)
	return OutcomeFailed, cause
}
