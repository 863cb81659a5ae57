package lifecycle

import (
	"context"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/ports/ordertx"
	"delivery-dispatch/internal/sms"
)

// Service drives the order state machine. It owns every order transition
// except assignment, which belongs to the arbiter; courier status changes
// are coupled to the order transition in the same transaction.
type Service struct {
	repo             ordertx.Runner
	publisher        EventPublisher
	gateway          sms.Gateway
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates a lifecycle Service. publisher and gateway may be nil.
func NewService(repo ordertx.Runner, publisher EventPublisher, gateway sms.Gateway, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             repo,
		publisher:        publisher,
		gateway:          gateway,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Accept commits the restaurant's acceptance of a pending order and enqueues
// the dispatch hand-off. The dispatch outbox row is written in the same
// transaction, so the worker can only observe a committed ACCEPTED order.
func (s *Service) Accept(ctx context.Context, orderID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.ErrNotFound
		}
		if !order.Status.CanTransitionTo(domain.OrderAccepted) {
			return apperr.ErrInvalidTransition
		}

		now := s.now()
		if err := tx.UpdateOrderStatus(ctx, orderID, domain.OrderAccepted, &now, nil); err != nil {
			return err
		}
		return tx.EnqueueDispatch(ctx, orderID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("order accepted",
		logx.String("event", "order_accepted"),
		logx.Int64("order_id", orderID),
	)

	// Post-commit fast path. A lost event is recovered by the outbox poller.
	if s.publisher != nil {
		if err := s.publisher.OrderAccepted(ctx, orderID); err != nil {
			s.logger.Warn("order accepted event publish failed",
				logx.Int64("order_id", orderID),
				logx.Err(err),
			)
		}
	}
	return nil
}

// Reject cancels a pending order. Rejection of an already-accepted order is
// not permitted.
func (s *Service) Reject(ctx context.Context, orderID int64, reason string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.ErrNotFound
		}
		if !order.Status.CanTransitionTo(domain.OrderCancelled) {
			return apperr.ErrInvalidTransition
		}
		return tx.UpdateOrderStatus(ctx, orderID, domain.OrderCancelled, nil, nil)
	})
	if err != nil {
		return err
	}

	s.logger.Info("order rejected",
		logx.String("event", "order_rejected"),
		logx.Int64("order_id", orderID),
		logx.String("reason", reason),
	)
	return nil
}

// Pickup marks an assigned order as picked up by its courier.
func (s *Service) Pickup(ctx context.Context, orderID, courierID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var customer notification

	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.ErrNotFound
		}
		courier, err := tx.GetCourier(ctx, courierID)
		if err != nil {
			return err
		}
		if courier == nil {
			return apperr.ErrNotFound
		}
		if !order.AssignedTo(courierID) {
			return apperr.ErrNotAssignedCourier
		}
		if !order.Status.CanTransitionTo(domain.OrderPickedUp) {
			return apperr.ErrInvalidTransition
		}

		if err := tx.UpdateOrderStatus(ctx, orderID, domain.OrderPickedUp, nil, nil); err != nil {
			return err
		}
		customer = notification{
			phone: order.CustomerPhone,
			body:  sms.PickupBody(courier.Name),
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order picked up",
		logx.String("event", "order_picked_up"),
		logx.Int64("order_id", orderID),
		logx.Int64("courier_id", courierID),
	)
	s.notifyCustomer(ctx, customer)
	return nil
}

// Deliver marks a picked-up order as delivered and frees the courier. The
// courier's return to AVAILABLE commits in the same transaction as the order
// update, so no courier is ever left BUSY for a delivered order.
func (s *Service) Deliver(ctx context.Context, orderID, courierID int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var customer notification

	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.ErrNotFound
		}
		courier, err := tx.GetCourier(ctx, courierID)
		if err != nil {
			return err
		}
		if courier == nil {
			return apperr.ErrNotFound
		}
		if !order.AssignedTo(courierID) {
			return apperr.ErrNotAssignedCourier
		}
		if !order.Status.CanTransitionTo(domain.OrderDelivered) {
			return apperr.ErrInvalidTransition
		}

		now := s.now()
		if err := tx.UpdateOrderStatus(ctx, orderID, domain.OrderDelivered, nil, &now); err != nil {
			return err
		}
		if err := tx.UpdateCourierStatus(ctx, courierID, domain.CourierAvailable); err != nil {
			return err
		}
		customer = notification{
			phone: order.CustomerPhone,
			body:  sms.DeliveredBody(order.TotalAmount),
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order delivered",
		logx.String("event", "order_delivered"),
		logx.Int64("order_id", orderID),
		logx.Int64("courier_id", courierID),
	)
	s.notifyCustomer(ctx, customer)
	return nil
}

type notification struct {
	phone string
	body  string
}

func (s *Service) notifyCustomer(ctx context.Context, n notification) {
	if s.gateway == nil || n.phone == "" {
		return
	}
	if _, err := s.gateway.Send(ctx, n.phone, n.body); err != nil {
		// Customer texts are best-effort, same as solicitation.
		s.logger.Warn("customer notification failed",
			logx.String("to", n.phone),
			logx.Err(err),
		)
	}
}
