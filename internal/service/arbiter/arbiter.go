package arbiter

import (
	"context"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
	"delivery-dispatch/internal/ports/ordertx"
)

// Service resolves concurrent courier acceptances. For any order at most one
// Accept commits; every competing call fails with apperr.ErrAlreadyAssigned.
// The conditional update on the order row is the serialisation point.
type Service struct {
	repo             ordertx.Runner
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates an arbiter Service.
func NewService(repo ordertx.Runner, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: repo, operationTimeout: timeout, logger: logger}
}

// Accept records courierID's acceptance of orderID. Repeating a successful
// call by the winning courier is a no-op returning success; any other
// courier gets ErrAlreadyAssigned.
func (s *Service) Accept(ctx context.Context, orderID, courierID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return apperr.ErrNotFound
		}

		// Idempotent replay by the winner.
		if order.AssignedTo(courierID) {
			return nil
		}
		if order.AssignedCourierID != nil {
			return apperr.ErrAlreadyAssigned
		}
		if order.Status != domain.OrderAccepted {
			if order.Status == domain.OrderAssigned {
				return apperr.ErrAlreadyAssigned
			}
			return apperr.ErrInvalidTransition
		}

		courier, err := tx.GetCourier(ctx, courierID)
		if err != nil {
			return err
		}
		if courier == nil {
			return apperr.ErrNotFound
		}
		if courier.Status != domain.CourierAvailable {
			return apperr.ErrCourierUnavailable
		}

		ok, err := tx.TryAssign(ctx, orderID, courierID)
		if err != nil {
			return err
		}
		if !ok {
			// Lost the race between the read and the conditional update.
			return apperr.ErrAlreadyAssigned
		}
		return tx.UpdateCourierStatus(ctx, courierID, domain.CourierBusy)
	})
	if err != nil {
		return err
	}

	s.logger.Info("courier assigned",
		logx.String("event", "courier_assigned"),
		logx.Int64("order_id", orderID),
		logx.Int64("courier_id", courierID),
	)
	return nil
}
