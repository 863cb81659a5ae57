package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/ports/ordertx"
)

// OrderRepo represents order repository.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = `id, restaurant_id, customer_name, customer_phone, delivery_address,
       total_amount::text, status, created_at, accepted_at, delivered_at, assigned_courier_id`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		amount string
		status string
	)
	err := row.Scan(&o.ID, &o.RestaurantID, &o.CustomerName, &o.CustomerPhone,
		&o.DeliveryAddress, &amount, &status, &o.CreatedAt,
		&o.AcceptedAt, &o.DeliveredAt, &o.AssignedCourierID)
	if err != nil {
		return nil, err
	}
	total, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse total amount %q: %w", amount, err)
	}
	o.TotalAmount = total
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// Get - returns order by its ID, or nil if it does not exist.
func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// WithTx opens a transaction and executes fn within it.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// ReapStale moves ACCEPTED orders with no assignment older than cutoff to
// UNASSIGNED and returns the number of orders reaped. Used by the worker to
// recover dispatches lost to a crash.
func (r *OrderRepo) ReapStale(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE orders
        SET status = $1
        WHERE status = $2
          AND assigned_courier_id IS NULL
          AND accepted_at < $3
    `, string(domain.OrderUnassigned), string(domain.OrderAccepted), cutoff)
	if err != nil {
		return 0, fmt.Errorf("reap stale accepted orders: %w", err)
	}
	return ct.RowsAffected(), nil
}

// MarkDispatchTerminal moves an ACCEPTED, unassigned order to a terminal
// dispatch status (UNASSIGNED or ASSIGNMENT_FAILED). The conditional WHERE
// keeps the engine from clobbering an assignment that won the race with the
// final poll.
func (r *OrderRepo) MarkDispatchTerminal(ctx context.Context, id int64, status domain.OrderStatus) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE orders
        SET status = $2
        WHERE id = $1
          AND status = $3
          AND assigned_courier_id IS NULL
    `, id, string(status), string(domain.OrderAccepted))
	if err != nil {
		return false, fmt.Errorf("mark order %d %s: %w", id, status, err)
	}
	return ct.RowsAffected() > 0, nil
}

// TxRepo represents an order transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// GetOrderForUpdate - loads an order under a row lock.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %d for update: %w", id, err)
	}
	return o, nil
}

// GetCourier - returns courier by its ID within the transaction.
func (r *TxRepo) GetCourier(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.tx.QueryRow(ctx,
		`SELECT `+courierColumns+` FROM couriers WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get courier %d: %w", id, err)
	}
	return c, nil
}

// UpdateOrderStatus - update order status and optional timestamps.
func (r *TxRepo) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus, acceptedAt, deliveredAt *time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET status = $2,
            accepted_at = COALESCE($3, accepted_at),
            delivered_at = COALESCE($4, delivered_at)
        WHERE id = $1
    `, id, string(status), acceptedAt, deliveredAt)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order %d not found", id)
	}
	return nil
}

// TryAssign atomically assigns a courier to an order. The conditional WHERE
// is the serialisation point for acceptance: at most one concurrent call
// observes a row to update, every other call gets false.
func (r *TxRepo) TryAssign(ctx context.Context, orderID, courierID int64) (bool, error) {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET assigned_courier_id = $2, status = $3
        WHERE id = $1
          AND status = $4
          AND assigned_courier_id IS NULL
    `, orderID, courierID, string(domain.OrderAssigned), string(domain.OrderAccepted))
	if err != nil {
		return false, fmt.Errorf("assign order %d to courier %d: %w", orderID, courierID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// UpdateCourierStatus - update courier status.
func (r *TxRepo) UpdateCourierStatus(ctx context.Context, id int64, status domain.CourierStatus) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET status = $2, updated_at = now()
        WHERE id = $1
    `, id, string(status))
	if err != nil {
		return fmt.Errorf("update courier status %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("courier %d not found", id)
	}
	return nil
}

// EnqueueDispatch - insert a dispatch outbox row for the order. Written in
// the same transaction as the PENDING -> ACCEPTED commit so the worker can
// only ever observe a committed acceptance. Re-enqueueing the same order is
// a no-op; the unique constraint keeps one row per order.
func (r *TxRepo) EnqueueDispatch(ctx context.Context, orderID int64) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO dispatch_outbox (order_id, created_at)
        VALUES ($1, now())
        ON CONFLICT (order_id) DO NOTHING
    `, orderID)
	if err != nil {
		return fmt.Errorf("enqueue dispatch for order %d: %w", orderID, err)
	}
	return nil
}
