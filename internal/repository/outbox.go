package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DispatchJob is a pending dispatch request from the outbox table.
type DispatchJob struct {
	ID        int64
	OrderID   int64
	CreatedAt time.Time
}

// OutboxRepo represents the dispatch outbox repository. Rows are written by
// the restaurant-accept transaction and consumed by the dispatch worker.
type OutboxRepo struct{ db *pgxpool.Pool }

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(db *pgxpool.Pool) *OutboxRepo { return &OutboxRepo{db: db} }

// Claim picks up to limit unpicked jobs, marking them picked. SKIP LOCKED
// keeps concurrent workers from claiming the same row.
func (r *OutboxRepo) Claim(ctx context.Context, limit int) ([]DispatchJob, error) {
	rows, err := r.db.Query(ctx, `
        UPDATE dispatch_outbox
        SET picked_at = now()
        WHERE id IN (
            SELECT id FROM dispatch_outbox
            WHERE picked_at IS NULL
            ORDER BY id
            FOR UPDATE SKIP LOCKED
            LIMIT $1
        )
        RETURNING id, order_id, created_at
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("claim dispatch jobs: %w", err)
	}
	defer rows.Close()

	out := make([]DispatchJob, 0, limit)
	for rows.Next() {
		var j DispatchJob
		if err := rows.Scan(&j.ID, &j.OrderID, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dispatch job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ClaimByOrder picks the unpicked job for a specific order, if any. Used by
// the Kafka fast path so the poller does not dispatch the order twice.
func (r *OutboxRepo) ClaimByOrder(ctx context.Context, orderID int64) (*DispatchJob, error) {
	var j DispatchJob
	err := r.db.QueryRow(ctx, `
        UPDATE dispatch_outbox
        SET picked_at = now()
        WHERE id IN (
            SELECT id FROM dispatch_outbox
            WHERE order_id = $1 AND picked_at IS NULL
            ORDER BY id
            FOR UPDATE SKIP LOCKED
            LIMIT 1
        )
        RETURNING id, order_id, created_at
    `, orderID).Scan(&j.ID, &j.OrderID, &j.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim dispatch job for order %d: %w", orderID, err)
	}
	return &j, nil
}

// Done marks a claimed job as completed.
func (r *OutboxRepo) Done(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE dispatch_outbox SET done_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("finish dispatch job %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("dispatch job %d not found", id)
	}
	return nil
}

// ReleaseStale requeues jobs that were claimed but never finished, so a
// worker crash mid-dispatch does not strand the order. Re-solicitation of
// couriers on replay is acceptable.
func (r *OutboxRepo) ReleaseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE dispatch_outbox
        SET picked_at = NULL
        WHERE done_at IS NULL
          AND picked_at IS NOT NULL
          AND picked_at < $1
    `, cutoff)
	if err != nil {
		return 0, fmt.Errorf("release stale dispatch jobs: %w", err)
	}
	return ct.RowsAffected(), nil
}
