package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-dispatch/internal/domain"
)

// CourierRepo represents courier repository.
type CourierRepo struct{ db *pgxpool.Pool }

// NewCourierRepo creates a new CourierRepo.
func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

const courierColumns = `id, name, phone, email, vehicle_type, vehicle_number, status, is_active,
       ST_X(current_location::geometry), ST_Y(current_location::geometry), last_location_update`

func scanCourier(row pgx.Row) (*domain.Courier, error) {
	var (
		c        domain.Courier
		status   string
		lon, lat *float64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.VehicleType,
		&c.VehicleNumber, &status, &c.Active, &lon, &lat, &c.LastLocationUpdate)
	if err != nil {
		return nil, err
	}
	c.Status = domain.CourierStatus(status)
	if lon != nil && lat != nil {
		c.Location = &domain.Location{Lon: *lon, Lat: *lat}
	}
	return &c, nil
}

// Get - returns courier by its ID, or nil if it does not exist.
func (r *CourierRepo) Get(ctx context.Context, id int64) (*domain.Courier, error) {
	c, err := scanCourier(r.db.QueryRow(ctx,
		`SELECT `+courierColumns+` FROM couriers WHERE id=$1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get courier %d: %w", id, err)
	}
	return c, nil
}

// NearestAvailable returns up to limit eligible couriers ordered ascending by
// planar distance from (lon, lat). Eligible means active, AVAILABLE and with
// a known location. The courier id is the stable tie-break.
func (r *CourierRepo) NearestAvailable(ctx context.Context, lon, lat float64, limit int) ([]domain.NearbyCourier, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+courierColumns+`,
               ST_Distance(current_location::geography,
                           ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) / 1000.0 AS distance_km
        FROM couriers
        WHERE is_active = true
          AND status = $3
          AND current_location IS NOT NULL
        ORDER BY ST_Distance(current_location,
                             ST_SetSRID(ST_MakePoint($1, $2), 4326)) ASC,
                 id ASC
        LIMIT $4
    `, lon, lat, string(domain.CourierAvailable), limit)
	if err != nil {
		return nil, fmt.Errorf("nearest available couriers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.NearbyCourier, 0, limit)
	for rows.Next() {
		var (
			c          domain.Courier
			status     string
			cLon, cLat *float64
			distanceKm float64
		)
		err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.VehicleType,
			&c.VehicleNumber, &status, &c.Active, &cLon, &cLat,
			&c.LastLocationUpdate, &distanceKm)
		if err != nil {
			return nil, fmt.Errorf("scan nearby courier: %w", err)
		}
		c.Status = domain.CourierStatus(status)
		if cLon != nil && cLat != nil {
			c.Location = &domain.Location{Lon: *cLon, Lat: *cLat}
		}
		out = append(out, domain.NearbyCourier{Courier: c, DistanceKm: distanceKm})
	}
	return out, rows.Err()
}

// UpdateLocation stores the courier's current WGS 84 position and returns
// true if a row was affected.
func (r *CourierRepo) UpdateLocation(ctx context.Context, id int64, loc domain.Location, at time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE couriers
        SET current_location = ST_SetSRID(ST_MakePoint($2, $3), 4326),
            last_location_update = $4,
            updated_at = now()
        WHERE id = $1
    `, id, loc.Lon, loc.Lat, at)
	if err != nil {
		return false, fmt.Errorf("update courier %d location: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
