package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"delivery-dispatch/internal/domain"
)

// RestaurantRepo represents restaurant repository.
type RestaurantRepo struct{ db *pgxpool.Pool }

// NewRestaurantRepo creates a new RestaurantRepo.
func NewRestaurantRepo(db *pgxpool.Pool) *RestaurantRepo { return &RestaurantRepo{db: db} }

// Get - returns restaurant by its ID, or nil if it does not exist. Location
// is nil when the restaurant has no stored coordinates.
func (r *RestaurantRepo) Get(ctx context.Context, id int64) (*domain.Restaurant, error) {
	var (
		rest     domain.Restaurant
		lon, lat *float64
	)
	err := r.db.QueryRow(ctx, `
        SELECT id, name, address, phone, email, is_active,
               ST_X(location::geometry), ST_Y(location::geometry)
        FROM restaurants WHERE id=$1
    `, id).Scan(&rest.ID, &rest.Name, &rest.Address, &rest.Phone, &rest.Email,
		&rest.Active, &lon, &lat)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get restaurant %d: %w", id, err)
	}
	if lon != nil && lat != nil {
		rest.Location = &domain.Location{Lon: *lon, Lat: *lat}
	}
	return &rest, nil
}
