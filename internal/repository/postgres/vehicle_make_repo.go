package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"coverscan/internal/port"
)

type vehicleMakeRepo struct {
	db *sqlx.DB
}

// NewVehicleMakeRepo creates a new PostgreSQL-backed VehicleMakeRepository.
func NewVehicleMakeRepo(db *sqlx.DB) port.VehicleMakeRepository {
	return &vehicleMakeRepo{db: db}
}

func (r *vehicleMakeRepo) Search(ctx context.Context, query string, limit int) ([]port.VehicleMakeEntry, error) {
	var entries []port.VehicleMakeEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT make, model
		 FROM vehicle_makes
		 WHERE make ILIKE $1 OR model ILIKE $1
		 ORDER BY make, model
		 LIMIT $2`,
		query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("vehicleMakeRepo.Search: %w", err)
	}
	return entries, nil
}
