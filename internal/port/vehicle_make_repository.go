package port

import "context"

// VehicleMakeEntry is one row of the vehicle make/model reference table.
type VehicleMakeEntry struct {
	Make  string `db:"make" json:"make"`
	Model string `db:"model" json:"model"`
}

// VehicleMakeRepository defines the contract for vehicle reference data access.
type VehicleMakeRepository interface {
	// Search matches makes and models by case-insensitive prefix.
	Search(ctx context.Context, query string, limit int) ([]VehicleMakeEntry, error)
}
