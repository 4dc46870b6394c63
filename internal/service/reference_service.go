package service

import (
	"context"
	"strings"

	"coverscan/internal/port"
)

const maxMakeResults = 25

// ReferenceService serves lookup data for the review UI.
type ReferenceService interface {
	// SearchVehicleMakes matches makes and models by prefix for
	// autocomplete. Blank queries return nothing.
	SearchVehicleMakes(ctx context.Context, query string, limit int) ([]port.VehicleMakeEntry, error)
}

type referenceService struct {
	makeRepo port.VehicleMakeRepository
}

// NewReferenceService creates a new ReferenceService implementation.
func NewReferenceService(makeRepo port.VehicleMakeRepository) ReferenceService {
	return &referenceService{makeRepo: makeRepo}
}

func (s *referenceService) SearchVehicleMakes(ctx context.Context, query string, limit int) ([]port.VehicleMakeEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []port.VehicleMakeEntry{}, nil
	}
	if limit <= 0 || limit > maxMakeResults {
		limit = maxMakeResults
	}
	return s.makeRepo.Search(ctx, query, limit)
}
