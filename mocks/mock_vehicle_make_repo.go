package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"coverscan/internal/port"
)

// MockVehicleMakeRepo is a mock implementation of port.VehicleMakeRepository.
type MockVehicleMakeRepo struct {
	mock.Mock
}

func (m *MockVehicleMakeRepo) Search(ctx context.Context, query string, limit int) ([]port.VehicleMakeEntry, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.VehicleMakeEntry), args.Error(1)
}
