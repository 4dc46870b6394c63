package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"coverscan/internal/appform"
	"coverscan/internal/port"
)

// MockPageParser is a mock implementation of port.PageParser.
type MockPageParser struct {
	mock.Mock
}

func (m *MockPageParser) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPageParser) ParsePage(ctx context.Context, input port.PageInput) (*appform.Record, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appform.Record), args.Error(1)
}

// MockPageSetParser is a mock implementation of port.PageSetParser.
type MockPageSetParser struct {
	mock.Mock
}

func (m *MockPageSetParser) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPageSetParser) ParsePages(ctx context.Context, pages []port.PageInput) ([]*appform.Record, error) {
	args := m.Called(ctx, pages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appform.Record), args.Error(1)
}
