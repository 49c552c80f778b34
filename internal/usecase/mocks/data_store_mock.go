package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/corescan/deployguard/internal/domain/entities"
)

// MockDataStore is a testify mock for repository.DataStore
type MockDataStore struct {
	mock.Mock
}

func (m *MockDataStore) CountRows(ctx context.Context) (entities.RowCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.RowCounts), args.Error(1)
}

func (m *MockDataStore) CheckIntegrity(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDataStore) SnapshotTo(ctx context.Context, destPath string) error {
	args := m.Called(ctx, destPath)
	return args.Error(0)
}

func (m *MockDataStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
