package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/corescan/deployguard/internal/domain/entities"
)

// MockBackupInventory is a testify mock for repository.BackupInventory
type MockBackupInventory struct {
	mock.Mock
}

func (m *MockBackupInventory) List(ctx context.Context) ([]entities.BackupRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.BackupRecord), args.Error(1)
}
