package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockDatabaseService struct {
	mock.Mock
}

func (m *MockDatabaseService) CreateDatabase(ctx context.Context, db string) error {
	args := m.Called(ctx, db)
	return args.Error(0)
}

func (m *MockDatabaseService) ListDatabases(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDatabaseService) DropDatabase(ctx context.Context, db string) error {
	args := m.Called(ctx, db)
	return args.Error(0)
}

func (m *MockDatabaseService) CreateCollection(ctx context.Context, db, collection string) error {
	args := m.Called(ctx, db, collection)
	return args.Error(0)
}

func (m *MockDatabaseService) ListCollections(ctx context.Context, db string) ([]string, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDatabaseService) DropCollection(ctx context.Context, db, collection string) error {
	args := m.Called(ctx, db, collection)
	return args.Error(0)
}
