package mocks

import (
	"context"

	"docgate/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockSchemaService struct {
	mock.Mock
}

func (m *MockSchemaService) Upload(ctx context.Context, db, collection string, files []service.SchemaFile) ([]string, error) {
	args := m.Called(ctx, db, collection, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSchemaService) Get(ctx context.Context, db, collection string) (map[string]map[string]any, error) {
	args := m.Called(ctx, db, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]map[string]any), args.Error(1)
}

func (m *MockSchemaService) Delete(ctx context.Context, db, collection, name string) error {
	args := m.Called(ctx, db, collection, name)
	return args.Error(0)
}
