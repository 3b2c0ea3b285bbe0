package mocks

import (
	"context"

	"docgate/internal/schema"
	"github.com/stretchr/testify/mock"
)

type MockSchemaSource struct {
	mock.Mock
}

func (m *MockSchemaSource) Load(ctx context.Context, db, collection string) ([]*schema.Entry, error) {
	args := m.Called(ctx, db, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schema.Entry), args.Error(1)
}
