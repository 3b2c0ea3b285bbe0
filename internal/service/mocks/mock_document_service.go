package mocks

import (
	"context"

	"docgate/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Add(ctx context.Context, db, collection string, doc model.Document) (string, error) {
	args := m.Called(ctx, db, collection, doc)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, db, collection, id string) (model.Document, error) {
	args := m.Called(ctx, db, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, db, collection string, filter model.Filter) ([]model.Document, error) {
	args := m.Called(ctx, db, collection, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Search(ctx context.Context, db, collection string, filter model.Filter, skip, size int) (*model.SearchResult, error) {
	args := m.Called(ctx, db, collection, filter, skip, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SearchResult), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, db, collection, id string, fields model.Document) error {
	args := m.Called(ctx, db, collection, id, fields)
	return args.Error(0)
}

func (m *MockDocumentService) Delete(ctx context.Context, db, collection, id string) error {
	args := m.Called(ctx, db, collection, id)
	return args.Error(0)
}
