package mocks

import (
	"context"

	"docgate/internal/model"
	"docgate/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDocumentRepository) CreateDatabase(ctx context.Context, db string) error {
	args := m.Called(ctx, db)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListDatabases(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentRepository) DropDatabase(ctx context.Context, db string) error {
	args := m.Called(ctx, db)
	return args.Error(0)
}

func (m *MockDocumentRepository) CreateCollection(ctx context.Context, db, collection string) error {
	args := m.Called(ctx, db, collection)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListCollections(ctx context.Context, db string) ([]string, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDocumentRepository) DropCollection(ctx context.Context, db, collection string) error {
	args := m.Called(ctx, db, collection)
	return args.Error(0)
}

func (m *MockDocumentRepository) Insert(ctx context.Context, db, collection string, doc model.Document) (string, error) {
	args := m.Called(ctx, db, collection, doc)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, db, collection, id string) (model.Document, error) {
	args := m.Called(ctx, db, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Find(ctx context.Context, db, collection string, filter model.Filter) ([]model.Document, error) {
	args := m.Called(ctx, db, collection, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Search(ctx context.Context, db, collection string, filter model.Filter, pq repository.PageQuery) ([]model.Document, error) {
	args := m.Called(ctx, db, collection, filter, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, db, collection, id string, fields model.Document) error {
	args := m.Called(ctx, db, collection, id, fields)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, db, collection, id string) error {
	args := m.Called(ctx, db, collection, id)
	return args.Error(0)
}
