package service

import (
	"context"
	"fmt"

	"docgate/internal/repository"
)

// DatabaseService manages databases and collections of the document engine.
type DatabaseService interface {
	CreateDatabase(ctx context.Context, db string) error
	ListDatabases(ctx context.Context) ([]string, error)
	DropDatabase(ctx context.Context, db string) error

	// CreateCollection returns ErrAlreadyExists if the collection exists.
	CreateCollection(ctx context.Context, db, collection string) error
	ListCollections(ctx context.Context, db string) ([]string, error)
	DropCollection(ctx context.Context, db, collection string) error
}

type databaseService struct {
	repo repository.DocumentRepository
}

// NewDatabaseService constructs a new DatabaseService.
func NewDatabaseService(repo repository.DocumentRepository) DatabaseService {
	return &databaseService{repo: repo}
}

func (s *databaseService) CreateDatabase(ctx context.Context, db string) error {
	if err := checkNames(db); err != nil {
		return err
	}
	if err := s.repo.CreateDatabase(ctx, db); err != nil {
		return fmt.Errorf("create database %s: %w", db, translate(err))
	}
	return nil
}

func (s *databaseService) ListDatabases(ctx context.Context) ([]string, error) {
	names, err := s.repo.ListDatabases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return names, nil
}

func (s *databaseService) DropDatabase(ctx context.Context, db string) error {
	if err := checkNames(db); err != nil {
		return err
	}
	if err := s.repo.DropDatabase(ctx, db); err != nil {
		return fmt.Errorf("drop database %s: %w", db, err)
	}
	return nil
}

func (s *databaseService) CreateCollection(ctx context.Context, db, collection string) error {
	if err := checkNames(db, collection); err != nil {
		return err
	}
	if err := s.repo.CreateCollection(ctx, db, collection); err != nil {
		return fmt.Errorf("create collection %s.%s: %w", db, collection, translate(err))
	}
	return nil
}

func (s *databaseService) ListCollections(ctx context.Context, db string) ([]string, error) {
	if err := checkNames(db); err != nil {
		return nil, err
	}
	names, err := s.repo.ListCollections(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("list collections of %s: %w", db, err)
	}
	return names, nil
}

func (s *databaseService) DropCollection(ctx context.Context, db, collection string) error {
	if err := checkNames(db, collection); err != nil {
		return err
	}
	if err := s.repo.DropCollection(ctx, db, collection); err != nil {
		return fmt.Errorf("drop collection %s.%s: %w", db, collection, err)
	}
	return nil
}
