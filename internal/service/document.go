package service

import (
	"context"
	"errors"
	"fmt"

	"docgate/internal/model"
	"docgate/internal/repository"
	"docgate/internal/schema"
)

const defaultSearchSize = 10

var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("document not found")
	ErrNotModified       = errors.New("no document updated")
	ErrInvalidID         = errors.New("invalid document id")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidPagination = errors.New("skip must not be negative")
	ErrEmptyDocument     = errors.New("document is empty")
)

// Validator is the validation gateway consulted before documents are inserted.
type Validator interface {
	Validate(ctx context.Context, db, collection string, doc model.Document) (model.Document, error)
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Add validates doc when validation is enabled and inserts it. It returns the new id.
	Add(ctx context.Context, db, collection string, doc model.Document) (string, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, db, collection, id string) (model.Document, error)

	// List returns every document matching filter.
	List(ctx context.Context, db, collection string, filter model.Filter) ([]model.Document, error)

	// Search returns one page of documents matching filter. size <= 0 uses the default page size.
	Search(ctx context.Context, db, collection string, filter model.Filter, skip, size int) (*model.SearchResult, error)

	// Update sets the given fields. Updates are not validated.
	Update(ctx context.Context, db, collection, id string, fields model.Document) error

	// Delete removes a document by ID.
	Delete(ctx context.Context, db, collection, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	repo      repository.DocumentRepository
	validator Validator
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(repo repository.DocumentRepository, validator Validator) DocumentService {
	return &documentService{repo: repo, validator: validator}
}

func (s *documentService) Add(ctx context.Context, db, collection string, doc model.Document) (string, error) {
	if err := checkNames(db, collection); err != nil {
		return "", err
	}
	if doc == nil {
		doc = model.Document{}
	}
	if s.validator != nil {
		validated, err := s.validator.Validate(ctx, db, collection, doc)
		if err != nil {
			return "", err
		}
		doc = validated
	}

	id, err := s.repo.Insert(ctx, db, collection, doc)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", translate(err))
	}
	return id, nil
}

func (s *documentService) Get(ctx context.Context, db, collection, id string) (model.Document, error) {
	if err := checkNames(db, collection); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, db, collection, id)
	if err != nil {
		return nil, translate(err)
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, db, collection string, filter model.Filter) ([]model.Document, error) {
	if err := checkNames(db, collection); err != nil {
		return nil, err
	}
	docs, err := s.repo.Find(ctx, db, collection, filter)
	if err != nil {
		return nil, translate(err)
	}
	return docs, nil
}

func (s *documentService) Search(ctx context.Context, db, collection string, filter model.Filter, skip, size int) (*model.SearchResult, error) {
	if err := checkNames(db, collection); err != nil {
		return nil, err
	}
	if skip < 0 {
		return nil, ErrInvalidPagination
	}
	if size <= 0 {
		size = defaultSearchSize
	}

	docs, err := s.repo.Search(ctx, db, collection, filter, repository.PageQuery{Limit: size, Offset: skip})
	if err != nil {
		return nil, translate(err)
	}
	return &model.SearchResult{
		Results: docs,
		Pagination: model.Pagination{
			Skip:          skip,
			Size:          size,
			ReturnedCount: len(docs),
		},
	}, nil
}

func (s *documentService) Update(ctx context.Context, db, collection, id string, fields model.Document) error {
	if err := checkNames(db, collection); err != nil {
		return err
	}
	if id == "" {
		return ErrIDRequired
	}
	if len(fields) == 0 {
		return ErrEmptyDocument
	}
	err := s.repo.Update(ctx, db, collection, id, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotModified
	}
	return translate(err)
}

func (s *documentService) Delete(ctx context.Context, db, collection, id string) error {
	if err := checkNames(db, collection); err != nil {
		return err
	}
	if id == "" {
		return ErrIDRequired
	}
	return translate(s.repo.Delete(ctx, db, collection, id))
}

// translate maps repository errors onto service errors, keeping the original for logs.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidID):
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	case errors.Is(err, repository.ErrAlreadyExists):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	}
	return err
}

func checkNames(names ...string) error {
	for _, n := range names {
		if err := schema.ValidateName(n); err != nil {
			return err
		}
	}
	return nil
}
