package service

import (
	"context"
	"errors"
	"fmt"

	"docgate/internal/schema"
)

var (
	ErrNoSchemaFiles = errors.New("at least one schema file is required")
	ErrNoSchemas     = errors.New("no schemas found for this database and collection")
)

// SchemaFile is an uploaded schema definition.
type SchemaFile struct {
	Name    string
	Content []byte
}

// SchemaService manages the schema files attached to a collection.
type SchemaService interface {
	// Upload stores every file. All files are checked before any is written,
	// so a malformed file leaves existing schemas untouched.
	Upload(ctx context.Context, db, collection string, files []SchemaFile) ([]string, error)

	// Get returns the definitions of a collection keyed by file name.
	// It returns ErrNoSchemas when the collection has none.
	Get(ctx context.Context, db, collection string) (map[string]map[string]any, error)

	// Delete removes one schema file.
	Delete(ctx context.Context, db, collection, name string) error
}

// SchemaStore is the persistence the schema service works against.
type SchemaStore interface {
	Load(ctx context.Context, db, collection string) ([]*schema.Entry, error)
	Put(ctx context.Context, db, collection, name string, raw []byte) (*schema.Entry, error)
	Delete(ctx context.Context, db, collection, name string) error
}

var _ SchemaStore = (*schema.Store)(nil)

type schemaService struct {
	store SchemaStore
}

// NewSchemaService constructs a new SchemaService.
func NewSchemaService(store SchemaStore) SchemaService {
	return &schemaService{store: store}
}

func (s *schemaService) Upload(ctx context.Context, db, collection string, files []SchemaFile) ([]string, error) {
	if err := checkNames(db, collection); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSchemaFiles
	}
	for _, f := range files {
		if err := schema.ValidateName(f.Name); err != nil {
			return nil, err
		}
		def, err := schema.Parse(f.Name, f.Content)
		if err != nil {
			return nil, err
		}
		if _, err := schema.Compile(def); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := s.store.Put(ctx, db, collection, f.Name, f.Content); err != nil {
			return names, fmt.Errorf("store schema %s: %w", f.Name, err)
		}
		names = append(names, f.Name)
	}
	return names, nil
}

func (s *schemaService) Get(ctx context.Context, db, collection string) (map[string]map[string]any, error) {
	entries, err := s.store.Load(ctx, db, collection)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoSchemas
	}
	out := make(map[string]map[string]any, len(entries))
	for _, e := range entries {
		out[e.Key.Name] = e.Definition.Raw
	}
	return out, nil
}

func (s *schemaService) Delete(ctx context.Context, db, collection, name string) error {
	return s.store.Delete(ctx, db, collection, name)
}
