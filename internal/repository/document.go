package repository

import (
	"context"

	"docgate/internal/model"
)

// DocumentRepository is the persistence port of the gateway. Databases and
// collections are addressed by name; documents are schemaless. No business
// logic here: strictly persistence operations.
type DocumentRepository interface {
	// Ping checks connectivity with the engine.
	Ping(ctx context.Context) error

	// CreateDatabase makes a database addressable. Engines that create
	// databases lazily only validate the name.
	CreateDatabase(ctx context.Context, db string) error
	ListDatabases(ctx context.Context) ([]string, error)
	DropDatabase(ctx context.Context, db string) error

	// CreateCollection returns ErrAlreadyExists if the collection exists.
	CreateCollection(ctx context.Context, db, collection string) error
	ListCollections(ctx context.Context, db string) ([]string, error)
	DropCollection(ctx context.Context, db, collection string) error

	// Insert stores doc and returns the id assigned by the engine.
	Insert(ctx context.Context, db, collection string, doc model.Document) (string, error)

	// FindByID returns ErrNotFound if no document has the id.
	FindByID(ctx context.Context, db, collection, id string) (model.Document, error)

	// Find returns every document matching filter.
	Find(ctx context.Context, db, collection string, filter model.Filter) ([]model.Document, error)

	// Search returns at most pq.Limit documents matching filter, skipping the first pq.Offset.
	Search(ctx context.Context, db, collection string, filter model.Filter, pq PageQuery) ([]model.Document, error)

	// Update sets the given top-level fields. It returns ErrNotFound when no
	// document was modified.
	Update(ctx context.Context, db, collection, id string, fields model.Document) error

	// Delete returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, db, collection, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}
