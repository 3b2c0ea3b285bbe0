package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"docgate/internal/model"
	"docgate/internal/repository"
)

// SQLSTATE codes the engine reacts to.
const (
	codeDuplicateTable  = "42P07"
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// A database maps to a schema and a collection to a table holding one JSONB
// document per row. Tables are created on first insert, mirroring the lazy
// collections of document stores.
type DocumentPostgres struct {
	db *sql.DB

	// ensured remembers tables known to exist, keyed by qualified name.
	ensured sync.Map
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

func (r *DocumentPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *DocumentPostgres) CreateDatabase(ctx context.Context, db string) error {
	q := `CREATE SCHEMA IF NOT EXISTS ` + pgx.Identifier{db}.Sanitize()
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// ListDatabases returns non-system schemas sorted by name.
func (r *DocumentPostgres) ListDatabases(ctx context.Context) ([]string, error) {
	const q = `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT LIKE 'pg\_%' AND schema_name <> 'information_schema'
		ORDER BY schema_name
	`
	return r.queryNames(ctx, q)
}

func (r *DocumentPostgres) DropDatabase(ctx context.Context, db string) error {
	q := `DROP SCHEMA IF EXISTS ` + pgx.Identifier{db}.Sanitize() + ` CASCADE`
	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return err
	}
	prefix := pgx.Identifier{db}.Sanitize() + "."
	r.ensured.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			r.ensured.Delete(k)
		}
		return true
	})
	return nil
}

// CreateCollection creates the schema if needed and then the table.
// It returns repository.ErrAlreadyExists if the table exists.
func (r *DocumentPostgres) CreateCollection(ctx context.Context, db, collection string) error {
	if err := r.CreateDatabase(ctx, db); err != nil {
		return err
	}
	if err := r.runDDL(ctx, collectionDDL(db, collection, false)); err != nil {
		if hasCode(err, codeDuplicateTable) {
			return fmt.Errorf("collection %s.%s: %w", db, collection, repository.ErrAlreadyExists)
		}
		return err
	}
	r.ensured.Store(pgx.Identifier{db, collection}.Sanitize(), struct{}{})
	return nil
}

func (r *DocumentPostgres) ListCollections(ctx context.Context, db string) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		ORDER BY table_name
	`
	return r.queryNames(ctx, q, db)
}

func (r *DocumentPostgres) DropCollection(ctx context.Context, db, collection string) error {
	table := pgx.Identifier{db, collection}.Sanitize()
	if _, err := r.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
		return err
	}
	r.ensured.Delete(table)
	return nil
}

// Insert stores doc under a new UUID. A caller supplied _id is ignored.
func (r *DocumentPostgres) Insert(ctx context.Context, db, collection string, doc model.Document) (string, error) {
	table, err := r.ensureCollection(ctx, db, collection)
	if err != nil {
		return "", err
	}
	body, err := encode(doc)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	q := `INSERT INTO ` + table + ` (id, doc) VALUES ($1, $2)`
	if _, err := r.db.ExecContext(ctx, q, id, string(body)); err != nil {
		if hasCode(err, codeUniqueViolation) {
			return "", fmt.Errorf("insert into %s.%s: %w", db, collection, repository.ErrAlreadyExists)
		}
		return "", err
	}
	return id, nil
}

func (r *DocumentPostgres) FindByID(ctx context.Context, db, collection, id string) (model.Document, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	q := `SELECT id, doc FROM ` + pgx.Identifier{db, collection}.Sanitize() + ` WHERE id = $1`
	var (
		gotID string
		body  []byte
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&gotID, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) || hasCode(err, codeUndefinedTable) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return decode(gotID, body)
}

func (r *DocumentPostgres) Find(ctx context.Context, db, collection string, filter model.Filter) ([]model.Document, error) {
	q, args, err := selectSQL(pgx.Identifier{db, collection}.Sanitize(), filter)
	if err != nil {
		return nil, err
	}
	return r.queryDocuments(ctx, q, args...)
}

func (r *DocumentPostgres) Search(ctx context.Context, db, collection string, filter model.Filter, pq repository.PageQuery) ([]model.Document, error) {
	q, args, err := selectSQL(pgx.Identifier{db, collection}.Sanitize(), filter)
	if err != nil {
		return nil, err
	}
	q += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, pq.Limit, pq.Offset)
	return r.queryDocuments(ctx, q, args...)
}

// Update merges fields into the stored document.
func (r *DocumentPostgres) Update(ctx context.Context, db, collection, id string, fields model.Document) error {
	if err := checkID(id); err != nil {
		return err
	}
	patch := fields.Clone()
	delete(patch, model.IDField)
	if len(patch) == 0 {
		return repository.ErrNotFound
	}
	body, err := encode(patch)
	if err != nil {
		return err
	}

	q := `UPDATE ` + pgx.Identifier{db, collection}.Sanitize() + ` SET doc = doc || $2::jsonb WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, string(body))
	if err != nil {
		if hasCode(err, codeUndefinedTable) {
			return repository.ErrNotFound
		}
		return err
	}
	return expectAffected(res)
}

func (r *DocumentPostgres) Delete(ctx context.Context, db, collection, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	q := `DELETE FROM ` + pgx.Identifier{db, collection}.Sanitize() + ` WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		if hasCode(err, codeUndefinedTable) {
			return repository.ErrNotFound
		}
		return err
	}
	return expectAffected(res)
}

func (r *DocumentPostgres) ensureCollection(ctx context.Context, db, collection string) (string, error) {
	table := pgx.Identifier{db, collection}.Sanitize()
	if _, ok := r.ensured.Load(table); ok {
		return table, nil
	}
	if err := r.CreateDatabase(ctx, db); err != nil {
		return "", err
	}
	if err := r.runDDL(ctx, collectionDDL(db, collection, true)); err != nil {
		return "", err
	}
	r.ensured.Store(table, struct{}{})
	return table, nil
}

func (r *DocumentPostgres) queryNames(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// queryDocuments treats a missing table as an empty collection.
func (r *DocumentPostgres) queryDocuments(ctx context.Context, q string, args ...any) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		if hasCode(err, codeUndefinedTable) {
			return []model.Document{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		doc, err := decode(id, body)
		if err != nil {
			return nil, err
		}
		items = append(items, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *DocumentPostgres) runDDL(ctx context.Context, steps []ddlStep) error {
	for _, step := range steps {
		if _, err := r.db.ExecContext(ctx, step.SQL); err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}
	return nil
}

type ddlStep struct {
	Name string
	SQL  string
}

// collectionDDL returns the statements backing one collection: the document
// table and a GIN index serving containment filters.
func collectionDDL(db, collection string, ifNotExists bool) []ddlStep {
	clause := ""
	if ifNotExists {
		clause = "IF NOT EXISTS "
	}
	table := pgx.Identifier{db, collection}.Sanitize()
	index := pgx.Identifier{docIndexName(collection)}.Sanitize()
	return []ddlStep{
		{
			Name: "create_table",
			SQL: `CREATE TABLE ` + clause + table + ` (
  id         UUID        PRIMARY KEY,
  doc        JSONB       NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		},
		{
			Name: "create_index_doc",
			SQL:  `CREATE INDEX IF NOT EXISTS ` + index + ` ON ` + table + ` USING GIN (doc jsonb_path_ops)`,
		},
	}
}

// docIndexName names the GIN index of a collection table. Indexes share the
// schema namespace with tables; the '$' never occurs in a collection name and
// the hash keeps the name under the 63 byte identifier limit.
func docIndexName(collection string) string {
	sum := sha256.Sum256([]byte(collection))
	return "doc_idx$" + hex.EncodeToString(sum[:8])
}

// selectSQL builds a containment query. An _id entry in the filter is matched
// against the id column; every other entry must be contained in doc.
func selectSQL(table string, filter model.Filter) (string, []any, error) {
	rest := make(map[string]any, len(filter))
	var args []any
	var where []string
	for k, v := range filter {
		if k != model.IDField {
			rest[k] = v
			continue
		}
		s, ok := v.(string)
		if !ok {
			return "", nil, fmt.Errorf("%w: %v", repository.ErrInvalidID, v)
		}
		if err := checkID(s); err != nil {
			return "", nil, err
		}
		args = append(args, s)
		where = append(where, fmt.Sprintf("id = $%d", len(args)))
	}
	if len(rest) > 0 {
		body, err := json.Marshal(rest)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter: %w", err)
		}
		args = append(args, string(body))
		where = append(where, fmt.Sprintf("doc @> $%d::jsonb", len(args)))
	}

	q := `SELECT id, doc FROM ` + table
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at, id`
	return q, args, nil
}

func encode(doc model.Document) ([]byte, error) {
	clean := doc.Clone()
	delete(clean, model.IDField)
	body, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return body, nil
}

func decode(id string, body []byte) (model.Document, error) {
	doc := model.Document{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc[model.IDField] = id
	return doc, nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
