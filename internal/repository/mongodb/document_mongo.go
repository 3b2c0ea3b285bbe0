package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"docgate/internal/model"
	"docgate/internal/repository"
)

// codeNamespaceExists is the server error returned by create on an existing collection.
const codeNamespaceExists = 48

// DocumentMongo is a MongoDB implementation of repository.DocumentRepository.
// Databases are created lazily by the server; ids are ObjectIDs exposed as hex strings.
type DocumentMongo struct {
	client *mongo.Client
}

// NewDocumentMongo creates a new DocumentMongo repository.
func NewDocumentMongo(client *mongo.Client) *DocumentMongo {
	return &DocumentMongo{client: client}
}

var _ repository.DocumentRepository = (*DocumentMongo)(nil)

func (r *DocumentMongo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// CreateDatabase is a no-op: MongoDB materialises a database on first write.
func (r *DocumentMongo) CreateDatabase(ctx context.Context, db string) error {
	return nil
}

func (r *DocumentMongo) ListDatabases(ctx context.Context) ([]string, error) {
	return r.client.ListDatabaseNames(ctx, bson.D{})
}

func (r *DocumentMongo) DropDatabase(ctx context.Context, db string) error {
	return r.client.Database(db).Drop(ctx)
}

func (r *DocumentMongo) CreateCollection(ctx context.Context, db, collection string) error {
	err := r.client.Database(db).CreateCollection(ctx, collection)
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == codeNamespaceExists {
		return fmt.Errorf("collection %s.%s: %w", db, collection, repository.ErrAlreadyExists)
	}
	return err
}

func (r *DocumentMongo) ListCollections(ctx context.Context, db string) ([]string, error) {
	return r.client.Database(db).ListCollectionNames(ctx, bson.D{})
}

func (r *DocumentMongo) DropCollection(ctx context.Context, db, collection string) error {
	return r.client.Database(db).Collection(collection).Drop(ctx)
}

// Insert stores doc under a server-side ObjectID. A caller supplied _id is ignored.
func (r *DocumentMongo) Insert(ctx context.Context, db, collection string, doc model.Document) (string, error) {
	in := bson.M{}
	for k, v := range doc {
		if k == model.IDField {
			continue
		}
		in[k] = toBSON(v)
	}
	in[model.IDField] = primitive.NewObjectID()

	res, err := r.client.Database(db).Collection(collection).InsertOne(ctx, in)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("insert into %s.%s: %w", db, collection, repository.ErrAlreadyExists)
		}
		return "", err
	}
	return idString(res.InsertedID), nil
}

func (r *DocumentMongo) FindByID(ctx context.Context, db, collection, id string) (model.Document, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var raw bson.M
	err = r.client.Database(db).Collection(collection).FindOne(ctx, bson.M{model.IDField: oid}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return toDocument(raw), nil
}

func (r *DocumentMongo) Find(ctx context.Context, db, collection string, filter model.Filter) ([]model.Document, error) {
	return r.find(ctx, db, collection, filter, options.Find())
}

func (r *DocumentMongo) Search(ctx context.Context, db, collection string, filter model.Filter, pq repository.PageQuery) ([]model.Document, error) {
	opts := options.Find().SetSkip(int64(pq.Offset)).SetLimit(int64(pq.Limit))
	return r.find(ctx, db, collection, filter, opts)
}

func (r *DocumentMongo) find(ctx context.Context, db, collection string, filter model.Filter, opts *options.FindOptions) ([]model.Document, error) {
	query, err := toQuery(filter)
	if err != nil {
		return nil, err
	}
	cur, err := r.client.Database(db).Collection(collection).Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, err
	}
	out := make([]model.Document, 0, len(raws))
	for _, raw := range raws {
		out = append(out, toDocument(raw))
	}
	return out, nil
}

// Update applies fields with $set. Like the server, it reports ErrNotFound
// when nothing was modified, including when the values were already equal.
func (r *DocumentMongo) Update(ctx context.Context, db, collection, id string, fields model.Document) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	set := bson.M{}
	for k, v := range fields {
		if k == model.IDField {
			continue
		}
		set[k] = toBSON(v)
	}
	if len(set) == 0 {
		return repository.ErrNotFound
	}
	res, err := r.client.Database(db).Collection(collection).UpdateOne(ctx, bson.M{model.IDField: oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DocumentMongo) Delete(ctx context.Context, db, collection, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.client.Database(db).Collection(collection).DeleteOne(ctx, bson.M{model.IDField: oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return oid, nil
}

// toQuery converts a filter to a query document. A string _id is matched as an ObjectID.
func toQuery(filter model.Filter) (bson.M, error) {
	q := bson.M{}
	for k, v := range filter {
		if s, ok := v.(string); ok && k == model.IDField {
			oid, err := parseID(s)
			if err != nil {
				return nil, err
			}
			q[k] = oid
			continue
		}
		q[k] = toBSON(v)
	}
	return q, nil
}

func idString(v any) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}

func toDocument(raw bson.M) model.Document {
	doc := make(model.Document, len(raw))
	for k, v := range raw {
		doc[k] = normalize(v)
	}
	if id, ok := raw[model.IDField]; ok {
		doc[model.IDField] = idString(id)
	}
	return doc
}

// toBSON converts decoded request values into BSON-friendly ones. A
// json.Number becomes an int64 when it fits, a Decimal128 when it is an
// integer that does not, and a float64 otherwise.
func toBSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if !strings.ContainsAny(t.String(), ".eE") {
			if d, err := primitive.ParseDecimal128(t.String()); err == nil {
				return d
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = toBSON(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = toBSON(val)
		}
		return s
	}
	return v
}

// normalize converts BSON specific values into JSON-shaped Go values.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.A:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = normalize(val)
		}
		return s
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Decimal128:
		s := t.String()
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return json.Number(s)
		}
		return s
	case int32:
		return int64(t)
	}
	return v
}
