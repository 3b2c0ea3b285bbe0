package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"docgate/internal/storage"
)

// A leading dot is refused: backends treat dot-files as hidden.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// ValidateName reports whether s can be used as a database, collection or
// schema file name. Names become storage path segments.
func ValidateName(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidName, s)
	}
	return nil
}

// Key identifies one schema file.
type Key struct {
	Database   string
	Collection string
	Name       string
}

func (k Key) String() string {
	return collectionPrefix(k.Database, k.Collection) + "/" + k.Name
}

func collectionPrefix(db, collection string) string {
	return db + "/" + collection
}

// Entry is a parsed definition together with its compiled validator.
type Entry struct {
	Key        Key
	Definition *Definition
	Validator  *Validator
}

// Cache holds compiled schemas for the lifetime of its owner. Entries are
// only changed by Set, SetIfAbsent and Delete; there is no expiry.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*Entry)}
}

func (c *Cache) Get(k Key) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]
	return e, ok
}

func (c *Cache) Set(e *Entry) {
	c.mu.Lock()
	c.entries[e.Key] = e
	c.mu.Unlock()
}

// SetIfAbsent stores e unless its key is already cached and returns the
// entry the cache holds afterwards.
func (c *Cache) SetIfAbsent(e *Entry) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[e.Key]; ok {
		return cur
	}
	c.entries[e.Key] = e
	return e
}

func (c *Cache) Delete(k Key) {
	c.mu.Lock()
	delete(c.entries, k)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Store loads schema definitions from blob storage and keeps compiled copies in a Cache.
type Store struct {
	backend storage.Storage
	cache   *Cache
	logger  *zap.Logger
}

func NewStore(backend storage.Storage, cache *Cache, logger *zap.Logger) *Store {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, cache: cache, logger: logger}
}

// Load returns the schemas stored for (db, collection) in lexical file name
// order. No schemas yields an empty slice and no error.
//
// A file read on a cache miss only fills the cache when no entry exists yet.
// A Put that finished in the meantime keeps its entry.
func (s *Store) Load(ctx context.Context, db, collection string) ([]*Entry, error) {
	if err := validateNames(db, collection); err != nil {
		return nil, err
	}

	prefix := collectionPrefix(db, collection)
	objs, err := s.backend.List(ctx, prefix)
	if err != nil {
		return nil, &StorageError{Op: "list", Key: prefix, Err: err}
	}

	entries := make([]*Entry, 0, len(objs))
	for _, obj := range objs {
		key := Key{Database: db, Collection: collection, Name: path.Base(obj.Key)}
		if e, ok := s.cache.Get(key); ok {
			entries = append(entries, e)
			continue
		}

		raw, err := s.read(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted since List.
			continue
		}
		if err != nil {
			return nil, err
		}
		e, err := build(key, raw)
		if err != nil {
			return nil, err
		}
		e = s.cache.SetIfAbsent(e)
		s.logger.Debug("schema loaded", zap.String("schema", key.String()), zap.Int("fields", len(e.Definition.Fields)))
		entries = append(entries, e)
	}
	return entries, nil
}

// Put parses and compiles raw, persists it under (db, collection, name) and
// refreshes the cache entry. Content that does not parse or compile is
// rejected with a *ParseError before anything is written.
func (s *Store) Put(ctx context.Context, db, collection, name string, raw []byte) (*Entry, error) {
	if err := validateNames(db, collection, name); err != nil {
		return nil, err
	}
	key := Key{Database: db, Collection: collection, Name: name}
	e, err := build(key, raw)
	if err != nil {
		return nil, err
	}

	_, err = s.backend.Put(ctx, key.String(), bytes.NewReader(raw), storage.PutObjectOptions{
		Size:        int64(len(raw)),
		ContentType: "application/yaml",
	})
	if err != nil {
		return nil, &StorageError{Op: "put", Key: key.String(), Err: err}
	}
	s.cache.Set(e)
	s.logger.Info("schema stored", zap.String("schema", key.String()), zap.Int("fields", len(e.Definition.Fields)))
	return e, nil
}

// Delete removes one schema file and its cache entry.
func (s *Store) Delete(ctx context.Context, db, collection, name string) error {
	if err := validateNames(db, collection, name); err != nil {
		return err
	}
	key := Key{Database: db, Collection: collection, Name: name}
	s.cache.Delete(key)
	if err := s.backend.Delete(ctx, key.String()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return &StorageError{Op: "delete", Key: key.String(), Err: err}
	}
	s.logger.Info("schema deleted", zap.String("schema", key.String()))
	return nil
}

func (s *Store) read(ctx context.Context, key Key) ([]byte, error) {
	rc, _, err := s.backend.Get(ctx, key.String())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		return nil, &StorageError{Op: "get", Key: key.String(), Err: err}
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, &StorageError{Op: "read", Key: key.String(), Err: err}
	}
	return raw, nil
}

func build(key Key, raw []byte) (*Entry, error) {
	def, err := Parse(key.Name, raw)
	if err != nil {
		return nil, err
	}
	v, err := Compile(def)
	if err != nil {
		return nil, err
	}
	return &Entry{Key: key, Definition: def, Validator: v}, nil
}

func validateNames(names ...string) error {
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			return err
		}
	}
	return nil
}
