package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a lookup requires at least one schema and none exist.
	ErrNotFound = errors.New("schema not found")
	// ErrInvalidName is returned for database, collection or schema names that cannot be used as path segments.
	ErrInvalidName = errors.New("invalid name")
)

// ParseError reports schema content that is not a valid schema definition.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid schema format in %q: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FieldError names a document field and the rule it broke.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every field of a document that failed its schema.
type ValidationError struct {
	Schema string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return fmt.Sprintf("document does not match schema %q: %s", e.Schema, strings.Join(parts, "; "))
}

// StorageError wraps a failure of the durable schema storage.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("schema storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
