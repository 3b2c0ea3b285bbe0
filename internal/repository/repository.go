package repository

import "errors"

// Package repository contains data access layer abstractions.
// Engines live in subpackages (mongo, postgres) inside this directory.

var (
	// ErrNotFound is returned when no document matches an id.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned when an id is not in the engine's format.
	ErrInvalidID = errors.New("invalid document id")
	// ErrAlreadyExists is returned when creating a collection or document that already exists.
	ErrAlreadyExists = errors.New("already exists")
)
