package model

// Package model contains domain models/data structures shared by the
// persistence, service and HTTP layers. No business logic here.

// Pagination describes the window a search was evaluated over.
type Pagination struct {
	Skip          int `json:"skip"`
	Size          int `json:"size"`
	ReturnedCount int `json:"returned_count"`
}

// SearchResult is one page of documents.
type SearchResult struct {
	Results    []Document `json:"results"`
	Pagination Pagination `json:"pagination"`
}
