package search

import "errors"

// Sentinel errors for search operations.
var (
	ErrIndex = errors.New("building search index")
	ErrQuery = errors.New("search query failed")
)
