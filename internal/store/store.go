// Package store defines the keyed document persistence port the services
// are written against, plus the logical path layout. Backends live in the
// memory and sqlite subpackages; selection happens in internal/backend.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound reports a missing document on Get and Update.
var ErrNotFound = errors.New("document not found")

type (
	// Document is one stored record: the last path segment is its id,
	// everything before it names the collection.
	Document struct {
		ID   string
		Path string
		Data map[string]any
	}

	// Filter is an equality constraint on a top-level document field.
	Filter struct {
		Field string
		Value any
	}

	// Store is the document persistence port. Set upserts, optionally
	// merging with existing fields; Update requires the document to
	// exist; Add generates the id. Query applies equality filters and
	// an optional ascending order field.
	Store interface {
		Get(ctx context.Context, path string) (Document, error)
		Set(ctx context.Context, path string, data map[string]any, merge bool) error
		Update(ctx context.Context, path string, fields map[string]any) error
		Delete(ctx context.Context, path string) error
		Add(ctx context.Context, collection string, data map[string]any) (string, error)
		ListAll(ctx context.Context, collection string) ([]Document, error)
		Query(ctx context.Context, collection string, filters []Filter, orderBy string) ([]Document, error)
	}
)

// SplitPath separates a document path into its collection and id.
func SplitPath(path string) (collection, id string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}
