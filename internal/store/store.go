// Package store is the document store adapter used by every resource.
//
// Documents are flat maps keyed by field name. The identifier lives under IDField as a
// hex string; CreatedAtField and UpdatedAtField hold time.Time values set by the store.
package store

import (
	"context"
	"errors"
	"time"
)

const (
	IDField        = "_id"
	CreatedAtField = "createdAt"
	UpdatedAtField = "updatedAt"
)

var (
	// ErrNotFound is returned when an identifier does not resolve.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// Document is a single stored record.
type Document map[string]any

// ID returns the document identifier, or "" when unset.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// CreatedAt returns the creation timestamp.
func (d Document) CreatedAt() time.Time {
	t, _ := d[CreatedAtField].(time.Time)
	return t
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Query selects documents for Find. Results are always ordered by createdAt
// descending, then by identifier descending.
type Query struct {
	// Equals holds exact-match conditions.
	Equals map[string]any
	// Search is matched case-insensitively as a substring against SearchFields.
	Search       string
	SearchFields []string
	Skip         int64
	// Limit of zero means no limit.
	Limit int64
}

// Store persists documents grouped in named collections.
type Store interface {
	FindByID(ctx context.Context, collection, id string) (Document, error)
	FindOne(ctx context.Context, collection string, filter map[string]any) (Document, error)
	// Find returns the selected page and the total number of matches.
	Find(ctx context.Context, collection string, q Query) ([]Document, int64, error)
	Insert(ctx context.Context, collection string, doc Document) (Document, error)
	Update(ctx context.Context, collection, id string, set Document, unset []string) (Document, error)
	Delete(ctx context.Context, collection, id string) error
}
