// Package docstore is the document query capability the portal reads student
// records through: keyed documents grouped in collections, fetched by id or
// by simple field filters.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidFilter    = errors.New("invalid filter")
)

// Op is a filter comparison operator.
type Op string

const (
	OpEqual          Op = "=="
	OpNotEqual       Op = "!="
	OpLess           Op = "<"
	OpLessOrEqual    Op = "<="
	OpGreater        Op = ">"
	OpGreaterOrEqual Op = ">="
)

func (o Op) valid() bool {
	switch o {
	case OpEqual, OpNotEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		return true
	}
	return false
}

// Filter restricts a query to documents whose Field compares to Value with Op.
// Field may address nested objects with dots ("profile.gender").
type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

// Where builds a filter.
func Where(field string, op Op, value interface{}) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

func (f Filter) validate() error {
	if strings.TrimSpace(f.Field) == "" {
		return fmt.Errorf("%w: empty field", ErrInvalidFilter)
	}
	if !f.Op.valid() {
		return fmt.Errorf("%w: unsupported operator %q", ErrInvalidFilter, f.Op)
	}
	switch f.Value.(type) {
	case string, bool, int, int32, int64, float32, float64:
	default:
		return fmt.Errorf("%w: unsupported value type %T", ErrInvalidFilter, f.Value)
	}
	return nil
}

func (f Filter) path() []string {
	return strings.Split(f.Field, ".")
}

// Document is one stored record.
type Document struct {
	Collection string                 `json:"collection"`
	ID         string                 `json:"id"`
	Data       map[string]interface{} `json:"data"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v interface{}) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", d.Collection, d.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode document %s/%s: %w", d.Collection, d.ID, err)
	}
	return nil
}

// Encode converts a struct into a document body using its json tags.
func Encode(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	data := map[string]interface{}{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	return data, nil
}

// Store is implemented by PostgresStore and MemoryStore.
type Store interface {
	// GetDocument returns ErrDocumentNotFound when the id is absent.
	GetDocument(ctx context.Context, collection, id string) (*Document, error)
	// QueryDocuments returns every document matching all filters, ordered by id.
	QueryDocuments(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	// SetDocument creates or replaces a document. With merge, top-level fields
	// of data overwrite the stored ones and the rest are kept.
	SetDocument(ctx context.Context, collection, id string, data map[string]interface{}, merge bool) error
	// ListDocuments pages through a collection in creation order.
	ListDocuments(ctx context.Context, collection string, offset uint64, limit int) ([]Document, int64, error)
	// CountDocuments returns the number of documents in a collection.
	CountDocuments(ctx context.Context, collection string) (int64, error)
}
