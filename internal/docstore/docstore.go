package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrMissingIndex is returned by Query when the requested ordering has no
// backing index. Callers that can tolerate the degraded path should go
// through FetchOrdered instead of handling this directly.
var ErrMissingIndex = errors.New("docstore: ordered query has no backing index")

// ErrDocumentNotFound is returned by Get/Update/Delete for unknown ids.
var ErrDocumentNotFound = errors.New("docstore: document not found")

type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value replaced by the store's wall
// clock at write time.
var ServerTimestamp any = serverTimestamp{}

// Fields is the schemaless payload of a document.
type Fields map[string]any

// Document is one record in a collection. Every document is owned by
// exactly one user; most queries scope to that owner, shared collections
// (the social feed) query with a nil owner.
type Document struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Fields    Fields
}

type Filter struct {
	Field string
	Value any
}

type Query struct {
	Collection string
	OwnerID    uuid.UUID
	Filters    []Filter
	// OrderBy names a timestamp-ish field, or "created_at"/"updated_at"
	// for the document-level columns. Empty means unordered.
	OrderBy    string
	Descending bool
	Limit      int
}

// Store is the remote document store collaborator. Create assigns the id
// and timestamps; Update merges the given fields into the document.
type Store interface {
	Query(ctx context.Context, q Query) ([]Document, error)
	Get(ctx context.Context, collection string, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, collection string, ownerID uuid.UUID, fields Fields) (*Document, error)
	Update(ctx context.Context, collection string, id uuid.UUID, fields Fields) error
	Delete(ctx context.Context, collection string, id uuid.UUID) error
}

// Encode turns a payload struct into document fields via its json tags.
// Document-level keys are stripped so they cannot shadow the real columns.
func Encode(v any) (Fields, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document fields: %w", err)
	}
	var f Fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("encode document fields: %w", err)
	}
	delete(f, "id")
	delete(f, "owner_id")
	delete(f, "created_at")
	delete(f, "updated_at")
	return f, nil
}

// Decode fills a payload struct from a document, injecting the
// document-level columns under their json keys.
func Decode(d Document, v any) error {
	merged := make(map[string]any, len(d.Fields)+4)
	for k, val := range d.Fields {
		merged[k] = val
	}
	merged["id"] = d.ID.String()
	merged["owner_id"] = d.OwnerID.String()
	merged["created_at"] = d.CreatedAt.Format(time.RFC3339Nano)
	merged["updated_at"] = d.UpdatedAt.Format(time.RFC3339Nano)
	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// AsTime is the single normalization point for timestamp-valued fields.
// Field values round-trip through JSON, so a time may arrive as time.Time,
// an RFC3339 string, or a unix number depending on which side wrote it.
func AsTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
		return time.Time{}, false
	case float64:
		return unixTime(int64(t)), true
	case int64:
		return unixTime(t), true
	case int:
		return unixTime(int64(t)), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return unixTime(i), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Values past the year ~33k in seconds are treated as milliseconds.
func unixTime(v int64) time.Time {
	if v > 1_000_000_000_000 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}
