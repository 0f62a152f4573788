package docstore

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store. It honors the same index declarations
// as the SQL-backed store, so the missing-index fallback path is exercised
// for real in tests. Write failures can be injected per operation.
type MemoryStore struct {
	mu          sync.Mutex
	indexes     Indexes
	collections map[string][]*Document
	byID        map[uuid.UUID]*Document

	// Now is the store clock; swap it in tests that care about time.
	Now func() time.Time

	// Injected failures. Non-nil values fail the matching operation until
	// cleared.
	FailQueries error
	FailCreates error
	FailUpdates error
	FailDeletes error
}

func NewMemoryStore(indexes Indexes) *MemoryStore {
	return &MemoryStore{
		indexes:     indexes,
		collections: make(map[string][]*Document),
		byID:        make(map[uuid.UUID]*Document),
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailQueries != nil {
		return nil, s.FailQueries
	}
	if q.OrderBy != "" && !s.indexes.Allows(q.Collection, q.OrderBy) {
		return nil, ErrMissingIndex
	}

	var out []Document
	for _, d := range s.collections[q.Collection] {
		if q.OwnerID != uuid.Nil && d.OwnerID != q.OwnerID {
			continue
		}
		if !matchesFilters(d, q.Filters) {
			continue
		}
		out = append(out, copyDocument(d))
	}
	SortDocuments(out, q.OrderBy, q.Descending)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection string, id uuid.UUID) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	c := copyDocument(d)
	return &c, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, ownerID uuid.UUID, fields Fields) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreates != nil {
		return nil, s.FailCreates
	}
	now := s.Now()
	d := &Document{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
		Fields:    normalizeFields(fields, now),
	}
	s.collections[collection] = append(s.collections[collection], d)
	s.byID[d.ID] = d
	c := copyDocument(d)
	return &c, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection string, id uuid.UUID, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpdates != nil {
		return s.FailUpdates
	}
	d, ok := s.byID[id]
	if !ok {
		return ErrDocumentNotFound
	}
	now := s.Now()
	for k, v := range normalizeFields(fields, now) {
		d.Fields[k] = v
	}
	d.UpdatedAt = now
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDeletes != nil {
		return s.FailDeletes
	}
	d, ok := s.byID[id]
	if !ok {
		return ErrDocumentNotFound
	}
	delete(s.byID, id)
	docs := s.collections[collection]
	for i, existing := range docs {
		if existing == d {
			s.collections[collection] = append(docs[:i], docs[i+1:]...)
			break
		}
	}
	return nil
}

// ClearFailures resets all injected failures.
func (s *MemoryStore) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailQueries, s.FailCreates, s.FailUpdates, s.FailDeletes = nil, nil, nil, nil
}

func matchesFilters(d *Document, filters []Filter) bool {
	for _, f := range filters {
		if !reflect.DeepEqual(d.Fields[f.Field], jsonNormalize(f.Value)) {
			return false
		}
	}
	return true
}

// normalizeFields applies the server timestamp sentinel and forces every
// value through a JSON round trip, matching what the SQL store persists.
func normalizeFields(fields Fields, now time.Time) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if v == ServerTimestamp {
			out[k] = now.Format(time.RFC3339Nano)
			continue
		}
		out[k] = jsonNormalize(v)
	}
	return out
}

func jsonNormalize(v any) any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func copyDocument(d *Document) Document {
	fields := make(Fields, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	c := *d
	c.Fields = fields
	return c
}
