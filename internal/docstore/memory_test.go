package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStoreCreateAssignsIDAndTimestamps(t *testing.T) {
	s := NewMemoryStore(Indexes{})
	owner := uuid.New()

	doc, err := s.Create(context.Background(), "tasks", owner, Fields{"title": "read"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if doc.OwnerID != owner {
		t.Fatalf("owner: want=%s got=%s", owner, doc.OwnerID)
	}
	if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
	if doc.Fields["title"] != "read" {
		t.Fatalf("title: want=read got=%v", doc.Fields["title"])
	}
}

func TestMemoryStoreServerTimestampSentinel(t *testing.T) {
	s := NewMemoryStore(Indexes{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }

	doc, err := s.Create(context.Background(), "mood_logs", uuid.New(), Fields{
		"timestamp": ServerTimestamp,
		"mood":      4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, ok := AsTime(doc.Fields["timestamp"])
	if !ok {
		t.Fatalf("timestamp not parseable: %v", doc.Fields["timestamp"])
	}
	if !got.Equal(now) {
		t.Fatalf("timestamp: want=%s got=%s", now, got)
	}
}

func TestMemoryStoreOrderedQueryRequiresIndex(t *testing.T) {
	s := NewMemoryStore(Indexes{"tasks": {"created_at"}})
	owner := uuid.New()
	if _, err := s.Create(context.Background(), "tasks", owner, Fields{"title": "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := s.Query(context.Background(), Query{Collection: "tasks", OwnerID: owner, OrderBy: "created_at"}); err != nil {
		t.Fatalf("indexed ordering should succeed: %v", err)
	}
	_, err := s.Query(context.Background(), Query{Collection: "tasks", OwnerID: owner, OrderBy: "due_at"})
	if !errors.Is(err, ErrMissingIndex) {
		t.Fatalf("want ErrMissingIndex got=%v", err)
	}
}

func TestMemoryStoreQueryScopesToOwnerAndFilters(t *testing.T) {
	s := NewMemoryStore(Indexes{})
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	if _, err := s.Create(ctx, "wellness_days", alice, Fields{"day": "2026-03-01"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "wellness_days", alice, Fields{"day": "2026-03-02"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "wellness_days", bob, Fields{"day": "2026-03-01"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	docs, err := s.Query(ctx, Query{
		Collection: "wellness_days",
		OwnerID:    alice,
		Filters:    []Filter{{Field: "day", Value: "2026-03-01"}},
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("docs: want=1 got=%d", len(docs))
	}
	if docs[0].OwnerID != alice {
		t.Fatalf("owner scoping leaked another user's document")
	}
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	s := NewMemoryStore(Indexes{})
	ctx := context.Background()
	doc, err := s.Create(ctx, "tasks", uuid.New(), Fields{"title": "a", "done": false})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Update(ctx, "tasks", doc.ID, Fields{"done": true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Get(ctx, "tasks", doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Fields["title"] != "a" {
		t.Fatalf("update dropped untouched field: %v", got.Fields)
	}
	if got.Fields["done"] != true {
		t.Fatalf("done: want=true got=%v", got.Fields["done"])
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(Indexes{})
	ctx := context.Background()
	doc, err := s.Create(ctx, "tasks", uuid.New(), Fields{"title": "a"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, "tasks", doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "tasks", doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("want ErrDocumentNotFound got=%v", err)
	}
	if err := s.Delete(ctx, "tasks", doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("double delete: want ErrDocumentNotFound got=%v", err)
	}
}

func TestMemoryStoreInjectedFailures(t *testing.T) {
	s := NewMemoryStore(Indexes{})
	ctx := context.Background()
	boom := errors.New("boom")

	s.FailCreates = boom
	if _, err := s.Create(ctx, "tasks", uuid.New(), Fields{}); !errors.Is(err, boom) {
		t.Fatalf("want injected create failure, got=%v", err)
	}
	s.ClearFailures()
	if _, err := s.Create(ctx, "tasks", uuid.New(), Fields{}); err != nil {
		t.Fatalf("create after clear: %v", err)
	}
}

func TestEncodeStripsDocumentColumns(t *testing.T) {
	type payload struct {
		ID        string    `json:"id"`
		OwnerID   string    `json:"owner_id"`
		Title     string    `json:"title"`
		CreatedAt time.Time `json:"created_at"`
	}
	fields, err := Encode(payload{ID: "x", OwnerID: "y", Title: "keep"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, k := range []string{"id", "owner_id", "created_at", "updated_at"} {
		if _, ok := fields[k]; ok {
			t.Fatalf("document column %q leaked into fields", k)
		}
	}
	if fields["title"] != "keep" {
		t.Fatalf("title: want=keep got=%v", fields["title"])
	}
}

func TestDecodeInjectsDocumentColumns(t *testing.T) {
	type payload struct {
		ID        uuid.UUID `json:"id"`
		OwnerID   uuid.UUID `json:"owner_id"`
		Title     string    `json:"title"`
		CreatedAt time.Time `json:"created_at"`
	}
	id, owner := uuid.New(), uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var out payload
	err := Decode(Document{
		ID:        id,
		OwnerID:   owner,
		CreatedAt: created,
		UpdatedAt: created,
		Fields:    Fields{"title": "t"},
	}, &out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID != id || out.OwnerID != owner {
		t.Fatalf("decode did not inject ids: %+v", out)
	}
	if !out.CreatedAt.Equal(created) {
		t.Fatalf("created_at: want=%s got=%s", created, out.CreatedAt)
	}
}

func TestAsTimeNormalizesRepresentations(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   any
	}{
		{"time.Time", want},
		{"rfc3339", want.Format(time.RFC3339Nano)},
		{"unix seconds", float64(want.Unix())},
		{"unix millis", float64(want.UnixMilli())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := AsTime(tc.in)
			if !ok {
				t.Fatalf("AsTime(%v) not ok", tc.in)
			}
			if !got.Equal(want) {
				t.Fatalf("want=%s got=%s", want, got)
			}
		})
	}
	if _, ok := AsTime("not a time"); ok {
		t.Fatalf("expected failure for garbage input")
	}
	if _, ok := AsTime(nil); ok {
		t.Fatalf("expected failure for nil")
	}
}
