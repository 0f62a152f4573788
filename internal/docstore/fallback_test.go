package docstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
)

// recordingStore wraps a Store and records the queries it sees.
type recordingStore struct {
	Store
	queries []Query
}

func (r *recordingStore) Query(ctx context.Context, q Query) ([]Document, error) {
	r.queries = append(r.queries, q)
	return r.Store.Query(ctx, q)
}

func seedTimestamped(t *testing.T, s *MemoryStore, collection string, owner uuid.UUID, n int) {
	t.Helper()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	order := rand.New(rand.NewSource(42)).Perm(n)
	for _, i := range order {
		s.Now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := s.Create(context.Background(), collection, owner, Fields{
			"seq":       i,
			"timestamp": base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339Nano),
		})
		if err != nil {
			t.Fatalf("seed create: %v", err)
		}
	}
}

func TestFetchOrderedIndexedAndFallbackAgree(t *testing.T) {
	owner := uuid.New()
	const n = 20

	indexed := NewMemoryStore(Indexes{"logs": {"timestamp"}})
	unindexed := NewMemoryStore(Indexes{})
	seedTimestamped(t, indexed, "logs", owner, n)
	seedTimestamped(t, unindexed, "logs", owner, n)

	for _, descending := range []bool{false, true} {
		t.Run(fmt.Sprintf("descending=%v", descending), func(t *testing.T) {
			q := Query{Collection: "logs", OwnerID: owner, OrderBy: "timestamp", Descending: descending, Limit: 5}
			want, err := FetchOrdered(context.Background(), indexed, nil, q)
			if err != nil {
				t.Fatalf("indexed fetch: %v", err)
			}
			got, err := FetchOrdered(context.Background(), unindexed, nil, q)
			if err != nil {
				t.Fatalf("fallback fetch: %v", err)
			}
			if len(want) != 5 || len(got) != 5 {
				t.Fatalf("lengths: want=5/5 got=%d/%d", len(want), len(got))
			}
			for i := range want {
				if want[i].Fields["seq"] != got[i].Fields["seq"] {
					t.Fatalf("row %d: indexed seq=%v fallback seq=%v", i, want[i].Fields["seq"], got[i].Fields["seq"])
				}
			}
		})
	}
}

func TestFetchOrderedRaisesFallbackLimit(t *testing.T) {
	owner := uuid.New()
	inner := NewMemoryStore(Indexes{})
	seedTimestamped(t, inner, "logs", owner, 10)
	rec := &recordingStore{Store: inner}

	cases := []struct {
		limit     int
		wantRetry int
	}{
		{limit: 10, wantRetry: 60},   // limit+50 floor dominates
		{limit: 100, wantRetry: 200}, // doubling dominates
		{limit: 0, wantRetry: 0},     // unlimited stays unlimited
	}
	for _, tc := range cases {
		rec.queries = nil
		_, err := FetchOrdered(context.Background(), rec, nil, Query{
			Collection: "logs", OwnerID: owner, OrderBy: "timestamp", Limit: tc.limit,
		})
		if err != nil {
			t.Fatalf("fetch limit=%d: %v", tc.limit, err)
		}
		if len(rec.queries) != 2 {
			t.Fatalf("limit=%d queries: want=2 got=%d", tc.limit, len(rec.queries))
		}
		if rec.queries[1].OrderBy != "" {
			t.Fatalf("retry must be unordered, got order_by=%q", rec.queries[1].OrderBy)
		}
		if rec.queries[1].Limit != tc.wantRetry {
			t.Fatalf("limit=%d retry limit: want=%d got=%d", tc.limit, tc.wantRetry, rec.queries[1].Limit)
		}
	}
}

func TestFetchOrderedTruncatesToOriginalLimit(t *testing.T) {
	owner := uuid.New()
	s := NewMemoryStore(Indexes{})
	seedTimestamped(t, s, "logs", owner, 30)

	docs, err := FetchOrdered(context.Background(), s, nil, Query{
		Collection: "logs", OwnerID: owner, OrderBy: "timestamp", Descending: true, Limit: 3,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("docs: want=3 got=%d", len(docs))
	}
	if docs[0].Fields["seq"].(float64) != 29 {
		t.Fatalf("newest first: want seq=29 got=%v", docs[0].Fields["seq"])
	}
}

func TestFetchOrderedDoesNotRetryOtherErrors(t *testing.T) {
	inner := NewMemoryStore(Indexes{})
	boom := errors.New("connection reset")
	inner.FailQueries = boom
	rec := &recordingStore{Store: inner}

	_, err := FetchOrdered(context.Background(), rec, nil, Query{
		Collection: "logs", OrderBy: "timestamp", Limit: 5,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want underlying error, got=%v", err)
	}
	if len(rec.queries) != 1 {
		t.Fatalf("no retry expected: want=1 query got=%d", len(rec.queries))
	}
}

func TestSortDocumentsStableOnEqualKeys(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	docs := []Document{
		{Fields: Fields{"timestamp": ts, "tag": "first"}},
		{Fields: Fields{"timestamp": ts, "tag": "second"}},
		{Fields: Fields{"timestamp": ts, "tag": "third"}},
	}
	SortDocuments(docs, "timestamp", true)
	for i, want := range []string{"first", "second", "third"} {
		if docs[i].Fields["tag"] != want {
			t.Fatalf("stability broken at %d: want=%s got=%v", i, want, docs[i].Fields["tag"])
		}
	}
}
