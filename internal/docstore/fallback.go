package docstore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/aurevo/aurevo-server/internal/logger"
)

// fallbackLimitFloor is the minimum extra headroom the unordered retry adds
// to make up for losing server-side ordering.
const fallbackLimitFloor = 50

// FetchOrdered runs an ordered query, and on ErrMissingIndex only, retries
// the same filter unordered with a raised limit and sorts client-side.
// The two tiers must be indistinguishable to callers except for latency.
// The retry is sequential and happens at most once.
func FetchOrdered(ctx context.Context, s Store, log *logger.Logger, q Query) ([]Document, error) {
	docs, err := s.Query(ctx, q)
	if err == nil {
		return docs, nil
	}
	if !errors.Is(err, ErrMissingIndex) {
		return nil, err
	}
	if log != nil {
		log.Debug("Ordered query has no index, retrying unordered",
			"collection", q.Collection, "order_by", q.OrderBy)
	}

	fq := q
	fq.OrderBy = ""
	if q.Limit > 0 {
		fq.Limit = q.Limit * 2
		if fq.Limit < q.Limit+fallbackLimitFloor {
			fq.Limit = q.Limit + fallbackLimitFloor
		}
	}
	docs, err = s.Query(ctx, fq)
	if err != nil {
		return nil, err
	}
	SortDocuments(docs, q.OrderBy, q.Descending)
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

// SortDocuments stable-sorts documents by the named field. Timestamp values
// are normalized through AsTime; non-time values fall back to numeric, then
// lexical comparison.
func SortDocuments(docs []Document, field string, descending bool) {
	if field == "" {
		return
	}
	less := func(i, j int) bool {
		a, b := fieldValue(docs[i], field), fieldValue(docs[j], field)
		cmp := compareValues(a, b)
		if descending {
			return cmp > 0
		}
		return cmp < 0
	}
	sort.SliceStable(docs, less)
}

func fieldValue(d Document, field string) any {
	switch field {
	case "created_at":
		return d.CreatedAt
	case "updated_at":
		return d.UpdatedAt
	default:
		return d.Fields[field]
	}
}

func compareValues(a, b any) int {
	at, aok := AsTime(a)
	bt, bok := AsTime(b)
	if aok && bok {
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		default:
			return 0
		}
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(asString(a), asString(b))
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
