package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Document is one persisted entity document, keyed by (collection, id).
type Document = map[string]any

// MaxBatchSize is the backend's batched-write ceiling per request.
const MaxBatchSize = 500

var (
	ErrNotFound  = errors.New("document not found")
	ErrConflict  = errors.New("document write conflict")
	ErrTransient = errors.New("transient store failure")
)

type Op string

const (
	OpEqual     Op = "=="
	OpNotEqual  Op = "!="
	OpLess      Op = "<"
	OpLessEq    Op = "<="
	OpGreater   Op = ">"
	OpGreaterEq Op = ">="
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// Entry pairs a document with its identifier, preserving query order.
type Entry struct {
	ID  string
	Doc Document
}

// Tx is the operation surface available inside a transaction. Reads inside
// a transaction observe a consistent snapshot and writes commit atomically.
type Tx interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, doc Document) error
	Update(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
}

// Store is the backing document store boundary. Plain writes are
// last-writer-wins per document; RunTransaction is the one conditional
// read-modify-write primitive the challenge acceptance path depends on.
type Store interface {
	Tx

	Find(ctx context.Context, collection string, q Query) ([]Entry, error)
	BatchSet(ctx context.Context, collection string, entries []Entry) error
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

func validateKey(collection, id string) error {
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("collection is required")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("document id is required")
	}
	return nil
}

// matches reports whether doc satisfies every filter in q.
func matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		cmp, comparable := compareValues(doc[f.Field], f.Value)
		switch f.Op {
		case OpEqual:
			if !comparable || cmp != 0 {
				return false
			}
		case OpNotEqual:
			if comparable && cmp == 0 {
				return false
			}
		case OpLess:
			if !comparable || cmp >= 0 {
				return false
			}
		case OpLessEq:
			if !comparable || cmp > 0 {
				return false
			}
		case OpGreater:
			if !comparable || cmp <= 0 {
				return false
			}
		case OpGreaterEq:
			if !comparable || cmp < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func compareValues(a, b any) (int, bool) {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}

	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
