package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used by tests and local development.
// Transactions serialize against each other and against plain writes, which
// gives the same at-most-one-winner guarantee the managed backend provides.
type MemoryStore struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	collections map[string]map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	if err := validateKey(collection, id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return cloneDocument(doc), nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, doc Document) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(collection, id, doc)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields Document) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Find(_ context.Context, collection string, q Query) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0)
	for id, doc := range s.collections[collection] {
		if matches(doc, q.Filters) {
			out = append(out, Entry{ID: id, Doc: cloneDocument(doc)})
		}
	}

	sortEntries(out, q)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *MemoryStore) BatchSet(_ context.Context, collection string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if err := validateKey(collection, e.ID); err != nil {
			return err
		}
		s.setLocked(collection, e.ID, e.Doc)
	}
	return nil
}

// RunTransaction runs fn against a buffered view of the store and commits
// its writes atomically. Concurrent transactions serialize, so a
// read-check-write inside fn cannot interleave with another acceptor.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}

	tx := &memoryTx{store: s, staged: make(map[string]map[string]*Document)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for collection, docs := range tx.staged {
		for id, doc := range docs {
			if doc == nil {
				delete(s.collections[collection], id)
				continue
			}
			s.setLocked(collection, id, *doc)
		}
	}
	return nil
}

func (s *MemoryStore) setLocked(collection, id string, doc Document) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][id] = cloneDocument(doc)
}

// memoryTx buffers writes so a failed transaction leaves no partial state.
// A nil staged entry marks a pending delete.
type memoryTx struct {
	store  *MemoryStore
	staged map[string]map[string]*Document
}

func (t *memoryTx) Get(ctx context.Context, collection, id string) (Document, error) {
	if docs, ok := t.staged[collection]; ok {
		if doc, ok := docs[id]; ok {
			if doc == nil {
				return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
			}
			return cloneDocument(*doc), nil
		}
	}
	return t.store.Get(ctx, collection, id)
}

func (t *memoryTx) Set(_ context.Context, collection, id string, doc Document) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	cloned := cloneDocument(doc)
	t.stage(collection, id, &cloned)
	return nil
}

func (t *memoryTx) Update(ctx context.Context, collection, id string, fields Document) error {
	doc, err := t.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		doc[k] = v
	}
	t.stage(collection, id, &doc)
	return nil
}

func (t *memoryTx) Delete(_ context.Context, collection, id string) error {
	if err := validateKey(collection, id); err != nil {
		return err
	}
	t.stage(collection, id, nil)
	return nil
}

func (t *memoryTx) stage(collection, id string, doc *Document) {
	if t.staged[collection] == nil {
		t.staged[collection] = make(map[string]*Document)
	}
	t.staged[collection][id] = doc
}

func sortEntries(entries []Entry, q Query) {
	field := q.OrderBy
	sort.SliceStable(entries, func(i, j int) bool {
		if field != "" {
			cmp, ok := compareValues(entries[i].Doc[field], entries[j].Doc[field])
			if ok && cmp != 0 {
				if q.Descending {
					return cmp > 0
				}
				return cmp < 0
			}
		}
		// Stable fallback so runs are deterministic.
		return entries[i].ID < entries[j].ID
	})
}

func cloneDocument(doc Document) Document {
	if doc == nil {
		return Document{}
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		switch nested := v.(type) {
		case Document:
			out[k] = cloneDocument(nested)
		case []any:
			cp := make([]any, len(nested))
			copy(cp, nested)
			out[k] = cp
		case []string:
			cp := make([]string, len(nested))
			copy(cp, nested)
			out[k] = cp
		default:
			out[k] = v
		}
	}
	return out
}
