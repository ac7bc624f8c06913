package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "matches", "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "matches", "m1", Document{"status": "pending"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	doc, err := store.Get(ctx, "matches", "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc["status"] != "pending" {
		t.Fatalf("unexpected doc: %v", doc)
	}

	// The returned document is a copy; mutating it must not leak back.
	doc["status"] = "completed"
	again, _ := store.Get(ctx, "matches", "m1")
	if again["status"] != "pending" {
		t.Fatal("stored document was mutated through a read copy")
	}

	if err := store.Delete(ctx, "matches", "m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "matches", "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_UpdateMissingDoc(t *testing.T) {
	store := NewMemoryStore()
	err := store.Update(context.Background(), "matches", "absent", Document{"x": 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_FindFilterOrderLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seed := []Entry{
		{ID: "m1", Doc: Document{"status": "pending", "level": 7.0}},
		{ID: "m2", Doc: Document{"status": "completed", "level": 7.5}},
		{ID: "m3", Doc: Document{"status": "pending", "level": 8.0}},
		{ID: "m4", Doc: Document{"status": "pending", "level": 6.5}},
	}
	if err := store.BatchSet(ctx, "matches", seed); err != nil {
		t.Fatalf("batch set: %v", err)
	}

	got, err := store.Find(ctx, "matches", Query{
		Filters:    []Filter{Where("status", OpEqual, "pending")},
		OrderBy:    "level",
		Descending: true,
		Limit:      2,
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected result count: %d", len(got))
	}
	if got[0].ID != "m3" || got[1].ID != "m1" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestMemoryStore_TransactionRollsBackOnError(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "challenges", "c1", Document{"status": "open"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sentinel := errors.New("boom")
	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Update(ctx, "challenges", "c1", Document{"status": "accepted"}); err != nil {
			return err
		}
		if err := tx.Set(ctx, "matches", "m1", Document{"status": "pending"}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	doc, err := store.Get(ctx, "challenges", "c1")
	if err != nil {
		t.Fatalf("get after rollback: %v", err)
	}
	if doc["status"] != "open" {
		t.Fatalf("transaction leaked a partial write: %v", doc)
	}
	if _, err := store.Get(ctx, "matches", "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no match doc after rollback, got %v", err)
	}
}

func TestMemoryStore_TransactionReadsOwnWrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Set(ctx, "teams", "t1", Document{"name": "Rally Cats"}); err != nil {
			return err
		}
		doc, err := tx.Get(ctx, "teams", "t1")
		if err != nil {
			return err
		}
		if doc["name"] != "Rally Cats" {
			return fmt.Errorf("staged write not visible: %v", doc)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestMemoryStore_ConcurrentTransactionsSerialize(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "challenges", "c1", Document{"status": "open"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	conflict := errors.New("already taken")
	const attempts = 16

	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
				doc, err := tx.Get(ctx, "challenges", "c1")
				if err != nil {
					return err
				}
				if doc["status"] != "open" {
					return conflict
				}
				return tx.Update(ctx, "challenges", "c1", Document{"status": "accepted"})
			})
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	losses := 0
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, conflict):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if losses != attempts-1 {
		t.Fatalf("expected %d losers, got %d", attempts-1, losses)
	}
}
