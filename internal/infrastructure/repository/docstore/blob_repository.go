package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/baselinehq/tennis-league/internal/domain/blob"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
)

// BlobRepository reads the legacy wide-row documents. Writes are limited to
// backup snapshots; source blobs are never mutated from here.
type BlobRepository struct {
	store docstore.Store
}

func NewBlobRepository(store docstore.Store) *BlobRepository {
	return &BlobRepository{store: store}
}

func (r *BlobRepository) Load(ctx context.Context, name string) (blob.Blob, bool, error) {
	doc, err := r.store.Get(ctx, CollectionBlobs, name)
	if errors.Is(err, docstore.ErrNotFound) {
		return blob.Blob{}, false, nil
	}
	if err != nil {
		return blob.Blob{}, false, fmt.Errorf("load blob %s: %w", name, err)
	}

	entries, invalid, err := blob.ParseData(doc["data"])
	if err != nil {
		return blob.Blob{}, false, fmt.Errorf("parse blob %s: %w", name, err)
	}

	return blob.Blob{
		Name:           name,
		Entries:        entries,
		UpdatedAt:      getTime(doc, "updatedAt"),
		InvalidEntries: invalid,
	}, true, nil
}

func (r *BlobRepository) Snapshot(ctx context.Context, source, backup string) error {
	doc, err := r.store.Get(ctx, CollectionBlobs, source)
	if err != nil {
		return fmt.Errorf("read blob %s for snapshot: %w", source, err)
	}

	if err := r.store.Set(ctx, CollectionBlobs, backup, doc); err != nil {
		return fmt.Errorf("write blob backup %s: %w", backup, err)
	}
	return nil
}
