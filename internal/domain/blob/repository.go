package blob

import "context"

// Repository reads legacy blob documents and snapshots them into backups.
// Nothing in the repository mutates a source blob.
type Repository interface {
	Load(ctx context.Context, name string) (Blob, bool, error)
	// Snapshot copies the source blob document verbatim into a
	// clearly-named backup document. It must run before any destructive
	// follow-up to the source.
	Snapshot(ctx context.Context, source, backup string) error
}
