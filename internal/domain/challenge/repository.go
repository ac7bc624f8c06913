package challenge

import "context"

// Repository describes challenge persistence needs from use cases.
//
// Mutate is the transactional read-modify-write primitive: the
// implementation re-reads the document inside a store transaction, applies
// mutate, and commits only if no concurrent writer got there first. The
// mutate func returning an error aborts the transaction with that error.
type Repository interface {
	GetByID(ctx context.Context, id string) (Challenge, bool, error)
	List(ctx context.Context) ([]Challenge, error)
	ListByStatus(ctx context.Context, status string) ([]Challenge, error)
	Create(ctx context.Context, item Challenge) error
	Update(ctx context.Context, item Challenge) error
	Delete(ctx context.Context, id string) error
	Mutate(ctx context.Context, id string, mutate func(*Challenge) error) (Challenge, error)
}
