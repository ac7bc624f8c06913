package standings

import "context"

type Repository interface {
	List(ctx context.Context) ([]Standing, error)
	GetByTeam(ctx context.Context, teamID string) (Standing, bool, error)
	Upsert(ctx context.Context, item Standing) error
}
