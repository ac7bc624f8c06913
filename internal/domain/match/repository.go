package match

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Match, bool, error)
	List(ctx context.Context) ([]Match, error)
	ListByStatus(ctx context.Context, status string) ([]Match, error)
	ListByTeam(ctx context.Context, teamID string) ([]Match, error)
	// GetByChallenge looks across pending and completed matches; it backs
	// the never-create-twice existence check keyed by challenge id.
	GetByChallenge(ctx context.Context, challengeID string) (Match, bool, error)
	Create(ctx context.Context, item Match) error
	Update(ctx context.Context, item Match) error
	Delete(ctx context.Context, id string) error
	BatchCreate(ctx context.Context, items []Match) error
}
