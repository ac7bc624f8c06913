package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/baselinehq/tennis-league/internal/domain/team"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
)

type TeamRepository struct {
	store docstore.Store
}

func NewTeamRepository(store docstore.Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	entries, err := r.store.Find(ctx, CollectionTeams, docstore.Query{OrderBy: "name"})
	if err != nil {
		return nil, fmt.Errorf("find teams: %w", err)
	}

	out := make([]team.Team, 0, len(entries))
	for _, e := range entries {
		out = append(out, decodeTeam(e.ID, e.Doc))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	doc, err := r.store.Get(ctx, CollectionTeams, teamID)
	if errors.Is(err, docstore.ErrNotFound) {
		return team.Team{}, false, nil
	}
	if err != nil {
		return team.Team{}, false, fmt.Errorf("get team %s: %w", teamID, err)
	}
	return decodeTeam(teamID, doc), true, nil
}

func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) error {
	if err := item.Validate(); err != nil {
		return err
	}

	doc := docstore.Document{
		"name":         item.Name,
		"captainId":    item.CaptainID,
		"captainEmail": item.CaptainEmail,
		"playerIds":    item.PlayerIDs,
		"active":       item.Active,
	}
	putTime(doc, "createdAt", item.CreatedAt)
	putTime(doc, "updatedAt", item.UpdatedAt)

	if err := r.store.Set(ctx, CollectionTeams, item.ID, doc); err != nil {
		return fmt.Errorf("upsert team %s: %w", item.ID, err)
	}
	return nil
}

func decodeTeam(id string, doc docstore.Document) team.Team {
	return team.Team{
		ID:           id,
		Name:         getString(doc, "name"),
		CaptainID:    getString(doc, "captainId"),
		CaptainEmail: getString(doc, "captainEmail"),
		PlayerIDs:    getStringSlice(doc, "playerIds"),
		Active:       getBool(doc, "active"),
		CreatedAt:    getTime(doc, "createdAt"),
		UpdatedAt:    getTime(doc, "updatedAt"),
	}
}
