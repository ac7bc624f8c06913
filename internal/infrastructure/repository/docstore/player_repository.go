package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/baselinehq/tennis-league/internal/domain/player"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
)

type PlayerRepository struct {
	store docstore.Store
}

func NewPlayerRepository(store docstore.Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	return r.find(ctx, docstore.Query{OrderBy: "name"})
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	return r.find(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("teamId", docstore.OpEqual, teamID)},
		OrderBy: "name",
	})
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	doc, err := r.store.Get(ctx, CollectionPlayers, playerID)
	if errors.Is(err, docstore.ErrNotFound) {
		return player.Player{}, false, nil
	}
	if err != nil {
		return player.Player{}, false, fmt.Errorf("get player %s: %w", playerID, err)
	}
	return decodePlayer(playerID, doc), true, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	if err := item.Validate(); err != nil {
		return err
	}

	doc := docstore.Document{
		"teamId": item.TeamID,
		"name":   item.Name,
		"email":  item.Email,
		"rating": item.Rating,
		"gender": item.Gender,
		"active": item.Active,
	}
	putTime(doc, "createdAt", item.CreatedAt)
	putTime(doc, "updatedAt", item.UpdatedAt)

	if err := r.store.Set(ctx, CollectionPlayers, item.ID, doc); err != nil {
		return fmt.Errorf("upsert player %s: %w", item.ID, err)
	}
	return nil
}

func (r *PlayerRepository) find(ctx context.Context, q docstore.Query) ([]player.Player, error) {
	entries, err := r.store.Find(ctx, CollectionPlayers, q)
	if err != nil {
		return nil, fmt.Errorf("find players: %w", err)
	}

	out := make([]player.Player, 0, len(entries))
	for _, e := range entries {
		out = append(out, decodePlayer(e.ID, e.Doc))
	}
	return out, nil
}

func decodePlayer(id string, doc docstore.Document) player.Player {
	return player.Player{
		ID:        id,
		TeamID:    getString(doc, "teamId"),
		Name:      getString(doc, "name"),
		Email:     getString(doc, "email"),
		Rating:    getFloat(doc, "rating"),
		Gender:    getString(doc, "gender"),
		Active:    getBool(doc, "active"),
		CreatedAt: getTime(doc, "createdAt"),
		UpdatedAt: getTime(doc, "updatedAt"),
	}
}
