package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/baselinehq/tennis-league/internal/domain/standings"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
)

type StandingsRepository struct {
	store docstore.Store
}

func NewStandingsRepository(store docstore.Store) *StandingsRepository {
	return &StandingsRepository{store: store}
}

func (r *StandingsRepository) List(ctx context.Context) ([]standings.Standing, error) {
	entries, err := r.store.Find(ctx, CollectionStandings, docstore.Query{
		OrderBy:    "totalPoints",
		Descending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("find standings: %w", err)
	}

	out := make([]standings.Standing, 0, len(entries))
	for _, e := range entries {
		out = append(out, decodeStanding(e.ID, e.Doc))
	}
	return out, nil
}

func (r *StandingsRepository) GetByTeam(ctx context.Context, teamID string) (standings.Standing, bool, error) {
	doc, err := r.store.Get(ctx, CollectionStandings, teamID)
	if errors.Is(err, docstore.ErrNotFound) {
		return standings.Standing{}, false, nil
	}
	if err != nil {
		return standings.Standing{}, false, fmt.Errorf("get standing %s: %w", teamID, err)
	}
	return decodeStanding(teamID, doc), true, nil
}

func (r *StandingsRepository) Upsert(ctx context.Context, item standings.Standing) error {
	if item.TeamID == "" {
		return fmt.Errorf("standing team id is required")
	}

	doc := docstore.Document{
		"winPoints":     item.WinPoints,
		"bonusPoints":   item.BonusPoints,
		"totalPoints":   item.TotalPoints,
		"setsWon":       item.SetsWon,
		"gamesWon":      item.GamesWon,
		"matchesPlayed": item.MatchesPlayed,
		"wins":          item.Wins,
		"losses":        item.Losses,
	}
	putTime(doc, "updatedAt", item.UpdatedAt)

	if err := r.store.Set(ctx, CollectionStandings, item.TeamID, doc); err != nil {
		return fmt.Errorf("upsert standing %s: %w", item.TeamID, err)
	}
	return nil
}

func decodeStanding(teamID string, doc docstore.Document) standings.Standing {
	return standings.Standing{
		TeamID:        teamID,
		WinPoints:     getInt(doc, "winPoints"),
		BonusPoints:   getFloat(doc, "bonusPoints"),
		TotalPoints:   getFloat(doc, "totalPoints"),
		SetsWon:       getInt(doc, "setsWon"),
		GamesWon:      getInt(doc, "gamesWon"),
		MatchesPlayed: getInt(doc, "matchesPlayed"),
		Wins:          getInt(doc, "wins"),
		Losses:        getInt(doc, "losses"),
		UpdatedAt:     getTime(doc, "updatedAt"),
	}
}
