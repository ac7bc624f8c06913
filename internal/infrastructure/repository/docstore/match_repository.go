package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/baselinehq/tennis-league/internal/domain/match"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
)

type MatchRepository struct {
	store docstore.Store
}

func NewMatchRepository(store docstore.Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	doc, err := r.store.Get(ctx, CollectionMatches, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return match.Match{}, false, nil
	}
	if err != nil {
		return match.Match{}, false, fmt.Errorf("get match %s: %w", id, err)
	}
	return decodeMatch(id, doc), true, nil
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	return r.find(ctx, docstore.Query{OrderBy: "createdAt"})
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status string) ([]match.Match, error) {
	return r.find(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("status", docstore.OpEqual, status)},
		OrderBy: "createdAt",
	})
}

func (r *MatchRepository) ListByTeam(ctx context.Context, teamID string) ([]match.Match, error) {
	// The store has no OR filter, so team membership is resolved in memory
	// over the full set; match volume is club-sized.
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]match.Match, 0, len(items))
	for _, m := range items {
		if m.InvolvesTeam(teamID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MatchRepository) GetByChallenge(ctx context.Context, challengeID string) (match.Match, bool, error) {
	entries, err := r.store.Find(ctx, CollectionMatches, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("challengeId", docstore.OpEqual, challengeID)},
		Limit:   1,
	})
	if err != nil {
		return match.Match{}, false, fmt.Errorf("find match by challenge %s: %w", challengeID, err)
	}
	if len(entries) == 0 {
		return match.Match{}, false, nil
	}
	return decodeMatch(entries[0].ID, entries[0].Doc), true, nil
}

func (r *MatchRepository) Create(ctx context.Context, item match.Match) error {
	if err := r.store.Set(ctx, CollectionMatches, item.ID, encodeMatch(item)); err != nil {
		return fmt.Errorf("create match %s: %w", item.ID, err)
	}
	return nil
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) error {
	if err := r.store.Set(ctx, CollectionMatches, item.ID, encodeMatch(item)); err != nil {
		return fmt.Errorf("update match %s: %w", item.ID, err)
	}
	return nil
}

func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionMatches, id); err != nil {
		return fmt.Errorf("delete match %s: %w", id, err)
	}
	return nil
}

func (r *MatchRepository) BatchCreate(ctx context.Context, items []match.Match) error {
	entries := make([]docstore.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, docstore.Entry{ID: item.ID, Doc: encodeMatch(item)})
	}
	if err := r.store.BatchSet(ctx, CollectionMatches, entries); err != nil {
		return fmt.Errorf("batch create matches: %w", err)
	}
	return nil
}

func (r *MatchRepository) find(ctx context.Context, q docstore.Query) ([]match.Match, error) {
	entries, err := r.store.Find(ctx, CollectionMatches, q)
	if err != nil {
		return nil, fmt.Errorf("find matches: %w", err)
	}

	out := make([]match.Match, 0, len(entries))
	for _, e := range entries {
		out = append(out, decodeMatch(e.ID, e.Doc))
	}
	return out, nil
}

func encodeMatch(m match.Match) docstore.Document {
	doc := docstore.Document{
		"matchId":        m.ID,
		"status":         m.Status,
		"matchType":      m.MatchType,
		"level":          m.Level,
		"team1Id":        m.Team1ID,
		"team2Id":        m.Team2ID,
		"team1PlayerIds": m.Team1PlayerIDs,
		"team2PlayerIds": m.Team2PlayerIDs,
		"team1Rating":    m.Team1Rating,
		"team2Rating":    m.Team2Rating,
		"notes":          m.Notes,
		"createdBy":      m.CreatedBy,
		"updatedBy":      m.UpdatedBy,
	}
	if m.LegacyID != 0 {
		doc["legacyId"] = m.LegacyID
	}
	if m.ChallengeID != "" {
		doc["challengeId"] = m.ChallengeID
	}
	if len(m.Sets) > 0 {
		sets := make([]any, 0, len(m.Sets))
		for _, s := range m.Sets {
			sets = append(sets, map[string]any{
				"team1Games": s.Team1Games,
				"team2Games": s.Team2Games,
				"tiebreak":   s.Tiebreak,
			})
		}
		doc["sets"] = sets
		doc["team1Sets"] = m.Team1Sets
		doc["team2Sets"] = m.Team2Sets
		doc["team1Games"] = m.Team1Games
		doc["team2Games"] = m.Team2Games
		doc["winner"] = m.Winner
	}
	if m.CompletedBy != "" {
		doc["completedBy"] = m.CompletedBy
	}
	putTimePtr(doc, "scheduledAt", m.ScheduledAt)
	putTimePtr(doc, "playedAt", m.PlayedAt)
	putTime(doc, "createdAt", m.CreatedAt)
	putTime(doc, "updatedAt", m.UpdatedAt)
	return doc
}

func decodeMatch(id string, doc docstore.Document) match.Match {
	m := match.Match{
		ID:             id,
		LegacyID:       getInt(doc, "legacyId"),
		ChallengeID:    getString(doc, "challengeId"),
		Status:         getString(doc, "status"),
		MatchType:      getString(doc, "matchType"),
		Level:          getFloat(doc, "level"),
		Team1ID:        getString(doc, "team1Id"),
		Team2ID:        getString(doc, "team2Id"),
		Team1PlayerIDs: getStringSlice(doc, "team1PlayerIds"),
		Team2PlayerIDs: getStringSlice(doc, "team2PlayerIds"),
		Team1Rating:    getFloat(doc, "team1Rating"),
		Team2Rating:    getFloat(doc, "team2Rating"),
		ScheduledAt:    getTimePtr(doc, "scheduledAt"),
		PlayedAt:       getTimePtr(doc, "playedAt"),
		Team1Sets:      getInt(doc, "team1Sets"),
		Team2Sets:      getInt(doc, "team2Sets"),
		Team1Games:     getInt(doc, "team1Games"),
		Team2Games:     getInt(doc, "team2Games"),
		Winner:         getString(doc, "winner"),
		Notes:          getString(doc, "notes"),
		CreatedBy:      getString(doc, "createdBy"),
		CreatedAt:      getTime(doc, "createdAt"),
		UpdatedBy:      getString(doc, "updatedBy"),
		UpdatedAt:      getTime(doc, "updatedAt"),
		CompletedBy:    getString(doc, "completedBy"),
	}

	if raw, ok := doc["sets"].([]any); ok {
		for _, item := range raw {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			m.Sets = append(m.Sets, match.SetScore{
				Team1Games: getInt(entry, "team1Games"),
				Team2Games: getInt(entry, "team2Games"),
				Tiebreak:   getBool(entry, "tiebreak"),
			})
		}
	}

	return m
}
