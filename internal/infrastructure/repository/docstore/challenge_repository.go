package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/baselinehq/tennis-league/internal/domain/challenge"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
)

type ChallengeRepository struct {
	store docstore.Store
}

func NewChallengeRepository(store docstore.Store) *ChallengeRepository {
	return &ChallengeRepository{store: store}
}

func (r *ChallengeRepository) GetByID(ctx context.Context, id string) (challenge.Challenge, bool, error) {
	doc, err := r.store.Get(ctx, CollectionChallenges, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return challenge.Challenge{}, false, nil
	}
	if err != nil {
		return challenge.Challenge{}, false, fmt.Errorf("get challenge %s: %w", id, err)
	}
	return decodeChallenge(id, doc), true, nil
}

func (r *ChallengeRepository) List(ctx context.Context) ([]challenge.Challenge, error) {
	return r.find(ctx, docstore.Query{OrderBy: "createdAt"})
}

func (r *ChallengeRepository) ListByStatus(ctx context.Context, status string) ([]challenge.Challenge, error) {
	return r.find(ctx, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("status", docstore.OpEqual, status)},
		OrderBy: "createdAt",
	})
}

func (r *ChallengeRepository) Create(ctx context.Context, item challenge.Challenge) error {
	if err := r.store.Set(ctx, CollectionChallenges, item.ID, encodeChallenge(item)); err != nil {
		return fmt.Errorf("create challenge %s: %w", item.ID, err)
	}
	return nil
}

func (r *ChallengeRepository) Update(ctx context.Context, item challenge.Challenge) error {
	if err := r.store.Set(ctx, CollectionChallenges, item.ID, encodeChallenge(item)); err != nil {
		return fmt.Errorf("update challenge %s: %w", item.ID, err)
	}
	return nil
}

func (r *ChallengeRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionChallenges, id); err != nil {
		return fmt.Errorf("delete challenge %s: %w", id, err)
	}
	return nil
}

// Mutate re-reads the challenge inside a store transaction, applies mutate
// and writes the result back. The mutate error aborts the transaction and
// surfaces unchanged, so domain sentinels survive the round trip.
func (r *ChallengeRepository) Mutate(ctx context.Context, id string, mutate func(*challenge.Challenge) error) (challenge.Challenge, error) {
	var out challenge.Challenge
	err := r.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(ctx, CollectionChallenges, id)
		if err != nil {
			return err
		}

		item := decodeChallenge(id, doc)
		if err := mutate(&item); err != nil {
			return err
		}

		out = item
		return tx.Set(ctx, CollectionChallenges, id, encodeChallenge(item))
	})
	if err != nil {
		return challenge.Challenge{}, err
	}
	return out, nil
}

func (r *ChallengeRepository) find(ctx context.Context, q docstore.Query) ([]challenge.Challenge, error) {
	entries, err := r.store.Find(ctx, CollectionChallenges, q)
	if err != nil {
		return nil, fmt.Errorf("find challenges: %w", err)
	}

	out := make([]challenge.Challenge, 0, len(entries))
	for _, e := range entries {
		out = append(out, decodeChallenge(e.ID, e.Doc))
	}
	return out, nil
}

func encodeChallenge(c challenge.Challenge) docstore.Document {
	doc := docstore.Document{
		"challengeId":         c.ID,
		"status":              c.Status,
		"challengerTeamId":    c.ChallengerTeamID,
		"challengerPlayerIds": c.ChallengerPlayerIDs,
		"matchType":           c.MatchType,
		"level":               c.Level,
		"notes":               c.Notes,
		"createdBy":           c.CreatedBy,
		"updatedBy":           c.UpdatedBy,
	}
	if c.LegacyID != 0 {
		doc["legacyId"] = c.LegacyID
	}
	if c.ChallengedTeamID != "" {
		doc["challengedTeamId"] = c.ChallengedTeamID
		doc["challengedPlayerIds"] = c.ChallengedPlayerIDs
		doc["acceptedLevel"] = c.AcceptedLevel
		doc["acceptedBy"] = c.AcceptedBy
	}
	if c.CompletedMatchID != "" {
		doc["completedMatchId"] = c.CompletedMatchID
	}
	putTimePtr(doc, "proposedDate", c.ProposedDate)
	putTimePtr(doc, "acceptedDate", c.AcceptedDate)
	putTimePtr(doc, "acceptedAt", c.AcceptedAt)
	putTime(doc, "createdAt", c.CreatedAt)
	putTime(doc, "updatedAt", c.UpdatedAt)
	return doc
}

func decodeChallenge(id string, doc docstore.Document) challenge.Challenge {
	return challenge.Challenge{
		ID:                  id,
		LegacyID:            getInt(doc, "legacyId"),
		ChallengerTeamID:    getString(doc, "challengerTeamId"),
		ChallengerPlayerIDs: getStringSlice(doc, "challengerPlayerIds"),
		MatchType:           getString(doc, "matchType"),
		Level:               getFloat(doc, "level"),
		ProposedDate:        getTimePtr(doc, "proposedDate"),
		Notes:               getString(doc, "notes"),
		Status:              getString(doc, "status"),
		ChallengedTeamID:    getString(doc, "challengedTeamId"),
		ChallengedPlayerIDs: getStringSlice(doc, "challengedPlayerIds"),
		AcceptedLevel:       getFloat(doc, "acceptedLevel"),
		AcceptedDate:        getTimePtr(doc, "acceptedDate"),
		AcceptedBy:          getString(doc, "acceptedBy"),
		AcceptedAt:          getTimePtr(doc, "acceptedAt"),
		CompletedMatchID:    getString(doc, "completedMatchId"),
		CreatedBy:           getString(doc, "createdBy"),
		CreatedAt:           getTime(doc, "createdAt"),
		UpdatedBy:           getString(doc, "updatedBy"),
		UpdatedAt:           getTime(doc, "updatedAt"),
	}
}
