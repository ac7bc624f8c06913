package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baselinehq/tennis-league/internal/domain/challenge"
	"github.com/baselinehq/tennis-league/internal/domain/match"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
)

func TestChallengeRepository_MutateAppliesInsideTransaction(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewChallengeRepository(store)
	ctx := context.Background()

	seed := challenge.Challenge{
		ID:                  "CHAL-2024-001",
		ChallengerTeamID:    "team-a",
		ChallengerPlayerIDs: []string{"p1", "p2"},
		MatchType:           match.TypeDoubles,
		Level:               7.5,
		Status:              challenge.StatusOpen,
		CreatedAt:           time.Now().UTC(),
	}
	if err := repo.Create(ctx, seed); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()
	got, err := repo.Mutate(ctx, seed.ID, func(c *challenge.Challenge) error {
		if !c.IsOpen() {
			return errors.New("not open")
		}
		c.Status = challenge.StatusAccepted
		c.ChallengedTeamID = "team-b"
		c.ChallengedPlayerIDs = []string{"p3", "p4"}
		c.AcceptedBy = "Dana"
		c.AcceptedAt = &now
		return nil
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if got.Status != challenge.StatusAccepted || got.AcceptedBy != "Dana" {
		t.Fatalf("unexpected mutate result: %+v", got)
	}

	reread, found, err := repo.GetByID(ctx, seed.ID)
	if err != nil || !found {
		t.Fatalf("get after mutate: found=%t err=%v", found, err)
	}
	if reread.ChallengedTeamID != "team-b" || len(reread.ChallengedPlayerIDs) != 2 {
		t.Fatalf("acceptance fields not persisted: %+v", reread)
	}
	if reread.AcceptedAt == nil {
		t.Fatal("acceptedAt not persisted")
	}
}

func TestChallengeRepository_MutateSurfacesDomainError(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewChallengeRepository(store)
	ctx := context.Background()

	if err := repo.Create(ctx, challenge.Challenge{
		ID:               "CHAL-2024-002",
		ChallengerTeamID: "team-a",
		Status:           challenge.StatusAccepted,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	sentinel := errors.New("already accepted")
	_, err := repo.Mutate(ctx, "CHAL-2024-002", func(c *challenge.Challenge) error {
		if !c.IsOpen() {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel to survive the transaction, got %v", err)
	}

	// The aborted mutate must not have touched the document.
	got, _, _ := repo.GetByID(ctx, "CHAL-2024-002")
	if got.Status != challenge.StatusAccepted {
		t.Fatalf("document changed by aborted mutate: %+v", got)
	}
}

func TestChallengeRepository_MutateMissingDoc(t *testing.T) {
	repo := NewChallengeRepository(docstore.NewMemoryStore())
	_, err := repo.Mutate(context.Background(), "CHAL-gone", func(c *challenge.Challenge) error {
		return nil
	})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchRepository_GetByChallenge(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewMatchRepository(store)
	ctx := context.Background()

	pending := match.Match{
		ID:             "MATCH-2024-001",
		ChallengeID:    "CHAL-2024-001",
		Status:         match.StatusPending,
		MatchType:      match.TypeDoubles,
		Level:          7.5,
		Team1ID:        "team-a",
		Team2ID:        "team-b",
		Team1PlayerIDs: []string{"p1", "p2"},
		Team2PlayerIDs: []string{"p3", "p4"},
	}
	if err := repo.Create(ctx, pending); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, found, err := repo.GetByChallenge(ctx, "CHAL-2024-001")
	if err != nil {
		t.Fatalf("get by challenge: %v", err)
	}
	if !found || got.ID != "MATCH-2024-001" {
		t.Fatalf("unexpected lookup result: found=%t match=%+v", found, got)
	}

	if _, found, _ := repo.GetByChallenge(ctx, "CHAL-none"); found {
		t.Fatal("lookup for unknown challenge should miss")
	}
}

func TestMatchRepository_ScorelineRoundTrip(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewMatchRepository(store)
	ctx := context.Background()

	played := time.Date(2024, time.June, 2, 10, 0, 0, 0, time.UTC)
	m := match.Match{
		ID:             "MATCH-2024-002",
		Status:         match.StatusCompleted,
		MatchType:      match.TypeSingles,
		Level:          4.0,
		Team1ID:        "team-a",
		Team2ID:        "team-b",
		Team1PlayerIDs: []string{"p1"},
		Team2PlayerIDs: []string{"p3"},
		PlayedAt:       &played,
		Sets: []match.SetScore{
			{Team1Games: 6, Team2Games: 4},
			{Team1Games: 4, Team2Games: 6},
			{Team1Games: 10, Team2Games: 8, Tiebreak: true},
		},
		Team1Sets: 2, Team2Sets: 1,
		Team1Games: 20, Team2Games: 18,
		Winner: match.WinnerTeam1,
	}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, found, err := repo.GetByID(ctx, m.ID)
	if err != nil || !found {
		t.Fatalf("get: found=%t err=%v", found, err)
	}
	if len(got.Sets) != 3 || !got.Sets[2].Tiebreak {
		t.Fatalf("set scores lost in round trip: %+v", got.Sets)
	}
	if got.Winner != match.WinnerTeam1 || got.Team1Games != 20 {
		t.Fatalf("scoreline lost in round trip: %+v", got)
	}
	if got.PlayedAt == nil || !got.PlayedAt.Equal(played) {
		t.Fatalf("playedAt lost in round trip: %v", got.PlayedAt)
	}
}

func TestBlobRepository_LoadAndSnapshot(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewBlobRepository(store)
	ctx := context.Background()

	raw := docstore.Document{
		"data":      `[{"matchId":"MATCH-2023-001","status":"completed"},17]`,
		"updatedAt": "2023-11-05T12:00:00Z",
	}
	if err := store.Set(ctx, CollectionBlobs, "matches", raw); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	b, found, err := repo.Load(ctx, "matches")
	if err != nil || !found {
		t.Fatalf("load: found=%t err=%v", found, err)
	}
	if len(b.Entries) != 1 || b.InvalidEntries != 1 {
		t.Fatalf("unexpected parse outcome: entries=%d invalid=%d", len(b.Entries), b.InvalidEntries)
	}

	if err := repo.Snapshot(ctx, "matches", "matches_backup"); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	backup, found, err := repo.Load(ctx, "matches_backup")
	if err != nil || !found {
		t.Fatalf("load backup: found=%t err=%v", found, err)
	}
	if len(backup.Entries) != 1 {
		t.Fatalf("backup lost entries: %+v", backup)
	}

	if _, found, _ := repo.Load(ctx, "ghost"); found {
		t.Fatal("missing blob should report not found")
	}
}
