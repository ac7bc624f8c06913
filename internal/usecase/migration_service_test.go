package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/baselinehq/tennis-league/internal/domain/challenge"
	"github.com/baselinehq/tennis-league/internal/domain/match"
	repo "github.com/baselinehq/tennis-league/internal/infrastructure/repository/docstore"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
	"github.com/baselinehq/tennis-league/internal/platform/id"
	"github.com/baselinehq/tennis-league/internal/platform/logging"
)

type migrationFixture struct {
	store         *docstore.MemoryStore
	service       *MigrationService
	matchRepo     *repo.MatchRepository
	challengeRepo *repo.ChallengeRepository
}

func newMigrationFixture(t *testing.T) *migrationFixture {
	t.Helper()

	store := docstore.NewMemoryStore()
	matchRepo := repo.NewMatchRepository(store)
	challengeRepo := repo.NewChallengeRepository(store)

	service := NewMigrationService(
		repo.NewBlobRepository(store),
		matchRepo,
		challengeRepo,
		id.NewEntityGenerator(),
		MigrationConfig{BlobName: "matches", MaxWorkers: 4},
		logging.NewNop(),
	)
	return &migrationFixture{
		store:         store,
		service:       service,
		matchRepo:     matchRepo,
		challengeRepo: challengeRepo,
	}
}

func (f *migrationFixture) seedBlob(t *testing.T, name, data string) {
	t.Helper()
	err := f.store.Set(context.Background(), repo.CollectionBlobs, name, docstore.Document{
		"data":      data,
		"updatedAt": "2023-11-05T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("seed blob %s: %v", name, err)
	}
}

const matchesBlobData = `[
  {"matchId":"MATCH-2023-001","status":"completed","matchType":"doubles","level":7.5,
   "team1Id":"team-a","team2Id":"team-b",
   "team1PlayerIds":["p1","p2"],"team2PlayerIds":["p3","p4"],
   "sets":[{"team1Games":6,"team2Games":4},{"team1Games":6,"team2Games":3}],
   "createdAt":"2023-05-01T09:00:00Z"},
  {"id":7,"status":"pending","matchType":"singles","level":4.0,
   "team1Id":"team-a","team2Id":"team-b",
   "team1PlayerIds":["p1"],"team2PlayerIds":["p3"],
   "createdAt":"2023-06-10T09:00:00Z"},
  {"status":"pending","team1Id":"team-a","team2Id":"team-b"}
]`

func TestMigrationService_MigrateMatchesIdempotent(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()
	f.seedBlob(t, "matches", matchesBlobData)

	first, err := f.service.MigrateMatches(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Created != 2 || first.Skipped != 1 || first.Errored != 0 {
		t.Fatalf("first run: created=%d skipped=%d errored=%d", first.Created, first.Skipped, first.Errored)
	}

	// The legacy-id entry gets its deterministic derived id.
	derived, found, err := f.matchRepo.GetByID(ctx, "MATCH-2023-007")
	if err != nil || !found {
		t.Fatalf("derived legacy id missing: found=%t err=%v", found, err)
	}
	if derived.LegacyID != 7 || derived.Status != match.StatusPending {
		t.Fatalf("legacy entry migrated wrong: %+v", derived)
	}

	// The explicit-id entry keeps its id and gets recomputed tallies.
	explicit, _, err := f.matchRepo.GetByID(ctx, "MATCH-2023-001")
	if err != nil {
		t.Fatalf("get explicit match: %v", err)
	}
	if explicit.Winner != match.WinnerTeam1 || explicit.Team1Games != 12 || explicit.Team2Games != 7 {
		t.Fatalf("tallies not recomputed: %+v", explicit)
	}

	second, err := f.service.MigrateMatches(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Created != 0 {
		t.Fatalf("second run must create nothing, created=%d", second.Created)
	}
	if second.Skipped != 3 {
		t.Fatalf("second run: skipped=%d, want 3", second.Skipped)
	}

	all, err := f.matchRepo.List(ctx)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 matches after two runs, got %d", len(all))
	}
}

func TestMigrationService_MigrateMatchesWritesBackup(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()
	f.seedBlob(t, "matches", matchesBlobData)

	if _, err := f.service.MigrateMatches(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	backup, err := f.store.Get(ctx, repo.CollectionBlobs, "matches_backup")
	if err != nil {
		t.Fatalf("backup document missing: %v", err)
	}
	if backup["data"] != matchesBlobData {
		t.Fatal("backup is not a verbatim copy of the source blob")
	}
}

func TestMigrationService_DuplicateLegacyIDsStayUnique(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()
	f.seedBlob(t, "matches", `[
	  {"id":7,"status":"pending","team1Id":"team-a","team2Id":"team-b","createdAt":"2023-06-10T09:00:00Z"},
	  {"id":7,"status":"pending","team1Id":"team-c","team2Id":"team-d","createdAt":"2023-06-11T09:00:00Z"}
	]`)

	report, err := f.service.MigrateMatches(ctx)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if report.Created != 2 || report.Errored != 0 {
		t.Fatalf("created=%d errored=%d, want 2/0", report.Created, report.Errored)
	}

	all, err := f.matchRepo.List(ctx)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	seen := make(map[string]struct{}, len(all))
	for _, m := range all {
		if _, dup := seen[m.ID]; dup {
			t.Fatalf("duplicate target id %s", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 unique documents, got %d", len(all))
	}
}

func TestMigrationService_FallbackIDsSkipExplicitCollisions(t *testing.T) {
	f := newMigrationFixture(t)
	f.service.now = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	ctx := context.Background()

	// First entry already owns the id the fallback generator would produce
	// first; the duplicated legacy id forces the generator to keep walking.
	f.seedBlob(t, "matches", `[
	  {"matchId":"MATCH-1700000000-001","status":"pending","team1Id":"team-a","team2Id":"team-b"},
	  {"id":7,"status":"pending","team1Id":"team-a","team2Id":"team-b","createdAt":"2023-06-10T09:00:00Z"},
	  {"id":7,"status":"pending","team1Id":"team-c","team2Id":"team-d","createdAt":"2023-06-11T09:00:00Z"}
	]`)

	report, err := f.service.MigrateMatches(ctx)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if report.Created != 3 || report.Errored != 0 {
		t.Fatalf("created=%d errored=%d, want 3/0", report.Created, report.Errored)
	}

	all, err := f.matchRepo.List(ctx)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	seen := make(map[string]struct{}, len(all))
	for _, m := range all {
		if _, dup := seen[m.ID]; dup {
			t.Fatalf("duplicate target id %s", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	if _, ok := seen["MATCH-1700000000-002"]; !ok {
		t.Fatalf("expected fallback id MATCH-1700000000-002, got %v", seen)
	}
}

func TestMigrationService_CreatePendingMatchesIdempotent(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()

	acceptedAt := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	seed := challenge.Challenge{
		ID:                  "CHAL-2024-001",
		ChallengerTeamID:    "team-a",
		ChallengerPlayerIDs: []string{"p1", "p2"},
		ChallengedTeamID:    "team-b",
		ChallengedPlayerIDs: []string{"p3", "p4"},
		MatchType:           match.TypeDoubles,
		Level:               7.5,
		AcceptedLevel:       7.5,
		Status:              challenge.StatusAccepted,
		AcceptedBy:          "Dana",
		AcceptedAt:          &acceptedAt,
		CreatedAt:           acceptedAt,
	}
	if err := f.challengeRepo.Create(ctx, seed); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	first, err := f.service.CreatePendingMatchesFromChallenges(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Created != 1 {
		t.Fatalf("first run created=%d, want 1", first.Created)
	}

	second, err := f.service.CreatePendingMatchesFromChallenges(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Created != 0 || second.Skipped != 1 {
		t.Fatalf("second run created=%d skipped=%d, want 0/1", second.Created, second.Skipped)
	}

	pending, err := f.matchRepo.ListByStatus(ctx, match.StatusPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected exactly 1 pending match, got %d", len(pending))
	}
	if pending[0].ChallengeID != seed.ID || pending[0].Level != 7.5 {
		t.Fatalf("pending match mirrors challenge wrong: %+v", pending[0])
	}
}

func TestMigrationService_ReMigrateFromBackupAddsOnlyMissing(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()
	f.seedBlob(t, "matches", matchesBlobData)

	if _, err := f.service.MigrateMatches(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := f.matchRepo.Delete(ctx, "MATCH-2023-007"); err != nil {
		t.Fatalf("delete migrated match: %v", err)
	}

	report, err := f.service.ReMigrateFromBackup(ctx)
	if err != nil {
		t.Fatalf("remigrate: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("remigrate created=%d, want only the missing document", report.Created)
	}

	if _, found, _ := f.matchRepo.GetByID(ctx, "MATCH-2023-007"); !found {
		t.Fatal("missing document was not restored from backup")
	}
}

func TestMigrationService_ReMigrateRequiresBackup(t *testing.T) {
	f := newMigrationFixture(t)

	_, err := f.service.ReMigrateFromBackup(context.Background())
	if err == nil {
		t.Fatal("expected an error when no backup exists")
	}
}

func TestMigrationService_FixChallengeIDField(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()

	if err := f.matchRepo.Create(ctx, match.Match{
		ID:             "MATCH-2023-050",
		Status:         match.StatusCompleted,
		MatchType:      match.TypeDoubles,
		Team1ID:        "team-a",
		Team2ID:        "team-b",
		Team1PlayerIDs: []string{"p1", "p2"},
		Team2PlayerIDs: []string{"p3", "p4"},
	}); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	if err := f.challengeRepo.Create(ctx, challenge.Challenge{
		ID:                  "CHAL-2023-050",
		ChallengerTeamID:    "team-a",
		ChallengerPlayerIDs: []string{"p1", "p2"},
		Status:              challenge.StatusCompleted,
		CompletedMatchID:    "MATCH-2023-050",
	}); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	first, err := f.service.FixChallengeIDField(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Updated != 1 {
		t.Fatalf("first run updated=%d, want 1", first.Updated)
	}

	fixed, _, err := f.matchRepo.GetByID(ctx, "MATCH-2023-050")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if fixed.ChallengeID != "CHAL-2023-050" {
		t.Fatalf("challenge id not backfilled: %+v", fixed)
	}

	second, err := f.service.FixChallengeIDField(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Updated != 0 || second.Skipped != 1 {
		t.Fatalf("second run updated=%d skipped=%d, want 0/1", second.Updated, second.Skipped)
	}
}

func TestMigrationService_EnsureCreatedAtField(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()

	played := time.Date(2023, time.August, 20, 14, 0, 0, 0, time.UTC)
	if err := f.matchRepo.Create(ctx, match.Match{
		ID:             "MATCH-2023-060",
		Status:         match.StatusCompleted,
		MatchType:      match.TypeSingles,
		Team1ID:        "team-a",
		Team2ID:        "team-b",
		Team1PlayerIDs: []string{"p1"},
		Team2PlayerIDs: []string{"p3"},
		PlayedAt:       &played,
	}); err != nil {
		t.Fatalf("seed match without createdAt: %v", err)
	}

	report, err := f.service.EnsureCreatedAtField(ctx)
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if report.Updated != 1 {
		t.Fatalf("updated=%d, want 1", report.Updated)
	}

	fixed, _, err := f.matchRepo.GetByID(ctx, "MATCH-2023-060")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if !fixed.CreatedAt.Equal(played) {
		t.Fatalf("createdAt should come from playedAt, got %v", fixed.CreatedAt)
	}

	again, err := f.service.EnsureCreatedAtField(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if again.Total != 0 {
		t.Fatalf("second run should touch nothing, total=%d", again.Total)
	}
}

func TestMigrationService_VerifyMigrationCounts(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()
	f.seedBlob(t, "matches", matchesBlobData)

	before, err := f.service.VerifyMigration(ctx)
	if err != nil {
		t.Fatalf("verify before: %v", err)
	}
	if before.CountsMatch {
		t.Fatal("verification should fail before the migration ran")
	}

	if _, err := f.service.MigrateMatches(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	after, err := f.service.VerifyMigration(ctx)
	if err != nil {
		t.Fatalf("verify after: %v", err)
	}
	if !after.CountsMatch {
		t.Fatalf("verification failed after migration: %+v", after)
	}
	if after.BlobEntries != 3 || after.MigratedMatches != 2 {
		t.Fatalf("unexpected counts: %+v", after)
	}
	if after.PendingMatches != 1 || after.CompletedMatches != 1 {
		t.Fatalf("status split wrong: %+v", after)
	}
}

func TestMigrationService_FullMigrationChains(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()
	f.seedBlob(t, "matches", matchesBlobData)

	if err := f.challengeRepo.Create(ctx, challenge.Challenge{
		ID:                  "CHAL-2024-009",
		ChallengerTeamID:    "team-a",
		ChallengerPlayerIDs: []string{"p1", "p2"},
		ChallengedTeamID:    "team-b",
		MatchType:           match.TypeDoubles,
		Level:               7.5,
		Status:              challenge.StatusAccepted,
	}); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	reports, err := f.service.FullMigration(ctx)
	if err != nil {
		t.Fatalf("full migration: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].Operation != "migrate_matches" || reports[1].Operation != "create_pending_matches" {
		t.Fatalf("unexpected operations: %s, %s", reports[0].Operation, reports[1].Operation)
	}
	if reports[1].Created != 1 {
		t.Fatalf("pending reconciliation created=%d, want 1", reports[1].Created)
	}
}
