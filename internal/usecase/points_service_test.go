package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/baselinehq/tennis-league/internal/domain/match"
	"github.com/baselinehq/tennis-league/internal/domain/standings"
	"github.com/baselinehq/tennis-league/internal/domain/team"
	repo "github.com/baselinehq/tennis-league/internal/infrastructure/repository/docstore"
	"github.com/baselinehq/tennis-league/internal/platform/cache"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
	"github.com/baselinehq/tennis-league/internal/platform/logging"
)

func completedMatch(id string, playedAt time.Time, winner string, t1Sets, t2Sets, t1Games, t2Games int) match.Match {
	return match.Match{
		ID:             id,
		Status:         match.StatusCompleted,
		MatchType:      match.TypeDoubles,
		Team1ID:        "team-a",
		Team2ID:        "team-b",
		Team1PlayerIDs: []string{"p1", "p2"},
		Team2PlayerIDs: []string{"p3", "p4"},
		PlayedAt:       &playedAt,
		Team1Sets:      t1Sets,
		Team2Sets:      t2Sets,
		Team1Games:     t1Games,
		Team2Games:     t2Games,
		Winner:         winner,
	}
}

func newPointsService(matchRepo match.Repository, teamRepo team.Repository, standingsRepo standings.Repository) *PointsService {
	return NewPointsService(
		matchRepo, teamRepo, standingsRepo,
		PointsPolicy{}, cache.NewStore(time.Minute), logging.NewNop(),
	)
}

func TestPointsService_RecalculateEmptySet(t *testing.T) {
	s := newPointsService(nil, nil, nil)

	got := s.Recalculate("team-a", nil)
	if got.WinPoints != 0 || got.BonusPoints != 0 || got.TotalPoints != 0 {
		t.Fatalf("empty set must yield zeros, got %+v", got)
	}
	if got.MatchesPlayed != 0 || got.SetsWon != 0 || got.GamesWon != 0 {
		t.Fatalf("empty set must yield zeros, got %+v", got)
	}
}

func TestPointsService_RecalculateMonthPolicy(t *testing.T) {
	s := newPointsService(nil, nil, nil)

	january := time.Date(2024, time.January, 13, 10, 0, 0, 0, time.UTC)
	june := time.Date(2024, time.June, 8, 10, 0, 0, 0, time.UTC)
	november := time.Date(2024, time.November, 2, 10, 0, 0, 0, time.UTC)

	matches := []match.Match{
		completedMatch("m1", january, match.WinnerTeam1, 2, 0, 12, 7),
		completedMatch("m2", june, match.WinnerTeam1, 2, 1, 16, 13),
		completedMatch("m3", november, match.WinnerTeam1, 2, 0, 12, 5),
	}

	got := s.Recalculate("team-a", matches)
	if got.WinPoints != 4+2+2 {
		t.Fatalf("win points = %d, want 8 (4 for January, 2 otherwise)", got.WinPoints)
	}
	if got.Wins != 3 || got.Losses != 0 || got.MatchesPlayed != 3 {
		t.Fatalf("tallies wrong: %+v", got)
	}
	if got.SetsWon != 6 || got.GamesWon != 40 {
		t.Fatalf("sets/games wrong: %+v", got)
	}
	if got.BonusPoints != 0 || got.TotalPoints != 8 {
		t.Fatalf("totals wrong: %+v", got)
	}
}

func TestPointsService_RecalculateBonusCap(t *testing.T) {
	s := newPointsService(nil, nil, nil)

	june := time.Date(2024, time.June, 8, 10, 0, 0, 0, time.UTC)
	matches := []match.Match{
		// One win: 2 win points, so the bonus cap is 0.5.
		completedMatch("m1", june, match.WinnerTeam1, 2, 0, 12, 7),
		// Three losses with a set won each: 1.5 uncapped bonus.
		completedMatch("m2", june.AddDate(0, 0, 1), match.WinnerTeam2, 1, 2, 13, 16),
		completedMatch("m3", june.AddDate(0, 0, 2), match.WinnerTeam2, 1, 2, 13, 16),
		completedMatch("m4", june.AddDate(0, 0, 3), match.WinnerTeam2, 1, 2, 13, 16),
	}

	got := s.Recalculate("team-a", matches)
	if got.WinPoints != 2 {
		t.Fatalf("win points = %d, want 2", got.WinPoints)
	}
	if math.Abs(got.BonusPoints-0.5) > 1e-9 {
		t.Fatalf("bonus = %v, want it capped at 25%% of win points (0.5)", got.BonusPoints)
	}
	if math.Abs(got.TotalPoints-2.5) > 1e-9 {
		t.Fatalf("total = %v, want 2.5", got.TotalPoints)
	}
}

func TestPointsService_RecalculateFiltersMatches(t *testing.T) {
	s := newPointsService(nil, nil, nil)

	june := time.Date(2024, time.June, 8, 10, 0, 0, 0, time.UTC)
	pending := completedMatch("m1", june, "", 0, 0, 0, 0)
	pending.Status = match.StatusPending

	foreign := completedMatch("m2", june, match.WinnerTeam1, 2, 0, 12, 7)
	foreign.Team1ID, foreign.Team2ID = "team-c", "team-d"

	got := s.Recalculate("team-a", []match.Match{pending, foreign})
	if got.MatchesPlayed != 0 {
		t.Fatalf("pending and foreign matches must be excluded, got %+v", got)
	}
}

func TestPointsService_RecalculateTeam2Perspective(t *testing.T) {
	s := newPointsService(nil, nil, nil)

	june := time.Date(2024, time.June, 8, 10, 0, 0, 0, time.UTC)
	got := s.Recalculate("team-b", []match.Match{
		completedMatch("m1", june, match.WinnerTeam2, 1, 2, 13, 16),
	})
	if got.Wins != 1 || got.WinPoints != 2 {
		t.Fatalf("team2 win not counted: %+v", got)
	}
	if got.SetsWon != 2 || got.GamesWon != 16 {
		t.Fatalf("team2 tallies wrong: %+v", got)
	}
}

type auditFixture struct {
	service       *PointsService
	matchRepo     *repo.MatchRepository
	standingsRepo *repo.StandingsRepository
	teamRepo      *repo.TeamRepository
}

func newAuditFixture(t *testing.T) *auditFixture {
	t.Helper()

	store := docstore.NewMemoryStore()
	matchRepo := repo.NewMatchRepository(store)
	teamRepo := repo.NewTeamRepository(store)
	standingsRepo := repo.NewStandingsRepository(store)

	ctx := context.Background()
	for _, item := range []team.Team{
		{ID: "team-a", Name: "Ace Attack", Active: true},
		{ID: "team-b", Name: "Baseline Bandits", Active: true},
	} {
		if err := teamRepo.Upsert(ctx, item); err != nil {
			t.Fatalf("seed team: %v", err)
		}
	}

	june := time.Date(2024, time.June, 8, 10, 0, 0, 0, time.UTC)
	if err := matchRepo.Create(ctx, completedMatch("m1", june, match.WinnerTeam1, 2, 0, 12, 7)); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	return &auditFixture{
		service:       newPointsService(matchRepo, teamRepo, standingsRepo),
		matchRepo:     matchRepo,
		standingsRepo: standingsRepo,
		teamRepo:      teamRepo,
	}
}

func TestPointsService_AuditCleanWithinEpsilon(t *testing.T) {
	f := newAuditFixture(t)
	ctx := context.Background()

	// Cached row drifts by less than the 0.001 epsilon.
	if err := f.standingsRepo.Upsert(ctx, standings.Standing{
		TeamID:        "team-a",
		WinPoints:     2,
		BonusPoints:   0,
		TotalPoints:   2.0005,
		SetsWon:       2,
		GamesWon:      12,
		MatchesPlayed: 1,
		Wins:          1,
	}); err != nil {
		t.Fatalf("seed standing: %v", err)
	}

	report, err := f.service.Audit(ctx, "team-a")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if !report.Clean() {
		t.Fatalf("expected a clean audit, got %+v", report.Discrepancies)
	}
}

func TestPointsService_AuditReportsTotalPointsDrift(t *testing.T) {
	f := newAuditFixture(t)
	ctx := context.Background()

	if err := f.standingsRepo.Upsert(ctx, standings.Standing{
		TeamID:        "team-a",
		WinPoints:     2,
		TotalPoints:   3,
		SetsWon:       2,
		GamesWon:      12,
		MatchesPlayed: 1,
		Wins:          1,
	}); err != nil {
		t.Fatalf("seed standing: %v", err)
	}

	report, err := f.service.Audit(ctx, "team-a")
	if err != nil {
		t.Fatalf("audit: %v", err)
	}
	if report.Clean() {
		t.Fatal("expected drift to be reported")
	}

	var total *standings.Discrepancy
	for i := range report.Discrepancies {
		if report.Discrepancies[i].Field == "Total Points" {
			total = &report.Discrepancies[i]
		}
	}
	if total == nil {
		t.Fatalf("no Total Points discrepancy in %+v", report.Discrepancies)
	}
	if total.Difference == 0 {
		t.Fatal("difference must be non-zero")
	}
	if math.Abs(total.Difference-(-1)) > 1e-9 {
		t.Fatalf("difference = %v, want -1 (expected 2, cached 3)", total.Difference)
	}
}

func TestPointsService_AuditUnknownTeam(t *testing.T) {
	f := newAuditFixture(t)

	_, err := f.service.Audit(context.Background(), "team-z")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPointsService_RefreshAndStandingsCache(t *testing.T) {
	f := newAuditFixture(t)
	ctx := context.Background()

	rows, err := f.service.RefreshStandings(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected a row per team, got %d", len(rows))
	}
	if rows[0].TeamID != "team-a" || rows[0].TotalPoints != 2 {
		t.Fatalf("leaderboard order wrong: %+v", rows)
	}

	served, err := f.service.Standings(ctx)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(served) != 2 || served[0].TeamID != "team-a" {
		t.Fatalf("unexpected standings: %+v", served)
	}

	// A direct repository write is invisible until the cache is refreshed.
	if err := f.standingsRepo.Upsert(ctx, standings.Standing{TeamID: "team-c", TotalPoints: 99}); err != nil {
		t.Fatalf("seed extra standing: %v", err)
	}
	cached, err := f.service.Standings(ctx)
	if err != nil {
		t.Fatalf("standings from cache: %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("cached read should not see the new row yet, got %d rows", len(cached))
	}

	// RefreshStandings drops the cache, so the next read sees the
	// repository as it is, extra row included.
	if _, err := f.service.RefreshStandings(ctx); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	fresh, err := f.service.Standings(ctx)
	if err != nil {
		t.Fatalf("standings after refresh: %v", err)
	}
	if len(fresh) != 3 {
		t.Fatalf("expected 3 rows after cache invalidation, got %d", len(fresh))
	}
	if fresh[0].TeamID != "team-c" {
		t.Fatalf("leaderboard should lead with the 99-point row, got %+v", fresh[0])
	}
}
