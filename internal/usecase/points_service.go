package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/baselinehq/tennis-league/internal/domain/match"
	"github.com/baselinehq/tennis-league/internal/domain/standings"
	"github.com/baselinehq/tennis-league/internal/domain/team"
	"github.com/baselinehq/tennis-league/internal/platform/cache"
	"github.com/baselinehq/tennis-league/internal/platform/logging"
	"github.com/baselinehq/tennis-league/internal/platform/resilience"
)

// PointsPolicy is the season scoring rule set. Win points per month are a
// tournament artifact, so they live in configuration rather than code.
type PointsPolicy struct {
	WinPointsByMonth  map[time.Month]int
	DefaultWinPoints  int
	BonusPerSetInLoss float64
	BonusCapRatio     float64
	Epsilon           float64
}

func NormalizePointsPolicy(p PointsPolicy) PointsPolicy {
	if p.WinPointsByMonth == nil {
		p.WinPointsByMonth = map[time.Month]int{time.January: 4}
	}
	if p.DefaultWinPoints <= 0 {
		p.DefaultWinPoints = 2
	}
	if p.BonusPerSetInLoss <= 0 {
		p.BonusPerSetInLoss = 0.5
	}
	if p.BonusCapRatio <= 0 {
		p.BonusCapRatio = 0.25
	}
	if p.Epsilon <= 0 {
		p.Epsilon = 0.001
	}
	return p
}

func (p PointsPolicy) winPoints(when time.Time) int {
	if pts, ok := p.WinPointsByMonth[when.UTC().Month()]; ok {
		return pts
	}
	return p.DefaultWinPoints
}

// AuditReport compares the recomputed standing against the cached one for
// a single team.
type AuditReport struct {
	TeamID        string                  `json:"team_id"`
	Expected      standings.Standing      `json:"expected"`
	Cached        standings.Standing      `json:"cached"`
	CachedExists  bool                    `json:"cached_exists"`
	Discrepancies []standings.Discrepancy `json:"discrepancies"`
}

func (r AuditReport) Clean() bool { return len(r.Discrepancies) == 0 }

type PointsService struct {
	matchRepo     match.Repository
	teamRepo      team.Repository
	standingsRepo standings.Repository
	policy        PointsPolicy
	cache         *cache.Store
	flight        resilience.SingleFlight
	logger        *logging.Logger
	now           func() time.Time
}

func NewPointsService(
	matchRepo match.Repository,
	teamRepo team.Repository,
	standingsRepo standings.Repository,
	policy PointsPolicy,
	cacheStore *cache.Store,
	logger *logging.Logger,
) *PointsService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PointsService{
		matchRepo:     matchRepo,
		teamRepo:      teamRepo,
		standingsRepo: standingsRepo,
		policy:        NormalizePointsPolicy(policy),
		cache:         cacheStore,
		logger:        logger,
		now:           time.Now,
	}
}

// Recalculate is a pure walk over the given matches: completed matches
// involving the team, in chronological order, accumulate win points per the
// month policy plus sets and games won. The loss bonus is capped at the
// configured share of win points.
func (s *PointsService) Recalculate(teamID string, matches []match.Match) standings.Standing {
	standing := standings.Standing{TeamID: teamID}

	relevant := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status != match.StatusCompleted || !m.InvolvesTeam(teamID) {
			continue
		}
		relevant = append(relevant, m)
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		return matchPlayedTime(relevant[i]).Before(matchPlayedTime(relevant[j]))
	})

	uncappedBonus := 0.0
	for _, m := range relevant {
		setsWon, gamesWon := m.Team1Sets, m.Team1Games
		won := m.Winner == match.WinnerTeam1
		if m.Team2ID == teamID {
			setsWon, gamesWon = m.Team2Sets, m.Team2Games
			won = m.Winner == match.WinnerTeam2
		}

		standing.MatchesPlayed++
		standing.SetsWon += setsWon
		standing.GamesWon += gamesWon

		if won {
			standing.Wins++
			standing.WinPoints += s.policy.winPoints(matchPlayedTime(m))
		} else {
			standing.Losses++
			uncappedBonus += s.policy.BonusPerSetInLoss * float64(setsWon)
		}
	}

	standing.BonusPoints = math.Min(uncappedBonus, s.policy.BonusCapRatio*float64(standing.WinPoints))
	standing.TotalPoints = float64(standing.WinPoints) + standing.BonusPoints
	return standing
}

// Audit recomputes a team's standing from the stored matches and reports
// every field drifting beyond the policy epsilon from the cached row. It
// is read-only.
func (s *PointsService) Audit(ctx context.Context, teamID string) (AuditReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.Audit")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return AuditReport{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if _, exists, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return AuditReport{}, fmt.Errorf("get team: %w", err)
	} else if !exists {
		return AuditReport{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	matches, err := s.matchRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return AuditReport{}, fmt.Errorf("list matches for audit: %w", err)
	}
	expected := s.Recalculate(teamID, matches)

	cached, exists, err := s.standingsRepo.GetByTeam(ctx, teamID)
	if err != nil {
		return AuditReport{}, fmt.Errorf("get cached standing: %w", err)
	}

	report := AuditReport{
		TeamID:       teamID,
		Expected:     expected,
		Cached:       cached,
		CachedExists: exists,
	}
	report.Discrepancies = s.diffStandings(expected, cached)

	if !report.Clean() {
		s.logger.WarnContext(ctx, "standing audit found drift",
			"team_id", teamID,
			"discrepancies", len(report.Discrepancies),
		)
	}
	return report, nil
}

func (s *PointsService) diffStandings(expected, cached standings.Standing) []standings.Discrepancy {
	fields := []struct {
		name     string
		expected float64
		actual   float64
	}{
		{"Win Points", float64(expected.WinPoints), float64(cached.WinPoints)},
		{"Bonus Points", expected.BonusPoints, cached.BonusPoints},
		{"Total Points", expected.TotalPoints, cached.TotalPoints},
		{"Sets Won", float64(expected.SetsWon), float64(cached.SetsWon)},
		{"Games Won", float64(expected.GamesWon), float64(cached.GamesWon)},
		{"Matches Played", float64(expected.MatchesPlayed), float64(cached.MatchesPlayed)},
		{"Wins", float64(expected.Wins), float64(cached.Wins)},
		{"Losses", float64(expected.Losses), float64(cached.Losses)},
	}

	out := make([]standings.Discrepancy, 0)
	for _, f := range fields {
		diff := f.expected - f.actual
		if math.Abs(diff) <= s.policy.Epsilon {
			continue
		}
		out = append(out, standings.Discrepancy{
			Field:      f.name,
			Expected:   f.expected,
			Actual:     f.actual,
			Difference: diff,
		})
	}
	return out
}

// RefreshStandings recomputes every active team's standing and writes the
// cached rows. Directors run it after result entry or a migration.
func (s *PointsService) RefreshStandings(ctx context.Context) ([]standings.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RefreshStandings")
	defer span.End()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	now := s.now().UTC()
	out := make([]standings.Standing, 0, len(teams))
	for _, t := range teams {
		standing := s.Recalculate(t.ID, matches)
		standing.UpdatedAt = now
		if err := s.standingsRepo.Upsert(ctx, standing); err != nil {
			return nil, fmt.Errorf("upsert standing for team %s: %w", t.ID, err)
		}
		out = append(out, standing)
	}

	sortStandings(out)
	if s.cache != nil {
		s.cache.Delete(ctx, standingsCacheKey)
	}
	return out, nil
}

const standingsCacheKey = "standings:list"

// Standings serves the leaderboard from the TTL cache; concurrent cold
// reads collapse into a single repository hit.
func (s *PointsService) Standings(ctx context.Context) ([]standings.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.Standings")
	defer span.End()

	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, standingsCacheKey); ok {
			if rows, ok := v.([]standings.Standing); ok {
				return rows, nil
			}
		}
	}

	v, err, _ := s.flight.Do(standingsCacheKey, func() (any, error) {
		rows, err := s.standingsRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list standings: %w", err)
		}
		sortStandings(rows)
		if s.cache != nil {
			s.cache.Set(ctx, standingsCacheKey, rows)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	rows, _ := v.([]standings.Standing)
	return rows, nil
}

func sortStandings(rows []standings.Standing) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		if rows[i].SetsWon != rows[j].SetsWon {
			return rows[i].SetsWon > rows[j].SetsWon
		}
		return rows[i].TeamID < rows[j].TeamID
	})
}

func matchPlayedTime(m match.Match) time.Time {
	if m.PlayedAt != nil {
		return *m.PlayedAt
	}
	return m.CreatedAt
}
