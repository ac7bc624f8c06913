package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/baselinehq/tennis-league/internal/domain/challenge"
	"github.com/baselinehq/tennis-league/internal/domain/match"
	"github.com/baselinehq/tennis-league/internal/domain/player"
	"github.com/baselinehq/tennis-league/internal/domain/team"
	"github.com/baselinehq/tennis-league/internal/domain/user"
	"github.com/baselinehq/tennis-league/internal/platform/id"
	"github.com/baselinehq/tennis-league/internal/platform/logging"
)

// ResultNotification is the payload handed to the email channel when a
// match finishes.
type ResultNotification struct {
	RecipientEmail string
	RecipientName  string
	SenderTeam     string
	RecipientTeam  string
	MatchScores    string
	MatchDate      string
	MatchLevel     float64
	EmailType      string
}

// ResultNotifier delivers match result notifications. Delivery is best
// effort: a failed send never rolls back the completed match.
type ResultNotifier interface {
	SendResult(ctx context.Context, notice ResultNotification) error
}

type ScheduleMatchInput struct {
	Team1ID        string
	Team2ID        string
	Team1PlayerIDs []string
	Team2PlayerIDs []string
	MatchType      string
	Level          float64
	ScheduledAt    *time.Time
	Notes          string
}

type RecordMatchInput struct {
	ScheduleMatchInput
	Sets     []match.SetScore
	Winner   string
	PlayedAt *time.Time
}

type CompleteMatchInput struct {
	MatchID  string
	Sets     []match.SetScore
	Winner   string
	PlayedAt *time.Time
	Notes    string
}

type UpdateMatchInput struct {
	MatchID     string
	ScheduledAt *time.Time
	Level       float64
	Notes       string
}

type MatchService struct {
	matchRepo     match.Repository
	challengeRepo challenge.Repository
	teamRepo      team.Repository
	playerRepo    player.Repository
	idGen         id.Generator
	notifier      ResultNotifier
	logger        *logging.Logger
	now           func() time.Time
}

func NewMatchService(
	matchRepo match.Repository,
	challengeRepo challenge.Repository,
	teamRepo team.Repository,
	playerRepo player.Repository,
	idGen id.Generator,
	notifier ResultNotifier,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &MatchService{
		matchRepo:     matchRepo,
		challengeRepo: challengeRepo,
		teamRepo:      teamRepo,
		playerRepo:    playerRepo,
		idGen:         idGen,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *MatchService) GetByID(ctx context.Context, matchID string) (match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

func (s *MatchService) List(ctx context.Context) ([]match.Match, error) {
	items, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return items, nil
}

func (s *MatchService) ListByStatus(ctx context.Context, status string) ([]match.Match, error) {
	status = strings.TrimSpace(status)
	switch status {
	case match.StatusPending, match.StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: unknown match status %q", ErrInvalidInput, status)
	}

	items, err := s.matchRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list matches by status: %w", err)
	}
	return items, nil
}

func (s *MatchService) ListByTeam(ctx context.Context, teamID string) ([]match.Match, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	items, err := s.matchRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("list matches by team: %w", err)
	}
	return items, nil
}

// Schedule creates a pending match outside the challenge flow, for fixtures
// arranged directly between captains or by a director.
func (s *MatchService) Schedule(ctx context.Context, actor user.Principal, input ScheduleMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Schedule")
	defer span.End()

	item, err := s.buildMatch(ctx, actor, input)
	if err != nil {
		return match.Match{}, err
	}
	item.Status = match.StatusPending

	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.matchRepo.Create(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}

	s.logger.InfoContext(ctx, "match scheduled",
		"match_id", item.ID,
		"team1_id", item.Team1ID,
		"team2_id", item.Team2ID,
	)
	return item, nil
}

// Record writes an already-played match straight to completed. Directors
// only; the declared winner must agree with the winner recomputed from the
// set scores.
func (s *MatchService) Record(ctx context.Context, actor user.Principal, input RecordMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Record")
	defer span.End()

	if !actor.IsDirector() {
		return match.Match{}, fmt.Errorf("%w: only a director can record a finished match directly", ErrUnauthorized)
	}

	item, err := s.buildMatch(ctx, actor, input.ScheduleMatchInput)
	if err != nil {
		return match.Match{}, err
	}

	line, err := match.ComputeScoreline(input.Sets)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Winner == "" {
		return match.Match{}, fmt.Errorf("%w: winner is required when recording a finished match", ErrInvalidInput)
	}
	if input.Winner != line.Winner {
		return match.Match{}, fmt.Errorf("%w: declared winner %s does not match computed winner %s", ErrInvalidInput, input.Winner, line.Winner)
	}

	item.Status = match.StatusCompleted
	item.Sets = input.Sets
	item.Apply(line)
	item.PlayedAt = input.PlayedAt
	if item.PlayedAt == nil {
		now := s.now().UTC()
		item.PlayedAt = &now
	}
	item.CompletedBy = actor.UserID

	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.matchRepo.Create(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("create recorded match: %w", err)
	}

	s.notifyResult(ctx, item)
	return item, nil
}

// Complete moves a pending match to completed with its scoreline. The
// linked challenge is marked completed afterwards and the result email is
// fired last; neither step can undo the persisted match.
func (s *MatchService) Complete(ctx context.Context, actor user.Principal, input CompleteMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Complete")
	defer span.End()

	item, err := s.GetByID(ctx, input.MatchID)
	if err != nil {
		return match.Match{}, err
	}
	if !actor.OwnsTeam(item.Team1ID) && !actor.OwnsTeam(item.Team2ID) {
		return match.Match{}, fmt.Errorf("%w: actor is not involved in match %s", ErrUnauthorized, item.ID)
	}
	if item.Status != match.StatusPending {
		return match.Match{}, fmt.Errorf("%w: match %s is %s, only pending matches can complete", ErrConflict, item.ID, item.Status)
	}

	line, err := match.ComputeScoreline(input.Sets)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Winner != "" && input.Winner != line.Winner {
		return match.Match{}, fmt.Errorf("%w: declared winner %s does not match computed winner %s", ErrInvalidInput, input.Winner, line.Winner)
	}

	now := s.now().UTC()
	item.Status = match.StatusCompleted
	item.Sets = input.Sets
	item.Apply(line)
	item.PlayedAt = input.PlayedAt
	if item.PlayedAt == nil {
		item.PlayedAt = &now
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		item.Notes = notes
	}
	item.CompletedBy = actor.UserID
	item.UpdatedBy = actor.UserID
	item.UpdatedAt = now

	if err := s.matchRepo.Update(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("complete match: %w", err)
	}

	s.completeLinkedChallenge(ctx, actor, item)
	s.notifyResult(ctx, item)

	s.logger.InfoContext(ctx, "match completed",
		"match_id", item.ID,
		"winner", item.Winner,
		"score", formatScores(item.Sets),
	)
	return item, nil
}

func (s *MatchService) Update(ctx context.Context, actor user.Principal, input UpdateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Update")
	defer span.End()

	item, err := s.GetByID(ctx, input.MatchID)
	if err != nil {
		return match.Match{}, err
	}
	if !actor.IsDirector() && !actor.OwnsTeam(item.Team1ID) && !actor.OwnsTeam(item.Team2ID) {
		return match.Match{}, fmt.Errorf("%w: actor is not involved in match %s", ErrUnauthorized, item.ID)
	}
	if item.Status != match.StatusPending {
		return match.Match{}, fmt.Errorf("%w: match %s is %s, only pending matches can be updated", ErrConflict, item.ID, item.Status)
	}

	if input.ScheduledAt != nil {
		item.ScheduledAt = input.ScheduledAt
	}
	if input.Level > 0 {
		item.Level = input.Level
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		item.Notes = notes
	}
	item.UpdatedBy = actor.UserID
	item.UpdatedAt = s.now().UTC()

	if err := s.matchRepo.Update(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}
	return item, nil
}

func (s *MatchService) Delete(ctx context.Context, actor user.Principal, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete")
	defer span.End()

	item, err := s.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if !actor.IsDirector() && !actor.OwnsTeam(item.Team1ID) && !actor.OwnsTeam(item.Team2ID) {
		return fmt.Errorf("%w: actor is not involved in match %s", ErrUnauthorized, item.ID)
	}
	if item.Status != match.StatusPending && !actor.IsDirector() {
		return fmt.Errorf("%w: completed matches can only be removed by a director", ErrConflict)
	}

	if err := s.matchRepo.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}

	s.logger.InfoContext(ctx, "match deleted", "match_id", item.ID)
	return nil
}

func (s *MatchService) buildMatch(ctx context.Context, actor user.Principal, input ScheduleMatchInput) (match.Match, error) {
	team1ID := strings.TrimSpace(input.Team1ID)
	team2ID := strings.TrimSpace(input.Team2ID)
	if team1ID == "" || team2ID == "" {
		return match.Match{}, fmt.Errorf("%w: both team ids are required", ErrInvalidInput)
	}
	if team1ID == team2ID {
		return match.Match{}, fmt.Errorf("%w: a team cannot play itself", ErrInvalidInput)
	}
	if !actor.OwnsTeam(team1ID) && !actor.OwnsTeam(team2ID) {
		return match.Match{}, fmt.Errorf("%w: actor must captain one of the teams", ErrUnauthorized)
	}

	roster1, err := s.loadTeamRoster(ctx, team1ID, input.Team1PlayerIDs)
	if err != nil {
		return match.Match{}, err
	}
	roster2, err := s.loadTeamRoster(ctx, team2ID, input.Team2PlayerIDs)
	if err != nil {
		return match.Match{}, err
	}
	if err := match.ValidateRoster(input.MatchType, roster1, input.Level); err != nil {
		return match.Match{}, fmt.Errorf("%w: team %s: %v", ErrInvalidInput, team1ID, err)
	}
	if err := match.ValidateRoster(input.MatchType, roster2, input.Level); err != nil {
		return match.Match{}, fmt.Errorf("%w: team %s: %v", ErrInvalidInput, team2ID, err)
	}

	matchID, err := s.idGen.NewID(id.PrefixMatch)
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	return match.Match{
		ID:             matchID,
		MatchType:      input.MatchType,
		Level:          input.Level,
		Team1ID:        team1ID,
		Team2ID:        team2ID,
		Team1PlayerIDs: input.Team1PlayerIDs,
		Team2PlayerIDs: input.Team2PlayerIDs,
		Team1Rating:    player.CombinedRating(roster1),
		Team2Rating:    player.CombinedRating(roster2),
		ScheduledAt:    input.ScheduledAt,
		Notes:          strings.TrimSpace(input.Notes),
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
		UpdatedBy:      actor.UserID,
		UpdatedAt:      now,
	}, nil
}

func (s *MatchService) loadTeamRoster(ctx context.Context, teamID string, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return nil, fmt.Errorf("%w: team %s roster is empty", ErrInvalidInput, teamID)
	}

	roster := make([]player.Player, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		p, exists, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("get player: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
		}
		if p.TeamID != teamID {
			return nil, fmt.Errorf("%w: player %s is not on team %s", ErrInvalidInput, playerID, teamID)
		}
		roster = append(roster, p)
	}
	return roster, nil
}

// completeLinkedChallenge closes the loop when the match came from an
// accepted challenge. The match is already persisted; a failure here only
// logs, the state converges on the next completion attempt or via a
// director backfill.
func (s *MatchService) completeLinkedChallenge(ctx context.Context, actor user.Principal, item match.Match) {
	if item.ChallengeID == "" {
		return
	}

	now := s.now().UTC()
	_, err := s.challengeRepo.Mutate(ctx, item.ChallengeID, func(c *challenge.Challenge) error {
		if c.IsCompleted() {
			return nil
		}
		c.Status = challenge.StatusCompleted
		c.CompletedMatchID = item.ID
		c.UpdatedBy = actor.UserID
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "linked challenge completion failed",
			"match_id", item.ID,
			"challenge_id", item.ChallengeID,
			"error", err,
		)
	}
}

func (s *MatchService) notifyResult(ctx context.Context, item match.Match) {
	if s.notifier == nil {
		return
	}

	winnerTeamID, loserTeamID := item.Team1ID, item.Team2ID
	if item.Winner == match.WinnerTeam2 {
		winnerTeamID, loserTeamID = item.Team2ID, item.Team1ID
	}

	notice := ResultNotification{
		SenderTeam:  s.teamName(ctx, winnerTeamID),
		MatchScores: formatScores(item.Sets),
		MatchLevel:  item.Level,
		EmailType:   "match_result",
	}
	if item.PlayedAt != nil {
		notice.MatchDate = item.PlayedAt.UTC().Format("2006-01-02")
	}

	loser, exists, err := s.teamRepo.GetByID(ctx, loserTeamID)
	if err != nil || !exists || loser.CaptainEmail == "" {
		s.logger.WarnContext(ctx, "result notification skipped, no recipient",
			"match_id", item.ID,
			"team_id", loserTeamID,
		)
		return
	}
	notice.RecipientEmail = loser.CaptainEmail
	notice.RecipientName = loser.CaptainID
	notice.RecipientTeam = loser.Name

	if err := s.notifier.SendResult(ctx, notice); err != nil {
		s.logger.WarnContext(ctx, "result notification failed",
			"match_id", item.ID,
			"recipient", notice.RecipientEmail,
			"error", err,
		)
	}
}

func (s *MatchService) teamName(ctx context.Context, teamID string) string {
	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil || !exists {
		return teamID
	}
	return item.Name
}

func formatScores(sets []match.SetScore) string {
	parts := make([]string, 0, len(sets))
	for _, set := range sets {
		parts = append(parts, fmt.Sprintf("%d-%d", set.Team1Games, set.Team2Games))
	}
	return strings.Join(parts, ", ")
}
