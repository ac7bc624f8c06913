package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baselinehq/tennis-league/internal/domain/challenge"
	"github.com/baselinehq/tennis-league/internal/domain/match"
	"github.com/baselinehq/tennis-league/internal/domain/player"
	"github.com/baselinehq/tennis-league/internal/domain/team"
	"github.com/baselinehq/tennis-league/internal/domain/user"
	"github.com/baselinehq/tennis-league/internal/platform/docstore"
	"github.com/baselinehq/tennis-league/internal/platform/id"
	"github.com/baselinehq/tennis-league/internal/platform/logging"
)

type CreateChallengeInput struct {
	TeamID       string
	PlayerIDs    []string
	MatchType    string
	Level        float64
	ProposedDate *time.Time
	Notes        string
}

type AcceptChallengeInput struct {
	ChallengeID  string
	TeamID       string
	PlayerIDs    []string
	AcceptedDate *time.Time
}

// AcceptChallengeResult carries the accepted challenge and, when pending
// match creation succeeded, the match. When match creation fails after the
// acceptance has committed, the acceptance stands and MatchCreationWarning
// explains what to retry via EnsurePendingMatch.
type AcceptChallengeResult struct {
	Challenge            challenge.Challenge
	Match                *match.Match
	MatchCreationWarning string
}

type UpdateChallengeInput struct {
	ChallengeID  string
	PlayerIDs    []string
	Level        float64
	ProposedDate *time.Time
	Notes        string
}

type ChallengeService struct {
	challengeRepo challenge.Repository
	matchRepo     match.Repository
	teamRepo      team.Repository
	playerRepo    player.Repository
	idGen         id.Generator
	logger        *logging.Logger
	now           func() time.Time
}

func NewChallengeService(
	challengeRepo challenge.Repository,
	matchRepo match.Repository,
	teamRepo team.Repository,
	playerRepo player.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *ChallengeService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ChallengeService{
		challengeRepo: challengeRepo,
		matchRepo:     matchRepo,
		teamRepo:      teamRepo,
		playerRepo:    playerRepo,
		idGen:         idGen,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *ChallengeService) GetByID(ctx context.Context, challengeID string) (challenge.Challenge, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge id is required", ErrInvalidInput)
	}

	item, exists, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("get challenge: %w", err)
	}
	if !exists {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	}

	return item, nil
}

func (s *ChallengeService) List(ctx context.Context) ([]challenge.Challenge, error) {
	items, err := s.challengeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return items, nil
}

func (s *ChallengeService) ListByStatus(ctx context.Context, status string) ([]challenge.Challenge, error) {
	status = strings.TrimSpace(status)
	switch status {
	case challenge.StatusOpen, challenge.StatusAccepted, challenge.StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: unknown challenge status %q", ErrInvalidInput, status)
	}

	items, err := s.challengeRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list challenges by status: %w", err)
	}
	return items, nil
}

func (s *ChallengeService) Create(ctx context.Context, actor user.Principal, input CreateChallengeInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Create")
	defer span.End()

	teamID := strings.TrimSpace(input.TeamID)
	if teamID == "" {
		teamID = actor.TeamID
	}
	if !actor.OwnsTeam(teamID) {
		return challenge.Challenge{}, fmt.Errorf("%w: only the team captain or a director can issue challenges for team %s", ErrUnauthorized, teamID)
	}

	roster, err := s.loadRoster(ctx, teamID, input.PlayerIDs)
	if err != nil {
		return challenge.Challenge{}, err
	}
	if err := match.ValidateRoster(input.MatchType, roster, input.Level); err != nil {
		return challenge.Challenge{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	challengeID, err := s.idGen.NewID(id.PrefixChallenge)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("generate challenge id: %w", err)
	}

	now := s.now().UTC()
	item := challenge.Challenge{
		ID:                  challengeID,
		ChallengerTeamID:    teamID,
		ChallengerPlayerIDs: input.PlayerIDs,
		MatchType:           input.MatchType,
		Level:               input.Level,
		ProposedDate:        input.ProposedDate,
		Notes:               strings.TrimSpace(input.Notes),
		Status:              challenge.StatusOpen,
		CreatedBy:           actor.UserID,
		CreatedAt:           now,
		UpdatedBy:           actor.UserID,
		UpdatedAt:           now,
	}
	if err := item.Validate(); err != nil {
		return challenge.Challenge{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.challengeRepo.Create(ctx, item); err != nil {
		return challenge.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}

	s.logger.InfoContext(ctx, "challenge created",
		"challenge_id", item.ID,
		"team_id", teamID,
		"match_type", item.MatchType,
	)
	return item, nil
}

// Accept stamps the acceptance inside a store transaction so that under
// concurrent accepts exactly one caller wins; every loser gets ErrConflict
// naming the prior acceptor. The pending match is created after the commit
// and its failure degrades to a warning, never to a rolled-back acceptance.
func (s *ChallengeService) Accept(ctx context.Context, actor user.Principal, input AcceptChallengeInput) (AcceptChallengeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Accept")
	defer span.End()

	challengeID := strings.TrimSpace(input.ChallengeID)
	if challengeID == "" {
		return AcceptChallengeResult{}, fmt.Errorf("%w: challenge id is required", ErrInvalidInput)
	}
	teamID := strings.TrimSpace(input.TeamID)
	if teamID == "" {
		teamID = actor.TeamID
	}
	if !actor.OwnsTeam(teamID) {
		return AcceptChallengeResult{}, fmt.Errorf("%w: only the team captain or a director can accept for team %s", ErrUnauthorized, teamID)
	}

	roster, err := s.loadRoster(ctx, teamID, input.PlayerIDs)
	if err != nil {
		return AcceptChallengeResult{}, err
	}

	now := s.now().UTC()
	accepted, err := s.challengeRepo.Mutate(ctx, challengeID, func(c *challenge.Challenge) error {
		if !c.IsOpen() {
			return fmt.Errorf("%w: challenge %s already accepted by %s", ErrConflict, c.ID, acceptorName(*c))
		}
		if c.ChallengerTeamID == teamID {
			return fmt.Errorf("%w: a team cannot accept its own challenge", ErrInvalidInput)
		}
		if err := match.ValidateRoster(c.MatchType, roster, c.Level); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		c.Status = challenge.StatusAccepted
		c.ChallengedTeamID = teamID
		c.ChallengedPlayerIDs = input.PlayerIDs
		c.AcceptedLevel = c.Level
		c.AcceptedDate = input.AcceptedDate
		c.AcceptedBy = actor.Name
		c.AcceptedAt = &now
		c.UpdatedBy = actor.UserID
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return AcceptChallengeResult{}, s.translateMutateErr(err, challengeID)
	}

	result := AcceptChallengeResult{Challenge: accepted}

	created, createdNew, err := s.ensurePendingMatch(ctx, accepted)
	if err != nil {
		s.logger.WarnContext(ctx, "pending match creation failed after acceptance",
			"challenge_id", accepted.ID,
			"error", err,
		)
		result.MatchCreationWarning = fmt.Sprintf("challenge accepted but pending match creation failed: %v", err)
		return result, nil
	}
	result.Match = &created

	s.logger.InfoContext(ctx, "challenge accepted",
		"challenge_id", accepted.ID,
		"accepting_team_id", teamID,
		"match_id", created.ID,
		"match_created", createdNew,
	)
	return result, nil
}

// EnsurePendingMatch is the idempotent retry for a pending match that failed
// to appear during Accept. Running it against a challenge that already has a
// match, pending or completed, changes nothing.
func (s *ChallengeService) EnsurePendingMatch(ctx context.Context, challengeID string) (match.Match, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.EnsurePendingMatch")
	defer span.End()

	item, err := s.GetByID(ctx, challengeID)
	if err != nil {
		return match.Match{}, false, err
	}
	if item.IsOpen() {
		return match.Match{}, false, fmt.Errorf("%w: challenge %s has not been accepted", ErrConflict, item.ID)
	}

	return s.ensurePendingMatch(ctx, item)
}

func (s *ChallengeService) Complete(ctx context.Context, actor user.Principal, challengeID, matchID string) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Complete")
	defer span.End()

	challengeID = strings.TrimSpace(challengeID)
	matchID = strings.TrimSpace(matchID)
	if challengeID == "" || matchID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge id and match id are required", ErrInvalidInput)
	}

	now := s.now().UTC()
	item, err := s.challengeRepo.Mutate(ctx, challengeID, func(c *challenge.Challenge) error {
		if !actor.OwnsTeam(c.ChallengerTeamID) && !actor.OwnsTeam(c.ChallengedTeamID) {
			return fmt.Errorf("%w: actor is not involved in challenge %s", ErrUnauthorized, c.ID)
		}
		if !challenge.CanTransition(c.Status, challenge.StatusCompleted) {
			return fmt.Errorf("%w: challenge %s is %s, only accepted challenges can complete", ErrConflict, c.ID, c.Status)
		}

		c.Status = challenge.StatusCompleted
		c.CompletedMatchID = matchID
		c.UpdatedBy = actor.UserID
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return challenge.Challenge{}, s.translateMutateErr(err, challengeID)
	}

	return item, nil
}

func (s *ChallengeService) Update(ctx context.Context, actor user.Principal, input UpdateChallengeInput) (challenge.Challenge, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Update")
	defer span.End()

	challengeID := strings.TrimSpace(input.ChallengeID)
	if challengeID == "" {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge id is required", ErrInvalidInput)
	}
	if input.Level <= 0 {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge level must be positive", ErrInvalidInput)
	}

	now := s.now().UTC()
	item, err := s.challengeRepo.Mutate(ctx, challengeID, func(c *challenge.Challenge) error {
		if !actor.OwnsTeam(c.ChallengerTeamID) {
			return fmt.Errorf("%w: only the issuing captain or a director can update challenge %s", ErrUnauthorized, c.ID)
		}
		if !c.IsOpen() {
			return fmt.Errorf("%w: challenge %s is %s, only open challenges can be updated", ErrConflict, c.ID, c.Status)
		}

		if len(input.PlayerIDs) > 0 {
			roster, err := s.loadRoster(ctx, c.ChallengerTeamID, input.PlayerIDs)
			if err != nil {
				return err
			}
			if err := match.ValidateRoster(c.MatchType, roster, input.Level); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			c.ChallengerPlayerIDs = input.PlayerIDs
		}
		c.Level = input.Level
		c.ProposedDate = input.ProposedDate
		c.Notes = strings.TrimSpace(input.Notes)
		c.UpdatedBy = actor.UserID
		c.UpdatedAt = now
		return nil
	})
	if err != nil {
		return challenge.Challenge{}, s.translateMutateErr(err, challengeID)
	}

	return item, nil
}

func (s *ChallengeService) Delete(ctx context.Context, actor user.Principal, challengeID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Delete")
	defer span.End()

	item, err := s.GetByID(ctx, challengeID)
	if err != nil {
		return err
	}
	if !actor.OwnsTeam(item.ChallengerTeamID) {
		return fmt.Errorf("%w: only the issuing captain or a director can delete challenge %s", ErrUnauthorized, item.ID)
	}
	if !item.IsOpen() {
		return fmt.Errorf("%w: challenge %s is %s, only open challenges can be deleted", ErrConflict, item.ID, item.Status)
	}

	if err := s.challengeRepo.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}

	s.logger.InfoContext(ctx, "challenge deleted", "challenge_id", item.ID)
	return nil
}

// ensurePendingMatch creates the single pending match derived from an
// accepted challenge. The existence check spans pending and completed
// matches, so a challenge whose match already finished never gets a second
// one.
func (s *ChallengeService) ensurePendingMatch(ctx context.Context, c challenge.Challenge) (match.Match, bool, error) {
	existing, found, err := s.matchRepo.GetByChallenge(ctx, c.ID)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("check existing match for challenge: %w", err)
	}
	if found {
		return existing, false, nil
	}

	matchID, err := s.idGen.NewID(id.PrefixMatch)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	item := match.Match{
		ID:             matchID,
		ChallengeID:    c.ID,
		Status:         match.StatusPending,
		MatchType:      c.MatchType,
		Level:          c.AcceptedLevel,
		Team1ID:        c.ChallengerTeamID,
		Team2ID:        c.ChallengedTeamID,
		Team1PlayerIDs: c.ChallengerPlayerIDs,
		Team2PlayerIDs: c.ChallengedPlayerIDs,
		Team1Rating:    s.combinedRating(ctx, c.ChallengerPlayerIDs),
		Team2Rating:    s.combinedRating(ctx, c.ChallengedPlayerIDs),
		ScheduledAt:    c.AcceptedDate,
		CreatedBy:      c.UpdatedBy,
		CreatedAt:      now,
		UpdatedBy:      c.UpdatedBy,
		UpdatedAt:      now,
	}
	if item.Level == 0 {
		item.Level = c.Level
	}

	if err := s.matchRepo.Create(ctx, item); err != nil {
		return match.Match{}, false, fmt.Errorf("create pending match: %w", err)
	}

	return item, true, nil
}

func (s *ChallengeService) loadRoster(ctx context.Context, teamID string, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one player is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(playerIDs))
	roster := make([]player.Player, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		playerID = strings.TrimSpace(playerID)
		if playerID == "" {
			return nil, fmt.Errorf("%w: player id cannot be empty", ErrInvalidInput)
		}
		if _, dup := seen[playerID]; dup {
			return nil, fmt.Errorf("%w: player %s listed twice", ErrInvalidInput, playerID)
		}
		seen[playerID] = struct{}{}

		p, exists, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("get player: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
		}
		if teamID != "" && p.TeamID != teamID {
			return nil, fmt.Errorf("%w: player %s is not on team %s", ErrInvalidInput, playerID, teamID)
		}
		roster = append(roster, p)
	}

	return roster, nil
}

// combinedRating is best-effort enrichment for the pending match document;
// missing players contribute zero rather than failing match creation.
func (s *ChallengeService) combinedRating(ctx context.Context, playerIDs []string) float64 {
	total := 0.0
	for _, playerID := range playerIDs {
		p, exists, err := s.playerRepo.GetByID(ctx, playerID)
		if err != nil || !exists {
			continue
		}
		total += p.Rating
	}
	return total
}

func (s *ChallengeService) translateMutateErr(err error, challengeID string) error {
	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnauthorized):
		return err
	case errors.Is(err, docstore.ErrNotFound):
		return fmt.Errorf("%w: challenge=%s", ErrNotFound, challengeID)
	case errors.Is(err, docstore.ErrConflict):
		return fmt.Errorf("%w: challenge %s was modified concurrently", ErrConflict, challengeID)
	case errors.Is(err, docstore.ErrTransient):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	default:
		return fmt.Errorf("mutate challenge: %w", err)
	}
}

func acceptorName(c challenge.Challenge) string {
	if c.AcceptedBy != "" {
		return c.AcceptedBy
	}
	if c.ChallengedTeamID != "" {
		return "team " + c.ChallengedTeamID
	}
	return "another team"
}
