package httpapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/baselinehq/tennis-league/internal/domain/challenge"
	"github.com/baselinehq/tennis-league/internal/domain/match"
	"github.com/baselinehq/tennis-league/internal/domain/player"
	"github.com/baselinehq/tennis-league/internal/domain/standings"
	"github.com/baselinehq/tennis-league/internal/domain/team"
	"github.com/baselinehq/tennis-league/internal/usecase"
)

type createChallengeRequest struct {
	TeamID       string   `json:"team_id" validate:"required"`
	PlayerIDs    []string `json:"player_ids" validate:"required,min=1,max=2,dive,required"`
	MatchType    string   `json:"match_type" validate:"required,oneof=singles doubles mixed_doubles"`
	Level        float64  `json:"level" validate:"required,gt=0"`
	ProposedDate string   `json:"proposed_date" validate:"omitempty"`
	Notes        string   `json:"notes" validate:"omitempty,max=500"`
}

type acceptChallengeRequest struct {
	TeamID       string   `json:"team_id" validate:"required"`
	PlayerIDs    []string `json:"player_ids" validate:"required,min=1,max=2,dive,required"`
	AcceptedDate string   `json:"accepted_date" validate:"omitempty"`
}

type updateChallengeRequest struct {
	PlayerIDs    []string `json:"player_ids" validate:"omitempty,min=1,max=2,dive,required"`
	Level        float64  `json:"level" validate:"omitempty,gt=0"`
	ProposedDate string   `json:"proposed_date" validate:"omitempty"`
	Notes        string   `json:"notes" validate:"omitempty,max=500"`
}

type setScorePayload struct {
	Team1Games int  `json:"team1_games" validate:"min=0"`
	Team2Games int  `json:"team2_games" validate:"min=0"`
	Tiebreak   bool `json:"tiebreak"`
}

type scheduleMatchRequest struct {
	Team1ID        string   `json:"team1_id" validate:"required"`
	Team2ID        string   `json:"team2_id" validate:"required"`
	Team1PlayerIDs []string `json:"team1_player_ids" validate:"required,min=1,max=2,dive,required"`
	Team2PlayerIDs []string `json:"team2_player_ids" validate:"required,min=1,max=2,dive,required"`
	MatchType      string   `json:"match_type" validate:"required,oneof=singles doubles mixed_doubles"`
	Level          float64  `json:"level" validate:"required,gt=0"`
	ScheduledAt    string   `json:"scheduled_at" validate:"omitempty"`
	Notes          string   `json:"notes" validate:"omitempty,max=500"`
}

type recordMatchRequest struct {
	scheduleMatchRequest
	Sets     []setScorePayload `json:"sets" validate:"required,min=1,max=3,dive"`
	Winner   string            `json:"winner" validate:"required,oneof=team1 team2"`
	PlayedAt string            `json:"played_at" validate:"omitempty"`
}

type completeMatchRequest struct {
	Sets     []setScorePayload `json:"sets" validate:"required,min=1,max=3,dive"`
	Winner   string            `json:"winner" validate:"omitempty,oneof=team1 team2"`
	PlayedAt string            `json:"played_at" validate:"omitempty"`
	Notes    string            `json:"notes" validate:"omitempty,max=500"`
}

type updateMatchRequest struct {
	ScheduledAt string  `json:"scheduled_at" validate:"omitempty"`
	Level       float64 `json:"level" validate:"omitempty,gt=0"`
	Notes       string  `json:"notes" validate:"omitempty,max=500"`
}

type ensureMatchRequest struct {
	ChallengeID string `json:"challenge_id" validate:"required"`
}

type teamDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CaptainID string   `json:"captainId"`
	PlayerIDs []string `json:"playerIds"`
	Active    bool     `json:"active"`
}

type playerDTO struct {
	ID     string  `json:"id"`
	TeamID string  `json:"teamId"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Gender string  `json:"gender,omitempty"`
	Active bool    `json:"active"`
}

type challengeDTO struct {
	ID                  string   `json:"id"`
	Status              string   `json:"status"`
	ChallengerTeamID    string   `json:"challengerTeamId"`
	ChallengerPlayerIDs []string `json:"challengerPlayerIds"`
	MatchType           string   `json:"matchType"`
	Level               float64  `json:"level"`
	ProposedDate        string   `json:"proposedDate,omitempty"`
	Notes               string   `json:"notes,omitempty"`
	ChallengedTeamID    string   `json:"challengedTeamId,omitempty"`
	ChallengedPlayerIDs []string `json:"challengedPlayerIds,omitempty"`
	AcceptedLevel       float64  `json:"acceptedLevel,omitempty"`
	AcceptedDate        string   `json:"acceptedDate,omitempty"`
	AcceptedBy          string   `json:"acceptedBy,omitempty"`
	AcceptedAt          string   `json:"acceptedAt,omitempty"`
	CompletedMatchID    string   `json:"completedMatchId,omitempty"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
}

type setScoreDTO struct {
	Team1Games int  `json:"team1Games"`
	Team2Games int  `json:"team2Games"`
	Tiebreak   bool `json:"tiebreak,omitempty"`
}

type matchDTO struct {
	ID             string        `json:"id"`
	ChallengeID    string        `json:"challengeId,omitempty"`
	Status         string        `json:"status"`
	MatchType      string        `json:"matchType"`
	Level          float64       `json:"level"`
	Team1ID        string        `json:"team1Id"`
	Team2ID        string        `json:"team2Id"`
	Team1PlayerIDs []string      `json:"team1PlayerIds"`
	Team2PlayerIDs []string      `json:"team2PlayerIds"`
	Team1Rating    float64       `json:"team1Rating,omitempty"`
	Team2Rating    float64       `json:"team2Rating,omitempty"`
	ScheduledAt    string        `json:"scheduledAt,omitempty"`
	PlayedAt       string        `json:"playedAt,omitempty"`
	Sets           []setScoreDTO `json:"sets,omitempty"`
	Team1Sets      int           `json:"team1Sets"`
	Team2Sets      int           `json:"team2Sets"`
	Team1Games     int           `json:"team1Games"`
	Team2Games     int           `json:"team2Games"`
	Winner         string        `json:"winner,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

type acceptChallengeDTO struct {
	Challenge            challengeDTO `json:"challenge"`
	Match                *matchDTO    `json:"match,omitempty"`
	MatchCreationWarning string       `json:"matchCreationWarning,omitempty"`
}

type ensureMatchDTO struct {
	Match   matchDTO `json:"match"`
	Created bool     `json:"created"`
}

type standingDTO struct {
	TeamID        string  `json:"teamId"`
	WinPoints     int     `json:"winPoints"`
	BonusPoints   float64 `json:"bonusPoints"`
	TotalPoints   float64 `json:"totalPoints"`
	SetsWon       int     `json:"setsWon"`
	GamesWon      int     `json:"gamesWon"`
	MatchesPlayed int     `json:"matchesPlayed"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	UpdatedAt     string  `json:"updatedAt,omitempty"`
}

func teamToDTO(ctx context.Context, v team.Team) teamDTO {
	ctx, span := startSpan(ctx, "httpapi.teamToDTO")
	defer span.End()

	return teamDTO{
		ID:        v.ID,
		Name:      v.Name,
		CaptainID: v.CaptainID,
		PlayerIDs: v.PlayerIDs,
		Active:    v.Active,
	}
}

func playerToDTO(ctx context.Context, v player.Player) playerDTO {
	ctx, span := startSpan(ctx, "httpapi.playerToDTO")
	defer span.End()

	return playerDTO{
		ID:     v.ID,
		TeamID: v.TeamID,
		Name:   v.Name,
		Rating: v.Rating,
		Gender: v.Gender,
		Active: v.Active,
	}
}

func challengeToDTO(ctx context.Context, v challenge.Challenge) challengeDTO {
	ctx, span := startSpan(ctx, "httpapi.challengeToDTO")
	defer span.End()

	return challengeDTO{
		ID:                  v.ID,
		Status:              v.Status,
		ChallengerTeamID:    v.ChallengerTeamID,
		ChallengerPlayerIDs: v.ChallengerPlayerIDs,
		MatchType:           v.MatchType,
		Level:               v.Level,
		ProposedDate:        formatOptionalTime(v.ProposedDate),
		Notes:               v.Notes,
		ChallengedTeamID:    v.ChallengedTeamID,
		ChallengedPlayerIDs: v.ChallengedPlayerIDs,
		AcceptedLevel:       v.AcceptedLevel,
		AcceptedDate:        formatOptionalTime(v.AcceptedDate),
		AcceptedBy:          v.AcceptedBy,
		AcceptedAt:          formatOptionalTime(v.AcceptedAt),
		CompletedMatchID:    v.CompletedMatchID,
		CreatedAt:           v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func matchToDTO(ctx context.Context, v match.Match) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	sets := make([]setScoreDTO, 0, len(v.Sets))
	for _, set := range v.Sets {
		sets = append(sets, setScoreDTO{
			Team1Games: set.Team1Games,
			Team2Games: set.Team2Games,
			Tiebreak:   set.Tiebreak,
		})
	}

	return matchDTO{
		ID:             v.ID,
		ChallengeID:    v.ChallengeID,
		Status:         v.Status,
		MatchType:      v.MatchType,
		Level:          v.Level,
		Team1ID:        v.Team1ID,
		Team2ID:        v.Team2ID,
		Team1PlayerIDs: v.Team1PlayerIDs,
		Team2PlayerIDs: v.Team2PlayerIDs,
		Team1Rating:    v.Team1Rating,
		Team2Rating:    v.Team2Rating,
		ScheduledAt:    formatOptionalTime(v.ScheduledAt),
		PlayedAt:       formatOptionalTime(v.PlayedAt),
		Sets:           sets,
		Team1Sets:      v.Team1Sets,
		Team2Sets:      v.Team2Sets,
		Team1Games:     v.Team1Games,
		Team2Games:     v.Team2Games,
		Winner:         v.Winner,
		Notes:          v.Notes,
		CreatedAt:      v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func standingToDTO(ctx context.Context, v standings.Standing) standingDTO {
	ctx, span := startSpan(ctx, "httpapi.standingToDTO")
	defer span.End()

	updatedAt := ""
	if !v.UpdatedAt.IsZero() {
		updatedAt = v.UpdatedAt.UTC().Format(time.RFC3339)
	}

	return standingDTO{
		TeamID:        v.TeamID,
		WinPoints:     v.WinPoints,
		BonusPoints:   v.BonusPoints,
		TotalPoints:   v.TotalPoints,
		SetsWon:       v.SetsWon,
		GamesWon:      v.GamesWon,
		MatchesPlayed: v.MatchesPlayed,
		Wins:          v.Wins,
		Losses:        v.Losses,
		UpdatedAt:     updatedAt,
	}
}

func matchesToDTO(ctx context.Context, items []match.Match) []matchDTO {
	dtos := make([]matchDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, matchToDTO(ctx, item))
	}
	return dtos
}

func challengesToDTO(ctx context.Context, items []challenge.Challenge) []challengeDTO {
	dtos := make([]challengeDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, challengeToDTO(ctx, item))
	}
	return dtos
}

func toSetScores(payloads []setScorePayload) []match.SetScore {
	sets := make([]match.SetScore, 0, len(payloads))
	for _, p := range payloads {
		sets = append(sets, match.SetScore{
			Team1Games: p.Team1Games,
			Team2Games: p.Team2Games,
			Tiebreak:   p.Tiebreak,
		})
	}
	return sets
}

func parseOptionalTime(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an RFC3339 timestamp: %v", usecase.ErrInvalidInput, field, err)
	}
	return &v, nil
}

func formatOptionalTime(v *time.Time) string {
	if v == nil || v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
