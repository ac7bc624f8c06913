package match

import (
	"fmt"
	"time"

	"github.com/baselinehq/tennis-league/internal/domain/player"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"

	TypeSingles      = "singles"
	TypeDoubles      = "doubles"
	TypeMixedDoubles = "mixed_doubles"

	WinnerTeam1 = "team1"
	WinnerTeam2 = "team2"
)

// Match is a scheduled or finished contest between two rosters.
type Match struct {
	ID       string
	LegacyID int

	// ChallengeID back-references the accepted challenge this match was
	// derived from; empty for matches recorded directly by a director.
	ChallengeID string

	Status    string
	MatchType string
	Level     float64

	Team1ID        string
	Team2ID        string
	Team1PlayerIDs []string
	Team2PlayerIDs []string
	Team1Rating    float64
	Team2Rating    float64

	ScheduledAt *time.Time
	PlayedAt    *time.Time

	Sets       []SetScore
	Team1Sets  int
	Team2Sets  int
	Team1Games int
	Team2Games int
	Winner     string

	Notes string

	CreatedBy   string
	CreatedAt   time.Time
	UpdatedBy   string
	UpdatedAt   time.Time
	CompletedBy string
}

// SetScore holds the raw game counts for one set. Tiebreak marks a
// short-format third set; its raw counts still feed the game totals as-is.
type SetScore struct {
	Team1Games int
	Team2Games int
	Tiebreak   bool
}

// RosterSize returns the number of players each side fields for a match
// type, or 0 when the type is unknown.
func RosterSize(matchType string) int {
	switch matchType {
	case TypeSingles:
		return 1
	case TypeDoubles, TypeMixedDoubles:
		return 2
	default:
		return 0
	}
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.Team1ID == "" || m.Team2ID == "" {
		return fmt.Errorf("both team references are required")
	}
	switch m.Status {
	case StatusPending, StatusCompleted:
	default:
		return fmt.Errorf("unknown match status %q", m.Status)
	}
	if size := RosterSize(m.MatchType); size == 0 {
		return fmt.Errorf("unknown match type %q", m.MatchType)
	} else if len(m.Team1PlayerIDs) != size || len(m.Team2PlayerIDs) != size {
		return fmt.Errorf("%s requires exactly %d player(s) per side", m.MatchType, size)
	}
	if len(m.Sets) > 3 {
		return fmt.Errorf("a match has at most 3 sets, got %d", len(m.Sets))
	}
	return nil
}

func (m Match) InvolvesTeam(teamID string) bool {
	return teamID != "" && (m.Team1ID == teamID || m.Team2ID == teamID)
}

// ratingEpsilon absorbs float noise when comparing summed ratings against
// banded levels like 7.5.
const ratingEpsilon = 1e-9

// ValidateRoster checks the roster selection rules for one side: exact
// player count for the match type, combined rating within the declared
// level, and for mixed doubles one male plus one female.
func ValidateRoster(matchType string, players []player.Player, level float64) error {
	size := RosterSize(matchType)
	if size == 0 {
		return fmt.Errorf("unknown match type %q", matchType)
	}
	if len(players) != size {
		return fmt.Errorf("%s requires exactly %d player(s), got %d", matchType, size, len(players))
	}

	combined := player.CombinedRating(players)
	if combined > level+ratingEpsilon {
		return fmt.Errorf("combined rating %.2f exceeds level %.1f", combined, level)
	}

	if matchType == TypeMixedDoubles {
		males, females := 0, 0
		for _, p := range players {
			switch p.Gender {
			case player.GenderMale:
				males++
			case player.GenderFemale:
				females++
			}
		}
		if males != 1 || females != 1 {
			return fmt.Errorf("mixed doubles requires one male and one female player")
		}
	}

	return nil
}
