package challenge

import (
	"fmt"
	"time"
)

const (
	StatusOpen      = "open"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
)

// Challenge is an open offer to play, issued by one team's captain and
// accepted by another. Status moves strictly forward:
// open -> accepted -> completed.
type Challenge struct {
	ID       string
	LegacyID int

	ChallengerTeamID    string
	ChallengerPlayerIDs []string
	MatchType           string
	Level               float64
	ProposedDate        *time.Time
	Notes               string

	Status string

	ChallengedTeamID    string
	ChallengedPlayerIDs []string
	AcceptedLevel       float64
	AcceptedDate        *time.Time
	AcceptedBy          string
	AcceptedAt          *time.Time

	CompletedMatchID string

	CreatedBy string
	CreatedAt time.Time
	UpdatedBy string
	UpdatedAt time.Time
}

func (c Challenge) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("challenge id is required")
	}
	if c.ChallengerTeamID == "" {
		return fmt.Errorf("challenger team is required")
	}
	if len(c.ChallengerPlayerIDs) == 0 {
		return fmt.Errorf("challenger players are required")
	}
	if c.Level <= 0 {
		return fmt.Errorf("challenge level must be positive")
	}
	switch c.Status {
	case StatusOpen, StatusAccepted, StatusCompleted:
	default:
		return fmt.Errorf("unknown challenge status %q", c.Status)
	}
	return nil
}

func (c Challenge) IsOpen() bool      { return c.Status == StatusOpen }
func (c Challenge) IsAccepted() bool  { return c.Status == StatusAccepted }
func (c Challenge) IsCompleted() bool { return c.Status == StatusCompleted }

// CanTransition reports whether the status move is one of the permitted
// forward steps.
func CanTransition(from, to string) bool {
	switch from {
	case StatusOpen:
		return to == StatusAccepted
	case StatusAccepted:
		return to == StatusCompleted
	default:
		return false
	}
}
