package team

import (
	"fmt"
	"time"
)

// Team is one roster competing in the club ladder.
type Team struct {
	ID           string
	Name         string
	CaptainID    string
	CaptainEmail string
	PlayerIDs    []string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}

func (t Team) HasPlayer(playerID string) bool {
	for _, id := range t.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}
