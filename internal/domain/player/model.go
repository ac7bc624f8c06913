package player

import (
	"fmt"
	"time"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Player is a rated club member belonging to a team roster.
type Player struct {
	ID        string
	TeamID    string
	Name      string
	Email     string
	Rating    float64
	Gender    string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Rating < 0 {
		return fmt.Errorf("player rating cannot be negative")
	}
	switch p.Gender {
	case "", GenderMale, GenderFemale:
	default:
		return fmt.Errorf("unknown player gender %q", p.Gender)
	}
	return nil
}

// CombinedRating sums the ratings of a roster. For singles this is the
// single player's rating.
func CombinedRating(players []Player) float64 {
	total := 0.0
	for _, p := range players {
		total += p.Rating
	}
	return total
}
