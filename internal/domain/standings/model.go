package standings

import "time"

// Standing is the cached per-team points row the leaderboard displays.
// It is a denormalized total; the points engine recomputes the same
// numbers from completed matches and the audit compares the two.
type Standing struct {
	TeamID        string
	WinPoints     int
	BonusPoints   float64
	TotalPoints   float64
	SetsWon       int
	GamesWon      int
	MatchesPlayed int
	Wins          int
	Losses        int
	UpdatedAt     time.Time
}

// Discrepancy is one field-level mismatch between the cached standing and
// the recomputed one.
type Discrepancy struct {
	Field      string  `json:"field"`
	Expected   float64 `json:"expected"`
	Actual     float64 `json:"actual"`
	Difference float64 `json:"difference"`
}
