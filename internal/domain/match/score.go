package match

import "fmt"

// Scoreline is the derived tally for a finished match.
type Scoreline struct {
	Team1Sets  int
	Team2Sets  int
	Team1Games int
	Team2Games int
	Winner     string
}

// ComputeScoreline derives sets won, games won and the winner from raw
// per-set game counts. Each set goes to the side with the higher count; a
// tiebreak third set contributes its raw counts to the game totals exactly
// like a full set. The winner is the side with strictly more sets.
func ComputeScoreline(sets []SetScore) (Scoreline, error) {
	if len(sets) == 0 {
		return Scoreline{}, fmt.Errorf("at least one set score is required")
	}
	if len(sets) > 3 {
		return Scoreline{}, fmt.Errorf("a match has at most 3 sets, got %d", len(sets))
	}

	var line Scoreline
	for i, s := range sets {
		if s.Team1Games < 0 || s.Team2Games < 0 {
			return Scoreline{}, fmt.Errorf("set %d has a negative game count", i+1)
		}
		if s.Team1Games == s.Team2Games {
			return Scoreline{}, fmt.Errorf("set %d is drawn %d-%d; sets cannot tie", i+1, s.Team1Games, s.Team2Games)
		}

		if s.Team1Games > s.Team2Games {
			line.Team1Sets++
		} else {
			line.Team2Sets++
		}
		line.Team1Games += s.Team1Games
		line.Team2Games += s.Team2Games
	}

	if line.Team1Sets == line.Team2Sets {
		return Scoreline{}, fmt.Errorf("sets split %d-%d; a deciding set is required", line.Team1Sets, line.Team2Sets)
	}
	if line.Team1Sets > line.Team2Sets {
		line.Winner = WinnerTeam1
	} else {
		line.Winner = WinnerTeam2
	}

	return line, nil
}

// Apply stores a computed scoreline onto the match.
func (m *Match) Apply(line Scoreline) {
	m.Team1Sets = line.Team1Sets
	m.Team2Sets = line.Team2Sets
	m.Team1Games = line.Team1Games
	m.Team2Games = line.Team2Games
	m.Winner = line.Winner
}
