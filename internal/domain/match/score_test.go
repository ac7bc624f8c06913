package match

import "testing"

func TestComputeScoreline_TwoSets(t *testing.T) {
	line, err := ComputeScoreline([]SetScore{
		{Team1Games: 6, Team2Games: 4},
		{Team1Games: 6, Team2Games: 3},
	})
	if err != nil {
		t.Fatalf("ComputeScoreline error: %v", err)
	}

	if line.Team1Sets != 2 || line.Team2Sets != 0 {
		t.Fatalf("unexpected sets: %d-%d", line.Team1Sets, line.Team2Sets)
	}
	if line.Team1Games != 12 || line.Team2Games != 7 {
		t.Fatalf("unexpected games: %d-%d", line.Team1Games, line.Team2Games)
	}
	if line.Winner != WinnerTeam1 {
		t.Fatalf("unexpected winner: %s", line.Winner)
	}
}

func TestComputeScoreline_ThreeSets(t *testing.T) {
	line, err := ComputeScoreline([]SetScore{
		{Team1Games: 6, Team2Games: 4},
		{Team1Games: 4, Team2Games: 6},
		{Team1Games: 6, Team2Games: 3},
	})
	if err != nil {
		t.Fatalf("ComputeScoreline error: %v", err)
	}

	if line.Team1Games != 16 || line.Team2Games != 13 {
		t.Fatalf("unexpected games: %d-%d", line.Team1Games, line.Team2Games)
	}
	if line.Team1Sets != 2 || line.Team2Sets != 1 {
		t.Fatalf("unexpected sets: %d-%d", line.Team1Sets, line.Team2Sets)
	}
	if line.Winner != WinnerTeam1 {
		t.Fatalf("unexpected winner: %s", line.Winner)
	}
}

func TestComputeScoreline_TiebreakThirdSetCountsRawGames(t *testing.T) {
	line, err := ComputeScoreline([]SetScore{
		{Team1Games: 4, Team2Games: 6},
		{Team1Games: 6, Team2Games: 2},
		{Team1Games: 10, Team2Games: 7, Tiebreak: true},
	})
	if err != nil {
		t.Fatalf("ComputeScoreline error: %v", err)
	}

	// Tiebreak raw counts simply join the game totals.
	if line.Team1Games != 20 || line.Team2Games != 15 {
		t.Fatalf("unexpected games: %d-%d", line.Team1Games, line.Team2Games)
	}
	if line.Winner != WinnerTeam1 {
		t.Fatalf("unexpected winner: %s", line.Winner)
	}
}

func TestComputeScoreline_RejectsDrawnSet(t *testing.T) {
	_, err := ComputeScoreline([]SetScore{{Team1Games: 6, Team2Games: 6}})
	if err == nil {
		t.Fatal("expected error for drawn set")
	}
}

func TestComputeScoreline_RejectsSplitWithoutDecider(t *testing.T) {
	_, err := ComputeScoreline([]SetScore{
		{Team1Games: 6, Team2Games: 4},
		{Team1Games: 4, Team2Games: 6},
	})
	if err == nil {
		t.Fatal("expected error for split sets without a third")
	}
}

func TestComputeScoreline_RejectsEmptyAndTooMany(t *testing.T) {
	if _, err := ComputeScoreline(nil); err == nil {
		t.Fatal("expected error for no sets")
	}
	sets := []SetScore{
		{Team1Games: 6, Team2Games: 4},
		{Team1Games: 6, Team2Games: 4},
		{Team1Games: 6, Team2Games: 4},
		{Team1Games: 6, Team2Games: 4},
	}
	if _, err := ComputeScoreline(sets); err == nil {
		t.Fatal("expected error for four sets")
	}
}
