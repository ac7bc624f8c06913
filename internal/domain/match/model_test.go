package match

import (
	"strings"
	"testing"

	"github.com/baselinehq/tennis-league/internal/domain/player"
)

func TestValidateRoster_CombinedRatingCap(t *testing.T) {
	roster := []player.Player{
		{ID: "p1", Rating: 3.5, Gender: player.GenderMale},
		{ID: "p2", Rating: 4.0, Gender: player.GenderMale},
	}

	if err := ValidateRoster(TypeDoubles, roster, 7.5); err != nil {
		t.Fatalf("sum 7.5 should be valid for level 7.5: %v", err)
	}
	if err := ValidateRoster(TypeDoubles, roster, 7.0); err == nil {
		t.Fatal("sum 7.5 should be invalid for level 7.0")
	}
}

func TestValidateRoster_PlayerCount(t *testing.T) {
	one := []player.Player{{ID: "p1", Rating: 3.0}}
	two := []player.Player{{ID: "p1", Rating: 3.0}, {ID: "p2", Rating: 3.0}}

	if err := ValidateRoster(TypeSingles, one, 4.0); err != nil {
		t.Fatalf("singles with one player: %v", err)
	}
	if err := ValidateRoster(TypeSingles, two, 8.0); err == nil {
		t.Fatal("singles with two players should fail")
	}
	if err := ValidateRoster(TypeDoubles, one, 8.0); err == nil {
		t.Fatal("doubles with one player should fail")
	}
	if err := ValidateRoster("exhibition", one, 8.0); err == nil || !strings.Contains(err.Error(), "unknown match type") {
		t.Fatalf("expected unknown match type error, got %v", err)
	}
}

func TestValidateRoster_MixedDoublesGenderMix(t *testing.T) {
	mixed := []player.Player{
		{ID: "p1", Rating: 3.5, Gender: player.GenderMale},
		{ID: "p2", Rating: 3.5, Gender: player.GenderFemale},
	}
	sameSex := []player.Player{
		{ID: "p1", Rating: 3.5, Gender: player.GenderMale},
		{ID: "p2", Rating: 3.5, Gender: player.GenderMale},
	}

	if err := ValidateRoster(TypeMixedDoubles, mixed, 8.0); err != nil {
		t.Fatalf("valid mixed roster rejected: %v", err)
	}
	if err := ValidateRoster(TypeMixedDoubles, sameSex, 8.0); err == nil {
		t.Fatal("same-sex mixed roster should fail")
	}
}
