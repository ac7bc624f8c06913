package id

import (
	"strings"
	"testing"
	"time"
)

func TestEntityGenerator_NewID_Format(t *testing.T) {
	gen := NewEntityGenerator()
	gen.now = func() time.Time { return time.Unix(1735686000, 0) }

	got, err := gen.NewID(PrefixMatch)
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}

	parts := strings.Split(got, "-")
	if len(parts) != 3 {
		t.Fatalf("unexpected id shape: %s", got)
	}
	if parts[0] != "MATCH" {
		t.Fatalf("unexpected prefix: %s", parts[0])
	}
	if parts[1] != "1735686000" {
		t.Fatalf("unexpected epoch: %s", parts[1])
	}
	if len(parts[2]) != randomSuffixLen {
		t.Fatalf("unexpected suffix length: %s", parts[2])
	}
}

func TestEntityGenerator_NewID_RequiresPrefix(t *testing.T) {
	gen := NewEntityGenerator()
	if _, err := gen.NewID("  "); err == nil {
		t.Fatal("expected error for empty prefix")
	}
}

func TestLegacyID(t *testing.T) {
	if got := LegacyID(PrefixMatch, 2023, 7); got != "MATCH-2023-007" {
		t.Fatalf("unexpected legacy id: %s", got)
	}
	if got := LegacyID(PrefixChallenge, 2024, 123); got != "CHAL-2024-123" {
		t.Fatalf("unexpected legacy id: %s", got)
	}
}
