package id

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const (
	PrefixChallenge = "CHAL"
	PrefixMatch     = "MATCH"

	randomSuffixLen = 6
	randomAlphabet  = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Generator creates entity document identifiers.
type Generator interface {
	NewID(prefix string) (string, error)
}

// EntityGenerator produces ids in the PREFIX-<epoch>-<random6> format.
type EntityGenerator struct {
	now func() time.Time
}

func NewEntityGenerator() *EntityGenerator {
	return &EntityGenerator{now: time.Now}
}

func (g *EntityGenerator) NewID(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("id prefix is required")
	}

	suffix, err := randomSuffix()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%s", prefix, g.now().UTC().Unix(), suffix), nil
}

// LegacyID renders the historical PREFIX-<year>-<seq3> format used by
// records that carried a numeric identifier in the blob era.
func LegacyID(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}

func randomSuffix() (string, error) {
	buf := make([]byte, randomSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	out := make([]byte, randomSuffixLen)
	for i, b := range buf {
		out[i] = randomAlphabet[int(b)%len(randomAlphabet)]
	}

	return string(out), nil
}
