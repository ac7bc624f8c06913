package docstore

import (
	"time"

	"github.com/baselinehq/tennis-league/internal/platform/docstore"
)

// Persisted documents keep the legacy camelCase field names so entity
// documents written here stay readable next to records migrated from the
// blob era.

const (
	CollectionChallenges = "challenges"
	CollectionMatches    = "matches"
	CollectionTeams      = "teams"
	CollectionPlayers    = "players"
	CollectionStandings  = "standings"
	CollectionBlobs      = "blobs"
)

func getString(doc docstore.Document, key string) string {
	v, _ := doc[key].(string)
	return v
}

func getBool(doc docstore.Document, key string) bool {
	v, _ := doc[key].(bool)
	return v
}

func getFloat(doc docstore.Document, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func getInt(doc docstore.Document, key string) int {
	return int(getFloat(doc, key))
}

func getTime(doc docstore.Document, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getTimePtr(doc docstore.Document, key string) *time.Time {
	t := getTime(doc, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func getStringSlice(doc docstore.Document, key string) []string {
	switch v := doc[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func putTime(doc docstore.Document, key string, t time.Time) {
	if t.IsZero() {
		return
	}
	doc[key] = t.UTC().Format(time.RFC3339Nano)
}

func putTimePtr(doc docstore.Document, key string, t *time.Time) {
	if t == nil {
		return
	}
	putTime(doc, key, *t)
}
