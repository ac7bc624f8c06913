package blob

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
)

// Blob is a legacy wide-row document: an entire collection serialized as
// one array inside a single document. New code only ever reads blobs; the
// migration utility is their sole consumer.
type Blob struct {
	Name      string
	Entries   []map[string]any
	UpdatedAt time.Time
	// InvalidEntries counts rows that could not be parsed as objects and
	// were routed to the skipped bucket.
	InvalidEntries int
}

// ParseData normalizes the blob's data field, which historically was either
// a JSON-serialized string or the raw array itself. Entries that are not
// objects are returned in the invalid bucket instead of failing the parse.
func ParseData(data any) (entries []map[string]any, invalid int, err error) {
	var items []any
	switch v := data.(type) {
	case nil:
		return nil, 0, nil
	case string:
		if v == "" {
			return nil, 0, nil
		}
		if err := sonic.Unmarshal([]byte(v), &items); err != nil {
			return nil, 0, fmt.Errorf("decode blob data string: %w", err)
		}
	case []any:
		items = v
	case []map[string]any:
		return v, 0, nil
	default:
		return nil, 0, fmt.Errorf("unsupported blob data type %T", data)
	}

	entries = make([]map[string]any, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			invalid++
			continue
		}
		entries = append(entries, entry)
	}

	return entries, invalid, nil
}
