package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// parseOptionalRFC3339 is parseRFC3339 that maps "" to the zero time.
func parseOptionalRFC3339(value, fieldName string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return parseRFC3339(value, fieldName)
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// marshalColumn JSON-encodes a structured column value.
func marshalColumn(v any, fieldName string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", fieldName, err)
	}
	return string(b), nil
}

// unmarshalColumn decodes a JSON-encoded column value into dst.
func unmarshalColumn(data string, dst any, fieldName string) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", fieldName, err)
	}
	return nil
}
