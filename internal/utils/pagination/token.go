package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// DefaultLimit is used when a caller asks for a non-positive page size.
const DefaultLimit = 50

// MaxLimit caps a single page.
const MaxLimit = 500

// Cursor marks the last row of a page in (sort time, id) order.
type Cursor struct {
	SortTime time.Time
	ID       string
}

// EncodeToken creates an opaque continuation token from the last row of a page.
func EncodeToken(sortTime time.Time, id string) string {
	tokenStr := fmt.Sprintf("%s|%s", sortTime.UTC().Format(timeFormat), id)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	sortTime, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (time parse): %w", err)
	}
	return Cursor{SortTime: sortTime, ID: parts[1]}, nil
}

// NormalizeLimit clamps a requested page size into [1, MaxLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// After reports whether a row sorted newest-first comes after the cursor.
func (c Cursor) After(sortTime time.Time, id string) bool {
	if sortTime.Equal(c.SortTime) {
		return id < c.ID
	}
	return sortTime.Before(c.SortTime)
}
