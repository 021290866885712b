package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // actor ID
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // actor ID
}

// DeletedScope selects whether soft-deleted rows are visible to a read.
type DeletedScope int

const (
	// ActiveOnly hides rows carrying a deletion timestamp. Every normal read uses it.
	ActiveOnly DeletedScope = iota
	// IncludeDeleted is reserved for administrative recovery paths.
	IncludeDeleted
)

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from `from` to `to`
// in UTC. The result is negative when `to` is before `from`.
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}
