package domain

import "time"

// PeriodStatus is the posting state of a fiscal period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
	PeriodLocked PeriodStatus = "LOCKED"
)

// FiscalPeriod is a bounded date range entries are grouped into.
// StartDate and EndDate are inclusive calendar days.
type FiscalPeriod struct {
	PeriodID   string       `json:"periodID"`
	Name       string       `json:"name"`
	StartDate  time.Time    `json:"startDate"`
	EndDate    time.Time    `json:"endDate"`
	FiscalYear int          `json:"fiscalYear"`
	Status     PeriodStatus `json:"status"`
	ClosedAt   *time.Time   `json:"closedAt,omitempty"`
	ClosedBy   *string      `json:"closedBy,omitempty"`
	AuditFields
}

// Contains reports whether the calendar day of t lies within the period.
func (p FiscalPeriod) Contains(t time.Time) bool {
	day := DateOnly(t)
	return !day.Before(DateOnly(p.StartDate)) && !day.After(DateOnly(p.EndDate))
}

// Overlaps reports whether [start, end] intersects the period.
func (p FiscalPeriod) Overlaps(start, end time.Time) bool {
	return !DateOnly(start).After(DateOnly(p.EndDate)) && !DateOnly(end).Before(DateOnly(p.StartDate))
}

// AcceptsPostings reports whether new entries may be written into the period.
func (p FiscalPeriod) AcceptsPostings() bool {
	return p.Status == PeriodOpen
}
