package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgingBuckets is the outstanding balance broken down by days past due.
type AgingBuckets struct {
	AsOf          time.Time       `json:"asOf"`
	Current       decimal.Decimal `json:"current"`
	Days30        decimal.Decimal `json:"days30"`
	Days60        decimal.Decimal `json:"days60"`
	Days90        decimal.Decimal `json:"days90"`
	Days90Plus    decimal.Decimal `json:"days90Plus"`
	Total         decimal.Decimal `json:"total"`
	DocumentCount int             `json:"documentCount"`
}

// NewAgingBuckets returns zeroed buckets for asOf.
func NewAgingBuckets(asOf time.Time) AgingBuckets {
	return AgingBuckets{
		AsOf:       asOf,
		Current:    decimal.Zero,
		Days30:     decimal.Zero,
		Days60:     decimal.Zero,
		Days90:     decimal.Zero,
		Days90Plus: decimal.Zero,
		Total:      decimal.Zero,
	}
}

// Add places amount into the bucket for daysPastDue.
func (b *AgingBuckets) Add(daysPastDue int, amount decimal.Decimal) {
	switch {
	case daysPastDue <= 0:
		b.Current = b.Current.Add(amount)
	case daysPastDue <= 30:
		b.Days30 = b.Days30.Add(amount)
	case daysPastDue <= 60:
		b.Days60 = b.Days60.Add(amount)
	case daysPastDue <= 90:
		b.Days90 = b.Days90.Add(amount)
	default:
		b.Days90Plus = b.Days90Plus.Add(amount)
	}
	b.Total = b.Total.Add(amount)
	b.DocumentCount++
}

// BucketSum is current + 30 + 60 + 90 + 90+. It always equals Total.
func (b AgingBuckets) BucketSum() decimal.Decimal {
	return b.Current.Add(b.Days30).Add(b.Days60).Add(b.Days90).Add(b.Days90Plus)
}

// AccountBalance is a point-in-time balance of one account.
type AccountBalance struct {
	AccountID     string          `json:"accountID"`
	AsOf          time.Time       `json:"asOf"`
	NormalBalance NormalBalance   `json:"normalBalance"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

// TrialBalanceRow holds one account's column totals for a period.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// TrialBalance lists every account with its debit and credit totals for a period.
type TrialBalance struct {
	PeriodID    string            `json:"periodID"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// IsBalanced reports whether the column totals agree. The calculator never
// repairs a mismatch; callers use this as a sanity check.
func (tb TrialBalance) IsBalanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}

// UnbalancedGroup describes an entry group that breaks a ledger invariant.
type UnbalancedGroup struct {
	EntryNumber    string          `json:"entryNumber"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	InvalidLines   int             `json:"invalidLines"`
	FiscalPeriodID string          `json:"fiscalPeriodID"`
}
