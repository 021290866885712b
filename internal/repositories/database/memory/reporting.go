package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) SumAccountEntries(_ context.Context, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := domain.DateOnly(asOf)
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range s.entries {
		if e.AccountID != accountID || !e.IsPosted || domain.DateOnly(e.EntryDate).After(cutoff) {
			continue
		}
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit, nil
}

func (s *Store) GetTrialBalanceRows(_ context.Context, periodID string) ([]domain.TrialBalanceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make(map[string]*domain.TrialBalanceRow, len(s.accounts))
	for id, a := range s.accounts {
		rows[id] = &domain.TrialBalanceRow{
			AccountID:     id,
			AccountNumber: a.AccountNumber,
			AccountName:   a.Name,
			AccountType:   a.AccountType,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
		}
	}
	for _, e := range s.entries {
		if e.FiscalPeriodID != periodID || !e.IsPosted {
			continue
		}
		if r, ok := rows[e.AccountID]; ok {
			r.Debit = r.Debit.Add(e.Debit)
			r.Credit = r.Credit.Add(e.Credit)
		}
	}

	out := make([]domain.TrialBalanceRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out, nil
}

func (s *Store) FindUnbalancedGroups(_ context.Context) ([]domain.UnbalancedGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[string]*domain.UnbalancedGroup)
	order := make([]string, 0)
	for _, e := range s.entries {
		g, ok := groups[e.EntryNumber]
		if !ok {
			g = &domain.UnbalancedGroup{
				EntryNumber:    e.EntryNumber,
				TotalDebit:     decimal.Zero,
				TotalCredit:    decimal.Zero,
				FiscalPeriodID: e.FiscalPeriodID,
			}
			groups[e.EntryNumber] = g
			order = append(order, e.EntryNumber)
		}
		g.TotalDebit = g.TotalDebit.Add(e.Debit)
		g.TotalCredit = g.TotalCredit.Add(e.Credit)
		if !e.SatisfiesDirection() {
			g.InvalidLines++
		}
	}

	out := make([]domain.UnbalancedGroup, 0)
	for _, n := range order {
		g := groups[n]
		if !g.TotalDebit.Equal(g.TotalCredit) || g.InvalidLines > 0 {
			out = append(out, *g)
		}
	}
	return out, nil
}
