package accounting

import (
	"fmt"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SignedBalance returns debit minus credit for debit-normal accounts and
// credit minus debit for credit-normal accounts.
func SignedBalance(debit, credit decimal.Decimal, side domain.NormalBalance) decimal.Decimal {
	if side == domain.NormalCredit {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// ValidateEntryGroup checks a group of lines before posting. Every line must
// satisfy the single-direction rule first; only then are the line count and
// the columns checked. Columns are compared with exact decimal equality.
func ValidateEntryGroup(lines []domain.LedgerEntry) error {
	for _, line := range lines {
		if err := line.ValidateDirection(); err != nil {
			return err
		}
	}
	if len(lines) < 2 {
		return fmt.Errorf("%w: an entry group needs at least two lines", apperrors.ErrValidation)
	}

	debits, credits := SumColumns(lines)
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedGroup, debits.String(), credits.String())
	}
	return nil
}

// SumColumns totals the debit and credit columns.
func SumColumns(lines []domain.LedgerEntry) (decimal.Decimal, decimal.Decimal) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits, credits
}

// LineAmounts is the priced breakdown of one document line.
type LineAmounts struct {
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// PriceLine computes a line's amounts. The discount applies to the gross
// amount, tax applies after discount, and each figure is rounded to cents.
func PriceLine(quantity, unitPrice, taxRate, discountPercent decimal.Decimal) LineAmounts {
	gross := quantity.Mul(unitPrice).Round(2)
	discount := gross.Mul(discountPercent).Div(hundred).Round(2)
	net := gross.Sub(discount)
	tax := net.Mul(taxRate).Div(hundred).Round(2)
	return LineAmounts{
		Gross:    gross,
		Discount: discount,
		Tax:      tax,
		Total:    net.Add(tax),
	}
}

// DocumentTotals is the header breakdown of an invoice or bill.
type DocumentTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// TotalLines prices every line in place and returns the header totals.
// extraDiscount is a document-level discount applied on top of line discounts.
func TotalLines(items []domain.LineItem, extraDiscount decimal.Decimal) DocumentTotals {
	t := DocumentTotals{Subtotal: decimal.Zero, Discount: extraDiscount.Round(2), Tax: decimal.Zero}
	for i := range items {
		amounts := PriceLine(items[i].Quantity, items[i].UnitPrice, items[i].TaxRate, items[i].DiscountPercent)
		items[i].LineTotal = amounts.Total
		t.Subtotal = t.Subtotal.Add(amounts.Gross)
		t.Discount = t.Discount.Add(amounts.Discount)
		t.Tax = t.Tax.Add(amounts.Tax)
	}
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Tax)
	return t
}

// HeaderTotals computes the total from header amounts when a document has no lines.
func HeaderTotals(subtotal, tax, discount decimal.Decimal) DocumentTotals {
	subtotal, tax, discount = subtotal.Round(2), tax.Round(2), discount.Round(2)
	return DocumentTotals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal.Sub(discount).Add(tax),
	}
}

// SettlementStatus returns the status a document moves to after its paid
// amount changes: PAID when nothing is due, PARTIAL when something but not
// everything has been paid, otherwise the current status.
func SettlementStatus(current domain.DocumentStatus, total, amountDue decimal.Decimal) domain.DocumentStatus {
	switch {
	case amountDue.IsZero():
		return domain.StatusPaid
	case amountDue.IsPositive() && amountDue.LessThan(total):
		return domain.StatusPartial
	default:
		return current
	}
}
