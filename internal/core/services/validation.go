package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/erp_ledger/internal/core/ports/repositories"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// validate reads the same `binding` tags gin uses, so requests arriving from
// any caller are checked against one set of rules.
var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}()

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}

// parseDate parses a YYYY-MM-DD value as midnight UTC.
func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD date, got %q", apperrors.ErrValidation, field, value)
	}
	return t, nil
}

// nextNumber formats the next human-readable number for prefix in the year of at,
// e.g. INV-2025-000042.
func nextNumber(ctx context.Context, seq portsrepo.SequenceRepository, prefix string, at time.Time) (string, error) {
	year := at.Year()
	n, err := seq.NextSequenceValue(ctx, prefix, year)
	if err != nil {
		return "", fmt.Errorf("allocating %s number: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%d-%06d", prefix, year, n), nil
}
