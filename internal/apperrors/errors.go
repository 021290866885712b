package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnbalancedLine indicates a ledger line carrying both a debit and a credit amount.
var ErrUnbalancedLine = errors.New("ledger line has both debit and credit amounts")

// ErrUnbalancedGroup indicates an entry group whose debits do not equal its credits.
var ErrUnbalancedGroup = errors.New("entry group debits do not equal credits")

// ErrPeriodLocked indicates a posting into a fiscal period that is not open.
var ErrPeriodLocked = errors.New("fiscal period is not open for posting")

// ErrInvalidTransition indicates a status move the state machine does not permit.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrOverpayment indicates a payment larger than the document's amount due.
var ErrOverpayment = errors.New("payment exceeds amount due")

// ErrConcurrentModification indicates the row changed between read and write.
// Callers should reload and retry.
var ErrConcurrentModification = errors.New("resource was modified concurrently")

// ErrDatabaseUnavailable indicates an infrastructure failure reaching the store.
var ErrDatabaseUnavailable = errors.New("database unavailable")

// ErrInternal indicates an unexpected failure inside the service.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-style status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError. A nil cause is recorded as ErrInternal so
// errors.Is keeps working for callers.
func NewAppError(code int, message string, err error) *AppError {
	if err == nil {
		err = ErrInternal
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError reports a missing entity of the given kind.
func NewNotFoundError(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// IsRetryable reports whether the caller may retry the operation with fresh data.
// Business-rule violations are never retryable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrDatabaseUnavailable)
}

// HTTPStatus maps an error onto the status code a transport should report.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrUnbalancedLine),
		errors.Is(err, ErrUnbalancedGroup):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrOverpayment),
		errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrPeriodLocked):
		return http.StatusLocked
	case errors.Is(err, ErrDatabaseUnavailable):
		return http.StatusServiceUnavailable
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
