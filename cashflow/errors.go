/*
errors.go - Centralized error types for the cashflow package

PURPOSE:
  The projection engine itself never fails; these errors belong to the
  layers around it: stores, plan documents and the HTTP API.

ERROR CATEGORIES:
  1. Not-found errors - A referenced record doesn't exist
  2. Input errors - Malformed dates, kinds or plan documents

USAGE:
    if errors.Is(err, cashflow.ErrAccountNotFound) {
        // 404
    }

SEE ALSO:
  - store.go: Store contract that returns these errors
  - factory/plan.go: Wraps input errors with field context
*/
package cashflow

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCardNotFound is returned when no credit card is configured.
	ErrCardNotFound = errors.New("credit card not found")

	// ErrSalaryNotFound is returned when no salary rule is configured.
	ErrSalaryNotFound = errors.New("salary rule not found")

	ErrEntryNotFound    = errors.New("ledger entry not found")
	ErrTransferNotFound = errors.New("transfer not found")
	ErrEventNotFound    = errors.New("future event not found")

	// ErrInvalidDate is returned when a date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrUnknownVoucherKind is returned for voucher kinds other than MEAL/FOOD.
	ErrUnknownVoucherKind = errors.New("unknown voucher kind")

	// ErrInvalidPlan is returned when a plan document can't be interpreted.
	ErrInvalidPlan = errors.New("invalid plan")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PlanError names the field and value that failed to parse.
type PlanError struct {
	Field string
	Value string
	Err   error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrCardNotFound) ||
		errors.Is(err, ErrSalaryNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrTransferNotFound) ||
		errors.Is(err, ErrEventNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrUnknownVoucherKind) ||
		errors.Is(err, ErrInvalidPlan)
}
