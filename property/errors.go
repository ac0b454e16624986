/*
errors.go - Centralized error types for the tenancy engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Components return the structured errors below; callers classify them
  with errors.Is against the sentinels.

ERROR CATEGORIES:
  1. Validation    - Malformed or missing input. Caller re-prompts.
  2. NotFound      - Reference to an absent tenant, unit or archival record.
  3. Capacity      - Dorm occupancy limit reached.
  4. Invariant     - Unit and tenant state desynchronized. FATAL for the
                     enclosing operation; never partially applied.

USAGE:
  if errors.Is(err, property.ErrCapacityExceeded) {
      var capErr *property.CapacityError
      errors.As(err, &capErr)
      fmt.Printf("unit %d already has %d occupants\n", capErr.UnitID, capErr.Occupants)
  }

SEE ALSO:
  - units/registry.go: CapacityError, InvariantError
  - tenants/validate.go: ValidationError
*/
package property

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when input is malformed or a required field is missing.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded is returned when a Dorm unit already holds the maximum
	// number of Active Dorm tenants.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvariantViolation is returned when a unit's stored status disagrees
	// with the tenants referencing it.
	ErrInvariantViolation = errors.New("invariant violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Kind string // "unit", "tenant", "deleted tenant", "payment", "maintenance request", "staff"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// CapacityError provides details about a rejected Dorm assignment.
type CapacityError struct {
	UnitID    UnitID
	Occupants int
	Max       int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("dorm unit %d already has %d occupants (max %d)", e.UnitID, e.Occupants, e.Max)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// InvariantError describes a desynchronized unit.
type InvariantError struct {
	UnitID  UnitID
	Stored  UnitStatus
	Derived UnitStatus
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("unit %d status is %s but its tenants imply %s", e.UnitID, e.Stored, e.Derived)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// NotFound builds a NotFoundError for kind/id.
func NotFound(kind string, id int64) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsClientError returns true if the caller can correct the input and retry.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrCapacityExceeded)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFatal returns true for conditions the core never recovers from.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}
