// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInternal         = errors.New("internal error")
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrExpired          = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "user", "leaderboard", "scoring"
	Op      string // Operation that failed, e.g., "Resolve", "ClosePeriods"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// User domain errors
var (
	ErrUserNotFound      = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUserAlreadyExists = NewDomainError("user", "Create", ErrAlreadyExists, "user already exists")
	ErrInvalidDiscordID  = NewDomainError("user", "Validate", ErrInvalidID, "invalid Discord ID")
	ErrInvalidHandle     = NewDomainError("user", "Validate", ErrInvalidInput, "invalid LeetCode handle")
	ErrHandleNotFound    = NewDomainError("user", "Link", ErrNotFound, "LeetCode handle does not exist")
)

// Profile domain errors
var (
	ErrProfileNotFound      = NewDomainError("profile", "Find", ErrNotFound, "profile not found")
	ErrProfileAlreadyExists = NewDomainError("profile", "Create", ErrAlreadyExists, "profile already exists")
)

// Server (community) domain errors
var (
	ErrServerNotFound = NewDomainError("server", "Find", ErrNotFound, "server not found")
	ErrInvalidTZ      = NewDomainError("server", "Validate", ErrInvalidInput, "invalid timezone")
)

// Leaderboard domain errors
var (
	ErrLeaderboardEmpty  = NewDomainError("leaderboard", "Rank", ErrNotFound, "leaderboard has no participants")
	ErrInvalidPeriod     = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "invalid period kind")
	ErrInvalidSortKey    = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "invalid sort key")
	ErrSnapshotNotFound  = NewDomainError("leaderboard", "FindSnapshot", ErrNotFound, "snapshot not found")
	ErrDuplicateSnapshot = NewDomainError("leaderboard", "InsertSnapshot", ErrAlreadyExists, "snapshot already exists for this boundary")
	ErrUnboundedPeriod   = NewDomainError("leaderboard", "Bounds", ErrInvalidInput, "period has no boundaries")
)

// External service errors
var (
	ErrJudgeUnavailable     = NewDomainError("leetcode", "Request", ErrServiceUnavailable, "LeetCode API is unavailable")
	ErrJudgeRateLimited     = NewDomainError("leetcode", "Request", ErrRateLimited, "LeetCode API rate limit exceeded")
	ErrJudgeTimeout         = NewDomainError("leetcode", "Request", ErrTimeout, "LeetCode API request timeout")
	ErrJudgeInvalidResponse = NewDomainError("leetcode", "Parse", ErrInvalidFormat, "invalid response from LeetCode API")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}
