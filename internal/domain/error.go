package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrMalformedCommand   = errors.New("malformed command")
	ErrUnknownStudent     = errors.New("student not found")
	ErrUnknownPlan        = errors.New("unrecognized plan selection")
	ErrMissingReceipt     = errors.New("receipt image required")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
