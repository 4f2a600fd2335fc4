package entity

import "errors"

// Domain errors for assessment scoring.
var (
	ErrInvalidUserID          = errors.New("invalid user ID")
	ErrInvalidAttemptID       = errors.New("invalid attempt ID")
	ErrInvalidResultType      = errors.New("invalid result type")
	ErrNoResponsesFound       = errors.New("no responses found")
	ErrInvalidSelectedOptions = errors.New("invalid selected options")
	ErrResultNotFound         = errors.New("assessment result not found")
	ErrDuplicateResult        = errors.New("assessment result already exists")
	ErrAlgorithmNotFound      = errors.New("scoring algorithm not found")
	ErrInvalidAlgorithm       = errors.New("invalid scoring algorithm")
	ErrDuplicateAlgorithm     = errors.New("scoring algorithm version already exists")
)
