package mapping

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/pkg/filterexpr"
)

// ToConnectError maps domain errors onto Connect status codes.
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, entity.ErrInvalidUserID),
		errors.Is(err, entity.ErrInvalidAttemptID),
		errors.Is(err, entity.ErrInvalidResultType),
		errors.Is(err, filterexpr.ErrInvalid):
		return connect.CodeInvalidArgument
	case errors.Is(err, entity.ErrNoResponsesFound),
		errors.Is(err, entity.ErrResultNotFound),
		errors.Is(err, entity.ErrAlgorithmNotFound):
		return connect.CodeNotFound
	case errors.Is(err, entity.ErrDuplicateResult),
		errors.Is(err, entity.ErrDuplicateAlgorithm):
		return connect.CodeAlreadyExists
	default:
		return connect.CodeInternal
	}
}
