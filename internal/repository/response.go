package repository

import (
	"context"

	"github.com/eslsoft/traitscore/internal/entity"
)

// ResponseRepository reads the raw answers submitted for attempts.
type ResponseRepository interface {
	ListByAttempt(ctx context.Context, userID, attemptID int64) ([]entity.Response, error)
	Create(ctx context.Context, response *entity.Response) (*entity.Response, error)
	// ListPendingAttempts returns attempts that have responses but no stored result.
	ListPendingAttempts(ctx context.Context, limit int) ([]entity.AttemptRef, error)
}
