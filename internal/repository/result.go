package repository

import (
	"context"

	"github.com/eslsoft/traitscore/internal/entity"
)

// ListResultQuery holds parameters for listing assessment results.
type ListResultQuery struct {
	Pagination
	FilterOrder
}

// ResultRepository persists assessment results. The store enforces uniqueness on
// (user_id, attempt_id, type) and reports violations as entity.ErrDuplicateResult.
type ResultRepository interface {
	// FindByAttempt returns nil without error when the attempt has no result.
	FindByAttempt(ctx context.Context, userID, attemptID int64) (*entity.AssessmentResult, error)
	Create(ctx context.Context, result *entity.AssessmentResult) (*entity.AssessmentResult, error)
	// Replace deletes any stored result of the attempt and stores result in its place,
	// atomically.
	Replace(ctx context.Context, result *entity.AssessmentResult) (*entity.AssessmentResult, error)
	List(ctx context.Context, query *ListResultQuery) ([]*entity.AssessmentResult, int64, error)
}
