package repository

import (
	"context"

	"github.com/eslsoft/traitscore/internal/entity"
)

// AlgorithmRepository is the weight source: published versions of the scoring tables.
type AlgorithmRepository interface {
	// LatestGlobal returns the highest version flagged global, or entity.ErrAlgorithmNotFound.
	LatestGlobal(ctx context.Context) (*entity.Algorithm, error)
	Create(ctx context.Context, algorithm *entity.Algorithm) (*entity.Algorithm, error)
	SetGlobal(ctx context.Context, version int, global bool) error
	MaxVersion(ctx context.Context) (int, error)
}
