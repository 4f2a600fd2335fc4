package repository

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/infrastructure/database/types"
	"github.com/eslsoft/traitscore/internal/repository"
)

var algorithmColumns = []string{"id", "version", "is_global", "self_table", "conc_table", "adjust_table", "created_at"}

type algorithmRepository struct {
	store
}

// NewAlgorithmRepository constructs the SQL-backed weight source.
func NewAlgorithmRepository(drv dialect.Driver) repository.AlgorithmRepository {
	return &algorithmRepository{store: newStore(drv)}
}

func (r *algorithmRepository) LatestGlobal(ctx context.Context) (*entity.Algorithm, error) {
	b := r.builder()
	sel := b.Select(algorithmColumns...).
		From(b.Table(algorithmsTable)).
		Where(sql.EQ("is_global", true)).
		OrderBy(sql.Desc("version")).
		Limit(1)

	var out *entity.Algorithm
	err := r.query(ctx, sel, func(rows *sql.Rows) error {
		rec, err := scanAlgorithm(rows)
		out = rec
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load latest global algorithm: %w", err)
	}
	if out == nil {
		return nil, entity.ErrAlgorithmNotFound
	}
	return out, nil
}

func (r *algorithmRepository) Create(ctx context.Context, algorithm *entity.Algorithm) (*entity.Algorithm, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := *algorithm
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	ins := r.builder().Insert(algorithmsTable).
		Columns("version", "is_global", "self_table", "conc_table", "adjust_table", "created_at").
		Values(rec.Version, rec.IsGlobal, types.WeightTable(rec.SelfTable), types.WeightTable(rec.ConceptTable), types.WeightTable(rec.AdjustTable), rec.CreatedAt)
	id, err := r.insert(ctx, ins)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateAlgorithm
		}
		return nil, fmt.Errorf("create algorithm: %w", err)
	}
	rec.ID = id
	return &rec, nil
}

func (r *algorithmRepository) SetGlobal(ctx context.Context, version int, global bool) error {
	upd := r.builder().Update(algorithmsTable).
		Set("is_global", global).
		Where(sql.EQ("version", version))
	affected, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("set algorithm global: %w", err)
	}
	if affected == 0 {
		return entity.ErrAlgorithmNotFound
	}
	return nil
}

func (r *algorithmRepository) MaxVersion(ctx context.Context) (int, error) {
	b := r.builder()
	sel := b.Select(sql.Max("version")).From(b.Table(algorithmsTable))
	var highest stdsql.NullInt64
	if err := r.query(ctx, sel, func(rows *sql.Rows) error { return rows.Scan(&highest) }); err != nil {
		return 0, fmt.Errorf("max algorithm version: %w", err)
	}
	return int(highest.Int64), nil
}

func scanAlgorithm(rows *sql.Rows) (*entity.Algorithm, error) {
	var (
		rec                   entity.Algorithm
		self, concept, adjust types.WeightTable
		createdAt             time.Time
	)
	if err := rows.Scan(&rec.ID, &rec.Version, &rec.IsGlobal, &self, &concept, &adjust, &createdAt); err != nil {
		return nil, err
	}
	rec.SelfTable = self
	rec.ConceptTable = concept
	rec.AdjustTable = adjust
	rec.CreatedAt = createdAt
	return &rec, nil
}
