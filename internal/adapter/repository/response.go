package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/repository"
)

var responseColumns = []string{"id", "user_id", "attempt_id", "assessment_id", "selected_options", "created_at"}

type responseRepository struct {
	store
}

// NewResponseRepository constructs the SQL-backed response store.
func NewResponseRepository(drv dialect.Driver) repository.ResponseRepository {
	return &responseRepository{store: newStore(drv)}
}

func (r *responseRepository) ListByAttempt(ctx context.Context, userID, attemptID int64) ([]entity.Response, error) {
	b := r.builder()
	sel := b.Select(responseColumns...).
		From(b.Table(responsesTable)).
		Where(sql.And(sql.EQ("user_id", userID), sql.EQ("attempt_id", attemptID))).
		OrderBy(sql.Asc("id"))

	var out []entity.Response
	err := r.query(ctx, sel, func(rows *sql.Rows) error {
		var rec entity.Response
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.AttemptID, &rec.AssessmentID, &rec.SelectedOptions, &rec.CreatedAt); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return out, nil
}

func (r *responseRepository) Create(ctx context.Context, response *entity.Response) (*entity.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := *response
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	ins := r.builder().Insert(responsesTable).
		Columns("user_id", "attempt_id", "assessment_id", "selected_options", "created_at").
		Values(rec.UserID, rec.AttemptID, rec.AssessmentID, rec.SelectedOptions, rec.CreatedAt)
	id, err := r.insert(ctx, ins)
	if err != nil {
		return nil, fmt.Errorf("create response: %w", err)
	}
	rec.ID = id
	return &rec, nil
}

func (r *responseRepository) ListPendingAttempts(ctx context.Context, limit int) ([]entity.AttemptRef, error) {
	b := r.builder()
	resp := b.Table(responsesTable).As("r")
	res := b.Table(resultsTable).As("s")
	scored := b.Select(res.C("id")).
		From(res).
		Where(sql.And(
			sql.ColumnsEQ(res.C("user_id"), resp.C("user_id")),
			sql.ColumnsEQ(res.C("attempt_id"), resp.C("attempt_id")),
		))
	sel := b.Select(resp.C("user_id"), resp.C("attempt_id")).
		Distinct().
		From(resp).
		Where(sql.NotExists(scored)).
		OrderBy(resp.C("user_id"), resp.C("attempt_id"))
	if limit > 0 {
		sel.Limit(limit)
	}

	var out []entity.AttemptRef
	err := r.query(ctx, sel, func(rows *sql.Rows) error {
		var ref entity.AttemptRef
		if err := rows.Scan(&ref.UserID, &ref.AttemptID); err != nil {
			return err
		}
		out = append(out, ref)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list pending attempts: %w", err)
	}
	return out, nil
}
