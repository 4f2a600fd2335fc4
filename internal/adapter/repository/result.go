package repository

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/infrastructure/database/types"
	"github.com/eslsoft/traitscore/internal/repository"
	"github.com/eslsoft/traitscore/pkg/filterexpr"
)

var resultColumns = []string{
	"id", "user_id", "attempt_id", "type",
	"self_a", "self_b", "self_c", "self_d", "self_avg",
	"conc_a", "conc_b", "conc_c", "conc_d", "conc_avg",
	"adj_a", "adj_b", "adj_c", "adj_d", "adj_avg",
	"dec_approach", "algorithm_version",
	"self_word_count", "conc_word_count", "adj_word_count",
	"self_words", "conc_words", "adj_words",
	"created_at",
}

type listResultsParams struct {
	UserID         *int64
	AttemptID      *int64
	AttemptMin     *int64
	AttemptMax     *int64
	Type           *string
	Types          []string
	DecApproachMin *float64
	DecApproachMax *float64
	CreatedAfter   *time.Time
	CreatedBefore  *time.Time
	Order          []filterexpr.OrderTerm
}

type resultRepository struct {
	store
}

// NewResultRepository constructs the SQL-backed result store.
func NewResultRepository(drv dialect.Driver) repository.ResultRepository {
	return &resultRepository{store: newStore(drv)}
}

func (r *resultRepository) FindByAttempt(ctx context.Context, userID, attemptID int64) (*entity.AssessmentResult, error) {
	b := r.builder()
	sel := b.Select(resultColumns...).
		From(b.Table(resultsTable)).
		Where(sql.And(sql.EQ("user_id", userID), sql.EQ("attempt_id", attemptID))).
		OrderBy(sql.Asc("id")).
		Limit(1)

	var out *entity.AssessmentResult
	err := r.query(ctx, sel, func(rows *sql.Rows) error {
		rec, err := scanResult(rows)
		out = rec
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find result: %w", err)
	}
	return out, nil
}

func (r *resultRepository) Create(ctx context.Context, result *entity.AssessmentResult) (*entity.AssessmentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.create(ctx, r.store, result)
}

// Replace swaps the stored result of the attempt for result in one transaction.
// When any step fails the previously stored row is left untouched.
func (r *resultRepository) Replace(ctx context.Context, result *entity.AssessmentResult) (*entity.AssessmentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var created *entity.AssessmentResult
	err := r.withTx(ctx, func(tx store) error {
		del := tx.builder().Delete(resultsTable).
			Where(sql.And(sql.EQ("user_id", result.UserID), sql.EQ("attempt_id", result.AttemptID)))
		if _, err := tx.exec(ctx, del); err != nil {
			return fmt.Errorf("delete result: %w", err)
		}
		rec, err := r.create(ctx, tx, result)
		if err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *resultRepository) create(ctx context.Context, s store, result *entity.AssessmentResult) (*entity.AssessmentResult, error) {
	rec := *result
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	ins := s.builder().Insert(resultsTable).
		Columns(resultColumns[1:]...).
		Values(
			rec.UserID, rec.AttemptID, string(rec.Type),
			rec.Self.A, rec.Self.B, rec.Self.C, rec.Self.D, rec.Self.Avg,
			rec.Concept.A, rec.Concept.B, rec.Concept.C, rec.Concept.D, rec.Concept.Avg,
			rec.Adjusted.A, rec.Adjusted.B, rec.Adjusted.C, rec.Adjusted.D, rec.Adjusted.Avg,
			rec.DecisionApproach, rec.AlgorithmVersion,
			rec.SelfWordCount, rec.ConceptWordCount, rec.AdjustedWordCount,
			types.WordList(rec.SelfWords), types.WordList(rec.ConceptWords), types.WordList(rec.AdjustedWords),
			rec.CreatedAt,
		)
	id, err := s.insert(ctx, ins)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateResult
		}
		return nil, fmt.Errorf("create result: %w", err)
	}
	rec.ID = id
	return &rec, nil
}

func (r *resultRepository) List(ctx context.Context, query *repository.ListResultQuery) ([]*entity.AssessmentResult, int64, error) {
	var params listResultsParams
	if err := filterexpr.Bind(query, &params, listResultsSchema); err != nil {
		return nil, 0, err
	}
	pred, err := params.predicate()
	if err != nil {
		return nil, 0, err
	}

	b := r.builder()
	table := b.Table(resultsTable)
	countSel := b.Select(sql.Count("*")).From(table)
	if pred != nil {
		countSel.Where(pred)
	}
	total, err := r.count(ctx, countSel)
	if err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}
	if total == 0 {
		return []*entity.AssessmentResult{}, 0, nil
	}

	sel := b.Select(resultColumns...).From(table)
	if pred != nil {
		sel.Where(pred)
	}
	for _, term := range params.Order {
		orderTerm(term)(sel)
	}
	sel.Limit(int(query.PageSize)).Offset(int(query.Offset()))

	items := make([]*entity.AssessmentResult, 0, query.PageSize)
	err = r.query(ctx, sel, func(rows *sql.Rows) error {
		rec, err := scanResult(rows)
		if err != nil {
			return err
		}
		items = append(items, rec)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}
	return items, total, nil
}

func (p *listResultsParams) predicate() (*sql.Predicate, error) {
	var preds []*sql.Predicate
	if p.UserID != nil {
		preds = append(preds, sql.EQ("user_id", *p.UserID))
	}
	if p.AttemptID != nil {
		preds = append(preds, sql.EQ("attempt_id", *p.AttemptID))
	}
	if p.AttemptMin != nil {
		preds = append(preds, sql.GTE("attempt_id", *p.AttemptMin))
	}
	if p.AttemptMax != nil {
		preds = append(preds, sql.LTE("attempt_id", *p.AttemptMax))
	}
	if p.Type != nil {
		t, err := parseFilterType(*p.Type)
		if err != nil {
			return nil, err
		}
		preds = append(preds, sql.EQ("type", t))
	}
	if len(p.Types) > 0 {
		values := make([]any, 0, len(p.Types))
		for _, raw := range p.Types {
			t, err := parseFilterType(raw)
			if err != nil {
				return nil, err
			}
			values = append(values, t)
		}
		preds = append(preds, sql.In("type", values...))
	}
	if p.DecApproachMin != nil {
		preds = append(preds, sql.GTE("dec_approach", *p.DecApproachMin))
	}
	if p.DecApproachMax != nil {
		preds = append(preds, sql.LTE("dec_approach", *p.DecApproachMax))
	}
	if p.CreatedAfter != nil {
		preds = append(preds, sql.GTE("created_at", p.CreatedAfter.UTC()))
	}
	if p.CreatedBefore != nil {
		preds = append(preds, sql.LTE("created_at", p.CreatedBefore.UTC()))
	}
	switch len(preds) {
	case 0:
		return nil, nil
	case 1:
		return preds[0], nil
	default:
		return sql.And(preds...), nil
	}
}

func parseFilterType(raw string) (string, error) {
	t, err := entity.ParseResultType(raw)
	if err != nil || t == "" {
		return "", fmt.Errorf("%w: unknown result_type %q", filterexpr.ErrInvalid, raw)
	}
	return string(t), nil
}

func orderTerm(term filterexpr.OrderTerm) func(*sql.Selector) {
	opts := []sql.OrderTermOption{sql.OrderAsc()}
	if term.Desc {
		opts[0] = sql.OrderDesc()
	}
	switch term.Nulls {
	case "last":
		opts = append(opts, sql.OrderNullsLast())
	case "first":
		opts = append(opts, sql.OrderNullsFirst())
	}
	return sql.OrderByField(term.Expr, opts...).ToFunc()
}

func scanResult(rows *sql.Rows) (*entity.AssessmentResult, error) {
	var (
		rec                   entity.AssessmentResult
		resultType            string
		self, concept, adjust types.WordList
		createdAt             time.Time
	)
	err := rows.Scan(
		&rec.ID, &rec.UserID, &rec.AttemptID, &resultType,
		&rec.Self.A, &rec.Self.B, &rec.Self.C, &rec.Self.D, &rec.Self.Avg,
		&rec.Concept.A, &rec.Concept.B, &rec.Concept.C, &rec.Concept.D, &rec.Concept.Avg,
		&rec.Adjusted.A, &rec.Adjusted.B, &rec.Adjusted.C, &rec.Adjusted.D, &rec.Adjusted.Avg,
		&rec.DecisionApproach, &rec.AlgorithmVersion,
		&rec.SelfWordCount, &rec.ConceptWordCount, &rec.AdjustedWordCount,
		&self, &concept, &adjust,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Type = entity.ResultType(resultType)
	rec.SelfWords = nonNil(self)
	rec.ConceptWords = nonNil(concept)
	rec.AdjustedWords = nonNil(adjust)
	rec.CreatedAt = createdAt.UTC()
	return &rec, nil
}

func nonNil(words []string) []string {
	if words == nil {
		return []string{}
	}
	return words
}
