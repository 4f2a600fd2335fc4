package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/repository"
	"github.com/eslsoft/traitscore/pkg/filterexpr"
)

func sampleResult(userID, attemptID int64, createdAt time.Time) *entity.AssessmentResult {
	return &entity.AssessmentResult{
		UserID:           userID,
		AttemptID:        attemptID,
		Type:             entity.ResultTypeForAttempt(attemptID),
		Self:             entity.ScoreResult{A: 0.4, B: 1, Avg: 0.35},
		Concept:          entity.ScoreResult{C: 1, Avg: 0.25},
		DecisionApproach: 0.26,
		AlgorithmVersion: 3,
		SelfWordCount:    2,
		ConceptWordCount: 1,
		SelfWords:        []string{"Relaxed", "Persuasive"},
		ConceptWords:     []string{"Stable"},
		CreatedAt:        createdAt,
	}
}

func TestResultRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(newTestDriver(t))

	missing, err := repo.FindByAttempt(ctx, 1, 1)
	if err != nil || missing != nil {
		t.Fatalf("expected nil result without error, got %v (%v)", missing, err)
	}

	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	in := sampleResult(1, 1, at)
	created, err := repo.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected generated id")
	}

	got, err := repo.FindByAttempt(ctx, 1, 1)
	if err != nil || got == nil {
		t.Fatalf("find: %v (%v)", got, err)
	}
	if got.Type != entity.ResultTypeOriginal || got.Self != in.Self || got.Concept != in.Concept || got.Adjusted != (entity.ScoreResult{}) {
		t.Fatalf("scores did not round-trip: %+v", got)
	}
	if got.DecisionApproach != 0.26 || got.AlgorithmVersion != 3 || got.SelfWordCount != 2 || got.ConceptWordCount != 1 {
		t.Fatalf("metadata did not round-trip: %+v", got)
	}
	if !reflect.DeepEqual(got.SelfWords, in.SelfWords) || !reflect.DeepEqual(got.ConceptWords, in.ConceptWords) {
		t.Fatalf("words did not round-trip: %+v", got)
	}
	if got.AdjustedWords == nil || len(got.AdjustedWords) != 0 {
		t.Fatalf("expected empty adjusted words, got %#v", got.AdjustedWords)
	}
	if !got.CreatedAt.Equal(at) {
		t.Fatalf("expected created_at %v, got %v", at, got.CreatedAt)
	}

	if _, err := repo.Create(ctx, sampleResult(1, 1, at)); !errors.Is(err, entity.ErrDuplicateResult) {
		t.Fatalf("expected ErrDuplicateResult, got %v", err)
	}
}

func TestResultRepository_Replace(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(newTestDriver(t))

	first, err := repo.Replace(ctx, sampleResult(1, 2, time.Now()))
	if err != nil {
		t.Fatalf("replace without stored row: %v", err)
	}

	next := sampleResult(1, 2, time.Now())
	next.SelfWordCount = 5
	replaced, err := repo.Replace(ctx, next)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.ID == first.ID {
		t.Fatalf("expected a new row id")
	}
	items, total, err := repo.List(ctx, &repository.ListResultQuery{
		Pagination:  repository.Pagination{PageNo: 1, PageSize: 10},
		FilterOrder: repository.FilterOrder{Filter: "user_id == 1"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || items[0].ID != replaced.ID || items[0].SelfWordCount != 5 {
		t.Fatalf("expected only the replacement row, got %d rows %+v", total, items)
	}
}

func TestStore_WithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	drv := newTestDriver(t)
	repo := NewResultRepository(drv)
	stored, err := repo.Create(ctx, sampleResult(1, 1, time.Now()))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	failure := errors.New("insert failed")
	s := newStore(drv)
	err = s.withTx(ctx, func(tx store) error {
		del := tx.builder().Delete(resultsTable)
		if _, err := tx.exec(ctx, del); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected the callback error, got %v", err)
	}
	got, err := repo.FindByAttempt(ctx, 1, 1)
	if err != nil || got == nil || got.ID != stored.ID {
		t.Fatalf("expected stored row to survive the rollback, got %+v (%v)", got, err)
	}
}

func TestResultRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository(newTestDriver(t))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, ref := range []entity.AttemptRef{{UserID: 1, AttemptID: 1}, {UserID: 1, AttemptID: 2}, {UserID: 1, AttemptID: 3}, {UserID: 2, AttemptID: 1}} {
		res := sampleResult(ref.UserID, ref.AttemptID, base.Add(time.Duration(i)*time.Hour))
		res.DecisionApproach = float64(i) / 10
		if _, err := repo.Create(ctx, res); err != nil {
			t.Fatalf("create %v: %v", ref, err)
		}
	}

	list := func(filter, orderBy string, pageNo, pageSize int32) ([]*entity.AssessmentResult, int64) {
		t.Helper()
		items, total, err := repo.List(ctx, &repository.ListResultQuery{
			Pagination:  repository.Pagination{PageNo: pageNo, PageSize: pageSize},
			FilterOrder: repository.FilterOrder{Filter: filter, OrderBy: orderBy},
		})
		if err != nil {
			t.Fatalf("list %q: %v", filter, err)
		}
		return items, total
	}
	attempts := func(items []*entity.AssessmentResult) []int64 {
		out := make([]int64, 0, len(items))
		for _, it := range items {
			out = append(out, it.AttemptID)
		}
		return out
	}

	items, total := list("", "", 1, 10)
	if total != 4 || len(items) != 4 || items[0].UserID != 2 {
		t.Fatalf("expected newest first across 4 rows, got total=%d first=%+v", total, items[0])
	}

	items, total = list("user_id == 1 && result_type == 'adjust'", "attempt_id", 1, 10)
	if total != 2 || !reflect.DeepEqual(attempts(items), []int64{2, 3}) {
		t.Fatalf("unexpected adjust rows: total=%d attempts=%v", total, attempts(items))
	}

	items, total = list("user_id == 1", "attempt_id desc", 2, 2)
	if total != 3 || !reflect.DeepEqual(attempts(items), []int64{1}) {
		t.Fatalf("unexpected second page: total=%d attempts=%v", total, attempts(items))
	}

	items, _ = list("dec_approach >= 0.1 && dec_approach <= 0.2 && result_type in ['original', 'adjust']", "dec_approach", 1, 10)
	if !reflect.DeepEqual(attempts(items), []int64{2, 3}) {
		t.Fatalf("unexpected dec_approach range: %v", attempts(items))
	}

	items, total = list("created_at >= timestamp('2025-01-01T02:00:00Z')", "", 1, 10)
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 rows after cutoff, got %d", total)
	}

	items, total = list("user_id == 99", "", 1, 10)
	if total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil page, got %#v (%d)", items, total)
	}
}

func TestResultRepository_ListRejectsInvalidQueries(t *testing.T) {
	repo := NewResultRepository(newTestDriver(t))
	for _, fo := range []repository.FilterOrder{
		{Filter: "result_type == 'sideways'"},
		{Filter: "result_type in ['original', 'nope']"},
		{Filter: "self_a > 0"},
		{OrderBy: "self_words"},
	} {
		_, _, err := repo.List(context.Background(), &repository.ListResultQuery{
			Pagination:  repository.Pagination{PageNo: 1, PageSize: 10},
			FilterOrder: fo,
		})
		if !errors.Is(err, filterexpr.ErrInvalid) {
			t.Fatalf("%+v: expected ErrInvalid, got %v", fo, err)
		}
	}
}
