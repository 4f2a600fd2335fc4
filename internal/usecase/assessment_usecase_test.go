package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/repository"
)

type staticWeights struct {
	set *entity.WeightSet
}

func (s staticWeights) All(ctx context.Context) *entity.WeightSet { return s.set }
func (s staticWeights) Invalidate(ctx context.Context) error      { return nil }
func (s staticWeights) Publish(ctx context.Context, a *entity.Algorithm) (*entity.Algorithm, error) {
	return a, nil
}

type assessmentFixture struct {
	responses *fakeResponseRepo
	results   *fakeResultRepo
	uc        AssessmentUsecase
	logger    *logrus.Logger
}

func newAssessmentFixture(t *testing.T) *assessmentFixture {
	t.Helper()
	logger, _ := newTestLogger()
	responses := &fakeResponseRepo{}
	results := newFakeResultRepo()
	uc := NewAssessmentUsecase(responses, results, staticWeights{set: sampleWeightSet()}, nil, logger)
	return &assessmentFixture{responses: responses, results: results, uc: uc, logger: logger}
}

func TestCalculate_FirstAttemptProducesOriginalResult(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(7, 1, entity.AssessmentSelf, `["Relaxed","Persuasive"]`)
	f.responses.add(7, 1, entity.AssessmentConcept, `["Stable"]`)

	result, err := f.uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.Type != entity.ResultTypeOriginal {
		t.Fatalf("expected original type, got %s", result.Type)
	}
	if !almostEqual(result.Self.A, 0.4) || !almostEqual(result.Self.B, 1) || result.Self.C != 0 || result.Self.D != 0 {
		t.Fatalf("unexpected self scores %+v", result.Self)
	}
	if !almostEqual(result.Concept.C, 1) || result.Concept.B != 0 {
		t.Fatalf("unexpected concept scores %+v", result.Concept)
	}
	if result.Adjusted != (entity.ScoreResult{}) || result.AdjustedWordCount != 0 || len(result.AdjustedWords) != 0 {
		t.Fatalf("expected empty adjusted pass, got %+v / %v", result.Adjusted, result.AdjustedWords)
	}
	if result.DecisionApproach < 0 || result.DecisionApproach > 1 {
		t.Fatalf("decision approach out of range: %v", result.DecisionApproach)
	}
	if want := DecisionApproach(result.Self.Avg, result.Concept.Avg); result.DecisionApproach != want {
		t.Fatalf("expected decision approach %v, got %v", want, result.DecisionApproach)
	}
	if result.SelfWordCount != 2 || result.ConceptWordCount != 1 {
		t.Fatalf("unexpected counts %d/%d", result.SelfWordCount, result.ConceptWordCount)
	}
	if result.AlgorithmVersion != 3 {
		t.Fatalf("expected algorithm version 3, got %d", result.AlgorithmVersion)
	}
	if result.ID == 0 {
		t.Fatalf("expected persisted id")
	}
}

func TestCalculate_IsIdempotent(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)

	first, err := f.uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("first calculate: %v", err)
	}
	f.responses.add(7, 1, entity.AssessmentSelf, `["Persuasive"]`)
	second, err := f.uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("second calculate: %v", err)
	}
	if first.ID != second.ID || first.Self != second.Self {
		t.Fatalf("expected stored result to be returned unchanged: %+v vs %+v", first, second)
	}
	if f.results.creates != 1 || f.results.count() != 1 {
		t.Fatalf("expected exactly one stored row, got %d creates", f.results.creates)
	}
}

func TestCalculate_ConcurrentCallsStoreOneRow(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(9, 1, entity.AssessmentSelf, `["Calm"]`)

	var wg sync.WaitGroup
	ids := make([]int64, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.uc.Calculate(context.Background(), 9, 1)
			if err != nil {
				t.Errorf("calculate: %v", err)
				return
			}
			ids[i] = result.ID
		}(i)
	}
	wg.Wait()

	if f.results.count() != 1 {
		t.Fatalf("expected one stored row, got %d", f.results.count())
	}
	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("callers saw different rows: %v", ids)
		}
	}
}

func TestCalculate_DuplicateInsertReturnsStoredRow(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)
	stored, err := f.uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.results.hideOnce = true
	result, err := f.uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("calculate after race: %v", err)
	}
	if result.ID != stored.ID {
		t.Fatalf("expected stored row %d, got %d", stored.ID, result.ID)
	}
	if f.results.creates != 1 {
		t.Fatalf("expected no second row, got %d creates", f.results.creates)
	}
}

func TestCalculate_NoResponses(t *testing.T) {
	f := newAssessmentFixture(t)
	result, err := f.uc.Calculate(context.Background(), 7, 1)
	if !errors.Is(err, entity.ErrNoResponsesFound) {
		t.Fatalf("expected ErrNoResponsesFound, got %v", err)
	}
	if result != nil || f.results.count() != 0 {
		t.Fatalf("nothing should be produced or stored")
	}
}

func TestCalculate_InvalidArguments(t *testing.T) {
	f := newAssessmentFixture(t)
	if _, err := f.uc.Calculate(context.Background(), 0, 1); !errors.Is(err, entity.ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
	if _, err := f.uc.Calculate(context.Background(), 1, -2); !errors.Is(err, entity.ErrInvalidAttemptID) {
		t.Fatalf("expected ErrInvalidAttemptID, got %v", err)
	}
}

func TestCalculate_SkipsUnreadablePayloads(t *testing.T) {
	logger, hook := newTestLogger()
	responses := &fakeResponseRepo{}
	results := newFakeResultRepo()
	uc := NewAssessmentUsecase(responses, results, staticWeights{set: sampleWeightSet()}, nil, logger)

	responses.add(7, 1, entity.AssessmentSelf, `{"not":"a list"}`)
	responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)
	responses.add(7, 1, entity.AssessmentConcept, ``)

	result, err := uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(result.SelfWords) != 1 || result.SelfWords[0] != "Relaxed" || result.ConceptWordCount != 0 {
		t.Fatalf("unexpected words %v / %v", result.SelfWords, result.ConceptWords)
	}
	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings++
		}
	}
	if warnings != 2 {
		t.Fatalf("expected 2 warnings for skipped rows, got %d", warnings)
	}
}

func TestCalculate_RetakeRunsAdjustedPass(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(7, 2, entity.AssessmentSelf, `["Relaxed","Persuasive","Relaxed"]`)
	f.responses.add(7, 2, entity.AssessmentConcept, `["Stable"]`)

	result, err := f.uc.Calculate(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.Type != entity.ResultTypeAdjust {
		t.Fatalf("expected adjust type, got %s", result.Type)
	}
	if len(result.AdjustedWords) != 1 || result.AdjustedWords[0] != "Relaxed" || result.AdjustedWordCount != 1 {
		t.Fatalf("unexpected adjusted words %v", result.AdjustedWords)
	}
	if !almostEqual(result.Adjusted.A, 1) || !almostEqual(result.Adjusted.Avg, 0.25) {
		t.Fatalf("unexpected adjusted scores %+v", result.Adjusted)
	}
	if result.SelfWordCount != 2 {
		t.Fatalf("expected deduplicated self words, got %v", result.SelfWords)
	}
}

func TestCalculate_ExplicitResultTypeOverridesAttempt(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)

	result, err := f.uc.Calculate(context.Background(), 7, 1, WithResultType(entity.ResultTypeAdjust))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.Type != entity.ResultTypeAdjust || result.AdjustedWordCount != 1 {
		t.Fatalf("expected adjust pass, got %+v", result)
	}
}

func TestCalculate_PersistenceFailureProducesNothing(t *testing.T) {
	logger, hook := newTestLogger()
	responses := &fakeResponseRepo{}
	results := newFakeResultRepo()
	results.createErr = errors.New("disk full")
	uc := NewAssessmentUsecase(responses, results, staticWeights{set: sampleWeightSet()}, nil, logger)
	responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)

	result, err := uc.Calculate(context.Background(), 7, 1)
	if err == nil || result != nil {
		t.Fatalf("expected failure with nil result, got %+v, %v", result, err)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected failure to be logged")
	}
}

func TestCalculate_EmptyWeightsScoreZero(t *testing.T) {
	logger, _ := newTestLogger()
	responses := &fakeResponseRepo{}
	results := newFakeResultRepo()
	uc := NewAssessmentUsecase(responses, results, staticWeights{set: entity.EmptyWeightSet()}, nil, logger)
	responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)

	result, err := uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.Self != (entity.ScoreResult{}) || result.DecisionApproach != 0 {
		t.Fatalf("expected zero scores, got %+v", result)
	}
}

func TestExtractWords_LegacyAssessmentIDs(t *testing.T) {
	logger, _ := newTestLogger()
	responses := []entity.Response{
		{ID: 1, AssessmentID: 11, SelectedOptions: `[]`},
		{ID: 2, AssessmentID: 11, SelectedOptions: `["Calm"," Calm ",""]`},
		{ID: 3, AssessmentID: 12, SelectedOptions: `"[\"Stable\"]"`},
		{ID: 4, AssessmentID: 13, SelectedOptions: `["Ignored"]`},
	}
	self, concept := extractWords(logger, entity.NewWordNormalizer(nil), responses)
	if len(self) != 1 || self[0] != "Calm" {
		t.Fatalf("unexpected self bucket %v", self)
	}
	if len(concept) != 1 || concept[0] != "Stable" {
		t.Fatalf("unexpected concept bucket %v", concept)
	}
}

func TestExtractWords_BlankRowDoesNotFillBucket(t *testing.T) {
	logger, _ := newTestLogger()
	responses := []entity.Response{
		{ID: 1, AssessmentID: entity.AssessmentSelf, SelectedOptions: `[" "]`},
		{ID: 2, AssessmentID: 11, SelectedOptions: `["Calm"]`},
	}
	self, concept := extractWords(logger, entity.NewWordNormalizer(nil), responses)
	if len(self) != 1 || self[0] != "Calm" {
		t.Fatalf("expected legacy row in self bucket, got %v", self)
	}
	if len(concept) != 0 {
		t.Fatalf("expected empty concept bucket, got %v", concept)
	}
}

func TestCalculate_CountsWordsOncePerNormalizedForm(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(7, 2, entity.AssessmentSelf, `["Relaxed","relaxed","RELAXED!","Persuasive"]`)

	result, err := f.uc.Calculate(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.SelfWordCount != 2 || result.SelfWords[0] != "Relaxed" || result.SelfWords[1] != "Persuasive" {
		t.Fatalf("expected first spellings only, got %v", result.SelfWords)
	}
	if result.AdjustedWordCount != 1 || len(result.AdjustedWords) != 1 {
		t.Fatalf("expected one adjusted word, got %v", result.AdjustedWords)
	}
}

func TestParseSelectedOptions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"array", `["a","b"]`, []string{"a", "b"}, false},
		{"string wrapped array", `"[\"a\"]"`, []string{"a"}, false},
		{"empty array", `[]`, []string{}, false},
		{"blank", "  ", nil, true},
		{"object", `{"a":1}`, nil, true},
		{"numbers", `[1,2]`, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSelectedOptions(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, entity.ErrInvalidSelectedOptions) {
					t.Fatalf("expected ErrInvalidSelectedOptions, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestRecompute_ReplacesStoredResult(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)
	first, err := f.uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	f.responses.add(7, 1, entity.AssessmentSelf, `["Persuasive"]`)

	second, err := f.uc.Recompute(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if second.ID == first.ID || second.SelfWordCount != 2 {
		t.Fatalf("expected a fresh result, got %+v", second)
	}
	if f.results.count() != 1 {
		t.Fatalf("expected one stored row, got %d", f.results.count())
	}

	if _, err := f.uc.Recompute(context.Background(), 8, 1); !errors.Is(err, entity.ErrNoResponsesFound) {
		t.Fatalf("recompute without stored row should calculate, got %v", err)
	}
}

func TestRecompute_FailedCalculationKeepsStoredResult(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)
	first, err := f.uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	f.responses.err = errors.New("db down")
	if _, err := f.uc.Recompute(context.Background(), 7, 1); err == nil {
		t.Fatalf("expected recompute to fail")
	}
	f.responses.err = nil

	kept, err := f.uc.Get(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("stored result lost after failed recompute: %v", err)
	}
	if kept.ID != first.ID {
		t.Fatalf("expected original row %d, got %d", first.ID, kept.ID)
	}
}

func TestRecompute_FailedReplaceKeepsStoredResult(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)
	first, err := f.uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	f.results.replaceErr = errors.New("disk full")
	if result, err := f.uc.Recompute(context.Background(), 7, 1); err == nil || result != nil {
		t.Fatalf("expected failure with nil result, got %+v, %v", result, err)
	}
	kept, err := f.uc.Get(context.Background(), 7, 1)
	if err != nil || kept.ID != first.ID {
		t.Fatalf("expected original row to survive, got %+v, %v", kept, err)
	}
}

func TestGet(t *testing.T) {
	f := newAssessmentFixture(t)
	if _, err := f.uc.Get(context.Background(), 7, 1); !errors.Is(err, entity.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
	f.responses.add(7, 1, entity.AssessmentSelf, `["Relaxed"]`)
	stored, err := f.uc.Calculate(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	got, err := f.uc.Get(context.Background(), 7, 1)
	if err != nil || got.ID != stored.ID {
		t.Fatalf("expected stored result, got %+v, %v", got, err)
	}
}

func TestList_DefaultsAndClampsPagination(t *testing.T) {
	f := newAssessmentFixture(t)
	for attempt := int64(1); attempt <= 3; attempt++ {
		f.responses.add(7, attempt, entity.AssessmentSelf, `["Relaxed"]`)
		if _, err := f.uc.Calculate(context.Background(), 7, attempt); err != nil {
			t.Fatalf("calculate: %v", err)
		}
	}

	query := &repository.ListResultQuery{}
	items, total, err := f.uc.List(context.Background(), query)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 3 {
		t.Fatalf("expected 3 results, got %d/%d", len(items), total)
	}
	if query.PageNo != 1 || query.PageSize != _defaultPageSize {
		t.Fatalf("expected defaults applied, got %+v", query.Pagination)
	}

	query = &repository.ListResultQuery{Pagination: repository.Pagination{PageNo: 2, PageSize: 2}}
	items, _, err = f.uc.List(context.Background(), query)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one item on page 2, got %d, %v", len(items), err)
	}

	query = &repository.ListResultQuery{Pagination: repository.Pagination{PageSize: 50000}}
	if _, _, err := f.uc.List(context.Background(), query); err != nil {
		t.Fatalf("list: %v", err)
	}
	if query.PageSize != _maxPageSize {
		t.Fatalf("expected page size clamped to %d, got %d", _maxPageSize, query.PageSize)
	}
}

func TestPendingAttempts(t *testing.T) {
	f := newAssessmentFixture(t)
	f.responses.add(1, 1, entity.AssessmentSelf, `["a"]`)
	f.responses.add(1, 1, entity.AssessmentConcept, `["b"]`)
	f.responses.add(2, 1, entity.AssessmentSelf, `["a"]`)

	refs, err := f.uc.PendingAttempts(context.Background(), 0)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 attempts, got %v", refs)
	}
	refs, _ = f.uc.PendingAttempts(context.Background(), 1)
	if len(refs) != 1 {
		t.Fatalf("expected limit to apply, got %v", refs)
	}
}
