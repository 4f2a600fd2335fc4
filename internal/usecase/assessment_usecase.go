package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/repository"
)

// AssessmentUsecase scores attempts and serves stored results.
type AssessmentUsecase interface {
	// Calculate returns the stored result for the attempt or computes and stores it.
	// On error nothing is persisted and the result is nil.
	Calculate(ctx context.Context, userID, attemptID int64, opts ...CalculateOption) (*entity.AssessmentResult, error)
	// Recompute drops any stored result for the attempt and calculates it again.
	Recompute(ctx context.Context, userID, attemptID int64, opts ...CalculateOption) (*entity.AssessmentResult, error)
	Get(ctx context.Context, userID, attemptID int64) (*entity.AssessmentResult, error)
	List(ctx context.Context, query *repository.ListResultQuery) ([]*entity.AssessmentResult, int64, error)
	PendingAttempts(ctx context.Context, limit int) ([]entity.AttemptRef, error)
}

// CalculateOption customizes a single calculation.
type CalculateOption func(*calculateConfig)

type calculateConfig struct {
	resultType entity.ResultType
}

// WithResultType sets the result type explicitly instead of deriving it from the attempt number.
func WithResultType(t entity.ResultType) CalculateOption {
	return func(c *calculateConfig) {
		if t != "" {
			c.resultType = t
		}
	}
}

const (
	_defaultPageSize  = int32(20)
	_maxPageSize      = int32(1000)
	_defaultPendingN  = 500
	_maxPendingLookup = 10000
)

type assessmentUsecase struct {
	responses  repository.ResponseRepository
	results    repository.ResultRepository
	weights    WeightUsecase
	normalizer *entity.WordNormalizer
	logger     logrus.FieldLogger
	clock      func() time.Time
}

// NewAssessmentUsecase wires repositories, weights and logging.
func NewAssessmentUsecase(
	responses repository.ResponseRepository,
	results repository.ResultRepository,
	weights WeightUsecase,
	normalizer *entity.WordNormalizer,
	logger logrus.FieldLogger,
) AssessmentUsecase {
	if normalizer == nil {
		normalizer = entity.NewWordNormalizer(nil)
	}
	return &assessmentUsecase{
		responses:  responses,
		results:    results,
		weights:    weights,
		normalizer: normalizer,
		logger:     logger.WithField("component", "assessment"),
		clock:      time.Now,
	}
}

func (u *assessmentUsecase) Calculate(ctx context.Context, userID, attemptID int64, opts ...CalculateOption) (*entity.AssessmentResult, error) {
	if err := validateAttempt(userID, attemptID); err != nil {
		return nil, err
	}
	cfg := calculateConfig{resultType: entity.ResultTypeForAttempt(attemptID)}
	for _, opt := range opts {
		opt(&cfg)
	}

	existing, err := u.results.FindByAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, fmt.Errorf("find result: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	log := u.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"attempt_id": attemptID,
		"type":       cfg.resultType,
	})
	result, err := u.build(ctx, log, userID, attemptID, cfg.resultType)
	if err == nil {
		result, err = u.store(ctx, log, result)
	}
	if err != nil {
		log.WithError(err).Error("assessment calculation failed")
		return nil, err
	}
	log.WithField("result_id", result.ID).Info("assessment calculated")
	return result, nil
}

// Recompute calculates the attempt again and swaps the stored result for the new one.
// The stored result is kept when the calculation or the swap fails.
func (u *assessmentUsecase) Recompute(ctx context.Context, userID, attemptID int64, opts ...CalculateOption) (*entity.AssessmentResult, error) {
	if err := validateAttempt(userID, attemptID); err != nil {
		return nil, err
	}
	cfg := calculateConfig{resultType: entity.ResultTypeForAttempt(attemptID)}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := u.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"attempt_id": attemptID,
		"type":       cfg.resultType,
	})
	result, err := u.build(ctx, log, userID, attemptID, cfg.resultType)
	if err != nil {
		log.WithError(err).Error("assessment recompute failed, stored result kept")
		return nil, err
	}
	replaced, err := u.results.Replace(ctx, result)
	if err != nil {
		log.WithError(err).Error("assessment recompute failed, stored result kept")
		return nil, fmt.Errorf("replace result: %w", err)
	}
	log.WithField("result_id", replaced.ID).Info("assessment recomputed")
	return replaced, nil
}

func (u *assessmentUsecase) Get(ctx context.Context, userID, attemptID int64) (*entity.AssessmentResult, error) {
	if err := validateAttempt(userID, attemptID); err != nil {
		return nil, err
	}
	result, err := u.results.FindByAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, fmt.Errorf("find result: %w", err)
	}
	if result == nil {
		return nil, entity.ErrResultNotFound
	}
	return result, nil
}

func (u *assessmentUsecase) List(ctx context.Context, query *repository.ListResultQuery) ([]*entity.AssessmentResult, int64, error) {
	if query == nil {
		query = &repository.ListResultQuery{}
	}
	if query.PageNo <= 0 {
		query.PageNo = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = _defaultPageSize
	}
	if query.PageSize > _maxPageSize {
		query.PageSize = _maxPageSize
	}
	return u.results.List(ctx, query)
}

func (u *assessmentUsecase) PendingAttempts(ctx context.Context, limit int) ([]entity.AttemptRef, error) {
	if limit <= 0 {
		limit = _defaultPendingN
	}
	if limit > _maxPendingLookup {
		limit = _maxPendingLookup
	}
	return u.responses.ListPendingAttempts(ctx, limit)
}

// build scores the attempt from its stored responses without persisting anything.
func (u *assessmentUsecase) build(ctx context.Context, log logrus.FieldLogger, userID, attemptID int64, resultType entity.ResultType) (*entity.AssessmentResult, error) {
	responses, err := u.responses.ListByAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	if len(responses) == 0 {
		return nil, entity.ErrNoResponsesFound
	}

	selfWords, conceptWords := extractWords(log, u.normalizer, responses)

	set := u.weights.All(ctx)
	calc := NewScoreCalculator(set, u.normalizer)
	self := calc.Scores(selfWords, entity.DictionarySelf)
	concept := calc.Scores(conceptWords, entity.DictionaryConcept)

	result := &entity.AssessmentResult{
		UserID:           userID,
		AttemptID:        attemptID,
		Type:             resultType,
		Self:             self,
		Concept:          concept,
		DecisionApproach: DecisionApproach(self.Avg, concept.Avg),
		AlgorithmVersion: set.Version,
		SelfWordCount:    len(selfWords),
		ConceptWordCount: len(conceptWords),
		SelfWords:        selfWords,
		ConceptWords:     conceptWords,
		AdjustedWords:    []string{},
		CreatedAt:        u.clock(),
	}
	if resultType == entity.ResultTypeAdjust {
		adjustedWords := calc.FilterKnown(selfWords, entity.DictionaryAdjusted)
		result.Adjusted = calc.Scores(adjustedWords, entity.DictionaryAdjusted)
		result.AdjustedWords = adjustedWords
		result.AdjustedWordCount = len(adjustedWords)
	}

	return result, nil
}

// store persists a freshly built result. A duplicate key means a concurrent request
// stored the attempt first; its row is returned.
func (u *assessmentUsecase) store(ctx context.Context, log logrus.FieldLogger, result *entity.AssessmentResult) (*entity.AssessmentResult, error) {
	created, err := u.results.Create(ctx, result)
	if errors.Is(err, entity.ErrDuplicateResult) {
		stored, findErr := u.results.FindByAttempt(ctx, result.UserID, result.AttemptID)
		if findErr == nil && stored != nil {
			log.Info("result stored concurrently, returning existing row")
			return stored, nil
		}
		return nil, fmt.Errorf("create result: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("create result: %w", err)
	}
	return created, nil
}

// extractWords routes each response into the self or concept bucket. Rows of unknown
// assessments fill the first bucket that holds no word yet. Buckets keep first-seen
// order and drop blanks and words that normalize to an earlier one.
func extractWords(log logrus.FieldLogger, normalizer *entity.WordNormalizer, responses []entity.Response) ([]string, []string) {
	var selfWords, conceptWords []string
	for _, resp := range responses {
		words, err := ParseSelectedOptions(resp.SelectedOptions)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"response_id":   resp.ID,
				"assessment_id": resp.AssessmentID,
			}).Warn("skipping response with unreadable selected options")
			continue
		}
		switch resp.AssessmentID {
		case entity.AssessmentSelf:
			selfWords = append(selfWords, words...)
		case entity.AssessmentConcept:
			conceptWords = append(conceptWords, words...)
		default:
			switch {
			case !hasWord(words):
			case !hasWord(selfWords):
				selfWords = append(selfWords, words...)
			case !hasWord(conceptWords):
				conceptWords = append(conceptWords, words...)
			default:
				log.WithFields(logrus.Fields{
					"response_id":   resp.ID,
					"assessment_id": resp.AssessmentID,
				}).Warn("dropping words of unknown assessment, both buckets already filled")
			}
		}
	}
	return cleanWords(normalizer, selfWords), cleanWords(normalizer, conceptWords)
}

// ParseSelectedOptions decodes a selected_options payload: a JSON array of strings,
// or a JSON string that itself holds such an array.
func ParseSelectedOptions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty payload", entity.ErrInvalidSelectedOptions)
	}
	var words []string
	if err := json.Unmarshal([]byte(raw), &words); err == nil {
		return words, nil
	}
	var nested string
	if err := json.Unmarshal([]byte(raw), &nested); err == nil {
		if err := json.Unmarshal([]byte(nested), &words); err == nil {
			return words, nil
		}
	}
	return nil, fmt.Errorf("%w: not a list of words", entity.ErrInvalidSelectedOptions)
}

func hasWord(words []string) bool {
	return lo.ContainsBy(words, func(w string) bool { return strings.TrimSpace(w) != "" })
}

// cleanWords trims, drops blanks and keeps the first spelling of each normalized word.
// Words that normalize to nothing are compared by their lowercase spelling.
func cleanWords(normalizer *entity.WordNormalizer, words []string) []string {
	trimmed := lo.Map(words, func(w string, _ int) string { return strings.TrimSpace(w) })
	nonBlank := lo.Filter(trimmed, func(w string, _ int) bool { return w != "" })
	return lo.UniqBy(nonBlank, func(w string) string {
		if key := normalizer.Normalize(w); key != "" {
			return key
		}
		return strings.ToLower(w)
	})
}

func validateAttempt(userID, attemptID int64) error {
	if userID <= 0 {
		return entity.ErrInvalidUserID
	}
	if attemptID <= 0 {
		return entity.ErrInvalidAttemptID
	}
	return nil
}
