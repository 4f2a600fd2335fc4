package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/repository"
)

const (
	weightsCacheKey    = "scoring:weights:latest-global"
	_defaultWeightsTTL = time.Hour
)

// WeightCacheTTL controls how long loaded dictionaries stay cached.
type WeightCacheTTL time.Duration

// WeightUsecase loads the scoring dictionaries and manages published algorithm versions.
type WeightUsecase interface {
	// All returns the dictionaries of the latest global algorithm. It never fails:
	// a missing or unreadable source yields three empty dictionaries.
	All(ctx context.Context) *entity.WeightSet
	Invalidate(ctx context.Context) error
	Publish(ctx context.Context, algorithm *entity.Algorithm) (*entity.Algorithm, error)
}

type weightUsecase struct {
	repo       repository.AlgorithmRepository
	cache      repository.Cache
	normalizer *entity.WordNormalizer
	logger     logrus.FieldLogger
	ttl        time.Duration
}

// NewWeightUsecase wires the weight source with a cache. A nil cache disables caching.
func NewWeightUsecase(repo repository.AlgorithmRepository, cache repository.Cache, normalizer *entity.WordNormalizer, logger logrus.FieldLogger, ttl WeightCacheTTL) WeightUsecase {
	d := time.Duration(ttl)
	if d <= 0 {
		d = _defaultWeightsTTL
	}
	if normalizer == nil {
		normalizer = entity.NewWordNormalizer(nil)
	}
	return &weightUsecase{
		repo:       repo,
		cache:      cache,
		normalizer: normalizer,
		logger:     logger.WithField("component", "weights"),
		ttl:        d,
	}
}

func (u *weightUsecase) All(ctx context.Context) *entity.WeightSet {
	if set, ok := u.fromCache(ctx); ok {
		return set
	}

	algorithm, err := u.repo.LatestGlobal(ctx)
	switch {
	case errors.Is(err, entity.ErrAlgorithmNotFound):
		u.logger.Warn("no global scoring algorithm found, scoring with empty dictionaries")
		set := entity.EmptyWeightSet()
		u.store(ctx, set)
		return set
	case err != nil:
		u.logger.WithError(err).Warn("load scoring algorithm failed, scoring with empty dictionaries")
		return entity.EmptyWeightSet()
	}

	set := u.build(algorithm)
	u.store(ctx, set)
	return set
}

func (u *weightUsecase) Invalidate(ctx context.Context) error {
	if u.cache == nil {
		return nil
	}
	if err := u.cache.Delete(ctx, weightsCacheKey); err != nil {
		return fmt.Errorf("invalidate weights cache: %w", err)
	}
	return nil
}

func (u *weightUsecase) Publish(ctx context.Context, algorithm *entity.Algorithm) (*entity.Algorithm, error) {
	if algorithm == nil {
		return nil, entity.ErrInvalidAlgorithm
	}
	if len(algorithm.SelfTable) == 0 && len(algorithm.ConceptTable) == 0 && len(algorithm.AdjustTable) == 0 {
		return nil, fmt.Errorf("%w: all weight tables are empty", entity.ErrInvalidAlgorithm)
	}
	if algorithm.Version < 0 {
		return nil, fmt.Errorf("%w: negative version %d", entity.ErrInvalidAlgorithm, algorithm.Version)
	}

	out := *algorithm
	if out.Version == 0 {
		latest, err := u.repo.MaxVersion(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve next version: %w", err)
		}
		out.Version = latest + 1
	}

	created, err := u.repo.Create(ctx, &out)
	if err != nil {
		return nil, err
	}
	if err := u.Invalidate(ctx); err != nil {
		u.logger.WithError(err).Warn("published weights but cache invalidation failed")
	}
	return created, nil
}

func (u *weightUsecase) build(algorithm *entity.Algorithm) *entity.WeightSet {
	set := &entity.WeightSet{Version: algorithm.Version}
	set.Self = u.buildDictionary(entity.DictionarySelf, algorithm.SelfTable)
	set.Concept = u.buildDictionary(entity.DictionaryConcept, algorithm.ConceptTable)
	set.Adjusted = u.buildDictionary(entity.DictionaryAdjusted, algorithm.AdjustTable)
	return set
}

// buildDictionary normalizes every row, drops rows with an unknown category and lets
// the last row win when two words normalize to the same key.
func (u *weightUsecase) buildDictionary(key entity.DictionaryKey, rows []entity.RawWeight) entity.WeightDictionary {
	dict := make(entity.WeightDictionary, len(rows))
	dropped := 0
	for _, row := range rows {
		category, ok := entity.ParseCategory(row.Category)
		if !ok {
			dropped++
			continue
		}
		word := u.normalizer.Normalize(row.Word)
		if word == "" {
			dropped++
			continue
		}
		dict[word] = entity.WeightEntry{Word: word, Category: category, Weight: row.Weight}
	}
	if dropped > 0 {
		u.logger.WithFields(logrus.Fields{"dictionary": key, "dropped": dropped}).Debug("dropped invalid weight rows")
	}
	return dict
}

func (u *weightUsecase) fromCache(ctx context.Context) (*entity.WeightSet, bool) {
	if u.cache == nil {
		return nil, false
	}
	data, ok, err := u.cache.Get(ctx, weightsCacheKey)
	if err != nil {
		u.logger.WithError(err).Warn("read weights cache failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	set := entity.EmptyWeightSet()
	if err := json.Unmarshal(data, set); err != nil {
		u.logger.WithError(err).Warn("decode cached weights failed")
		return nil, false
	}
	return set, true
}

func (u *weightUsecase) store(ctx context.Context, set *entity.WeightSet) {
	if u.cache == nil {
		return
	}
	data, err := json.Marshal(set)
	if err != nil {
		u.logger.WithError(err).Warn("encode weights for cache failed")
		return
	}
	if err := u.cache.Set(ctx, weightsCacheKey, data, u.ttl); err != nil {
		u.logger.WithError(err).Warn("write weights cache failed")
	}
}
