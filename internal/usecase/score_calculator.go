package usecase

import (
	"math"

	"github.com/eslsoft/traitscore/internal/entity"
)

const (
	decisionMeanWeight       = 0.8
	decisionDispersionWeight = 0.2
)

// ScoreCalculator turns selected words into category ratios against one weight set.
type ScoreCalculator struct {
	set        *entity.WeightSet
	capacities map[entity.DictionaryKey]entity.CategoryCapacity
	normalizer *entity.WordNormalizer
}

// NewScoreCalculator precomputes the category capacities of set.
func NewScoreCalculator(set *entity.WeightSet, normalizer *entity.WordNormalizer) *ScoreCalculator {
	if set == nil {
		set = entity.EmptyWeightSet()
	}
	if normalizer == nil {
		normalizer = entity.NewWordNormalizer(nil)
	}
	return &ScoreCalculator{
		set:        set,
		capacities: set.Capacities(),
		normalizer: normalizer,
	}
}

// Scores sums the weight of every known word per category and divides by the
// dictionary capacity of that category. A normalized word counts once per call.
func (c *ScoreCalculator) Scores(words []string, key entity.DictionaryKey) entity.ScoreResult {
	dict := c.set.Dictionary(key)
	sums := make(map[entity.Category]int, len(entity.Categories))
	seen := make(map[string]struct{}, len(words))
	for _, raw := range words {
		word := c.normalizer.Normalize(raw)
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		entry, ok := dict[word]
		if !ok {
			continue
		}
		sums[entry.Category] += entry.Weight
	}

	capacity := c.capacities[key]
	result := entity.ScoreResult{
		A: ratio(sums[entity.CategoryA], capacity[entity.CategoryA]),
		B: ratio(sums[entity.CategoryB], capacity[entity.CategoryB]),
		C: ratio(sums[entity.CategoryC], capacity[entity.CategoryC]),
		D: ratio(sums[entity.CategoryD], capacity[entity.CategoryD]),
	}
	result.Avg = (result.A + result.B + result.C + result.D) / 4
	return result
}

// FilterKnown keeps the words, as submitted and in order, whose normalized form is in the dictionary.
func (c *ScoreCalculator) FilterKnown(words []string, key entity.DictionaryKey) []string {
	dict := c.set.Dictionary(key)
	out := make([]string, 0, len(words))
	for _, raw := range words {
		if _, ok := dict[c.normalizer.Normalize(raw)]; ok {
			out = append(out, raw)
		}
	}
	return out
}

// DecisionApproach blends the self and concept averages:
// clamp(mean*0.8 + |selfAvg-concAvg|*0.2, 0, 1).
func DecisionApproach(selfAvg, concAvg float64) float64 {
	mean := (selfAvg + concAvg) / 2
	value := mean*decisionMeanWeight + math.Abs(selfAvg-concAvg)*decisionDispersionWeight
	return clamp(value, 0, 1)
}

func ratio(sum, capacity int) float64 {
	if capacity == 0 {
		return 0
	}
	return float64(sum) / float64(capacity)
}

func clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}
