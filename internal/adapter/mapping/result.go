package mapping

import (
	"time"

	"github.com/samber/lo"

	v1 "github.com/eslsoft/traitscore/api/traitscore/v1"
	"github.com/eslsoft/traitscore/internal/entity"
)

func ToPbResult(r *entity.AssessmentResult) *v1.AssessmentResult {
	if r == nil {
		return nil
	}
	return &v1.AssessmentResult{
		Id:                r.ID,
		UserId:            r.UserID,
		AttemptId:         r.AttemptID,
		Type:              string(r.Type),
		Self:              toPbScores(r.Self),
		Concept:           toPbScores(r.Concept),
		Adjusted:          toPbScores(r.Adjusted),
		DecApproach:       r.DecisionApproach,
		AlgorithmVersion:  int32(r.AlgorithmVersion),
		SelfWordCount:     int32(r.SelfWordCount),
		ConceptWordCount:  int32(r.ConceptWordCount),
		AdjustedWordCount: int32(r.AdjustedWordCount),
		SelfWords:         nonNilWords(r.SelfWords),
		ConceptWords:      nonNilWords(r.ConceptWords),
		AdjustedWords:     nonNilWords(r.AdjustedWords),
		CreatedAt:         r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func ToPbResults(items []*entity.AssessmentResult) []*v1.AssessmentResult {
	return lo.Map(items, func(r *entity.AssessmentResult, _ int) *v1.AssessmentResult {
		return ToPbResult(r)
	})
}

func toPbScores(s entity.ScoreResult) v1.Scores {
	return v1.Scores{A: s.A, B: s.B, C: s.C, D: s.D, Avg: s.Avg}
}

func nonNilWords(words []string) []string {
	if words == nil {
		return []string{}
	}
	return words
}
