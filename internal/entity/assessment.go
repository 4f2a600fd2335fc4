package entity

import (
	"strings"
	"time"
)

// Assessment ids used to route response words into buckets.
const (
	AssessmentSelf    int64 = 1
	AssessmentConcept int64 = 2
)

// ResultType distinguishes a first attempt from a retake.
type ResultType string

const (
	ResultTypeOriginal ResultType = "original"
	ResultTypeAdjust   ResultType = "adjust"
)

// ResultTypeForAttempt derives the result type from the attempt counter:
// the first attempt is original, every later attempt is an adjustment.
func ResultTypeForAttempt(attemptID int64) ResultType {
	if attemptID > 1 {
		return ResultTypeAdjust
	}
	return ResultTypeOriginal
}

// ParseResultType converts a raw string into a ResultType. Empty input yields "".
func ParseResultType(raw string) (ResultType, error) {
	switch t := ResultType(strings.ToLower(strings.TrimSpace(raw))); t {
	case "", ResultTypeOriginal, ResultTypeAdjust:
		return t, nil
	default:
		return "", ErrInvalidResultType
	}
}

// ScoreResult holds the four category ratios and their mean for one dictionary pass.
type ScoreResult struct {
	A   float64 `json:"a"`
	B   float64 `json:"b"`
	C   float64 `json:"c"`
	D   float64 `json:"d"`
	Avg float64 `json:"avg"`
}

// Ratio returns the ratio of a single category.
func (s ScoreResult) Ratio(c Category) float64 {
	switch c {
	case CategoryA:
		return s.A
	case CategoryB:
		return s.B
	case CategoryC:
		return s.C
	case CategoryD:
		return s.D
	default:
		return 0
	}
}

// Response is one raw answer row submitted by a user for an attempt.
type Response struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	AttemptID       int64     `json:"attempt_id"`
	AssessmentID    int64     `json:"assessment_id"`
	SelectedOptions string    `json:"selected_options"`
	CreatedAt       time.Time `json:"created_at"`
}

// AttemptRef identifies one (user, attempt) pair.
type AttemptRef struct {
	UserID    int64 `json:"user_id"`
	AttemptID int64 `json:"attempt_id"`
}

// AssessmentResult is the persisted outcome of scoring one attempt. It is never mutated.
type AssessmentResult struct {
	ID                int64       `json:"id"`
	UserID            int64       `json:"user_id"`
	AttemptID         int64       `json:"attempt_id"`
	Type              ResultType  `json:"type"`
	Self              ScoreResult `json:"self"`
	Concept           ScoreResult `json:"concept"`
	Adjusted          ScoreResult `json:"adjusted"`
	DecisionApproach  float64     `json:"dec_approach"`
	AlgorithmVersion  int         `json:"algorithm_version"`
	SelfWordCount     int         `json:"self_word_count"`
	ConceptWordCount  int         `json:"concept_word_count"`
	AdjustedWordCount int         `json:"adjusted_word_count"`
	SelfWords         []string    `json:"self_words"`
	ConceptWords      []string    `json:"concept_words"`
	AdjustedWords     []string    `json:"adjusted_words"`
	CreatedAt         time.Time   `json:"created_at"`
}

// Ref returns the attempt this result belongs to.
func (r *AssessmentResult) Ref() AttemptRef {
	return AttemptRef{UserID: r.UserID, AttemptID: r.AttemptID}
}
