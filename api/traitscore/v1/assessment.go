// Package traitscorev1 holds the wire messages of the traitscore.v1 API.
package traitscorev1

// Scores is one dictionary pass: four category ratios and their mean.
type Scores struct {
	A   float64 `json:"a"`
	B   float64 `json:"b"`
	C   float64 `json:"c"`
	D   float64 `json:"d"`
	Avg float64 `json:"avg"`
}

// AssessmentResult is a stored scoring outcome.
type AssessmentResult struct {
	Id                int64    `json:"id"`
	UserId            int64    `json:"user_id"`
	AttemptId         int64    `json:"attempt_id"`
	Type              string   `json:"type"`
	Self              Scores   `json:"self"`
	Concept           Scores   `json:"concept"`
	Adjusted          Scores   `json:"adjusted"`
	DecApproach       float64  `json:"dec_approach"`
	AlgorithmVersion  int32    `json:"algorithm_version"`
	SelfWordCount     int32    `json:"self_word_count"`
	ConceptWordCount  int32    `json:"concept_word_count"`
	AdjustedWordCount int32    `json:"adjusted_word_count"`
	SelfWords         []string `json:"self_words"`
	ConceptWords      []string `json:"concept_words"`
	AdjustedWords     []string `json:"adjusted_words"`
	CreatedAt         string   `json:"created_at"`
}

type CalculateResultsRequest struct {
	UserId    int64 `json:"user_id"`
	AttemptId int64 `json:"attempt_id"`
	// Type overrides the result type derived from the attempt number.
	Type string `json:"type,omitempty"`
}

func (r *CalculateResultsRequest) GetUserId() int64 {
	if r == nil {
		return 0
	}
	return r.UserId
}

func (r *CalculateResultsRequest) GetAttemptId() int64 {
	if r == nil {
		return 0
	}
	return r.AttemptId
}

type GetResultRequest struct {
	UserId    int64 `json:"user_id"`
	AttemptId int64 `json:"attempt_id"`
}

type PaginationRequest struct {
	PageNo   int32 `json:"page_no"`
	PageSize int32 `json:"page_size"`
}

func (p *PaginationRequest) GetPageNo() int32 {
	if p == nil {
		return 0
	}
	return p.PageNo
}

func (p *PaginationRequest) GetPageSize() int32 {
	if p == nil {
		return 0
	}
	return p.PageSize
}

type PaginationResponse struct {
	PageNo   int32 `json:"page_no"`
	PageSize int32 `json:"page_size"`
	Total    int64 `json:"total"`
}

type ListResultsRequest struct {
	Filter     string             `json:"filter,omitempty"`
	OrderBy    string             `json:"order_by,omitempty"`
	Pagination *PaginationRequest `json:"pagination,omitempty"`
}

func (r *ListResultsRequest) GetFilter() string {
	if r == nil {
		return ""
	}
	return r.Filter
}

func (r *ListResultsRequest) GetOrderBy() string {
	if r == nil {
		return ""
	}
	return r.OrderBy
}

func (r *ListResultsRequest) GetPagination() *PaginationRequest {
	if r == nil {
		return nil
	}
	return r.Pagination
}

type ListResultsResponse struct {
	Items      []*AssessmentResult `json:"items"`
	Pagination *PaginationResponse `json:"pagination"`
}

type InvalidateWeightsRequest struct{}

type InvalidateWeightsResponse struct {
	// Version is the algorithm version served after the reload, 0 when none is published.
	Version int32 `json:"version"`
}
