// Package traitscorev1connect binds the traitscore.v1 AssessmentService to Connect.
package traitscorev1connect

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"connectrpc.com/connect"

	v1 "github.com/eslsoft/traitscore/api/traitscore/v1"
)

// AssessmentServiceName is the fully-qualified name of the AssessmentService service.
const AssessmentServiceName = "traitscore.v1.AssessmentService"

const (
	AssessmentServiceCalculateResultsProcedure  = "/traitscore.v1.AssessmentService/CalculateResults"
	AssessmentServiceGetResultProcedure         = "/traitscore.v1.AssessmentService/GetResult"
	AssessmentServiceListResultsProcedure       = "/traitscore.v1.AssessmentService/ListResults"
	AssessmentServiceInvalidateWeightsProcedure = "/traitscore.v1.AssessmentService/InvalidateWeights"
)

// AssessmentServiceHandler is implemented by the server side of the service.
type AssessmentServiceHandler interface {
	CalculateResults(context.Context, *connect.Request[v1.CalculateResultsRequest]) (*connect.Response[v1.AssessmentResult], error)
	GetResult(context.Context, *connect.Request[v1.GetResultRequest]) (*connect.Response[v1.AssessmentResult], error)
	ListResults(context.Context, *connect.Request[v1.ListResultsRequest]) (*connect.Response[v1.ListResultsResponse], error)
	InvalidateWeights(context.Context, *connect.Request[v1.InvalidateWeightsRequest]) (*connect.Response[v1.InvalidateWeightsResponse], error)
}

// NewAssessmentServiceHandler builds an HTTP handler from the service implementation. It
// returns the path on which to mount the handler and the handler itself.
func NewAssessmentServiceHandler(svc AssessmentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	readOnlyOpts := append(slices.Clone(opts), connect.WithIdempotency(connect.IdempotencyNoSideEffects))
	calculate := connect.NewUnaryHandler(
		AssessmentServiceCalculateResultsProcedure,
		svc.CalculateResults,
		opts...,
	)
	get := connect.NewUnaryHandler(
		AssessmentServiceGetResultProcedure,
		svc.GetResult,
		readOnlyOpts...,
	)
	list := connect.NewUnaryHandler(
		AssessmentServiceListResultsProcedure,
		svc.ListResults,
		readOnlyOpts...,
	)
	invalidate := connect.NewUnaryHandler(
		AssessmentServiceInvalidateWeightsProcedure,
		svc.InvalidateWeights,
		opts...,
	)
	return "/" + AssessmentServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AssessmentServiceCalculateResultsProcedure:
			calculate.ServeHTTP(w, r)
		case AssessmentServiceGetResultProcedure:
			get.ServeHTTP(w, r)
		case AssessmentServiceListResultsProcedure:
			list.ServeHTTP(w, r)
		case AssessmentServiceInvalidateWeightsProcedure:
			invalidate.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedAssessmentServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedAssessmentServiceHandler struct{}

func (UnimplementedAssessmentServiceHandler) CalculateResults(context.Context, *connect.Request[v1.CalculateResultsRequest]) (*connect.Response[v1.AssessmentResult], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("traitscore.v1.AssessmentService.CalculateResults is not implemented"))
}

func (UnimplementedAssessmentServiceHandler) GetResult(context.Context, *connect.Request[v1.GetResultRequest]) (*connect.Response[v1.AssessmentResult], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("traitscore.v1.AssessmentService.GetResult is not implemented"))
}

func (UnimplementedAssessmentServiceHandler) ListResults(context.Context, *connect.Request[v1.ListResultsRequest]) (*connect.Response[v1.ListResultsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("traitscore.v1.AssessmentService.ListResults is not implemented"))
}

func (UnimplementedAssessmentServiceHandler) InvalidateWeights(context.Context, *connect.Request[v1.InvalidateWeightsRequest]) (*connect.Response[v1.InvalidateWeightsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("traitscore.v1.AssessmentService.InvalidateWeights is not implemented"))
}

// AssessmentServiceClient calls the AssessmentService over Connect.
type AssessmentServiceClient interface {
	CalculateResults(context.Context, *connect.Request[v1.CalculateResultsRequest]) (*connect.Response[v1.AssessmentResult], error)
	GetResult(context.Context, *connect.Request[v1.GetResultRequest]) (*connect.Response[v1.AssessmentResult], error)
	ListResults(context.Context, *connect.Request[v1.ListResultsRequest]) (*connect.Response[v1.ListResultsResponse], error)
	InvalidateWeights(context.Context, *connect.Request[v1.InvalidateWeightsRequest]) (*connect.Response[v1.InvalidateWeightsResponse], error)
}

// NewAssessmentServiceClient constructs a client for the service at baseURL.
// The messages are plain structs, so callers must supply a codec such as JSON.
func NewAssessmentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AssessmentServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &assessmentServiceClient{
		calculateResults:  connect.NewClient[v1.CalculateResultsRequest, v1.AssessmentResult](httpClient, baseURL+AssessmentServiceCalculateResultsProcedure, opts...),
		getResult:         connect.NewClient[v1.GetResultRequest, v1.AssessmentResult](httpClient, baseURL+AssessmentServiceGetResultProcedure, opts...),
		listResults:       connect.NewClient[v1.ListResultsRequest, v1.ListResultsResponse](httpClient, baseURL+AssessmentServiceListResultsProcedure, opts...),
		invalidateWeights: connect.NewClient[v1.InvalidateWeightsRequest, v1.InvalidateWeightsResponse](httpClient, baseURL+AssessmentServiceInvalidateWeightsProcedure, opts...),
	}
}

type assessmentServiceClient struct {
	calculateResults  *connect.Client[v1.CalculateResultsRequest, v1.AssessmentResult]
	getResult         *connect.Client[v1.GetResultRequest, v1.AssessmentResult]
	listResults       *connect.Client[v1.ListResultsRequest, v1.ListResultsResponse]
	invalidateWeights *connect.Client[v1.InvalidateWeightsRequest, v1.InvalidateWeightsResponse]
}

func (c *assessmentServiceClient) CalculateResults(ctx context.Context, req *connect.Request[v1.CalculateResultsRequest]) (*connect.Response[v1.AssessmentResult], error) {
	return c.calculateResults.CallUnary(ctx, req)
}

func (c *assessmentServiceClient) GetResult(ctx context.Context, req *connect.Request[v1.GetResultRequest]) (*connect.Response[v1.AssessmentResult], error) {
	return c.getResult.CallUnary(ctx, req)
}

func (c *assessmentServiceClient) ListResults(ctx context.Context, req *connect.Request[v1.ListResultsRequest]) (*connect.Response[v1.ListResultsResponse], error) {
	return c.listResults.CallUnary(ctx, req)
}

func (c *assessmentServiceClient) InvalidateWeights(ctx context.Context, req *connect.Request[v1.InvalidateWeightsRequest]) (*connect.Response[v1.InvalidateWeightsResponse], error) {
	return c.invalidateWeights.CallUnary(ctx, req)
}
