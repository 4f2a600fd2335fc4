package connectrpc

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	v1 "github.com/eslsoft/traitscore/api/traitscore/v1"
	"github.com/eslsoft/traitscore/api/traitscore/v1/traitscorev1connect"
	"github.com/eslsoft/traitscore/internal/adapter/mapping"
	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/repository"
	"github.com/eslsoft/traitscore/internal/usecase"
)

var _ traitscorev1connect.AssessmentServiceHandler = (*AssessmentServiceServer)(nil)

type AssessmentServiceServer struct {
	traitscorev1connect.UnimplementedAssessmentServiceHandler
	uc      usecase.AssessmentUsecase
	weights usecase.WeightUsecase
}

func NewAssessmentServiceServer(uc usecase.AssessmentUsecase, weights usecase.WeightUsecase) *AssessmentServiceServer {
	return &AssessmentServiceServer{uc: uc, weights: weights}
}

func (s *AssessmentServiceServer) CalculateResults(ctx context.Context, req *connect.Request[v1.CalculateResultsRequest]) (*connect.Response[v1.AssessmentResult], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request required"))
	}
	resultType, err := entity.ParseResultType(req.Msg.Type)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}

	result, err := s.uc.Calculate(ctx, req.Msg.GetUserId(), req.Msg.GetAttemptId(), usecase.WithResultType(resultType))
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(mapping.ToPbResult(result)), nil
}

func (s *AssessmentServiceServer) GetResult(ctx context.Context, req *connect.Request[v1.GetResultRequest]) (*connect.Response[v1.AssessmentResult], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request required"))
	}

	result, err := s.uc.Get(ctx, req.Msg.UserId, req.Msg.AttemptId)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(mapping.ToPbResult(result)), nil
}

func (s *AssessmentServiceServer) ListResults(ctx context.Context, req *connect.Request[v1.ListResultsRequest]) (*connect.Response[v1.ListResultsResponse], error) {
	if req.Msg == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("request required"))
	}
	msg := req.Msg
	query := &repository.ListResultQuery{
		Pagination: convertPagination(msg.GetPagination()),
		FilterOrder: repository.FilterOrder{
			Filter:  msg.GetFilter(),
			OrderBy: msg.GetOrderBy(),
		},
	}
	items, total, err := s.uc.List(ctx, query)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}

	return connect.NewResponse(&v1.ListResultsResponse{
		Items: mapping.ToPbResults(items),
		Pagination: &v1.PaginationResponse{
			PageNo:   query.PageNo,
			PageSize: query.PageSize,
			Total:    total,
		},
	}), nil
}

func (s *AssessmentServiceServer) InvalidateWeights(ctx context.Context, _ *connect.Request[v1.InvalidateWeightsRequest]) (*connect.Response[v1.InvalidateWeightsResponse], error) {
	if err := s.weights.Invalidate(ctx); err != nil {
		return nil, mapping.ToConnectError(err)
	}
	version, err := safeInt32("version", s.weights.All(ctx).Version)
	if err != nil {
		return nil, mapping.ToConnectError(err)
	}
	return connect.NewResponse(&v1.InvalidateWeightsResponse{Version: version}), nil
}
