//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/traitscore/api/traitscore/v1/traitscorev1connect"
	adapter "github.com/eslsoft/traitscore/internal/adapter/connectrpc"
	"github.com/eslsoft/traitscore/internal/adapter/repository"
	"github.com/eslsoft/traitscore/internal/infrastructure/cache"
	"github.com/eslsoft/traitscore/internal/infrastructure/config"
	"github.com/eslsoft/traitscore/internal/infrastructure/database"
	"github.com/eslsoft/traitscore/internal/infrastructure/server"
	"github.com/eslsoft/traitscore/internal/usecase"
)

var loggerSet = wire.NewSet(
	server.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
)

var databaseSet = wire.NewSet(
	database.NewDriver,
)

var cacheSet = wire.NewSet(
	cache.New,
)

var repositorySet = wire.NewSet(
	repository.NewAlgorithmRepository,
	repository.NewResponseRepository,
	repository.NewResultRepository,
)

var usecaseSet = wire.NewSet(
	provideNormalizer,
	provideWeightCacheTTL,
	usecase.NewWeightUsecase,
	usecase.NewAssessmentUsecase,
)

var serviceSet = wire.NewSet(
	adapter.NewAssessmentServiceServer,
	wire.Bind(new(traitscorev1connect.AssessmentServiceHandler), new(*adapter.AssessmentServiceServer)),
)

var serverSet = wire.NewSet(
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize(cfg *config.Config) (*Container, func(), error) {
	wire.Build(
		loggerSet,
		databaseSet,
		cacheSet,
		repositorySet,
		usecaseSet,
		serviceSet,
		serverSet,
		wire.Struct(new(Container), "*"),
	)
	return nil, nil, nil
}
