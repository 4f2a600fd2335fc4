package app

import (
	"entgo.io/ent/dialect"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/traitscore/internal/entity"
	"github.com/eslsoft/traitscore/internal/infrastructure/config"
	"github.com/eslsoft/traitscore/internal/infrastructure/server"
	"github.com/eslsoft/traitscore/internal/usecase"
)

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config      *config.Config
	Logger      *logrus.Logger
	Driver      dialect.Driver
	Assessments usecase.AssessmentUsecase
	Weights     usecase.WeightUsecase
	Server      *server.Server
}

func provideNormalizer(cfg *config.Config) *entity.WordNormalizer {
	return entity.NewWordNormalizer(cfg.WordAliases())
}

func provideWeightCacheTTL(cfg *config.Config) usecase.WeightCacheTTL {
	return usecase.WeightCacheTTL(cfg.Cache.TTL)
}
