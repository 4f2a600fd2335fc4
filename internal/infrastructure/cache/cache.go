package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/traitscore/internal/infrastructure/config"
	"github.com/eslsoft/traitscore/internal/repository"
)

const redisKeyPrefix = "traitscore:"

// New builds the cache selected by cache.driver. The returned cleanup closes it.
func New(cfg *config.Config, logger logrus.FieldLogger) (repository.Cache, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Driver)) {
	case "", "memory":
		mem := NewMemory()
		logger.WithField("driver", "memory").Debug("weight cache ready")
		return mem, func() { _ = mem.Close() }, nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rdb, err := NewRedis(ctx, RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   redisKeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.WithFields(logrus.Fields{"driver": "redis", "addr": cfg.Cache.RedisAddr}).Debug("weight cache ready")
		return rdb, func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache driver %q", cfg.Cache.Driver)
	}
}
