package cache

import (
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/eslsoft/traitscore/internal/infrastructure/config"
)

func TestNew_SelectsDriver(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	c, cleanup, err := New(&config.Config{Cache: config.CacheConfig{Driver: "Memory"}}, logger)
	if err != nil {
		t.Fatalf("memory cache: %v", err)
	}
	t.Cleanup(cleanup)
	if _, ok := c.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", c)
	}

	if _, _, err := New(&config.Config{Cache: config.CacheConfig{Driver: "memcached"}}, logger); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
