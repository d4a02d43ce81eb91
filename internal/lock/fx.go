package lock

import (
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/parkline/internal/config"
	"go.uber.org/fx"
)

// newClient returns nil when no redis address is configured; the
// Locker built from a nil client declines every lock attempt and the
// booking path falls through to the database lock alone.
func newClient(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
}

var Module = fx.Module("lock",
	fx.Provide(newClient),
	fx.Provide(NewLocker),
)
