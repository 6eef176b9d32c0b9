package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/lumenworks/storefront/pkg/config"
)

// New builds the shared redis client used for webhook fast-path dedup.
func New(l *zap.SugaredLogger, cfg *cfgpkg.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func registerLifecycle(lc fx.Lifecycle, l *zap.SugaredLogger, cli *redis.Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := cli.Ping(ctx).Err(); err != nil {
				l.Errorf("redis ping failed: %v", err)
				return err
			}
			l.Infow("connected to redis")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			l.Infow("closing redis client")
			return cli.Close()
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)
