package database

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/goerrorkit"
)

// ConnectRedis mở client Redis cho session storage và ping thử.
// Trả về nil, nil khi REDIS_ADDR rỗng (session giữ trong memory).
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, goerrorkit.WrapWithMessage(err, "Failed to connect to Redis").
			WithData(map[string]interface{}{
				"addr": cfg.Addr,
				"db":   cfg.DB,
			})
	}

	logrus.WithField("addr", cfg.Addr).Info("Redis connection successfully opened")
	return rdb, nil
}
