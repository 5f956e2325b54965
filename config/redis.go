package config

import (
	"context"
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/services/redis"

	"github.com/rs/zerolog/log"
)

// ConnectRedis returns nil without error when no REDIS_URL is configured.
func ConnectRedis(cfg RedisConfig) (*redis.RedisClient, error) {
	if cfg.URL == "" {
		log.Info().Msg("[REDIS] REDIS_URL not set, summaries and high scores disabled")
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisClient, err := redis.InitRedis(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("[REDIS] Redis connection established")
	return redisClient, nil
}
