package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/models"
	redis_models "github.com/nicolasvargaszz/learn-chinese-game/models/redis"
	redis_utils "github.com/nicolasvargaszz/learn-chinese-game/services/redis/utils"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SummaryTTL is how long a finished battle can be looked up by its code
const SummaryTTL = 24 * time.Hour

var ErrNotFound = errors.New("key not found in redis")

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient accepts either a redis:// URL or a bare host:port.
func NewRedisClient(addr string) (*RedisClient, error) {
	var opt *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("error parsing Redis URL: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr}
	}
	return &RedisClient{client: redis.NewClient(opt)}, nil
}

// InitRedis connects and checks the server answers.
func InitRedis(ctx context.Context, addr string) (*RedisClient, error) {
	rc, err := NewRedisClient(addr)
	if err != nil {
		return nil, err
	}
	if err := rc.client.Ping(ctx).Err(); err != nil {
		rc.client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info().Msg("[REDIS] Connected")
	return rc, nil
}

// Close gracefully closes the Redis connection
func (rc *RedisClient) Close() error {
	if err := rc.client.Close(); err != nil {
		return fmt.Errorf("error closing Redis connection: %w", err)
	}
	return nil
}

// SaveBattleSummary stores the result of a finished battle
// Key format: "battle:{code}:summary"
// TTL: 24 hours
func (rc *RedisClient) SaveBattleSummary(ctx context.Context, summary *redis_models.BattleSummary) error {
	key := redis_utils.FormatBattleSummaryKey(summary.RoomCode)
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("error marshaling battle summary: %w", err)
	}
	return rc.client.Set(ctx, key, data, SummaryTTL).Err()
}

// GetBattleSummary returns ErrNotFound once the summary expired or never
// existed.
func (rc *RedisClient) GetBattleSummary(ctx context.Context, roomCode string) (*redis_models.BattleSummary, error) {
	key := redis_utils.FormatBattleSummaryKey(roomCode)
	data, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error getting battle summary: %w", err)
	}

	var summary redis_models.BattleSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("error unmarshaling battle summary: %w", err)
	}
	return &summary, nil
}

// RecordHighScores keeps the best score per player name. Zero scores are
// not ranked.
func (rc *RedisClient) RecordHighScores(ctx context.Context, standings []redis_models.BattleStanding) error {
	members := make([]redis.Z, 0, len(standings))
	for _, s := range standings {
		if s.Score <= 0 {
			continue
		}
		members = append(members, redis.Z{Score: float64(s.Score), Member: s.Name})
	}
	if len(members) == 0 {
		return nil
	}
	if err := rc.client.ZAddGT(ctx, redis_utils.HighScoresKey, members...).Err(); err != nil {
		return fmt.Errorf("error updating high scores: %w", err)
	}
	return nil
}

// TopHighScores returns the n best scores, highest first.
func (rc *RedisClient) TopHighScores(ctx context.Context, n int) ([]models.HighScore, error) {
	if n <= 0 {
		return []models.HighScore{}, nil
	}
	entries, err := rc.client.ZRevRangeWithScores(ctx, redis_utils.HighScoresKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading high scores: %w", err)
	}
	scores := make([]models.HighScore, 0, len(entries))
	for i, e := range entries {
		name, _ := e.Member.(string)
		scores = append(scores, models.HighScore{Rank: i + 1, Name: name, Score: int(e.Score)})
	}
	return scores, nil
}
