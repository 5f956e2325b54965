package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	redis_models "github.com/nicolasvargaszz/learn-chinese-game/models/redis"
	redis_utils "github.com/nicolasvargaszz/learn-chinese-game/services/redis/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// probeDocker runs probe and turns a panic into an error. testcontainers
// panics while resolving the Docker host when there is none.
func probeDocker(ctx context.Context, probe func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker unavailable: %v", r)
		}
	}()
	return probe(ctx)
}

func pingDocker(ctx context.Context) error {
	cli, err := testcontainers.NewDockerClientWithOpts(ctx)
	if err != nil {
		return err
	}
	defer cli.Close()
	_, err = cli.Ping(ctx)
	return err
}

// startRedis uses REDIS_TEST_URL when set, otherwise a throwaway container.
// The test is skipped when neither is available.
func startRedis(ctx context.Context, t *testing.T) string {
	t.Helper()
	if url := os.Getenv("REDIS_TEST_URL"); url != "" {
		return url
	}
	if err := probeDocker(ctx, pingDocker); err != nil {
		t.Skipf("no Redis for tests: set REDIS_TEST_URL or start Docker (%v)", err)
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisC.Terminate(ctx))
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func TestRedisOperations(t *testing.T) {
	ctx := context.Background()
	rc, err := InitRedis(ctx, startRedis(ctx, t))
	require.NoError(t, err)
	defer rc.Close()

	cleanupRedis := func() {
		for _, key := range []string{redis_utils.FormatBattleSummaryKey("TEST01"), redis_utils.HighScoresKey} {
			require.NoError(t, rc.client.Del(ctx, key).Err())
		}
	}

	t.Run("BattleSummary Operations", func(t *testing.T) {
		cleanupRedis()
		summary := &redis_models.BattleSummary{
			RoomCode:       "TEST01",
			Winner:         "Alice",
			TotalQuestions: 10,
			Standings: []redis_models.BattleStanding{
				{Rank: 1, PlayerID: "p1", Name: "Alice", Score: 1870, CorrectAnswers: 9, TotalQuestions: 10},
				{Rank: 2, PlayerID: "p2", Name: "Bob", Score: 640, CorrectAnswers: 4, TotalQuestions: 10},
			},
			StartedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			EndedAt:   time.Date(2024, 3, 1, 12, 4, 0, 0, time.UTC),
		}

		require.NoError(t, rc.SaveBattleSummary(ctx, summary))

		retrieved, err := rc.GetBattleSummary(ctx, "TEST01")
		require.NoError(t, err)
		assert.Equal(t, summary, retrieved)

		ttl, err := rc.client.TTL(ctx, redis_utils.FormatBattleSummaryKey("TEST01")).Result()
		require.NoError(t, err)
		assert.InDelta(t, SummaryTTL.Seconds(), ttl.Seconds(), 5)

		_, err = rc.GetBattleSummary(ctx, "NOPE00")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("HighScore Operations", func(t *testing.T) {
		cleanupRedis()

		require.NoError(t, rc.RecordHighScores(ctx, []redis_models.BattleStanding{
			{Name: "Alice", Score: 900},
			{Name: "Bob", Score: 400},
			{Name: "Carol", Score: 0},
		}))
		// A worse score never replaces a better one.
		require.NoError(t, rc.RecordHighScores(ctx, []redis_models.BattleStanding{
			{Name: "Alice", Score: 300},
			{Name: "Bob", Score: 1200},
		}))

		top, err := rc.TopHighScores(ctx, 5)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "Bob", top[0].Name)
		assert.Equal(t, 1200, top[0].Score)
		assert.Equal(t, 1, top[0].Rank)
		assert.Equal(t, "Alice", top[1].Name)
		assert.Equal(t, 900, top[1].Score)

		top, err = rc.TopHighScores(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, top, 1)
	})
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient("redis://localhost:6379/notanumber")
	assert.Error(t, err)

	rc, err := NewRedisClient("localhost:6379")
	require.NoError(t, err)
	assert.NoError(t, rc.Close())
}

func TestProbeDocker(t *testing.T) {
	ctx := context.Background()

	err := probeDocker(ctx, func(context.Context) error { panic("rootless Docker not found") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rootless Docker not found")

	down := errors.New("connection refused")
	assert.ErrorIs(t, probeDocker(ctx, func(context.Context) error { return down }), down)

	assert.NoError(t, probeDocker(ctx, func(context.Context) error { return nil }))
}
