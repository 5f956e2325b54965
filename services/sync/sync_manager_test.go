package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	redis_models "github.com/nicolasvargaszz/learn-chinese-game/models/redis"
	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	"github.com/nicolasvargaszz/learn-chinese-game/services/rabbit"
	"github.com/nicolasvargaszz/learn-chinese-game/services/redis"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeCache struct {
	summaries  map[string]*redis_models.BattleSummary
	highScores []redis_models.BattleStanding
	saveErr    error
}

func (c *fakeCache) SaveBattleSummary(_ context.Context, s *redis_models.BattleSummary) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.summaries[s.RoomCode] = s
	return nil
}

func (c *fakeCache) GetBattleSummary(_ context.Context, code string) (*redis_models.BattleSummary, error) {
	s, ok := c.summaries[code]
	if !ok {
		return nil, redis.ErrNotFound
	}
	return s, nil
}

func (c *fakeCache) RecordHighScores(_ context.Context, standings []redis_models.BattleStanding) error {
	c.highScores = append(c.highScores, standings...)
	return nil
}

type fakePublisher struct {
	sent []rabbit.BattleEndedMessage
}

func (p *fakePublisher) PublishBattleEnded(_ context.Context, msg rabbit.BattleEndedMessage) error {
	p.sent = append(p.sent, msg)
	return nil
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func testSummary() battle.Summary {
	return battle.Summary{
		RoomCode:       "ABC123",
		Options:        battle.Options{Rounds: 10, Lesson: 2},
		TotalQuestions: 10,
		Winner:         "Alice",
		Standings: []battle.FinalStanding{
			{Rank: 1, PlayerID: "p1", Name: "Alice", Score: 1870, CorrectAnswers: 9, TotalQuestions: 10},
			{Rank: 2, PlayerID: "p2", Name: "Bob", Score: 0, CorrectAnswers: 0, TotalQuestions: 10},
		},
		StartedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2024, 3, 1, 12, 4, 0, 0, time.UTC),
	}
}

func TestRecordFansOut(t *testing.T) {
	db, mock := newMockDB(t)
	cache := &fakeCache{summaries: map[string]*redis_models.BattleSummary{}}
	publisher := &fakePublisher{}
	sm := NewSyncManager(db, cache, publisher)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "battle_results"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, sm.Record(context.Background(), testSummary()))
	assert.NoError(t, mock.ExpectationsWereMet())

	cached := cache.summaries["ABC123"]
	require.NotNil(t, cached)
	assert.Equal(t, "Alice", cached.Winner)
	assert.Len(t, cached.Standings, 2)
	assert.Len(t, cache.highScores, 2)

	require.Len(t, publisher.sent, 1)
	assert.Equal(t, "ABC123", publisher.sent[0].RoomCode)
	assert.Equal(t, 1870, publisher.sent[0].Standings[0].Score)
}

func TestRecordKeepsGoingAfterFailure(t *testing.T) {
	db, mock := newMockDB(t)
	cache := &fakeCache{summaries: map[string]*redis_models.BattleSummary{}, saveErr: errors.New("redis down")}
	publisher := &fakePublisher{}
	sm := NewSyncManager(db, cache, publisher)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "battle_results"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := sm.Record(context.Background(), testSummary())
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
	assert.ErrorContains(t, err, "redis down")
	assert.Len(t, publisher.sent, 1)
}

func TestRecordWithoutStores(t *testing.T) {
	sm := NewSyncManager(nil, nil, nil)
	assert.NoError(t, sm.Record(context.Background(), testSummary()))

	_, err := sm.LookupSummary(context.Background(), "ABC123")
	assert.ErrorIs(t, err, ErrSummaryNotFound)
}

func TestLookupSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("from cache", func(t *testing.T) {
		cache := &fakeCache{summaries: map[string]*redis_models.BattleSummary{
			"ABC123": {RoomCode: "ABC123", Winner: "Alice"},
		}}
		sm := NewSyncManager(nil, cache, nil)

		summary, err := sm.LookupSummary(ctx, "ABC123")
		require.NoError(t, err)
		assert.Equal(t, "Alice", summary.Winner)
	})

	t.Run("falls back to the archive", func(t *testing.T) {
		db, mock := newMockDB(t)
		cache := &fakeCache{summaries: map[string]*redis_models.BattleSummary{}}
		sm := NewSyncManager(db, cache, nil)

		mock.ExpectQuery(`SELECT \* FROM "battle_results" WHERE room_code = \$1 ORDER BY ended_at desc`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "room_code", "winner", "total_questions", "standings"}).
				AddRow(7, "ABC123", "Bob", 5, []byte(`[{"rank":1,"player_id":"p2","name":"Bob","score":640}]`)))

		summary, err := sm.LookupSummary(ctx, "ABC123")
		require.NoError(t, err)
		assert.Equal(t, "Bob", summary.Winner)
		assert.Equal(t, 5, summary.TotalQuestions)
		require.Len(t, summary.Standings, 1)
		assert.Equal(t, 640, summary.Standings[0].Score)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nowhere", func(t *testing.T) {
		db, mock := newMockDB(t)
		sm := NewSyncManager(db, nil, nil)

		mock.ExpectQuery(`SELECT \* FROM "battle_results"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := sm.LookupSummary(ctx, "NOPE00")
		assert.ErrorIs(t, err, ErrSummaryNotFound)
	})
}

var _ battle.ResultSink = (*SyncManager)(nil)
