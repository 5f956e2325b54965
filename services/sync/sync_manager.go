package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nicolasvargaszz/learn-chinese-game/models/postgres"
	redis_models "github.com/nicolasvargaszz/learn-chinese-game/models/redis"
	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	"github.com/nicolasvargaszz/learn-chinese-game/services/rabbit"
	"github.com/nicolasvargaszz/learn-chinese-game/services/redis"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrSummaryNotFound = errors.New("battle summary not found")

// SummaryCache is the Redis side of the archive.
type SummaryCache interface {
	SaveBattleSummary(ctx context.Context, summary *redis_models.BattleSummary) error
	GetBattleSummary(ctx context.Context, roomCode string) (*redis_models.BattleSummary, error)
	RecordHighScores(ctx context.Context, standings []redis_models.BattleStanding) error
}

type EventPublisher interface {
	PublishBattleEnded(ctx context.Context, msg rabbit.BattleEndedMessage) error
}

// SyncManager copies finished battles from the in-memory rooms to the
// configured stores. Every store is optional.
type SyncManager struct {
	db        *gorm.DB
	cache     SummaryCache
	publisher EventPublisher
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(db *gorm.DB, cache SummaryCache, publisher EventPublisher) *SyncManager {
	return &SyncManager{
		db:        db,
		cache:     cache,
		publisher: publisher,
	}
}

// Record implements battle.ResultSink. One failing store does not stop the
// others; all failures are returned together.
func (sm *SyncManager) Record(ctx context.Context, s battle.Summary) error {
	summary := toRedisSummary(s)
	var errs []error

	if sm.db != nil {
		if _, err := sm.ArchiveBattle(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	if sm.cache != nil {
		if err := sm.cache.SaveBattleSummary(ctx, summary); err != nil {
			errs = append(errs, fmt.Errorf("caching summary: %w", err))
		}
		if err := sm.cache.RecordHighScores(ctx, summary.Standings); err != nil {
			errs = append(errs, fmt.Errorf("recording high scores: %w", err))
		}
	}
	if sm.publisher != nil {
		err := sm.publisher.PublishBattleEnded(ctx, rabbit.BattleEndedMessage{
			RoomCode:       summary.RoomCode,
			Winner:         summary.Winner,
			TotalQuestions: summary.TotalQuestions,
			Standings:      summary.Standings,
			EndedAt:        summary.EndedAt,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("publishing result: %w", err))
		}
	}

	if len(errs) == 0 {
		log.Info().Str("room", s.RoomCode).Msg("[SYNC] Battle result stored")
	}
	return errors.Join(errs...)
}

// ArchiveBattle inserts one row into battle_results.
func (sm *SyncManager) ArchiveBattle(ctx context.Context, s battle.Summary) (*postgres.BattleResult, error) {
	standings, err := json.Marshal(s.Standings)
	if err != nil {
		return nil, fmt.Errorf("error marshaling standings: %w", err)
	}
	row := &postgres.BattleResult{
		RoomCode:       s.RoomCode,
		Winner:         s.Winner,
		TotalQuestions: s.TotalQuestions,
		PlayerCount:    len(s.Standings),
		Lesson:         s.Options.Lesson,
		Category:       s.Options.Category,
		Standings:      datatypes.JSON(standings),
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
	if err := sm.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("error archiving battle in PostgreSQL: %w", err)
	}
	return row, nil
}

// LookupSummary reads the cached summary, falling back to the newest
// archived result for that code.
func (sm *SyncManager) LookupSummary(ctx context.Context, roomCode string) (*redis_models.BattleSummary, error) {
	if sm.cache != nil {
		summary, err := sm.cache.GetBattleSummary(ctx, roomCode)
		if err == nil {
			return summary, nil
		}
		if !errors.Is(err, redis.ErrNotFound) {
			log.Warn().Err(err).Str("room", roomCode).Msg("[SYNC] Cache lookup failed, trying PostgreSQL")
		}
	}
	if sm.db == nil {
		return nil, ErrSummaryNotFound
	}

	var row postgres.BattleResult
	err := sm.db.WithContext(ctx).Where("room_code = ?", roomCode).Order("ended_at desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading battle result: %w", err)
	}

	summary := &redis_models.BattleSummary{
		RoomCode:       row.RoomCode,
		Winner:         row.Winner,
		TotalQuestions: row.TotalQuestions,
		StartedAt:      row.StartedAt,
		EndedAt:        row.EndedAt,
	}
	if err := json.Unmarshal(row.Standings, &summary.Standings); err != nil {
		return nil, fmt.Errorf("error unmarshaling archived standings: %w", err)
	}
	return summary, nil
}

func toRedisSummary(s battle.Summary) *redis_models.BattleSummary {
	standings := make([]redis_models.BattleStanding, 0, len(s.Standings))
	for _, f := range s.Standings {
		standings = append(standings, redis_models.BattleStanding{
			Rank:           f.Rank,
			PlayerID:       f.PlayerID,
			Name:           f.Name,
			Score:          f.Score,
			CorrectAnswers: f.CorrectAnswers,
			TotalQuestions: f.TotalQuestions,
		})
	}
	return &redis_models.BattleSummary{
		RoomCode:       s.RoomCode,
		Winner:         s.Winner,
		TotalQuestions: s.TotalQuestions,
		Standings:      standings,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
}
