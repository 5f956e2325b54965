package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'BattleResult' archives the final standings of a finished battle.
 * Standings holds the same objects the clients got in `battle_ended`.
 */
type BattleResult struct {
	ID             uint           `gorm:"primaryKey"`
	RoomCode       string         `gorm:"size:6;not null;index:idx_battle_results_code"`
	Winner         string         `gorm:"size:50"`
	TotalQuestions int            `gorm:"default:0"`
	PlayerCount    int            `gorm:"default:0"`
	Lesson         int            `gorm:"default:0"`
	Category       string         `gorm:"size:100"`
	Standings      datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	StartedAt      time.Time
	EndedAt        time.Time `gorm:"index:idx_battle_results_ended"`
}
