package vocabulary

import (
	"fmt"

	"github.com/nicolasvargaszz/learn-chinese-game/models/postgres"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoadFromDB reads the words table in insertion order.
func LoadFromDB(db *gorm.DB) (*Store, error) {
	var rows []postgres.Word
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error loading words from PostgreSQL: %w", err)
	}

	words := make([]Word, 0, len(rows))
	for _, row := range rows {
		words = append(words, Word{
			Traditional: row.Traditional,
			Pinyin:      row.Pinyin,
			English:     row.English,
			Category:    row.Category,
			Lesson:      row.Lesson,
			POS:         row.POS,
		})
	}
	return NewStore(words), nil
}

// SeedDB inserts the store's words, skipping traditional strings that are
// already present.
func SeedDB(db *gorm.DB, store *Store) error {
	if store.Len() == 0 {
		return nil
	}
	rows := make([]postgres.Word, 0, store.Len())
	for _, w := range store.words {
		rows = append(rows, postgres.Word{
			Traditional: w.Traditional,
			Pinyin:      w.Pinyin,
			English:     w.English,
			Category:    w.Category,
			Lesson:      w.Lesson,
			POS:         w.POS,
		})
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "traditional"}},
		DoNothing: true,
	}).CreateInBatches(rows, 200).Error
	if err != nil {
		return fmt.Errorf("error seeding words: %w", err)
	}
	return nil
}

// CountDB returns how many words the table holds.
func CountDB(db *gorm.DB) (int64, error) {
	var count int64
	if err := db.Model(&postgres.Word{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("error counting words: %w", err)
	}
	return count, nil
}
