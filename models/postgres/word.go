package postgres

/*
 * 'Word' is one vocabulary entry. The table is seeded from the vocabulary
 * file the first time the server starts against an empty database.
 */
type Word struct {
	ID          uint   `gorm:"primaryKey"`
	Traditional string `gorm:"size:64;not null;uniqueIndex"`
	Pinyin      string `gorm:"size:128"`
	English     string `gorm:"size:255;not null"`
	Category    string `gorm:"size:100;index:idx_words_category"`
	Lesson      int    `gorm:"default:0;index:idx_words_lesson"`
	POS         string `gorm:"size:50"`
}
