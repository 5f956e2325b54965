package config

import (
	"database/sql"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/models/postgres"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectGORM returns a GORM DB instance connected to PostgreSQL
func ConnectGORM(cfg PostgresConfig) (*gorm.DB, error) {
	// NOTE: See https://github.com/go-gorm/gorm/issues/5409
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	gormConfig := &gorm.Config{}
	if cfg.Verbose {
		gormConfig.Logger = logger.New(
			stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Info,
				IgnoreRecordNotFoundError: false,
				Colorful:                  true,
			},
		)
	}

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening gorm: %w", err)
	}

	pool, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	pool.SetMaxIdleConns(10)
	pool.SetMaxOpenConns(100)
	pool.SetConnMaxLifetime(time.Hour)

	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("[POSTGRES] Connected with GORM")
	return db, nil
}

// MigrateDatabase creates the words and battle_results tables.
// NOTE: for more info, execute db.Debug().AutoMigrate(...)
func MigrateDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(&postgres.Word{}, &postgres.BattleResult{}); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	log.Info().Msg("[POSTGRES] Database migrated")
	return nil
}
