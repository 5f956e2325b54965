package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nicolasvargaszz/learn-chinese-game/config"
	_ "github.com/nicolasvargaszz/learn-chinese-game/config/swagger"
	"github.com/nicolasvargaszz/learn-chinese-game/controllers"
	"github.com/nicolasvargaszz/learn-chinese-game/logger"
	"github.com/nicolasvargaszz/learn-chinese-game/middleware"
	"github.com/nicolasvargaszz/learn-chinese-game/routes"
	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"
	"github.com/nicolasvargaszz/learn-chinese-game/services/rabbit"
	"github.com/nicolasvargaszz/learn-chinese-game/services/socket_io"
	"github.com/nicolasvargaszz/learn-chinese-game/services/sync"
	"github.com/nicolasvargaszz/learn-chinese-game/services/tokens"
	"github.com/nicolasvargaszz/learn-chinese-game/services/vocabulary"
	"github.com/nicolasvargaszz/learn-chinese-game/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// @title Chinese Vocabulary Battle API
// @version 1.0
// @description Gin-Gonic server for the vocabulary battle game
// @BasePath /
func main() {
	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Msg("Setting up server...")

	if cfg.Server.Prod {
		gin.SetMode(gin.ReleaseMode)
	}

	var gormDB *gorm.DB
	if cfg.Postgres.Enabled() {
		gormDB, err = config.ConnectGORM(cfg.Postgres)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to PostgreSQL")
		}
		log.Info().Msg("GORM Connected")

		// Only migrate in development or during deployment
		if cfg.Postgres.Migrate {
			if err := config.MigrateDatabase(gormDB); err != nil {
				log.Warn().Err(err).Msg("Database migration failed")
			} else {
				log.Info().Msg("Database migrated successfully")
			}
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("Error reading GORM PostgreSQL instance")
		}
		defer sqlDB.Close()
	}

	store := loadVocabulary(cfg, gormDB)

	redisClient, err := config.ConnectRedis(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to Redis")
	}
	var (
		cache      sync.SummaryCache
		highScores controllers.HighScoreReader
	)
	if redisClient != nil {
		cache, highScores = redisClient, redisClient
		defer redisClient.Close()
	}

	var publisher sync.EventPublisher
	if cfg.Rabbit.URL != "" {
		p, err := rabbit.Dial(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("[RABBIT] Could not connect, result events disabled")
		} else {
			publisher = p
			defer p.Close()
		}
	}

	syncManager := sync.NewSyncManager(gormDB, cache, publisher)
	tokenManager := tokens.NewManager(cfg.Server.TokenSecret, cfg.Server.TokenTTL)

	sio := socket_io.New(cfg.Server.SocketRate, cfg.Server.SocketBurst)
	registry := battle.NewRegistry(cfg.Battle.Settings(), store, sio.Broadcaster(),
		battle.WithTokens(tokenManager),
		battle.WithResultSink(syncManager),
	)

	r := gin.New()
	r.Use(gin.Recovery(), utils.Logger())
	middleware.SetUpMiddleware(r, cfg.Server.SessionKey, cfg.Server.Prod)

	sio.Start(r, registry, cfg.Server.Prod)

	routes.SetupRoutes(r, store, &controllers.BattleController{
		Registry:   registry,
		Results:    syncManager,
		HighScores: highScores,
		PublicURL:  cfg.Server.PublicURL,
	}, tokenManager, middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst))

	srv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Int("words", store.Len()).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Error starting server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	sio.Stop()
	if err := registry.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Rooms did not close in time")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP server did not shut down cleanly")
	}
	log.Info().Msg("Server stopped")
}

// loadVocabulary prefers the words table, seeding it from the file when it
// is empty. Without a database the file is used directly. When nothing loads
// the one-word fallback keeps the REST API answering, but battles need four
// words and will fail to start.
func loadVocabulary(cfg *config.Config, db *gorm.DB) *vocabulary.Store {
	fileStore, fileErr := vocabulary.LoadFile(cfg.Vocabulary.Path)
	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", cfg.Vocabulary.Path).Msg("[VOCAB] Could not load vocabulary file")
	}

	if db != nil {
		count, err := vocabulary.CountDB(db)
		if err != nil {
			log.Warn().Err(err).Msg("[VOCAB] Could not count words table")
		}
		if err == nil && count == 0 && cfg.Postgres.Seed && fileStore != nil {
			if err := vocabulary.SeedDB(db, fileStore); err != nil {
				log.Warn().Err(err).Msg("[VOCAB] Seeding words table failed")
			} else {
				log.Info().Int("words", fileStore.Len()).Msg("[VOCAB] Words table seeded")
			}
		}
		if err == nil {
			dbStore, err := vocabulary.LoadFromDB(db)
			if err == nil && dbStore.Len() > 0 {
				log.Info().Int("words", dbStore.Len()).Msg("[VOCAB] Vocabulary loaded from PostgreSQL")
				return dbStore
			}
			if err != nil {
				log.Warn().Err(err).Msg("[VOCAB] Could not read words table")
			}
		}
	}

	if fileStore != nil && fileStore.Len() > 0 {
		log.Info().Int("words", fileStore.Len()).Str("path", cfg.Vocabulary.Path).Msg("[VOCAB] Vocabulary loaded from file")
		return fileStore
	}
	log.Warn().Msg("[VOCAB] Using fallback vocabulary, battles cannot start until a vocabulary source is available")
	return vocabulary.FallbackStore()
}
