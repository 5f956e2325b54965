package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nicolasvargaszz/learn-chinese-game/services/battle"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Vocabulary VocabularyConfig
	Battle     BattleConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Rabbit     RabbitConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Prod            bool
	SessionKey      string
	TokenSecret     string
	TokenTTL        time.Duration
	RateLimit       float64
	RateLimitBurst  int
	SocketRate      float64
	SocketBurst     int
	PublicURL       string
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Pretty bool
}

type VocabularyConfig struct {
	Path string
}

type BattleConfig struct {
	MaxPlayers       int
	MinPlayers       int
	Rounds           int
	MaxRounds        int
	Countdown        time.Duration
	QuestionTime     time.Duration
	LeaderboardDelay time.Duration
	EndedGrace       time.Duration
	LeaderboardSize  int
	BasePoints       int
	StreakStep       int
	StreakCap        int
}

type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
	Verbose  bool
	Migrate  bool
	Seed     bool
}

type RedisConfig struct {
	URL string
}

type RabbitConfig struct {
	URL      string
	Exchange string
}

// Load reads the configuration. Priority: environment, then the YAML file,
// then defaults. An empty path searches ./config and the working directory
// for server.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("server")
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnv(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !strings.Contains(err.Error(), "no such file or directory") {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	// Names already used by the deployment scripts
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.prod", "PROD")
	v.BindEnv("server.sessionkey", "KEY")
	v.BindEnv("server.tokensecret", "TOKEN_SECRET")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("server.publicurl", "PUBLIC_URL")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.pretty", "LOG_PRETTY")
	v.BindEnv("vocabulary.path", "VOCABULARY_PATH")
	v.BindEnv("postgres.user", "POSTGRES_USER")
	v.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	v.BindEnv("postgres.host", "POSTGRES_HOST")
	v.BindEnv("postgres.port", "POSTGRES_PORT")
	v.BindEnv("postgres.database", "POSTGRES_DATABASE")
	v.BindEnv("postgres.verbose", "VERBOSE_POSTGRES")
	v.BindEnv("postgres.migrate", "MIGRATE_POSTGRES")
	v.BindEnv("postgres.seed", "SEED_POSTGRES")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("rabbit.url", "AMQP_URL")
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.prod", d.Server.Prod)
	v.SetDefault("server.sessionkey", d.Server.SessionKey)
	v.SetDefault("server.tokensecret", d.Server.TokenSecret)
	v.SetDefault("server.tokenttl", d.Server.TokenTTL.String())
	v.SetDefault("server.ratelimit", d.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", d.Server.RateLimitBurst)
	v.SetDefault("server.socketrate", d.Server.SocketRate)
	v.SetDefault("server.socketburst", d.Server.SocketBurst)
	v.SetDefault("server.publicurl", d.Server.PublicURL)
	v.SetDefault("server.shutdowntimeout", d.Server.ShutdownTimeout.String())

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)

	v.SetDefault("vocabulary.path", d.Vocabulary.Path)

	v.SetDefault("battle.maxplayers", d.Battle.MaxPlayers)
	v.SetDefault("battle.minplayers", d.Battle.MinPlayers)
	v.SetDefault("battle.rounds", d.Battle.Rounds)
	v.SetDefault("battle.maxrounds", d.Battle.MaxRounds)
	v.SetDefault("battle.countdown", d.Battle.Countdown.String())
	v.SetDefault("battle.questiontime", d.Battle.QuestionTime.String())
	v.SetDefault("battle.leaderboarddelay", d.Battle.LeaderboardDelay.String())
	v.SetDefault("battle.endedgrace", d.Battle.EndedGrace.String())
	v.SetDefault("battle.leaderboardsize", d.Battle.LeaderboardSize)
	v.SetDefault("battle.basepoints", d.Battle.BasePoints)
	v.SetDefault("battle.streakstep", d.Battle.StreakStep)
	v.SetDefault("battle.streakcap", d.Battle.StreakCap)

	v.SetDefault("postgres.port", d.Postgres.Port)
	v.SetDefault("postgres.migrate", d.Postgres.Migrate)
	v.SetDefault("postgres.seed", d.Postgres.Seed)

	v.SetDefault("rabbit.exchange", d.Rabbit.Exchange)
}

func DefaultConfig() *Config {
	s := battle.DefaultSettings()
	return &Config{
		Server: ServerConfig{
			Port:            "5000",
			Host:            "0.0.0.0",
			SessionKey:      "battle-session-dev-key",
			TokenSecret:     "dev-token-secret",
			TokenTTL:        24 * time.Hour,
			RateLimit:       10,
			RateLimitBurst:  20,
			SocketRate:      20,
			SocketBurst:     40,
			PublicURL:       "http://localhost:5173",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Vocabulary: VocabularyConfig{
			Path: "data/vocabulary.csv",
		},
		Battle: BattleConfig{
			MaxPlayers:       s.MaxPlayers,
			MinPlayers:       s.MinPlayers,
			Rounds:           s.Rounds,
			MaxRounds:        s.MaxRounds,
			Countdown:        s.Countdown,
			QuestionTime:     s.QuestionTime,
			LeaderboardDelay: s.LeaderboardDelay,
			EndedGrace:       s.EndedGrace,
			LeaderboardSize:  s.LeaderboardSize,
			BasePoints:       s.Scoring.Base,
			StreakStep:       s.Scoring.StreakStep,
			StreakCap:        s.Scoring.StreakCap,
		},
		Postgres: PostgresConfig{
			Port:    "5432",
			Migrate: true,
			Seed:    true,
		},
		Rabbit: RabbitConfig{
			Exchange: "battle.events",
		},
	}
}

func (c *Config) Validate() error {
	b := c.Battle
	switch {
	case c.Server.Port == "":
		return errors.New("server port must be set")
	case b.MaxPlayers <= 0 || b.MinPlayers <= 0:
		return errors.New("player limits must be positive")
	case b.MinPlayers > b.MaxPlayers:
		return fmt.Errorf("minplayers (%d) exceeds maxplayers (%d)", b.MinPlayers, b.MaxPlayers)
	case b.Rounds <= 0 || b.MaxRounds <= 0:
		return errors.New("round counts must be positive")
	case b.Rounds > b.MaxRounds:
		return fmt.Errorf("rounds (%d) exceeds maxrounds (%d)", b.Rounds, b.MaxRounds)
	case b.Countdown <= 0 || b.QuestionTime <= 0 || b.LeaderboardDelay <= 0 || b.EndedGrace <= 0:
		return errors.New("battle durations must be positive")
	case b.BasePoints < 0 || b.StreakStep < 0 || b.StreakCap < 0:
		return errors.New("scoring weights cannot be negative")
	case c.Server.Prod && (c.Server.TokenSecret == "" || c.Server.TokenSecret == DefaultConfig().Server.TokenSecret):
		return errors.New("TOKEN_SECRET must be set in production")
	}
	return nil
}

// Settings converts the battle section for the room engine.
func (b BattleConfig) Settings() battle.Settings {
	return battle.Settings{
		MaxPlayers:       b.MaxPlayers,
		MinPlayers:       b.MinPlayers,
		Rounds:           b.Rounds,
		MaxRounds:        b.MaxRounds,
		Countdown:        b.Countdown,
		QuestionTime:     b.QuestionTime,
		LeaderboardDelay: b.LeaderboardDelay,
		EndedGrace:       b.EndedGrace,
		LeaderboardSize:  b.LeaderboardSize,
		Scoring: battle.Scoring{
			Base:       b.BasePoints,
			StreakStep: b.StreakStep,
			StreakCap:  b.StreakCap,
		},
	}
}

func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}
