package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidConfig               = errors.New("invalid configuration")
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string   `mapstructure:"env"`                // current application environment (local, dev, production etc)
	QuestionBankPath string   `mapstructure:"question_bank_path"` // path to the nested subject -> topic -> questions JSON
	TelegramAPIToken string   `mapstructure:"-"`                  // Telegram API token loaded from environment
	HTTP             HTTP     `mapstructure:"http"`               // HTTP API section
	Store            Store    `mapstructure:"store"`              // learner store section
	Redis            Redis    `mapstructure:"redis"`              // redis connection used by the redis store
	DB               DB       `mapstructure:"database"`           // optional attempt journal database
	Adaptive         Adaptive `mapstructure:"adaptive"`           // tuning of the adaptive engine
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Addr         string   `mapstructure:"addr"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	CookieName   string   `mapstructure:"cookie_name"`
	CookieSecure bool     `mapstructure:"cookie_secure"`
}

// Store selects and tunes the learner store.
type Store struct {
	Driver        string        `mapstructure:"driver"`         // memory or redis
	TTL           time.Duration `mapstructure:"ttl"`            // idle time after which a learner is evicted
	SweepSchedule string        `mapstructure:"sweep_schedule"` // cron spec of the eviction sweep
}

// Redis contains redis connection parameters.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"-"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Enabled reports whether the attempt journal database is configured.
func (db DB) Enabled() bool {
	return db.URL != ""
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Adaptive holds the tunables of mastery updates, topic selection and hints.
type Adaptive struct {
	InitialMastery    int     `mapstructure:"initial_mastery"`
	StepUp            int     `mapstructure:"step_up"`
	StepDown          int     `mapstructure:"step_down"`
	RecentWindow      int     `mapstructure:"recent_window"`
	GreedyProbability float64 `mapstructure:"greedy_probability"`
	TargetSuccess     float64 `mapstructure:"target_success"`
	HintMinAttempts   int     `mapstructure:"hint_min_attempts"`
	HintErrorRate     float64 `mapstructure:"hint_error_rate"`
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A missing .env is fine, the environment may be provided by the runtime.
	_ = godotenv.Load()

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")
	cfg.Redis.Password = v.GetString("redis_password")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("question_bank_path", "assets/data/questions.json")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("http.cookie_name", "quiz_session")
	v.SetDefault("http.cookie_secure", false)

	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("store.ttl", "24h")
	v.SetDefault("store.sweep_schedule", "@every 10m")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "quiz:learner")

	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_conn_lifetime", "30m")

	v.SetDefault("adaptive.initial_mastery", 50)
	v.SetDefault("adaptive.step_up", 5)
	v.SetDefault("adaptive.step_down", 3)
	v.SetDefault("adaptive.recent_window", 5)
	v.SetDefault("adaptive.greedy_probability", 0.7)
	v.SetDefault("adaptive.target_success", 0.65)
	v.SetDefault("adaptive.hint_min_attempts", 2)
	v.SetDefault("adaptive.hint_error_rate", 0.5)
}

// Validate checks cross-field constraints that viper cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: redis store requires redis.addr", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidConfig, c.Store.Driver)
	}

	if c.Store.TTL <= 0 {
		return fmt.Errorf("%w: store.ttl must be positive", ErrInvalidConfig)
	}

	a := c.Adaptive
	switch {
	case a.InitialMastery < 0 || a.InitialMastery > 100:
		return fmt.Errorf("%w: adaptive.initial_mastery must be within [0,100]", ErrInvalidConfig)
	case a.StepUp < 0 || a.StepDown < 0:
		return fmt.Errorf("%w: adaptive steps must not be negative", ErrInvalidConfig)
	case a.RecentWindow < 1:
		return fmt.Errorf("%w: adaptive.recent_window must be at least 1", ErrInvalidConfig)
	case a.GreedyProbability < 0 || a.GreedyProbability > 1:
		return fmt.Errorf("%w: adaptive.greedy_probability must be within [0,1]", ErrInvalidConfig)
	case a.TargetSuccess <= 0 || a.TargetSuccess >= 1:
		return fmt.Errorf("%w: adaptive.target_success must be within (0,1)", ErrInvalidConfig)
	case a.HintErrorRate < 0 || a.HintErrorRate > 1:
		return fmt.Errorf("%w: adaptive.hint_error_rate must be within [0,1]", ErrInvalidConfig)
	}

	return nil
}

// RequireTelegram reports an error when the bot token is absent.
func (c *Config) RequireTelegram() error {
	if c.TelegramAPIToken == "" {
		return ErrMissingEnvironmentVariables
	}
	return nil
}
