package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	CORS          CORSConfig
	Log           LogConfig
	Scheduling    SchedulingConfig
	Substitution  SubstitutionConfig
	Waitlist      WaitlistConfig
	Notifications NotificationsConfig
	Exports       ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulingConfig tunes the booking rules applied by the session scheduler.
type SchedulingConfig struct {
	// DefaultBufferMinutes is the inter-session buffer used when a therapist
	// has no availability record or the record does not define one.
	DefaultBufferMinutes int
	// DefaultMaxSessionsPerDay applies when preferences do not set a cap.
	DefaultMaxSessionsPerDay int
	// LockTTL bounds how long a booking may hold the per-therapist slot lock.
	LockTTL time.Duration
	// AvailabilityCacheTTL controls the read-through cache on availability records.
	AvailabilityCacheTTL time.Duration
}

// SubstitutionConfig holds the scoring weights of the substitute matcher.
type SubstitutionConfig struct {
	ContinuityWeight    int
	LightScheduleWeight int
	HeavyScheduleWeight int
	LightScheduleBelow  int
	HeavyScheduleAbove  int
}

// WaitlistConfig governs gap-fill offer expiry.
type WaitlistConfig struct {
	OfferTTL time.Duration
}

// NotificationsConfig sizes the background dispatch queue.
type NotificationsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// ExportsConfig toggles schedule export endpoints.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduling = SchedulingConfig{
		DefaultBufferMinutes:     v.GetInt("SCHEDULING_DEFAULT_BUFFER_MINUTES"),
		DefaultMaxSessionsPerDay: v.GetInt("SCHEDULING_DEFAULT_MAX_SESSIONS_PER_DAY"),
		LockTTL:                  parseDuration(v.GetString("SCHEDULING_LOCK_TTL"), 5*time.Second),
		AvailabilityCacheTTL:     parseDuration(v.GetString("AVAILABILITY_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Substitution = SubstitutionConfig{
		ContinuityWeight:    v.GetInt("SUBSTITUTION_CONTINUITY_WEIGHT"),
		LightScheduleWeight: v.GetInt("SUBSTITUTION_LIGHT_SCHEDULE_WEIGHT"),
		HeavyScheduleWeight: v.GetInt("SUBSTITUTION_HEAVY_SCHEDULE_WEIGHT"),
		LightScheduleBelow:  v.GetInt("SUBSTITUTION_LIGHT_SCHEDULE_BELOW"),
		HeavyScheduleAbove:  v.GetInt("SUBSTITUTION_HEAVY_SCHEDULE_ABOVE"),
	}

	cfg.Waitlist = WaitlistConfig{
		OfferTTL: parseDuration(v.GetString("WAITLIST_OFFER_TTL"), 24*time.Hour),
	}

	cfg.Notifications = NotificationsConfig{
		Workers:    v.GetInt("NOTIFICATIONS_WORKERS"),
		BufferSize: v.GetInt("NOTIFICATIONS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("NOTIFICATIONS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFICATIONS_RETRY_DELAY"), time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_SCHEDULE_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "rehab_center")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULING_DEFAULT_BUFFER_MINUTES", 15)
	v.SetDefault("SCHEDULING_DEFAULT_MAX_SESSIONS_PER_DAY", 8)
	v.SetDefault("SCHEDULING_LOCK_TTL", "5s")
	v.SetDefault("AVAILABILITY_CACHE_TTL", "5m")

	v.SetDefault("SUBSTITUTION_CONTINUITY_WEIGHT", 10)
	v.SetDefault("SUBSTITUTION_LIGHT_SCHEDULE_WEIGHT", 5)
	v.SetDefault("SUBSTITUTION_HEAVY_SCHEDULE_WEIGHT", -5)
	v.SetDefault("SUBSTITUTION_LIGHT_SCHEDULE_BELOW", 4)
	v.SetDefault("SUBSTITUTION_HEAVY_SCHEDULE_ABOVE", 6)

	v.SetDefault("WAITLIST_OFFER_TTL", "24h")

	v.SetDefault("NOTIFICATIONS_WORKERS", 2)
	v.SetDefault("NOTIFICATIONS_BUFFER_SIZE", 64)
	v.SetDefault("NOTIFICATIONS_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATIONS_RETRY_DELAY", "1s")

	v.SetDefault("ENABLE_SCHEDULE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
