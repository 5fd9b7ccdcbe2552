package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMongo    = "mongo"
	StorageBackendMemory   = "memory"

	CacheProviderRedis   = "redis"
	CacheProviderUpstash = "upstash"
	CacheProviderMemory  = "memory"
	CacheProviderNone    = "none"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Storage   StorageConfig
	Postgres  PostgresConfig
	MongoDB   MongoDBConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Upstash   UpstashConfig
	Shortener ShortenerConfig
	Tracking  TrackingConfig
	OTel      OTelConfig
}

type AppConfig struct {
	Name     string
	Version  string
	Env      string
	LogLevel string
}

type ServerConfig struct {
	Port string
	Host string
	// CORSOrigins empty means any origin is allowed.
	CORSOrigins []string
}

type StorageConfig struct {
	Backend string
}

type PostgresConfig struct {
	DSN          string
	MaxConns     int
	MinConns     int
	EnsureSchema bool
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type CacheConfig struct {
	Provider string
	Timeout  time.Duration
	TTL      time.Duration
}

type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

type UpstashConfig struct {
	URL   string
	Token string
}

type ShortenerConfig struct {
	BaseURL        string
	SlugLength     int
	MaxRetries     int
	GrowthEvery    int
	RedirectStatus int // 301 or 302
}

type TrackingConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	IPSalt    string
	Outbox    bool
}

type OTelConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64
}

// Load reads an optional .env file and builds the configuration from the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     GetEnv("APP_NAME", "shortlink"),
			Version:  GetEnv("APP_VERSION", "0.1.0"),
			Env:      GetEnv("APP_ENV", "development"),
			LogLevel: GetEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        GetEnv("APP_PORT", "8080"),
			Host:        GetEnv("APP_HOST", "localhost"),
			CORSOrigins: SplitCSV(GetEnv("CORS_ALLOWED_ORIGINS", "")),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(GetEnv("STORAGE_BACKEND", StorageBackendPostgres)),
		},
		Postgres: PostgresConfig{
			DSN:          GetEnv("DB_DSN", DefaultPostgresDSN()),
			MaxConns:     GetEnvInt("DB_MAX_CONNS", 10),
			MinConns:     GetEnvInt("DB_MIN_CONNS", 0),
			EnsureSchema: GetEnvBool("DB_ENSURE_SCHEMA", true),
		},
		MongoDB: MongoDBConfig{
			URI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: GetEnv("MONGODB_DATABASE", "shortlink"),
		},
		Cache: CacheConfig{
			Provider: strings.ToLower(GetEnv("CACHE_PROVIDER", CacheProviderRedis)),
			Timeout:  GetEnvDuration("CACHE_TIMEOUT", 150*time.Millisecond),
			TTL:      GetEnvDuration("CACHE_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			URL:      GetEnv("REDIS_URL", ""),
			Addr:     GetEnv("REDIS_ADDR", "localhost:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvInt("REDIS_DB", 0),
		},
		Upstash: UpstashConfig{
			URL:   GetEnv("UPSTASH_REDIS_REST_URL", ""),
			Token: GetEnv("UPSTASH_REDIS_REST_TOKEN", ""),
		},
		Shortener: ShortenerConfig{
			BaseURL:        GetEnv("SHORTENER_BASE_URL", GetEnv("NEXT_PUBLIC_BASE_URL", "http://localhost:8080")),
			SlugLength:     GetEnvInt("SLUG_LENGTH", 6),
			MaxRetries:     GetEnvInt("SLUG_MAX_RETRIES", 5),
			GrowthEvery:    GetEnvInt("SLUG_GROWTH_EVERY", 2),
			RedirectStatus: GetEnvInt("REDIRECT_STATUS", 301),
		},
		Tracking: TrackingConfig{
			Workers:   GetEnvInt("TRACKING_WORKERS", 4),
			QueueSize: GetEnvInt("TRACKING_QUEUE_SIZE", 1024),
			Timeout:   GetEnvDuration("TRACKING_TIMEOUT", 5*time.Second),
			IPSalt:    GetEnv("IP_HASH_SALT", ""),
			Outbox:    GetEnvBool("OUTBOX_ENABLED", false),
		},
		OTel: OTelConfig{
			Enabled:     GetEnvBool("OTEL_ENABLED", false),
			Endpoint:    GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
			SampleRatio: GetEnvFloat("OTEL_SAMPLE_RATIO", 1.0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageBackendPostgres, StorageBackendMongo, StorageBackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be postgres, mongo or memory (got %q)", c.Storage.Backend)
	}
	switch c.Cache.Provider {
	case CacheProviderRedis, CacheProviderUpstash, CacheProviderMemory, CacheProviderNone:
	default:
		return fmt.Errorf("CACHE_PROVIDER must be redis, upstash, memory or none (got %q)", c.Cache.Provider)
	}

	if c.Shortener.RedirectStatus != 301 && c.Shortener.RedirectStatus != 302 {
		return fmt.Errorf("REDIRECT_STATUS must be 301 or 302 (got %d)", c.Shortener.RedirectStatus)
	}
	if c.Shortener.SlugLength < 3 || c.Shortener.SlugLength > 30 {
		return fmt.Errorf("SLUG_LENGTH must be between 3 and 30 (got %d)", c.Shortener.SlugLength)
	}
	if c.Shortener.MaxRetries < 1 {
		return fmt.Errorf("SLUG_MAX_RETRIES must be >= 1 (got %d)", c.Shortener.MaxRetries)
	}
	if c.Shortener.GrowthEvery < 1 {
		return fmt.Errorf("SLUG_GROWTH_EVERY must be >= 1 (got %d)", c.Shortener.GrowthEvery)
	}
	if strings.TrimSpace(c.Shortener.BaseURL) == "" {
		return fmt.Errorf("SHORTENER_BASE_URL must not be empty")
	}

	if c.Cache.Timeout <= 0 {
		return fmt.Errorf("CACHE_TIMEOUT must be > 0")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be > 0")
	}

	if c.Tracking.Workers <= 0 {
		return fmt.Errorf("TRACKING_WORKERS must be > 0 (got %d)", c.Tracking.Workers)
	}
	if c.Tracking.QueueSize <= 0 {
		return fmt.Errorf("TRACKING_QUEUE_SIZE must be > 0 (got %d)", c.Tracking.QueueSize)
	}
	if c.Tracking.Timeout <= 0 {
		return fmt.Errorf("TRACKING_TIMEOUT must be > 0")
	}
	if c.Postgres.MaxConns <= 0 || c.Postgres.MinConns < 0 || c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS out of range (min %d, max %d)", c.Postgres.MinConns, c.Postgres.MaxConns)
	}
	if c.OTel.SampleRatio < 0 || c.OTel.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be between 0 and 1 (got %g)", c.OTel.SampleRatio)
	}
	if c.Tracking.Outbox && c.Storage.Backend != StorageBackendPostgres {
		return fmt.Errorf("OUTBOX_ENABLED requires STORAGE_BACKEND=postgres")
	}

	return nil
}
