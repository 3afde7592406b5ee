package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// ServerConfig holds HTTP listener configuration.
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port         string        `env:"SERVER_PORT" envDefault:"3000"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	// BodyLimit caps request bodies, imports included.
	BodyLimit int `env:"SERVER_BODY_LIMIT" envDefault:"16777216"`
	// CORSOrigins is the comma-separated allow-list for browser clients.
	CORSOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	// RateLimit is the per-client request budget per minute; 0 disables it.
	RateLimit int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"0"`
}

// Addr returns host:port for fiber's Listen.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// MongoConfig configures the shared client handle.
type MongoConfig struct {
	URI         string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	Database    string        `env:"MONGODB_DATABASE" envDefault:"admin_engine"`
	Timeout     time.Duration `env:"MONGODB_TIMEOUT" envDefault:"10s"`
	MaxPoolSize uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"0"`
	// MetadataCollection stores the per-tenant list of created collections.
	MetadataCollection string `env:"MONGODB_METADATA_COLLECTION" envDefault:"orgCollectionsMeta"`
}

// RedisConfig configures the optional audit log backend.
type RedisConfig struct {
	Enabled         bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Host            string `env:"REDIS_HOST" envDefault:"localhost"`
	Port            string `env:"REDIS_PORT" envDefault:"6379"`
	Password        string `env:"REDIS_PASSWORD"`
	Database        int    `env:"REDIS_DB" envDefault:"0"`
	MaxRetries      int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	PoolSize        int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns    int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	EnableTLS       bool   `env:"REDIS_TLS" envDefault:"false"`
	ConnMaxIdleTime string `env:"REDIS_CONN_MAX_IDLE_TIME" envDefault:"30m"`
	ConnMaxLifetime string `env:"REDIS_CONN_MAX_LIFETIME" envDefault:"1h"`
	StreamMaxLength int64  `env:"REDIS_AUDIT_STREAM_MAXLEN" envDefault:"10000"`
}

// GetAddr returns the redis address.
func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// AuthConfig controls how the tenant identity is read from a request. With an
// empty JWTSecret the tenant header is trusted as set by an upstream gateway.
type AuthConfig struct {
	JWTSecret    string `env:"AUTH_JWT_SECRET"`
	TenantClaim  string `env:"AUTH_TENANT_CLAIM" envDefault:"org_id"`
	TenantHeader string `env:"AUTH_TENANT_HEADER" envDefault:"X-Org-Id"`
}

// JWTEnabled reports whether bearer tokens are required.
func (a AuthConfig) JWTEnabled() bool {
	return a.JWTSecret != ""
}

// QueryConfig holds paging and sampling defaults.
type QueryConfig struct {
	DefaultLimit       int64 `env:"QUERY_DEFAULT_LIMIT" envDefault:"20"`
	TableDefaultLimit  int64 `env:"QUERY_TABLE_DEFAULT_LIMIT" envDefault:"25"`
	MaxLimit           int64 `env:"QUERY_MAX_LIMIT" envDefault:"1000"`
	SchemaSampleSize   int64 `env:"SCHEMA_SAMPLE_SIZE" envDefault:"100"`
	CatalogConcurrency int   `env:"CATALOG_CONCURRENCY" envDefault:"8"`
}

// Config is the full service configuration.
type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Query  QueryConfig
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints and repairs non-positive limits.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("MONGODB_URI environment variable is not set")
	}
	if c.Mongo.Database == "" {
		return errors.New("MONGODB_DATABASE environment variable is not set")
	}
	q := &c.Query
	if q.MaxLimit <= 0 {
		q.MaxLimit = 1000
	}
	if q.DefaultLimit <= 0 {
		q.DefaultLimit = 20
	}
	if q.TableDefaultLimit <= 0 {
		q.TableDefaultLimit = 25
	}
	if q.DefaultLimit > q.MaxLimit {
		return fmt.Errorf("QUERY_DEFAULT_LIMIT (%d) exceeds QUERY_MAX_LIMIT (%d)", q.DefaultLimit, q.MaxLimit)
	}
	if q.SchemaSampleSize <= 0 {
		q.SchemaSampleSize = 100
	}
	if q.CatalogConcurrency <= 0 {
		q.CatalogConcurrency = 8
	}
	if c.Auth.TenantHeader == "" {
		c.Auth.TenantHeader = "X-Org-Id"
	}
	if c.Auth.TenantClaim == "" {
		c.Auth.TenantClaim = "org_id"
	}
	return nil
}

// DefaultConfig returns a Config with default values for local development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         "3000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			BodyLimit:    16 * 1024 * 1024,
			CORSOrigins:  "*",
		},
		Mongo: MongoConfig{
			URI:                "mongodb://localhost:27017",
			Database:           "admin_engine",
			Timeout:            10 * time.Second,
			MaxPoolSize:        100,
			MetadataCollection: "orgCollectionsMeta",
		},
		Redis: RedisConfig{
			Host:            "localhost",
			Port:            "6379",
			MaxRetries:      3,
			PoolSize:        10,
			MinIdleConns:    2,
			ConnMaxIdleTime: "30m",
			ConnMaxLifetime: "1h",
			StreamMaxLength: 10000,
		},
		Auth: AuthConfig{
			TenantClaim:  "org_id",
			TenantHeader: "X-Org-Id",
		},
		Query: QueryConfig{
			DefaultLimit:       20,
			TableDefaultLimit:  25,
			MaxLimit:           1000,
			SchemaSampleSize:   100,
			CatalogConcurrency: 8,
		},
	}
}
