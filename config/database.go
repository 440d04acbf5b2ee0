package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"secretary"`
	Password string `env:"PASSWORD" envDefault:"secretary"`
	Name     string `env:"NAME"     envDefault:"secretary"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the status cache.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// CacheConfig contains job status cache configuration.
type CacheConfig struct {
	// Enabled toggles the Redis-backed status cache. When disabled,
	// status reads always go to Postgres.
	Enabled bool `env:"STATUS_CACHE_ENABLED" envDefault:"false"`

	// StatusTTL is the TTL for cached job status snapshots.
	StatusTTL time.Duration `env:"STATUS_CACHE_TTL" envDefault:"2s"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.StatusTTL <= 0 {
		c.StatusTTL = 2 * time.Second
	}
	if c.StatusTTL > time.Minute {
		c.StatusTTL = time.Minute
	}
}
