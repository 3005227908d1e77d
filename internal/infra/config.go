package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const insecureJWTSecret = "change-me-in-production"

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"proneo"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"proneo"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"proneo"`

	// Redis
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// Where per-device dismissals and toggles live: postgres, redis or memory.
	StateBackend       string `env:"STATE_BACKEND" envDefault:"postgres"`
	StatePurgeSchedule string `env:"STATE_PURGE_SCHEDULE" envDefault:"0 0 * * * *"`

	// Auth
	AuthMode  string        `env:"AUTH_MODE" envDefault:"firebase"`
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"8h"`

	// Firebase
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers       string        `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled       bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"500ms"`
	AuditGroupID       string        `env:"AUDIT_GROUP_ID" envDefault:"proneo-audit"`

	// Daily digest
	DigestSchedule string `env:"DIGEST_SCHEDULE" envDefault:"0 0 8 * * *"`
	DigestEnabled  bool   `env:"DIGEST_ENABLED" envDefault:"true"`

	// Roster
	RosterLimit int    `env:"ROSTER_LIMIT" envDefault:"200"`
	Timezone    string `env:"TIMEZONE" envDefault:"Europe/Madrid"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks enumerated settings, then refuses insecure configuration
// unless ALLOW_INSECURE_DEFAULTS=true (local dev only).
func (c *Config) Validate() error {
	switch c.StateBackend {
	case "postgres", "redis", "memory":
	default:
		return fmt.Errorf("STATE_BACKEND must be postgres, redis or memory, got %q", c.StateBackend)
	}
	switch c.AuthMode {
	case "firebase", "jwt":
	default:
		return fmt.Errorf("AUTH_MODE must be firebase or jwt, got %q", c.AuthMode)
	}
	if c.RosterLimit <= 0 {
		return fmt.Errorf("ROSTER_LIMIT must be positive, got %d", c.RosterLimit)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}

	if c.AllowInsecureDefaults {
		return nil
	}
	if c.AuthMode == "jwt" {
		if c.JWTSecret == insecureJWTSecret {
			return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
		}
	}
	return nil
}

// Location resolves TIMEZONE. Calendar-day arithmetic for alerts runs in it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
