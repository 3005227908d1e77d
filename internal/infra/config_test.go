package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.StateBackend)
	assert.Equal(t, "firebase", cfg.AuthMode)
	assert.Equal(t, 200, cfg.RosterLimit)
	assert.Equal(t, "Europe/Madrid", cfg.Timezone)
	assert.Equal(t, "0 0 8 * * *", cfg.DigestSchedule)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 8*time.Hour, cfg.JWTExpiry)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("STATE_BACKEND", "redis")
	t.Setenv("ROSTER_LIMIT", "50")
	t.Setenv("JWT_EXPIRY", "15m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.StateBackend)
	assert.Equal(t, 50, cfg.RosterLimit)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiry)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StateBackend:      "memory",
			AuthMode:          "jwt",
			JWTSecret:         "0123456789abcdef0123456789abcdef",
			RosterLimit:       200,
			Timezone:          "Europe/Madrid",
			FirebaseProjectID: "proneo-dev",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad backend", func(c *Config) { c.StateBackend = "sqlite" }, "STATE_BACKEND"},
		{"bad auth mode", func(c *Config) { c.AuthMode = "basic" }, "AUTH_MODE"},
		{"zero roster limit", func(c *Config) { c.RosterLimit = 0 }, "ROSTER_LIMIT"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"default secret", func(c *Config) { c.JWTSecret = insecureJWTSecret }, "insecure default"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "too short"},
		{"missing project", func(c *Config) { c.FirebaseProjectID = "" }, "FIREBASE_PROJECT_ID"},
		{"firebase mode ignores jwt secret", func(c *Config) {
			c.AuthMode = "firebase"
			c.JWTSecret = insecureJWTSecret
		}, ""},
		{"insecure allowed", func(c *Config) {
			c.JWTSecret = insecureJWTSecret
			c.AllowInsecureDefaults = true
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	c := &Config{PGUser: "u", PGPassword: "p", PGHost: "db", PGPort: 5432, PGDatabase: "proneo"}
	assert.Equal(t, "postgres://u:p@db:5432/proneo?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", c.DSN())
}
