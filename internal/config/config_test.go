package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults with secret from env", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "from-env")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
		assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
		assert.Equal(t, 60.0, cfg.Policy.LocalRadiusKm)
		assert.Equal(t, int64(200000), cfg.Policy.SameProvince)
		assert.Equal(t, int64(250000), cfg.Policy.SameIsland)
		assert.Equal(t, int64(50), cfg.Policy.International)
		assert.Equal(t, int64(300000), cfg.Policy.InterIsland)
		assert.False(t, cfg.Trip.SnapshotCostOnApprove)
		assert.False(t, cfg.Lark.Enabled)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: 8081
auth:
  jwt_secret: file-secret
  token_ttl: 2h
policy:
  international: 1500000
trip:
  snapshot_cost_on_approve: true
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 8081, cfg.Server.Port)
		assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
		assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
		assert.Equal(t, int64(1500000), cfg.Policy.International)
		assert.Equal(t, int64(200000), cfg.Policy.SameProvince)
		assert.True(t, cfg.Trip.SnapshotCostOnApprove)
	})

	t.Run("prefixed env overrides file", func(t *testing.T) {
		t.Setenv("PERDIN_SERVER_PORT", "9090")
		path := writeConfig(t, "auth:\n  jwt_secret: file-secret\nserver:\n  port: 8081\n")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  port: 8081\n"))
		assert.ErrorContains(t, err, "auth.jwt_secret is required")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 3000},
			Database: DatabaseConfig{Path: "perdin.db"},
			Auth:     AuthConfig{JWTSecret: "s", TokenTTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"no database", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "auth.token_ttl"},
		{"negative radius", func(c *Config) { c.Policy.LocalRadiusKm = -1 }, "local_radius_km"},
		{"negative rate", func(c *Config) { c.Policy.InterIsland = -5 }, "policy rates"},
		{"lark without chat", func(c *Config) {
			c.Lark = LarkConfig{Enabled: true, AppID: "cli_x", AppSecret: "s"}
		}, "lark.chat_id"},
		{"lark without credentials", func(c *Config) {
			c.Lark = LarkConfig{Enabled: true, ChatID: "oc_x"}
		}, "lark.app_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	assert.Equal(t, "127.0.0.1:3000", ServerConfig{Host: "127.0.0.1", Port: 3000}.Address())
}
