package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.True(t, cfg.MCP.AllowsAnyOrigin())
	assert.Equal(t, "intents-mcp-server", cfg.MCP.ServerName)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  shutdown_timeout: 3s
storage:
  driver: sqlite
  dsn: /tmp/intentions.db
logging:
  level: debug
  format: text
notify:
  kafka_brokers: ["localhost:9092"]
`), 0o600))

	t.Setenv("MCP_API_KEY", "s3cret")
	t.Setenv("MCP_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("INTENTIONS_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "s3cret", cfg.MCP.APIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.MCP.AllowedOrigins)
	assert.False(t, cfg.MCP.AllowsAnyOrigin())
	assert.Equal(t, "intentions.events", cfg.Notify.KafkaTopic)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "unknown storage driver"},
		{"sql driver without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "storage.dsn is required"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "unknown log format"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
