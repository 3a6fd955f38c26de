package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	strs "intentions/pkg/platform/strings"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full process configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Logging Logging `yaml:"logging"`
	MCP     MCP     `yaml:"mcp"`
	Notify  Notify  `yaml:"notify"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Storage selects the repository backend. DSN is ignored for the memory driver.
type Storage struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MCP configures the tool-invocation surface. An empty APIKey disables
// bearer authentication.
type MCP struct {
	Enabled        bool     `yaml:"enabled"`
	APIKey         string   `yaml:"api_key"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ServerName     string   `yaml:"server_name"`
	ServerVersion  string   `yaml:"server_version"`
}

// Notify configures notification sinks. Each sink is off when its address is empty.
type Notify struct {
	LogEvents     bool        `yaml:"log_events"`
	Redis         RedisConfig `yaml:"redis"`
	KafkaBrokers  []string    `yaml:"kafka_brokers"`
	KafkaTopic    string      `yaml:"kafka_topic"`
	ChannelPrefix string      `yaml:"channel_prefix"`
}

// RedisConfig configures the Redis client used by the pub/sub sink.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: Storage{Driver: DriverMemory},
		Logging: Logging{Level: "info", Format: "json"},
		MCP: MCP{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			ServerName:     "intents-mcp-server",
			ServerVersion:  "1.0.0",
		},
		Notify: Notify{
			LogEvents:     true,
			KafkaTopic:    "intentions.events",
			ChannelPrefix: "intentions",
			Redis: RedisConfig{
				PoolSize:     10,
				DialTimeout:  5 * time.Second,
				WriteTimeout: 3 * time.Second,
			},
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strs.SplitList(v)
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str("INTENTIONS_ADDR", &cfg.Server.Addr)
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("DATABASE_URL", &cfg.Storage.DSN)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	str("MCP_API_KEY", &cfg.MCP.APIKey)
	list("MCP_ALLOWED_ORIGINS", &cfg.MCP.AllowedOrigins)
	flag("MCP_ENABLED", &cfg.MCP.Enabled)
	str("REDIS_URL", &cfg.Notify.Redis.URL)
	list("KAFKA_BROKERS", &cfg.Notify.KafkaBrokers)
	str("KAFKA_TOPIC", &cfg.Notify.KafkaTopic)
	flag("LOG_EVENTS", &cfg.Notify.LogEvents)
}

// Validate rejects configurations the process cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Logging.Format))
	}
	if len(c.Notify.KafkaBrokers) > 0 && c.Notify.KafkaTopic == "" {
		errs = append(errs, errors.New("notify.kafka_topic is required when kafka_brokers is set"))
	}
	return errors.Join(errs...)
}

// AllowsAnyOrigin reports whether the origin check is disabled.
func (m MCP) AllowsAnyOrigin() bool {
	for _, o := range m.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return len(m.AllowedOrigins) == 0
}
