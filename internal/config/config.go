package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Register RegisterConfig `yaml:"register" mapstructure:"register"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Session  SessionConfig  `yaml:"session" mapstructure:"session"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Sync     SyncConfig     `yaml:"sync" mapstructure:"sync"`
	Report   ReportConfig   `yaml:"report" mapstructure:"report"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// RegisterConfig holds commercial-register backend API settings.
type RegisterConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`     // requests per second, 0 = unlimited
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"` // per-request HTTP timeout
}

// StoreConfig configures the local database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file path
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int    `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the portal HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// SessionConfig configures classification sessions.
type SessionConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// CacheConfig configures local payload caching.
type CacheConfig struct {
	ScenarioTTLHours int `yaml:"scenario_ttl_hours" mapstructure:"scenario_ttl_hours"`
	ProfileTTLHours  int `yaml:"profile_ttl_hours" mapstructure:"profile_ttl_hours"`
}

// SyncConfig configures the open-data dump sync.
type SyncConfig struct {
	FTPURL    string `yaml:"ftp_url" mapstructure:"ftp_url"`
	Encoding  string `yaml:"encoding" mapstructure:"encoding"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// ReportConfig configures XLSX report export.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SessionTTL returns the configured session TTL as a duration.
func (c SessionConfig) SessionTTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ScenarioTTL returns the scenario cache TTL as a duration.
func (c CacheConfig) ScenarioTTL() time.Duration {
	return time.Duration(c.ScenarioTTLHours) * time.Hour
}

// ProfileTTL returns the profile cache TTL as a duration.
func (c CacheConfig) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLHours) * time.Hour
}

// Validate checks the settings a command mode depends on. Modes map to the
// CLI commands that need more than the defaults: "serve" needs a usable
// port, "sync" needs the dump source, "report" needs an output directory.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Register.BaseURL == "" {
		problems = append(problems, "register.base_url is required")
	}
	if c.Register.RateLimit < 0 {
		problems = append(problems, "register.rate_limit must be >= 0")
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Session.TTLMinutes <= 0 {
			problems = append(problems, "session.ttl_minutes must be > 0")
		}
	case "sync":
		if c.Sync.FTPURL == "" {
			problems = append(problems, "sync.ftp_url is required")
		}
		if c.Sync.BatchSize <= 0 {
			problems = append(problems, "sync.batch_size must be > 0")
		}
	case "report":
		if c.Report.OutputDir == "" {
			problems = append(problems, "report.output_dir is required")
		}
	case "cli":
		// register + store checks above are enough
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REGISTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("register.base_url", "https://api.registrs.example.lv")
	v.SetDefault("register.rate_limit", 5.0)
	v.SetDefault("register.timeout_secs", 30)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "registry.db")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("session.ttl_minutes", 60)
	v.SetDefault("cache.scenario_ttl_hours", 24)
	v.SetDefault("cache.profile_ttl_hours", 24)
	v.SetDefault("sync.encoding", "windows-1257")
	v.SetDefault("sync.batch_size", 500)
	v.SetDefault("report.output_dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
