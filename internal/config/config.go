package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Session  SessionConfig  `yaml:"session" mapstructure:"session"`
}

// DataConfig configures the synthetic data source.
type DataConfig struct {
	Seed         uint64   `yaml:"seed" mapstructure:"seed"`
	Days         int      `yaml:"days" mapstructure:"days"`
	MaxDays      int      `yaml:"max_days" mapstructure:"max_days"`
	Equipment    int      `yaml:"equipment" mapstructure:"equipment"`
	Contracts    int      `yaml:"contracts" mapstructure:"contracts"`
	Subsidiaries []string `yaml:"subsidiaries" mapstructure:"subsidiaries"`
	Delimiter    string   `yaml:"delimiter" mapstructure:"delimiter"`
	Charset      string   `yaml:"charset" mapstructure:"charset"`
}

// PipelineConfig tunes scoring and recommendations.
type PipelineConfig struct {
	TopN         int     `yaml:"top_n" mapstructure:"top_n"`
	TargetFactor float64 `yaml:"target_factor" mapstructure:"target_factor"`
}

// ExportConfig configures briefing and pack output.
type ExportConfig struct {
	Locale    string `yaml:"locale" mapstructure:"locale"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// ServerConfig configures the HTTP data API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// SessionConfig configures per-session state.
type SessionConfig struct {
	DSN         string `yaml:"dsn" mapstructure:"dsn"`
	MaxSessions int    `yaml:"max_sessions" mapstructure:"max_sessions"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// envFiles are tried in order; the first that exists is loaded.
var envFiles = []string{".env", ".env.local"}

// Load reads configuration from .env, file and environment.
func Load() (*Config, error) {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, eris.Wrapf(err, "config: load %s", path)
			}
			break
		}
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COCKPIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("data.seed", 42)
	v.SetDefault("data.days", 90)
	v.SetDefault("data.max_days", 366)
	v.SetDefault("data.equipment", 12)
	v.SetDefault("data.contracts", 6)
	v.SetDefault("data.subsidiaries", []string{"Bécar inc."})
	v.SetDefault("data.delimiter", ",")
	v.SetDefault("data.charset", "utf-8")
	v.SetDefault("pipeline.top_n", 8)
	v.SetDefault("pipeline.target_factor", 0.95)
	v.SetDefault("export.locale", "fr-CA")
	v.SetDefault("export.output_dir", ".")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("session.dsn", ":memory:")
	v.SetDefault("session.max_sessions", 64)

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

// Validate checks the settings a command mode depends on. Mode is "cli" or
// "serve"; serve additionally checks the server section.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "cli":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Session.MaxSessions < 1 {
			errs = append(errs, "session.max_sessions must be >= 1")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Data.Days < 1 {
		errs = append(errs, "data.days must be >= 1")
	}
	if c.Data.Days > c.Data.MaxDays {
		errs = append(errs, "data.days must be <= data.max_days")
	}
	if c.Data.Equipment < 1 || c.Data.Contracts < 1 {
		errs = append(errs, "data.equipment and data.contracts must be >= 1")
	}
	if len(c.Data.Subsidiaries) == 0 {
		errs = append(errs, "data.subsidiaries must not be empty")
	}
	if len([]rune(c.Data.Delimiter)) != 1 {
		errs = append(errs, "data.delimiter must be a single character")
	}
	if c.Pipeline.TargetFactor <= 0 {
		errs = append(errs, "pipeline.target_factor must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
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
