package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Geo    GeoConfig    `yaml:"geo" mapstructure:"geo"`
	Images ImagesConfig `yaml:"images" mapstructure:"images"`
	Import ImportConfig `yaml:"import" mapstructure:"import"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	APIPrefix           string   `yaml:"api_prefix" mapstructure:"api_prefix"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimitRPM        int      `yaml:"rate_limit_rpm" mapstructure:"rate_limit_rpm"`
	ReloadPerMinute     int      `yaml:"reload_per_minute" mapstructure:"reload_per_minute"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// DataConfig locates the two survey datasets. A source is a local file
// (.csv, .xlsx), an http(s) or ftp URL, sqlite://path#table or
// postgres://...#table.
type DataConfig struct {
	BoardSource     string `yaml:"board_source" mapstructure:"board_source"`
	PosmSource      string `yaml:"posm_source" mapstructure:"posm_source"`
	StrictColumns   bool   `yaml:"strict_columns" mapstructure:"strict_columns"`
	HTTPTimeoutSecs int    `yaml:"http_timeout_secs" mapstructure:"http_timeout_secs"`
	TempDir         string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// GeoConfig locates the district boundary shapefile.
type GeoConfig struct {
	DistrictShapefile string `yaml:"district_shapefile" mapstructure:"district_shapefile"`
	DistrictField     string `yaml:"district_field" mapstructure:"district_field"`
}

// ImagesConfig configures image URL resolution.
type ImagesConfig struct {
	Region         string `yaml:"region" mapstructure:"region"`
	PlaceholderURL string `yaml:"placeholder_url" mapstructure:"placeholder_url"`
	PublicBaseURL  string `yaml:"public_base_url" mapstructure:"public_base_url"`
}

// ImportConfig configures publishing datasets into Postgres.
type ImportConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	BoardTable  string `yaml:"board_table" mapstructure:"board_table"`
	PosmTable   string `yaml:"posm_table" mapstructure:"posm_table"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from an optional .env file, config file and
// environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRESENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key gets one so that env-only settings unmarshal.
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.api_prefix", "/api")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("server.rate_limit_rpm", 600)
	v.SetDefault("server.reload_per_minute", 2)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("data.board_source", "data/board.csv")
	v.SetDefault("data.posm_source", "data/posm.csv")
	v.SetDefault("data.strict_columns", false)
	v.SetDefault("data.http_timeout_secs", 60)
	v.SetDefault("data.temp_dir", "")
	v.SetDefault("geo.district_shapefile", "")
	v.SetDefault("geo.district_field", "ADM2_EN")
	v.SetDefault("images.region", "")
	v.SetDefault("images.placeholder_url", "https://picsum.photos/seed/%s/400/300")
	v.SetDefault("images.public_base_url", "")
	v.SetDefault("import.database_url", "")
	v.SetDefault("import.board_table", "survey.board")
	v.SetDefault("import.posm_table", "survey.posm")
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

// Validate checks the settings a command mode needs. Modes: serve, check,
// export, import.
func (c *Config) Validate(mode string) error {
	var errs []string
	requireSources := func() {
		if strings.TrimSpace(c.Data.BoardSource) == "" {
			errs = append(errs, "data.board_source is required")
		}
		if strings.TrimSpace(c.Data.PosmSource) == "" {
			errs = append(errs, "data.posm_source is required")
		}
	}

	switch mode {
	case "serve":
		requireSources()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
			errs = append(errs, "server.api_prefix must start with /")
		}
		if c.Server.RateLimitRPM < 0 {
			errs = append(errs, "server.rate_limit_rpm must be >= 0")
		}
		if c.Server.ReloadPerMinute < 1 {
			errs = append(errs, "server.reload_per_minute must be >= 1")
		}
	case "check", "export":
		requireSources()
	case "import":
		requireSources()
		if c.Import.DatabaseURL == "" {
			errs = append(errs, "import.database_url is required")
		}
		if c.Import.BoardTable == "" || c.Import.PosmTable == "" {
			errs = append(errs, "import.board_table and import.posm_table are required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Data.HTTPTimeoutSecs < 0 {
		errs = append(errs, "data.http_timeout_secs must be >= 0")
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
