package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	FPL      FPLConfig      `yaml:"fpl" mapstructure:"fpl"`
	Tracker  TrackerConfig  `yaml:"tracker" mapstructure:"tracker"`
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FPLConfig configures the upstream FPL API client.
type FPLConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst   int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// TrackerConfig holds the engine calibration parameters. The numeric values
// are calibration constants, not derived quantities.
type TrackerConfig struct {
	SnapshotRetention int    `yaml:"snapshot_retention" mapstructure:"snapshot_retention"`
	RolloverPolicy    string `yaml:"rollover_policy" mapstructure:"rollover_policy"`
	BlankFixtureFloor int    `yaml:"blank_fixture_floor" mapstructure:"blank_fixture_floor"`
	HistoryLimit      int    `yaml:"history_limit" mapstructure:"history_limit"`

	NoiseFloor         int     `yaml:"noise_floor" mapstructure:"noise_floor"`
	RiseTiers          []int   `yaml:"rise_tiers" mapstructure:"rise_tiers"`
	FallBase           int     `yaml:"fall_base" mapstructure:"fall_base"`
	FallOwnershipPivot float64 `yaml:"fall_ownership_pivot" mapstructure:"fall_ownership_pivot"`
	DiscountNormal     float64 `yaml:"discount_normal" mapstructure:"discount_normal"`
	DiscountDouble     float64 `yaml:"discount_double" mapstructure:"discount_double"`
}

// ScheduleConfig configures the daemon's job cadences. Times of day are
// local-clock "HH:MM" strings.
type ScheduleConfig struct {
	TrackIntervalMins int    `yaml:"track_interval_mins" mapstructure:"track_interval_mins"`
	SyncIntervalHours int    `yaml:"sync_interval_hours" mapstructure:"sync_interval_hours"`
	CaptureTime       string `yaml:"capture_time" mapstructure:"capture_time"`
	VerifyTime        string `yaml:"verify_time" mapstructure:"verify_time"`
	PruneTime         string `yaml:"prune_time" mapstructure:"prune_time"`
}

// ServerConfig configures the read API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRANSFERWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

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

// SetDefaults registers every tunable's default on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "transferwatch.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	v.SetDefault("fpl.base_url", "https://fantasy.premierleague.com/api")
	v.SetDefault("fpl.user_agent", "transferwatch/1.0")
	v.SetDefault("fpl.timeout_secs", 30)
	v.SetDefault("fpl.max_retries", 3)
	v.SetDefault("fpl.rate_per_sec", 2)
	v.SetDefault("fpl.rate_burst", 4)

	v.SetDefault("tracker.snapshot_retention", 48)
	v.SetDefault("tracker.rollover_policy", "carry")
	v.SetDefault("tracker.blank_fixture_floor", 5)
	v.SetDefault("tracker.history_limit", 30)
	v.SetDefault("tracker.noise_floor", 1000)
	v.SetDefault("tracker.rise_tiers", []int{45000, 90000, 135000})
	v.SetDefault("tracker.fall_base", -35000)
	v.SetDefault("tracker.fall_ownership_pivot", 15.0)
	v.SetDefault("tracker.discount_normal", 0.85)
	v.SetDefault("tracker.discount_double", 0.70)

	v.SetDefault("schedule.track_interval_mins", 30)
	v.SetDefault("schedule.sync_interval_hours", 168)
	v.SetDefault("schedule.capture_time", "01:30")
	v.SetDefault("schedule.verify_time", "02:45")
	v.SetDefault("schedule.prune_time", "03:10")
}

// Validate checks the configuration for a given command mode. Common checks
// always run; mode adds the checks that only matter for that command.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required")
	}

	switch c.Tracker.RolloverPolicy {
	case "carry", "ignore":
	default:
		problems = append(problems, fmt.Sprintf("tracker.rollover_policy must be carry or ignore, got %q", c.Tracker.RolloverPolicy))
	}
	if c.Tracker.SnapshotRetention < 1 {
		problems = append(problems, "tracker.snapshot_retention must be >= 1")
	}
	if c.Tracker.HistoryLimit < 1 {
		problems = append(problems, "tracker.history_limit must be >= 1")
	}
	if c.Tracker.NoiseFloor < 0 {
		problems = append(problems, "tracker.noise_floor must be >= 0")
	}
	if len(c.Tracker.RiseTiers) == 0 {
		problems = append(problems, "tracker.rise_tiers must not be empty")
	}
	for _, tier := range c.Tracker.RiseTiers {
		if tier <= 0 {
			problems = append(problems, "tracker.rise_tiers values must be > 0")
			break
		}
	}
	if c.Tracker.FallBase >= 0 {
		problems = append(problems, "tracker.fall_base must be < 0")
	}
	if c.Tracker.FallOwnershipPivot <= 0 {
		problems = append(problems, "tracker.fall_ownership_pivot must be > 0")
	}
	if c.Tracker.DiscountNormal <= 0 || c.Tracker.DiscountNormal > 1 {
		problems = append(problems, "tracker.discount_normal must be in (0, 1]")
	}
	if c.Tracker.DiscountDouble <= 0 || c.Tracker.DiscountDouble > 1 {
		problems = append(problems, "tracker.discount_double must be in (0, 1]")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "daemon":
		if c.Schedule.TrackIntervalMins < 1 {
			problems = append(problems, "schedule.track_interval_mins must be >= 1")
		}
		if c.Schedule.SyncIntervalHours < 1 {
			problems = append(problems, "schedule.sync_interval_hours must be >= 1")
		}
		for name, at := range map[string]string{
			"schedule.capture_time": c.Schedule.CaptureTime,
			"schedule.verify_time":  c.Schedule.VerifyTime,
			"schedule.prune_time":   c.Schedule.PruneTime,
		} {
			if _, err := time.Parse("15:04", at); err != nil {
				problems = append(problems, fmt.Sprintf("%s must be HH:MM, got %q", name, at))
			}
		}
	}

	if len(problems) > 0 {
		return eris.New("invalid config: " + strings.Join(problems, "; "))
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
