package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Cache     CacheConfig      `mapstructure:"cache"`
	Scheduler SchedulerConfig  `mapstructure:"scheduler"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "console" or "json"
	Path       string `mapstructure:"path"`   // directory for log files, "" disables file output
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// CacheConfig holds cache and dedup engine configuration. TTLs are
// per-operation: video resolution results live only as long as the
// upstream CDN token does.
type CacheConfig struct {
	MaxEntries         int           `mapstructure:"max_entries"`
	SearchTTL          time.Duration `mapstructure:"search_ttl"`
	CategoriesTTL      time.Duration `mapstructure:"categories_ttl"`
	CategoryDramasTTL  time.Duration `mapstructure:"category_dramas_ttl"`
	RecommendationsTTL time.Duration `mapstructure:"recommendations_ttl"`
	EpisodesTTL        time.Duration `mapstructure:"episodes_ttl"`
	VideoTTL           time.Duration `mapstructure:"video_ttl"`
	NegativeTTL        time.Duration `mapstructure:"negative_ttl"`
}

// SchedulerConfig holds background job configuration.
type SchedulerConfig struct {
	SweepCron   string `mapstructure:"sweep_cron"`
	PrewarmCron string `mapstructure:"prewarm_cron"`
}

// ProviderConfig is the static configuration record for one upstream
// adapter, supplied at registry-construction time.
type ProviderConfig struct {
	ID         string   `mapstructure:"id"`
	BaseURL    string   `mapstructure:"base_url"`
	Timeout    int      `mapstructure:"timeout"` // seconds
	QPSBudget  float64  `mapstructure:"qps_budget"`
	Burst      int      `mapstructure:"burst"`
	MaxWaiters int      `mapstructure:"max_waiters"`
	Qualities  []string `mapstructure:"qualities"`
	Enabled    bool     `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.duanju")
	}

	v.SetEnvPrefix("DUANJU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("cache.max_entries", 500)
	v.SetDefault("cache.search_ttl", 5*time.Minute)
	v.SetDefault("cache.categories_ttl", 30*time.Minute)
	v.SetDefault("cache.category_dramas_ttl", 5*time.Minute)
	v.SetDefault("cache.recommendations_ttl", 10*time.Minute)
	v.SetDefault("cache.episodes_ttl", 10*time.Minute)
	v.SetDefault("cache.video_ttl", 60*time.Second)
	v.SetDefault("cache.negative_ttl", 3*time.Second)

	v.SetDefault("scheduler.sweep_cron", "* * * * *")
	v.SetDefault("scheduler.prewarm_cron", "*/10 * * * *")
}

// DefaultProviders returns the built-in upstream records used when the
// config file declares none.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			ID:         "cenguigui",
			BaseURL:    "https://api.cenguigui.cn/api/duanju/api.php",
			Timeout:    10,
			QPSBudget:  0.5, // upstream tolerates ~5 requests per 10s
			Burst:      5,
			MaxWaiters: 32,
			Qualities:  []string{"1080p", "720p", "360p"},
			Enabled:    true,
		},
		{
			ID:         "kuoapp",
			BaseURL:    "https://kuoapp.com",
			Timeout:    15,
			QPSBudget:  0.5,
			Burst:      5,
			MaxWaiters: 32,
			Enabled:    true,
		},
		{
			ID:         "uuuka",
			BaseURL:    "https://api.uuuka.com",
			Timeout:    10,
			QPSBudget:  0.5,
			Burst:      5,
			MaxWaiters: 32,
			Enabled:    true,
		},
	}
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
