package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	API struct {
		BaseURL         string `yaml:"base_url"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"api"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		StoragePath   string `yaml:"storage_path"`
		IntervalHours int    `yaml:"interval_hours"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Bot struct {
		RoomsPerPage      int     `yaml:"rooms_per_page"`
		SendRatePerSecond float64 `yaml:"send_rate_per_second"`
		SendBurst         int     `yaml:"send_burst"`
		MaxAdvanceDays    int     `yaml:"max_advance_days"`
	} `yaml:"bot"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/concierge.db"
	}
	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	if c.API.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.API.CacheTTLSeconds) * time.Second
}

func (c *Config) RoomsPerPage() int {
	if c.Bot.RoomsPerPage <= 0 {
		return 6
	}
	return c.Bot.RoomsPerPage
}

func (c *Config) SendRate() (float64, int) {
	rate := c.Bot.SendRatePerSecond
	if rate <= 0 {
		rate = 20.0
	}
	burst := c.Bot.SendBurst
	if burst <= 0 {
		burst = 30
	}
	return rate, burst
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) BackupRetention() time.Duration {
	if c.Backup.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.Backup.RetentionDays) * 24 * time.Hour
}

func (c *Config) MaxAdvance() time.Duration {
	if c.Bot.MaxAdvanceDays <= 0 {
		return 365 * 24 * time.Hour
	}
	return time.Duration(c.Bot.MaxAdvanceDays) * 24 * time.Hour
}
