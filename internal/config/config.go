package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Username string  `yaml:"username"`
	Workers  int     `yaml:"workers"` // polling workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	StateTTL time.Duration `yaml:"state_ttl"` // abandoned dialogs evaporate after this
}

type AdminConfig struct {
	Port      int    `yaml:"port"`
	APIKey    string `yaml:"api_key"`
	JWTSecret string `yaml:"jwt_secret"`
}

type SweeperConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// EnrollmentConfig carries the informational copy the dialog interpolates.
type EnrollmentConfig struct {
	BankDetails   string `yaml:"bank_details"`
	TwoWeekLabel  string `yaml:"two_week_label"`
	OneMonthLabel string `yaml:"one_month_label"`
}

type Config struct {
	Bot        BotConfig        `yaml:"bot"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Admin      AdminConfig      `yaml:"admin"`
	Sweeper    SweeperConfig    `yaml:"sweeper"`
	Enrollment EnrollmentConfig `yaml:"enrollment"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.StateTTL <= 0 {
		cfg.Redis.StateTTL = 30 * time.Minute
	}
	if cfg.Sweeper.Interval <= 0 {
		cfg.Sweeper.Interval = 24 * time.Hour
	}
	if cfg.Enrollment.TwoWeekLabel == "" {
		cfg.Enrollment.TwoWeekLabel = "2 Week - 300 LKR"
	}
	if cfg.Enrollment.OneMonthLabel == "" {
		cfg.Enrollment.OneMonthLabel = "1 Month - 700 LKR"
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if len(cfg.Bot.AdminIDs) == 0 {
		return nil, errors.New("bot.admin_ids is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// AdminID returns the primary administrator identity. The allowlist is size
// one today; the first entry receives enrollment summaries and sweep notices.
func (c *Config) AdminID() int64 {
	if len(c.Bot.AdminIDs) == 0 {
		return 0
	}
	return c.Bot.AdminIDs[0]
}

// IsAdmin reports whether the sender is on the admin allowlist.
func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.Bot.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
