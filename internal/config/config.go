package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Feed     FeedConfig     `yaml:"feed"`
	Storage  StorageConfig  `yaml:"storage"`
	Reminder ReminderConfig `yaml:"reminder"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type FeedConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

type StorageConfig struct {
	Backend string       `yaml:"backend"` // "redis" or "file"
	Redis   RedisConfig  `yaml:"redis"`
	File    FileKVConfig `yaml:"file"`
}

type RedisConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix"`
}

type FileKVConfig struct {
	Dir string `yaml:"dir"`
}

type ReminderConfig struct {
	Schedule   string `yaml:"schedule"` // cron expression
	RunOnStart bool   `yaml:"run_on_start"`
	Workers    int    `yaml:"workers"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	// .env overlays process env for secrets (e.g. REDIS_PASSWORD); absence is fine.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	config.applyEnvOverrides()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = 60 * time.Second
	}
	if c.Feed.RetryAttempts == 0 {
		c.Feed.RetryAttempts = 3
	}
	if c.Feed.RetryDelay == 0 {
		c.Feed.RetryDelay = 3 * time.Second
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.File.Dir == "" {
		c.Storage.File.Dir = "data"
	}
	if c.Reminder.Schedule == "" {
		c.Reminder.Schedule = "0 9 * * *"
	}
	if c.Reminder.Workers == 0 {
		c.Reminder.Workers = 1
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := os.Getenv("FEED_BASE_URL"); v != "" {
		c.Feed.BaseURL = v
	}
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Storage.Redis.Host, c.Storage.Redis.Port)
}
