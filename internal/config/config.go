package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Persistence PersistenceConfig `mapstructure:"persistence" yaml:"persistence"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Worker      WorkerConfig      `mapstructure:"worker" yaml:"worker"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            string        `mapstructure:"port" yaml:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// запросов в минуту с одного адреса, 0 - без ограничения
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit"`
}

type StorageConfig struct {
	Type     string         `mapstructure:"type" yaml:"type"` // memory, sqlite, postgres или mongo
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Mongo    MongoConfig    `mapstructure:"mongo" yaml:"mongo"`
	Breaker  BreakerConfig  `mapstructure:"breaker" yaml:"breaker"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type PostgresConfig struct {
	URL            string        `mapstructure:"url" yaml:"url"`
	MaxConnections int32         `mapstructure:"max_connections" yaml:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections" yaml:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri" yaml:"uri"`
	Database   string `mapstructure:"database" yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// предохранитель включается только для удалённых хранилищ
type BreakerConfig struct {
	Enabled             bool          `mapstructure:"enabled" yaml:"enabled"`
	Timeout             time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures" yaml:"consecutive_failures"`
}

type PersistenceConfig struct {
	TasksKey   string        `mapstructure:"tasks_key" yaml:"tasks_key"`
	FoldersKey string        `mapstructure:"folders_key" yaml:"folders_key"`
	Debounce   time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type LoggingConfig struct {
	Development bool   `mapstructure:"development" yaml:"development"`
	Level       string `mapstructure:"level" yaml:"level"`
	File        string `mapstructure:"file" yaml:"file"`
}

type WorkerConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

const EnvPrefix = "TODO"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 100)

	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.sqlite.path", "~/.todo/todo.db")
	v.SetDefault("storage.postgres.url", "")
	v.SetDefault("storage.postgres.max_connections", 10)
	v.SetDefault("storage.postgres.min_connections", 2)
	v.SetDefault("storage.postgres.idle_timeout", 5*time.Minute)
	v.SetDefault("storage.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo.database", "todo")
	v.SetDefault("storage.mongo.collection", "kv_items")
	v.SetDefault("storage.breaker.enabled", true)
	v.SetDefault("storage.breaker.timeout", 5*time.Second)
	v.SetDefault("storage.breaker.consecutive_failures", 3)

	v.SetDefault("persistence.tasks_key", "todoApp.tasks")
	v.SetDefault("persistence.folders_key", "todoApp.folders")
	v.SetDefault("persistence.debounce", 500*time.Millisecond)

	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.interval", time.Minute)
}

// Load читает config.yml (если есть), затем переменные окружения TODO_*
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
			}
		} else {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфига: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "memory", "sqlite", "postgres", "mongo":
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.Storage.Type)
	}
	if c.Storage.Type == "postgres" && c.Storage.Postgres.URL == "" {
		return errors.New("для postgres нужен storage.postgres.url")
	}
	if c.Persistence.TasksKey == "" || c.Persistence.FoldersKey == "" {
		return errors.New("ключи хранилища не должны быть пустыми")
	}
	if c.Persistence.TasksKey == c.Persistence.FoldersKey {
		return errors.New("задачи и папки должны храниться под разными ключами")
	}
	if c.Server.RateLimit < 0 {
		return errors.New("server.rate_limit не может быть отрицательным")
	}
	if c.Persistence.Debounce < 0 {
		return errors.New("persistence.debounce не может быть отрицательным")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// Dump - действующий конфиг в YAML
func (c *Config) Dump() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("сериализация конфига: %w", err)
	}
	return string(out), nil
}
