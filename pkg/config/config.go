package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Required fields
	SecretKey string `mapstructure:"secret_key"`

	// Document store settings
	Store       string `mapstructure:"store"` // "mongo" or "sqlite"
	MongoURI    string `mapstructure:"mongo_uri"`
	MongoDBName string `mapstructure:"mongo_dbname"`
	SQLitePath  string `mapstructure:"sqlite_path"`

	// HTTP settings
	IP   string `mapstructure:"ip"`
	Port int    `mapstructure:"port"`

	// Session settings
	SessionStore string        `mapstructure:"session_store"` // "cookie" or "redis"
	RedisURL     string        `mapstructure:"redis_url"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CookieSecure bool          `mapstructure:"cookie_secure"`

	// Optional logging settings
	LogLevel string `mapstructure:"log_level"`
	DevMode  bool   `mapstructure:"dev_mode"`

	ConfigPath string
}

const (
	DefaultConfigPath   = "/etc/moviereview/config.yml"
	DefaultStore        = "mongo"
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultMongoDBName  = "moviereview"
	DefaultSQLitePath   = "moviereview.sqlite3"
	DefaultIP           = "0.0.0.0"
	DefaultPort         = 5000
	DefaultSessionStore = "cookie"
	DefaultRedisURL     = "redis://localhost:6379/0"
	DefaultSessionTTL   = 24 * time.Hour
	DefaultLogLevel     = "info"

	EnvPrefix = "MOVIEREVIEW"
)

// legacyEnv maps config keys to the bare environment variable names the
// application has always been deployed with.
var legacyEnv = map[string]string{
	"mongo_uri":    "MONGO_URI",
	"mongo_dbname": "MONGO_DBNAME",
	"secret_key":   "SECRET_KEY",
	"ip":           "IP",
	"port":         "PORT",
}

var keys = []string{
	"secret_key", "store", "mongo_uri", "mongo_dbname", "sqlite_path",
	"ip", "port", "session_store", "redis_url", "session_ttl",
	"cookie_secure", "log_level", "dev_mode",
}

// Load reads configuration from an optional YAML file, a .env file in the
// working directory and the environment. Environment values win.
func Load(configPath string) (*Config, error) {
	// .env is optional, a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("store", DefaultStore)
	v.SetDefault("mongo_uri", DefaultMongoURI)
	v.SetDefault("mongo_dbname", DefaultMongoDBName)
	v.SetDefault("sqlite_path", DefaultSQLitePath)
	v.SetDefault("ip", DefaultIP)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("session_store", DefaultSessionStore)
	v.SetDefault("redis_url", DefaultRedisURL)
	v.SetDefault("session_ttl", DefaultSessionTTL)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("dev_mode", false)

	for _, key := range keys {
		envNames := []string{EnvPrefix + "_" + strings.ToUpper(key)}
		if legacy, ok := legacyEnv[key]; ok {
			envNames = append(envNames, legacy)
		}
		if err := v.BindEnv(append([]string{key}, envNames...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		// The file is only mandatory when asked for explicitly
		if explicit || !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigPath = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("secret_key is required")
	}

	switch c.Store {
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("mongo_uri is required when store is 'mongo'")
		}
		if c.MongoDBName == "" {
			return fmt.Errorf("mongo_dbname is required when store is 'mongo'")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required when store is 'sqlite'")
		}
	default:
		return fmt.Errorf("store must be 'mongo' or 'sqlite'")
	}

	switch c.SessionStore {
	case "cookie":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("redis_url is required when session_store is 'redis'")
		}
	default:
		return fmt.Errorf("session_store must be 'cookie' or 'redis'")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}

	return nil
}

// Addr returns the host:port the HTTP server binds to
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.IP, c.Port)
}

func (c *Config) IsDevMode() bool {
	return c.DevMode
}
