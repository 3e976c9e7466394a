package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds settings resolved from defaults, an optional informator.yaml
// and environment variables, in increasing priority.
type Config struct {
	Environment    string        `mapstructure:"app_env"`
	ServerAddress  string        `mapstructure:"server_address"`
	KVBackend      string        `mapstructure:"kv_backend"`
	SQLitePath     string        `mapstructure:"sqlite_path"`
	DatabaseURL    string        `mapstructure:"database_url"`
	MigrationsPath string        `mapstructure:"migrations_path"`
	RedisAddress   string        `mapstructure:"redis_address"`
	RedisUsername  string        `mapstructure:"redis_username"`
	RedisPassword  string        `mapstructure:"redis_password"`
	MQTTBrokerURL  string        `mapstructure:"mqtt_broker_url"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	LogLevel       string        `mapstructure:"log_level"`
	UploadDir      string        `mapstructure:"upload_dir"`

	UseSpaces       bool   `mapstructure:"use_spaces"`
	SpacesEndpoint  string `mapstructure:"spaces_endpoint"`
	SpacesRegion    string `mapstructure:"spaces_region"`
	SpacesBucket    string `mapstructure:"spaces_bucket"`
	SpacesCDNURL    string `mapstructure:"spaces_cdn_url"`
	SpacesAccessKey string `mapstructure:"spaces_access_key"`
	SpacesSecretKey string `mapstructure:"spaces_secret_key"`
}

var defaults = map[string]any{
	"app_env":           "development",
	"server_address":    ":8080",
	"kv_backend":        BackendSQLite,
	"sqlite_path":       "./informator.db",
	"database_url":      "",
	"migrations_path":   "./migrations",
	"redis_address":     "localhost:6379",
	"redis_username":    "",
	"redis_password":    "",
	"mqtt_broker_url":   "",
	"poll_interval":     "1s",
	"log_level":         "info",
	"upload_dir":        "./uploads",
	"use_spaces":        false,
	"spaces_endpoint":   "",
	"spaces_region":     "",
	"spaces_bucket":     "",
	"spaces_cdn_url":    "",
	"spaces_access_key": "",
	"spaces_secret_key": "",
}

// LoadDotEnv exports the variables in files (.env when none are given) into
// the process environment. Variables already set win. A missing file is not
// an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read env file: %w", err)
	}
	return nil
}

// Load resolves the configuration. configFile may be empty, in which case
// informator.yaml is looked up in the working directory; a missing file is
// not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("informator")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile == "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.KVBackend {
	case BackendMemory, BackendRedis:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown KV_BACKEND %q", c.KVBackend)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.UseSpaces && (c.SpacesEndpoint == "" || c.SpacesBucket == "" || c.SpacesCDNURL == "") {
		return errors.New("SPACES_ENDPOINT, SPACES_BUCKET and SPACES_CDN_URL are required when USE_SPACES is set")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

func (c *Config) Development() bool {
	return c.Environment == "development"
}

// SetupLogger configures the global zerolog logger. Development builds get a
// human readable console writer.
func (c *Config) SetupLogger() {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
