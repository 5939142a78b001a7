// Package config loads server settings from an optional spark.{json,yaml}
// file and SPARK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"port" validate:"required,numeric"`
	Env         string `mapstructure:"env" validate:"oneof=development production"`
	LogLevel    string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	AssetOrigin string `mapstructure:"asset_origin" validate:"omitempty,url"`
	DateLayout  string `mapstructure:"date_layout" validate:"required"`

	Storage StorageConfig `mapstructure:"storage"`
	MongoDB MongoConfig   `mapstructure:"mongodb"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=file mongo memory"`
	// Path of the JSON file for the file backend. Empty means ~/.spark/storage.json.
	Path string `mapstructure:"path"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database" validate:"required"`
}

type CacheConfig struct {
	Version string `mapstructure:"version" validate:"required"`
	// Dir holds cached assets across restarts. Empty keeps them in memory.
	Dir string `mapstructure:"dir"`
}

func (c *Config) Production() bool { return c.Env == "production" }

func (c *Config) Addr() string { return ":" + c.Port }

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "7521")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("asset_origin", "")
	v.SetDefault("date_layout", "2006. 1. 2.")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.path", "")
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "spark")
	v.SetDefault("cache.version", "spark-v1")
	v.SetDefault("cache.dir", "")
}

// Load reads configuration. file, when set, must exist; otherwise spark.*
// is looked up in the working directory and ~/.spark and may be absent.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SPARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("spark")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.spark")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Storage.Backend == "mongo" && cfg.MongoDB.URI == "" {
		return nil, errors.New("invalid config: mongodb.uri is required for the mongo backend")
	}
	return &cfg, nil
}
