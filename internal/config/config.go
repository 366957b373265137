package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env  string
	Port string

	DataDir          string
	StoreDriver      string // json, sqlite or postgres
	StorePath        string // json document or sqlite file
	DatabaseURL      string // postgres only
	RegistryDriver   string // json or redis
	RegistryPath     string
	RedisURL         string // registry (when REGISTRY_DRIVER=redis) and request stats
	RedisRegistryKey string
	ImagesDir        string

	ComponentFormat string // structured or token
	SKUMin          int
	SKUMax          int

	LogLevel          string
	CORSAllowedSuffix string
}

const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	RegistryJSON  = "json"
	RegistryRedis = "redis"
)

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("STORE_DRIVER", StoreJSON)
	viper.SetDefault("REGISTRY_DRIVER", RegistryJSON)
	viper.SetDefault("REDIS_REGISTRY_KEY", "flipledger:skus")
	viper.SetDefault("COMPONENT_FORMAT", "structured")
	viper.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Env:               viper.GetString("APP_ENV"),
		Port:              viper.GetString("PORT"),
		DataDir:           viper.GetString("DATA_DIR"),
		StoreDriver:       strings.ToLower(viper.GetString("STORE_DRIVER")),
		StorePath:         viper.GetString("STORE_PATH"),
		DatabaseURL:       viper.GetString("DATABASE_URL"),
		RegistryDriver:    strings.ToLower(viper.GetString("REGISTRY_DRIVER")),
		RegistryPath:      viper.GetString("REGISTRY_PATH"),
		RedisURL:          viper.GetString("REDIS_URL"),
		RedisRegistryKey:  viper.GetString("REDIS_REGISTRY_KEY"),
		ImagesDir:         viper.GetString("IMAGES_DIR"),
		ComponentFormat:   viper.GetString("COMPONENT_FORMAT"),
		SKUMin:            viper.GetInt("SKU_MIN"),
		SKUMax:            viper.GetInt("SKU_MAX"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		CORSAllowedSuffix: viper.GetString("CORS_ALLOWED_SUFFIX"),
	}

	if cfg.StorePath == "" {
		switch cfg.StoreDriver {
		case StoreSQLite:
			cfg.StorePath = filepath.Join(cfg.DataDir, "builds.db")
		default:
			cfg.StorePath = filepath.Join(cfg.DataDir, "builds.json")
		}
	}
	if cfg.RegistryPath == "" {
		cfg.RegistryPath = filepath.Join(cfg.DataDir, "skus.json")
	}
	if cfg.ImagesDir == "" {
		cfg.ImagesDir = filepath.Join(cfg.DataDir, "images")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreJSON, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.RegistryDriver {
	case RegistryJSON:
	case RegistryRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when REGISTRY_DRIVER=redis")
		}
	default:
		return fmt.Errorf("unknown REGISTRY_DRIVER %q", c.RegistryDriver)
	}
	if (c.SKUMin != 0 || c.SKUMax != 0) && (c.SKUMin <= 0 || c.SKUMax < c.SKUMin) {
		return fmt.Errorf("invalid SKU range [%d, %d]", c.SKUMin, c.SKUMax)
	}
	return nil
}

// IsProduction reports APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
