// Package app wires configuration into the stores, registry and services shared by
// the HTTP server and the command line.
package app

import (
	"context"
	"fmt"
	"time"

	buildsvc "flipledger/internal/application/builds"
	"flipledger/internal/application/images"
	"flipledger/internal/codec"
	"flipledger/internal/config"
	"flipledger/internal/infrastructure/database"
	"flipledger/internal/infrastructure/registry"
	"flipledger/internal/infrastructure/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Services holds everything built from a Config.
type Services struct {
	Config   *config.Config
	Store    store.Store
	Registry registry.Registry
	Images   *images.Service
	Builds   *buildsvc.Service

	DB  *gorm.DB      // nil for the json store
	Rdb *redis.Client // nil unless REDIS_URL is set
}

// Wire opens the configured backends. Close releases them.
func Wire(cfg *config.Config) (*Services, error) {
	s := &Services{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	format, err := codec.ParseFormat(cfg.ComponentFormat)
	if err != nil {
		return nil, err
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		s.Rdb = redis.NewClient(opt)
	}

	switch cfg.StoreDriver {
	case config.StoreJSON:
		s.Store = store.NewJSONFile(cfg.StorePath)
	case config.StoreSQLite, config.StorePostgres:
		dsn := cfg.StorePath
		if cfg.StoreDriver == config.StorePostgres {
			dsn = cfg.DatabaseURL
		}
		db, err := database.Open(cfg.StoreDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
		}
		s.DB = db
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate %s store: %w", cfg.StoreDriver, err)
		}
		s.Store = &store.SQL{DB: db}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	switch cfg.RegistryDriver {
	case config.RegistryJSON:
		s.Registry = registry.NewJSONFile(cfg.RegistryPath)
	case config.RegistryRedis:
		if s.Rdb == nil {
			return nil, fmt.Errorf("redis registry needs REDIS_URL")
		}
		s.Registry = &registry.Redis{Rdb: s.Rdb, Key: cfg.RedisRegistryKey}
	default:
		return nil, fmt.Errorf("unknown registry driver %q", cfg.RegistryDriver)
	}

	alloc, err := registry.NewAllocator(s.Registry, cfg.SKUMin, cfg.SKUMax)
	if err != nil {
		return nil, err
	}
	s.Images = &images.Service{Dir: cfg.ImagesDir}
	s.Builds = &buildsvc.Service{
		Store:     s.Store,
		Registry:  s.Registry,
		Allocator: alloc,
		Images:    s.Images,
		Format:    format,
	}

	log.Info().
		Str("store", cfg.StoreDriver).
		Str("registry", cfg.RegistryDriver).
		Str("format", string(format)).
		Int("sku_min", alloc.Min).
		Int("sku_max", alloc.Max).
		Msg("Services wired")
	ok = true
	return s, nil
}

// Verify pings the store and Redis once at startup.
func (s *Services) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if s.Rdb != nil {
		if err := s.Rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (s *Services) Close() {
	if s.Rdb != nil {
		_ = s.Rdb.Close()
	}
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
