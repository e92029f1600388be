// Package config loads netweave configuration from TOML files.
//
// Configuration is optional: every field has a sensible default and the CLI
// works without a file. When present, a netweave.toml provides defaults for
// layout, rendering, storage and the HTTP server, which command-line flags
// may still override.
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/pipeline"
	"github.com/netweave/netweave/pkg/store"
)

// DefaultFilename is the config file looked up in the working directory.
const DefaultFilename = "netweave.toml"

// Config is the root configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig configures the force simulation defaults.
type LayoutConfig struct {
	Steps     int     `toml:"steps"`
	K         float64 `toml:"k"`
	Damping   float64 `toml:"damping"`
	Repulsion float64 `toml:"repulsion"`
	Speed     float64 `toml:"speed"`
	Seed      uint64  `toml:"seed"`
	ThreeD    bool    `toml:"three_d"`
}

// RenderConfig configures rendering defaults.
type RenderConfig struct {
	Formats      []string `toml:"formats"`
	Detailed     bool     `toml:"detailed"`
	UsePositions bool     `toml:"use_positions"`
	Scale        float64  `toml:"scale"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is one of "file", "redis", "mongo" or "none".
	Backend string `toml:"backend"`

	// File backend
	Dir string `toml:"dir"`

	// Redis backend
	RedisAddr   string        `toml:"redis_addr"`
	RedisPrefix string        `toml:"redis_prefix"`
	RedisTTL    time.Duration `toml:"redis_ttl"`

	// Mongo backend
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			Steps: pipeline.DefaultSteps,
			Seed:  pipeline.DefaultSeed,
		},
		Render: RenderConfig{
			Formats:      []string{pipeline.FormatSVG},
			UsePositions: true,
			Scale:        pipeline.DefaultScale,
		},
		Store: StoreConfig{
			Backend:         "file",
			Dir:             defaultStoreDir(),
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "netweave",
			MongoCollection: "networks",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".netweave"
	}
	return filepath.Join(home, ".netweave", "networks")
}

// Load reads configuration from path. A missing file is not an error and
// yields the defaults; a malformed file is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// PipelineOptions builds pipeline options seeded from the configuration.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Steps:        c.Layout.Steps,
		K:            c.Layout.K,
		Damping:      c.Layout.Damping,
		Repulsion:    c.Layout.Repulsion,
		Speed:        c.Layout.Speed,
		Seed:         c.Layout.Seed,
		ThreeD:       c.Layout.ThreeD,
		Formats:      c.Render.Formats,
		Detailed:     c.Render.Detailed,
		UsePositions: c.Render.UsePositions,
		Scale:        c.Render.Scale,
	}
}

// applyEnv overlays NETWEAVE_* environment variables onto the store
// configuration. Deployments can point at a different backend without
// editing the config file.
func (c *StoreConfig) applyEnv() {
	if v := os.Getenv("NETWEAVE_STORE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("NETWEAVE_STORE_DIR"); v != "" {
		c.Dir = v
	}
	if v := os.Getenv("NETWEAVE_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("NETWEAVE_MONGO_URI"); v != "" {
		c.MongoURI = v
	}
}

// OpenStore constructs the configured store backend. Environment variables
// NETWEAVE_STORE_BACKEND, NETWEAVE_STORE_DIR, NETWEAVE_REDIS_ADDR and
// NETWEAVE_MONGO_URI override the file configuration.
func (c Config) OpenStore(ctx context.Context) (store.Store, error) {
	c.Store.applyEnv()
	switch c.Store.Backend {
	case "", "file":
		return store.NewFileStore(c.Store.Dir)
	case "redis":
		var opts []store.RedisOption
		if c.Store.RedisPrefix != "" {
			opts = append(opts, store.WithPrefix(c.Store.RedisPrefix))
		}
		if c.Store.RedisTTL > 0 {
			opts = append(opts, store.WithTTL(c.Store.RedisTTL))
		}
		return store.NewRedisStore(c.Store.RedisAddr, opts...), nil
	case "mongo":
		return store.NewMongoStore(ctx, c.Store.MongoURI, c.Store.MongoDatabase, c.Store.MongoCollection)
	case "none":
		return store.NewNullStore(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown store backend %q (must be file, redis, mongo or none)", c.Store.Backend)
	}
}
