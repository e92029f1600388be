package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/pipeline"
	"github.com/netweave/netweave/pkg/store"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Layout.Steps != pipeline.DefaultSteps {
		t.Errorf("Layout.Steps = %d, want %d", cfg.Layout.Steps, pipeline.DefaultSteps)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Layout.Steps != pipeline.DefaultSteps {
		t.Errorf("missing file should yield defaults, got steps = %d", cfg.Layout.Steps)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netweave.toml")
	content := `
[layout]
steps = 100
k = 25.0
three_d = true

[render]
formats = ["dot", "svg"]
scale = 1.0

[store]
backend = "redis"
redis_addr = "redis.internal:6379"
redis_ttl = "10m"

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Layout.Steps != 100 || cfg.Layout.K != 25.0 || !cfg.Layout.ThreeD {
		t.Errorf("layout overrides not applied: %+v", cfg.Layout)
	}
	if len(cfg.Render.Formats) != 2 || cfg.Render.Formats[0] != "dot" {
		t.Errorf("render formats = %v, want [dot svg]", cfg.Render.Formats)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisAddr != "redis.internal:6379" {
		t.Errorf("store overrides not applied: %+v", cfg.Store)
	}
	if cfg.Store.RedisTTL != 10*time.Minute {
		t.Errorf("RedisTTL = %v, want 10m", cfg.Store.RedisTTL)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}

	// Sections absent from the file keep their defaults.
	if cfg.Store.MongoDatabase != "netweave" {
		t.Errorf("MongoDatabase = %q, want default netweave", cfg.Store.MongoDatabase)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[layout\nsteps="), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Layout.Steps = 42
	cfg.Render.Formats = []string{"png"}

	opts := cfg.PipelineOptions()
	if opts.Steps != 42 {
		t.Errorf("Steps = %d, want 42", opts.Steps)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "png" {
		t.Errorf("Formats = %v, want [png]", opts.Formats)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Backend = "file"
		cfg.Store.Dir = t.TempDir()
		s, err := cfg.OpenStore(ctx)
		if err != nil {
			t.Fatalf("OpenStore() error = %v", err)
		}
		defer s.Close()
		if _, ok := s.(*store.FileStore); !ok {
			t.Errorf("OpenStore() = %T, want *store.FileStore", s)
		}
	})

	t.Run("none", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Backend = "none"
		s, err := cfg.OpenStore(ctx)
		if err != nil {
			t.Fatalf("OpenStore() error = %v", err)
		}
		if _, ok := s.(*store.NullStore); !ok {
			t.Errorf("OpenStore() = %T, want *store.NullStore", s)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := Default()
		cfg.Store.Backend = "cassandra"
		if _, err := cfg.OpenStore(ctx); err == nil {
			t.Error("OpenStore() expected error for unknown backend")
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("NETWEAVE_STORE_BACKEND", "none")
		cfg := Default()
		cfg.Store.Backend = "file"
		s, err := cfg.OpenStore(ctx)
		if err != nil {
			t.Fatalf("OpenStore() error = %v", err)
		}
		if _, ok := s.(*store.NullStore); !ok {
			t.Errorf("OpenStore() = %T, want *store.NullStore from env override", s)
		}
	})
}

func TestStoreConfigApplyEnv(t *testing.T) {
	t.Setenv("NETWEAVE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("NETWEAVE_MONGO_URI", "mongodb://mongo.internal:27017")
	t.Setenv("NETWEAVE_STORE_DIR", "/var/lib/netweave")

	sc := Default().Store
	sc.applyEnv()

	if sc.RedisAddr != "redis.internal:6380" {
		t.Errorf("RedisAddr = %q", sc.RedisAddr)
	}
	if sc.MongoURI != "mongodb://mongo.internal:27017" {
		t.Errorf("MongoURI = %q", sc.MongoURI)
	}
	if sc.Dir != "/var/lib/netweave" {
		t.Errorf("Dir = %q", sc.Dir)
	}
	if sc.Backend != "file" {
		t.Errorf("Backend = %q, unset variable should not override", sc.Backend)
	}
}
