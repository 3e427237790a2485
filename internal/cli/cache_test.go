package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/wordbubbles/pkg/cache"
	"github.com/matzehuels/wordbubbles/pkg/config"
)

func testCLI(t *testing.T) *CLI {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()
	return &CLI{Logger: newLogger(&bytes.Buffer{}, LogInfo), Config: cfg}
}

func TestCacheLocation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.CacheConfig)
		want   string
	}{
		{"file", func(c *config.CacheConfig) { c.Dir = "/var/cache/wb" }, "/var/cache/wb"},
		{"none", func(c *config.CacheConfig) { c.Backend = config.BackendNone }, "(disabled)"},
		{"redis", func(c *config.CacheConfig) {
			c.Backend = config.BackendRedis
			c.RedisAddr = "localhost:6379"
			c.RedisDB = 2
			c.Prefix = "wb:"
		}, "redis://localhost:6379/2 wb:*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCLI(t)
			tt.mutate(&c.Config.Cache)
			if got := c.cacheLocation(); got != tt.want {
				t.Errorf("cacheLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheClearCommand(t *testing.T) {
	c := testCLI(t)
	ctx := context.Background()

	store, err := cache.NewFileCache(c.Config.Cache.Dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	cmd := c.cacheClearCommand()
	cmd.SetContext(ctx)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("entry survived cache clear")
	}
	if _, err := os.Stat(c.Config.Cache.Dir); err != nil {
		t.Errorf("cache root removed: %v", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	c := testCLI(t)
	var out bytes.Buffer
	cmd := c.cachePathCommand()
	cmd.SetOut(&out)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != filepath.Clean(c.Config.Cache.Dir) {
		t.Errorf("cache path = %q, want %q", got, c.Config.Cache.Dir)
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()

	c := testCLI(t)
	store, err := c.newCache(ctx, true)
	if err != nil {
		t.Fatalf("newCache(noCache): %v", err)
	}
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("--no-cache gave %T, want *cache.NullCache", store)
	}

	store, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("newCache(file): %v", err)
	}
	if _, ok := store.(*cache.FileCache); !ok {
		t.Errorf("file backend gave %T", store)
	}

	c.Config.Cache.Backend = config.BackendRedis
	c.Config.Cache.RedisAddr = "127.0.0.1:1"
	store, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("unreachable redis should degrade, got %v", err)
	}
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("unreachable redis gave %T, want *cache.NullCache", store)
	}
}
