package config

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvCache, EnvCacheDir, EnvRedisAddr, EnvAddr} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestDefaultMatchesEngine(t *testing.T) {
	popts := Default().PipelineOptions()
	opts := popts.BubbleOptions()
	if diff := cmp.Diff(bubble.DefaultOptions(), opts, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("default layout differs from engine defaults (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[layout]
width = 800
padding = 0
angle_step_deg = 90

[render]
style = "handdrawn"
formats = ["svg", "png"]

[cache]
backend = "none"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Layout.Width != 800 || cfg.Layout.Height != bubble.DefaultHeight {
		t.Errorf("size = %vx%v", cfg.Layout.Width, cfg.Layout.Height)
	}
	if cfg.Render.Style != "handdrawn" {
		t.Errorf("style = %q", cfg.Render.Style)
	}
	if diff := cmp.Diff([]string{"svg", "png"}, cfg.Render.Formats); diff != "" {
		t.Errorf("formats (-want +got):\n%s", diff)
	}

	opts := cfg.PipelineOptions()
	if opts.Padding == nil || *opts.Padding != 0 {
		t.Errorf("explicit zero padding lost: %v", opts.Padding)
	}
	if math.Abs(opts.AngleStep-math.Pi/2) > 1e-12 {
		t.Errorf("angle step = %v, want π/2", opts.AngleStep)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[layout\nwidth = 1", errors.ErrCodeInvalidInput},
		{"unknown key", "[layout]\nwidht = 10", errors.ErrCodeInvalidInput},
		{"bad style", "[render]\nstyle = \"crayon\"", errors.ErrCodeInvalidStyle},
		{"bad format", "[render]\nformats = [\"gif\"]", errors.ErrCodeInvalidFormat},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidOptions},
		{"bad ttl", "[cache]\nttl = \"soon\"", errors.ErrCodeInvalidOptions},
		{"inverted radii", "[layout]\nmin_radius = 80\nmax_radius = 20", errors.ErrCodeInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: err = %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default file should be fine: %v", err)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvCache, "redis")
	t.Setenv(EnvRedisAddr, "cache.internal:6380")
	t.Setenv(EnvAddr, "127.0.0.1:9000")

	cfg, err := Load(writeConfig(t, "[cache]\nbackend = \"file\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "cache.internal:6380" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", AppName, "config.toml"); p != want {
		t.Errorf("Path() = %q, want %q", p, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	p, err = Path()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(p, filepath.Join(".config", AppName, "config.toml")) {
		t.Errorf("Path() = %q", p)
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()
	if cfg.CacheTTL() != 7*24*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL())
	}
	cfg.Server.ShutdownTimeout = "garbage"
	if cfg.ShutdownTimeout() != 10*time.Second {
		t.Errorf("fallback ShutdownTimeout = %v", cfg.ShutdownTimeout())
	}
}

func TestEncode(t *testing.T) {
	cfg := Default()
	cfg.Cache.RedisPassword = "hunter2"

	for _, format := range []string{FormatTOML, FormatYAML, FormatJSON} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := cfg.Encode(&buf, format); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			if strings.Contains(out, "hunter2") {
				t.Error("password leaked")
			}
			if !strings.Contains(out, "max_items") {
				t.Errorf("output missing max_items:\n%s", out)
			}
		})
	}

	if err := cfg.Encode(&bytes.Buffer{}, "ini"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ini: err = %v", err)
	}
}

func TestEncodeDecodes(t *testing.T) {
	cfg := Default()

	var y bytes.Buffer
	if err := cfg.Encode(&y, FormatYAML); err != nil {
		t.Fatal(err)
	}
	var fromYAML Config
	if err := yaml.Unmarshal(y.Bytes(), &fromYAML); err != nil {
		t.Fatal(err)
	}

	var j bytes.Buffer
	if err := cfg.Encode(&j, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var fromJSON Config
	if err := json.Unmarshal(j.Bytes(), &fromJSON); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(fromYAML, fromJSON); diff != "" {
		t.Errorf("yaml and json disagree (-yaml +json):\n%s", diff)
	}
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Layout.MaxItems = 12
	cfg.Cache.RedisPassword = "secret"

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("saved config differs (-want +got):\n%s", diff)
	}
}
