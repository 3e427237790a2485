// Package config loads wordbubbles settings from a TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables. Command-line flags are applied on top by the CLI.
//
// A config file looks like:
//
//	[layout]
//	width = 400
//	height = 400
//	max_items = 30
//	padding = 4
//
//	[render]
//	style = "handdrawn"
//	formats = ["svg", "png"]
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/pipeline"
)

// AppName names the config and cache directories.
const AppName = "wordbubbles"

// Environment variables read by [Load].
const (
	EnvCache     = "WORDBUBBLES_CACHE"      // cache backend: file, redis, none
	EnvCacheDir  = "WORDBUBBLES_CACHE_DIR"  // file cache directory
	EnvRedisAddr = "WORDBUBBLES_REDIS_ADDR" // host:port of the shared cache
	EnvAddr      = "WORDBUBBLES_ADDR"       // API listen address
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

var validBackends = map[string]bool{
	BackendFile:  true,
	BackendRedis: true,
	BackendNone:  true,
}

// Config is the complete set of user settings.
type Config struct {
	Layout LayoutConfig `toml:"layout" yaml:"layout" json:"layout"`
	Render RenderConfig `toml:"render" yaml:"render" json:"render"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache" json:"cache"`
	Server ServerConfig `toml:"server" yaml:"server" json:"server"`
}

// LayoutConfig mirrors the engine options. AngleStepDeg is in degrees.
type LayoutConfig struct {
	Width        float64 `toml:"width" yaml:"width" json:"width"`
	Height       float64 `toml:"height" yaml:"height" json:"height"`
	MaxItems     int     `toml:"max_items" yaml:"max_items" json:"max_items"`
	MinRadius    float64 `toml:"min_radius" yaml:"min_radius" json:"min_radius"`
	MaxRadius    float64 `toml:"max_radius" yaml:"max_radius" json:"max_radius"`
	Padding      float64 `toml:"padding" yaml:"padding" json:"padding"`
	AngleStepDeg float64 `toml:"angle_step_deg" yaml:"angle_step_deg" json:"angle_step_deg"`
}

// RenderConfig holds output defaults.
type RenderConfig struct {
	Source      string   `toml:"source" yaml:"source" json:"source"`
	Style       string   `toml:"style" yaml:"style" json:"style"`
	Formats     []string `toml:"formats" yaml:"formats" json:"formats"`
	Seed        uint64   `toml:"seed" yaml:"seed" json:"seed"`
	Scale       float64  `toml:"scale" yaml:"scale" json:"scale"`
	ShowWeights bool     `toml:"show_weights" yaml:"show_weights" json:"show_weights"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend" yaml:"backend" json:"backend"`
	Dir       string `toml:"dir" yaml:"dir" json:"dir"`
	RedisAddr string `toml:"redis_addr" yaml:"redis_addr" json:"redis_addr"`
	RedisDB   int    `toml:"redis_db" yaml:"redis_db" json:"redis_db"`
	Prefix    string `toml:"prefix" yaml:"prefix" json:"prefix"`
	TTL       string `toml:"ttl" yaml:"ttl" json:"ttl"`

	// RedisPassword is never printed by Encode.
	RedisPassword string `toml:"redis_password,omitempty" yaml:"-" json:"-"`
}

// ServerConfig configures `wordbubbles serve`.
type ServerConfig struct {
	Addr            string `toml:"addr" yaml:"addr" json:"addr"`
	MaxBodyBytes    int64  `toml:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes"`
	RequestTimeout  string `toml:"request_timeout" yaml:"request_timeout" json:"request_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Width:        bubble.DefaultWidth,
			Height:       bubble.DefaultHeight,
			MaxItems:     bubble.DefaultMaxItems,
			MinRadius:    bubble.DefaultMinRadius,
			MaxRadius:    bubble.DefaultMaxRadius,
			Padding:      bubble.DefaultPadding,
			AngleStepDeg: bubble.DefaultAngleStep * 180 / math.Pi,
		},
		Render: RenderConfig{
			Source:  pipeline.DefaultSource,
			Style:   pipeline.DefaultStyle,
			Formats: []string{pipeline.FormatSVG},
			Seed:    pipeline.DefaultSeed,
			Scale:   pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			Prefix:    AppName + ":",
			TTL:       "168h",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    1 << 20,
			RequestTimeout:  "30s",
			ShutdownTimeout: "10s",
		},
	}
}

// Path returns the default config file location,
// $XDG_CONFIG_HOME/wordbubbles/config.toml or ~/.config/wordbubbles/config.toml.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the config file at path over the defaults and applies
// environment overrides. An empty path means [Path]; a missing file at the
// default location is not an error, but a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := Path(); err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := cfg.decode(data); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays TOML data onto c, rejecting unknown keys.
func (c *Config) decode(data []byte) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvCache); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if err := pipeline.ValidateSource(c.Render.Source); err != nil {
		return err
	}
	if err := pipeline.ValidateStyle(c.Render.Style); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if !validBackends[c.Cache.Backend] {
		return errors.New(errors.ErrCodeInvalidOptions, "invalid cache backend %q (must be one of: file, none, redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "cache backend redis needs redis_addr")
	}
	for name, v := range map[string]string{
		"cache.ttl":               c.Cache.TTL,
		"server.request_timeout":  c.Server.RequestTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOptions, err, "%s", name)
		}
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "server.max_body_bytes cannot be negative")
	}
	opts := c.PipelineOptions()
	return opts.ValidateAndSetDefaults()
}

// PipelineOptions converts the layout and render sections into pipeline
// options.
func (c *Config) PipelineOptions() pipeline.Options {
	padding := c.Layout.Padding
	return pipeline.Options{
		Source:      c.Render.Source,
		Width:       c.Layout.Width,
		Height:      c.Layout.Height,
		MaxItems:    c.Layout.MaxItems,
		MinRadius:   c.Layout.MinRadius,
		MaxRadius:   c.Layout.MaxRadius,
		Padding:     &padding,
		AngleStep:   c.Layout.AngleStepDeg * math.Pi / 180,
		Formats:     append([]string(nil), c.Render.Formats...),
		Style:       c.Render.Style,
		Seed:        c.Render.Seed,
		Scale:       c.Render.Scale,
		ShowWeights: c.Render.ShowWeights,
	}
}

// CacheTTL returns the parsed cache TTL, or zero for no expiry.
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Cache.TTL, 0)
}

// RequestTimeout returns the per-request deadline of the API server.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Server.RequestTimeout, 30*time.Second)
}

// ShutdownTimeout returns how long the API server waits for in-flight
// requests on shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Encoding formats accepted by [Config.Encode].
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ValidFormats lists the encodings accepted by [Config.Encode].
var ValidFormats = map[string]bool{
	FormatTOML: true,
	FormatYAML: true,
	FormatJSON: true,
}

// Encode writes c to w as TOML, YAML or JSON. Secrets are omitted.
func (c *Config) Encode(w io.Writer, format string) error {
	switch format {
	case FormatTOML, "":
		shown := *c
		shown.Cache.RedisPassword = ""
		return toml.NewEncoder(w).Encode(shown)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	default:
		return errors.ValidateFormat(format, ValidFormats)
	}
}

// Save writes c as TOML to path, creating parent directories.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
