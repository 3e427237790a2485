package pipeline

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordbubbles/pkg/bubble"
	"github.com/matzehuels/wordbubbles/pkg/cache"
	"github.com/matzehuels/wordbubbles/pkg/cloud"
	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so the caching logic lives in one place.
//
// The Runner holds no per-run state, so one Runner can serve many
// goroutines with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default entry lifetimes when non-zero.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer means DefaultKeyer; a nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs layout and render with caching.
func (r *Runner) Execute(ctx context.Context, items []bubble.Item, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}
	result.Stats.ItemCount = len(items)

	// Stage 1: Layout
	layoutStart := time.Now()
	c, layoutHit, err := r.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		return nil, err
	}
	result.Cloud = c
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.BubbleCount = len(c.Bubbles)
	result.Stats.Fallbacks = c.Fallbacks
	result.CacheInfo.LayoutHit = layoutHit
	if h, err := cache.HashJSON(c); err == nil {
		result.LayoutHash = h
	}

	r.Logger.Info("computed layout",
		"bubbles", len(c.Bubbles),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo packs items with caching and reports whether the
// cloud came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, items []bubble.Item, opts Options) (cloud.Cloud, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return cloud.Cloud{}, false, err
	}
	if err := ValidateItems(items); err != nil {
		return cloud.Cloud{}, false, err
	}

	itemsHash, err := ItemsHash(items, opts.Source)
	if err != nil {
		return cloud.Cloud{}, false, errors.Wrap(errors.ErrCodeInternal, err, "hash items")
	}
	cacheKey := r.Keyer.LayoutKey(itemsHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if c, ok := r.cachedCloud(ctx, cacheKey); ok {
			return c, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(items))
	start := time.Now()

	c, err := Layout(items, opts)
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, 0, time.Since(start), err)
		return cloud.Cloud{}, false, err
	}
	c.ID = cloudID(cacheKey)
	hooks.OnLayoutComplete(ctx, len(c.Bubbles), c.Fallbacks, time.Since(start), nil)

	if data, err := cloud.Marshal(c); err == nil {
		r.store(ctx, "layout", cacheKey, data, cache.TTLLayout)
	}
	return c, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit flag.
func (r *Runner) Layout(ctx context.Context, items []bubble.Item, opts Options) (cloud.Cloud, error) {
	c, _, err := r.LayoutWithCacheInfo(ctx, items, opts)
	return c, err
}

// RenderWithCacheInfo renders c with caching and reports whether every
// artifact came from the cache. Formats missing from the cache are rendered
// and stored; cached ones are reused.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, c cloud.Cloud, opts Options) (map[string][]byte, bool, error) {
	opts = applyCloudMetadata(opts, c)
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutHash, err := cache.HashJSON(c)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash cloud")
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if _, dup := artifacts[format]; dup || slices.Contains(missing, format) {
			continue
		}
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, ok := r.lookup(ctx, "artifact", key); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, c, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, "artifact", key, data, cache.TTLArtifact)
	}
	return artifacts, false, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, c cloud.Cloud, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, c, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cachedCloud(ctx context.Context, key string) (cloud.Cloud, bool) {
	data, ok := r.lookup(ctx, "layout", key)
	if !ok {
		return cloud.Cloud{}, false
	}
	c, err := cloud.Unmarshal(data)
	if err != nil {
		r.Logger.Debug("discarding unreadable cached cloud", "key", key, "error", err)
		return cloud.Cloud{}, false
	}
	return c, true
}

// lookup reads key from the cache. Backend errors are logged and treated as
// misses so a flaky cache never fails a run.
func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
