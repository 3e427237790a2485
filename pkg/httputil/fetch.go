package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wordbubbles/pkg/buildinfo"
	"github.com/matzehuels/wordbubbles/pkg/cache"
	"github.com/matzehuels/wordbubbles/pkg/errors"
	"github.com/matzehuels/wordbubbles/pkg/observability"
)

// Defaults for a new [Fetcher].
const (
	DefaultTimeout  = 30 * time.Second
	DefaultTTL      = time.Hour
	DefaultMaxBytes = 32 << 20
)

// keyPrefix namespaces fetched bodies in the shared cache.
const keyPrefix = "fetch:"

// Fetcher downloads documents with retry and caching. It is safe for
// concurrent use.
type Fetcher struct {
	Client *http.Client
	Cache  cache.Cache
	Logger *log.Logger

	// TTL is how long a fetched body is reused. Zero means DefaultTTL.
	TTL time.Duration
	// MaxBytes bounds a response body. Zero means DefaultMaxBytes.
	MaxBytes int64
	// Refresh skips cache reads; fresh bodies are still stored.
	Refresh bool
}

// NewFetcher returns a Fetcher with default limits. A nil store disables
// caching.
func NewFetcher(store cache.Cache, logger *log.Logger) *Fetcher {
	if store == nil {
		store = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fetcher{
		Client: &http.Client{Timeout: DefaultTimeout},
		Cache:  store,
		Logger: logger,
	}
}

// IsURL reports whether s is an http or https URL rather than a file path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Get returns the body at rawURL.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "not an http(s) URL: %q", rawURL)
	}
	key := keyPrefix + u.String()

	if !f.Refresh {
		data, ok, err := f.Cache.Get(ctx, key)
		if err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "fetch")
			f.Logger.Debug("fetch cache hit", "url", u.Redacted())
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "fetch")
	}

	var body []byte
	attempt := 0
	err = cache.RetryWithBackoff(ctx, func() error {
		attempt++
		body, err = f.do(ctx, u)
		if err != nil && cache.IsRetryable(err) {
			f.Logger.Warn("fetch failed, retrying", "url", u.Redacted(), "attempt", attempt, "error", err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	f.Logger.Debug("fetched", "url", u.Redacted(), "bytes", len(body), "attempts", attempt)

	ttl := f.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := f.Cache.Set(ctx, key, body, ttl); err != nil {
		f.Logger.Warn("fetch cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "fetch", len(body))
	}
	return body, nil
}

// do performs a single request. Transient failures come back wrapped with
// cache.Retryable.
func (f *Fetcher) do(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "wordbubbles/"+buildinfo.Version)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", u.Redacted()))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, cache.Retryable(errors.New(errors.ErrCodeNetwork, "GET %s: %s", u.Redacted(), resp.Status))
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "GET %s: %s", u.Redacted(), resp.Status)
	case resp.StatusCode >= 400:
		return nil, errors.New(errors.ErrCodeInvalidInput, "GET %s: %s", u.Redacted(), resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("read %s: %w", u.Redacted(), err))
	}
	if int64(len(body)) > limit {
		return nil, errors.New(errors.ErrCodeTooLarge, "GET %s: body exceeds %d bytes", u.Redacted(), limit)
	}
	return body, nil
}
