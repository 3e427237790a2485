package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/wordbubbles/pkg/cache"
	"github.com/matzehuels/wordbubbles/pkg/errors"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewFetcher(store, nil)
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://example.com/a.json", true},
		{"https://example.com", true},
		{"ftp://example.com/a.json", false},
		{"report.json", false},
		{"/tmp/https://x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "wordbubbles/") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(`{"a": 1}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		data, err := f.Get(ctx, srv.URL)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(data) != `{"a": 1}` {
			t.Errorf("body = %q", data)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}

	f.Refresh = true
	if _, err := f.Get(ctx, srv.URL); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits after refresh = %d, want 2", n)
	}
}

func TestGetRetriesTransient(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	data, err := newTestFetcher(t).Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("body = %q", data)
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("server hits = %d, want 3", n)
	}
}

func TestGetErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "/big":
			w.Write([]byte(strings.Repeat("x", 64)))
		}
	}))
	defer srv.Close()

	tests := []struct {
		name string
		url  string
		code errors.Code
	}{
		{"not found", srv.URL + "/missing", errors.ErrCodeNotFound},
		{"client error", srv.URL + "/forbidden", errors.ErrCodeInvalidInput},
		{"too large", srv.URL + "/big", errors.ErrCodeTooLarge},
		{"bad scheme", "ftp://example.com/x", errors.ErrCodeInvalidPath},
		{"no host", "http:///x", errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(t)
			f.MaxBytes = 32
			before := hits.Load()
			_, err := f.Get(context.Background(), tt.url)
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
			// Permanent failures are not retried.
			if n := hits.Load() - before; n > 1 {
				t.Errorf("server hits = %d, want at most 1", n)
			}
		})
	}
}

func TestGetCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestFetcher(t).Get(ctx, srv.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
