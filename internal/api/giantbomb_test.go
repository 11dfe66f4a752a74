package api

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wisnuprasetya/gamedex/internal/cache"
)

func searchPayload(date string) string {
	if date == "" {
		return `{"error":"OK","status_code":1,"number_of_total_results":0,"results":[]}`
	}
	return fmt.Sprintf(
		`{"error":"OK","status_code":1,"number_of_total_results":1,"results":[{"name":"match","original_release_date":"%s"}]}`,
		date)
}

// newTestClient wires a client against an httptest server with a fast clock,
// no inter-request delay and a millisecond 420 backoff
func newTestClient(t *testing.T, handler http.HandlerFunc) (*GiantBombClient, *httptest.Server, *fakeClock) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	logger := log.New(io.Discard)
	c, err := NewGiantBombClient("test-key", store, logger)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	limiter, fc := newTestLimiter(defaultMaxRequests, 0)
	c.limiter = limiter
	c.searchURL = server.URL
	c.backoff = 50 * time.Millisecond

	return c, server, fc
}

func TestNewGiantBombClientRequiresKey(t *testing.T) {
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	if _, err := NewGiantBombClient("", store, log.New(io.Discard)); err == nil {
		t.Error("NewGiantBombClient(\"\") succeeded, want configuration error")
	}
	if _, err := NewGiantBombClient("   ", store, log.New(io.Discard)); err == nil {
		t.Error("NewGiantBombClient(whitespace) succeeded, want configuration error")
	}
}

// TestResolveCachedNameSkipsNetwork verifies cached names cost zero requests
// and zero quota
func TestResolveCachedNameSkipsNetwork(t *testing.T) {
	var requests atomic.Int64
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, searchPayload("2025-03-01 00:00:00"))
	})

	if err := c.store.Put("Game A", "2025-03-01"); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}
	if err := c.store.Put("Game B", ""); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	tests := []struct {
		name       string
		wantStatus Status
		wantDate   string
	}{
		{"Game A", StatusFound, "2025-03-01"},
		{"game a", StatusFound, "2025-03-01"},
		{" Game A ", StatusFound, "2025-03-01"},
		{"Game B", StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Resolve(tt.name)
			if res.Status != tt.wantStatus || res.ReleaseDate != tt.wantDate {
				t.Errorf("Resolve(%q) = %v %q, want %v %q",
					tt.name, res.Status, res.ReleaseDate, tt.wantStatus, tt.wantDate)
			}
		})
	}

	if n := requests.Load(); n != 0 {
		t.Errorf("cached resolutions issued %d network requests, want 0", n)
	}
	if got := c.RemainingQuota(); got != defaultMaxRequests {
		t.Errorf("RemainingQuota() = %d, want full quota %d", got, defaultMaxRequests)
	}
}

// TestResolveSuccessCachesAndCountsQuota verifies a fresh lookup costs one
// counted request, returns the date and persists it
func TestResolveSuccessCachesAndCountsQuota(t *testing.T) {
	var requests atomic.Int64
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("resources"); got != "game" {
			t.Errorf("resources = %q, want game", got)
		}
		fmt.Fprint(w, searchPayload("2024-12-01 00:00:00"))
	})

	res := c.Resolve("Game B")
	if res.Status != StatusFound || res.ReleaseDate != "2024-12-01" {
		t.Fatalf("Resolve() = %v %q, want found 2024-12-01", res.Status, res.ReleaseDate)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("issued %d requests, want 1", n)
	}
	if got := c.RemainingQuota(); got != defaultMaxRequests-1 {
		t.Errorf("RemainingQuota() = %d, want %d", got, defaultMaxRequests-1)
	}

	// Second resolve must come from cache
	c.Resolve("game b")
	if n := requests.Load(); n != 1 {
		t.Errorf("issued %d requests after cache hit, want 1", n)
	}
}

// TestResolveNoResultCachesSentinel verifies an empty search result is cached
// so the name is never re-queried
func TestResolveNoResultCachesSentinel(t *testing.T) {
	var requests atomic.Int64
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, searchPayload(""))
	})

	if res := c.Resolve("Nonexistent Game"); res.Status != StatusNotFound {
		t.Fatalf("Resolve() = %v, want not found", res.Status)
	}
	if res := c.Resolve("nonexistent game"); res.Status != StatusNotFound {
		t.Fatalf("second Resolve() = %v, want not found", res.Status)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("issued %d requests, want 1 (sentinel should be cached)", n)
	}
}

// TestResolve420Exhausted verifies a persistent 420 makes exactly three
// attempts with a backoff wait and a quota reset between each, then returns
// Skipped without caching
func TestResolve420Exhausted(t *testing.T) {
	var requests atomic.Int64
	c, _, fc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(statusEnhanceYourCalm)
	})

	res := c.Resolve("Hot Game")
	if res.Status != StatusSkipped {
		t.Fatalf("Resolve() = %v, want skipped", res.Status)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("issued %d attempts, want exactly 3", n)
	}
	// Two backoff waits (between attempts 1-2 and 2-3)
	if want := 2 * c.backoff; fc.slept < want {
		t.Errorf("slept %v across backoffs, want >= %v", fc.slept, want)
	}
	if _, hit := c.store.Lookup("Hot Game"); hit {
		t.Error("skipped name was cached; a future run could never retry it")
	}
	if got := c.RemainingQuota(); got != defaultMaxRequests {
		t.Errorf("RemainingQuota() = %d, want full quota after 420 resets", got)
	}
}

// TestResolve420ThenSuccess verifies recovery on the second attempt: the
// result is cached and only the successful attempt counts toward quota
func TestResolve420ThenSuccess(t *testing.T) {
	var requests atomic.Int64
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(statusEnhanceYourCalm)
			return
		}
		fmt.Fprint(w, searchPayload("2024-12-01 00:00:00"))
	})

	res := c.Resolve("Game B")
	if res.Status != StatusFound || res.ReleaseDate != "2024-12-01" {
		t.Fatalf("Resolve() = %v %q, want found 2024-12-01", res.Status, res.ReleaseDate)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("issued %d attempts, want 2", n)
	}
	if date, hit := c.store.Lookup("Game B"); !hit || date != "2024-12-01" {
		t.Errorf("cache entry = %q hit=%v, want 2024-12-01 cached", date, hit)
	}
	if got := c.RemainingQuota(); got != defaultMaxRequests-1 {
		t.Errorf("RemainingQuota() = %d, want %d (only the 200 counts)", got, defaultMaxRequests-1)
	}
}

// TestResolveServerErrorNotCached verifies other HTTP errors degrade to
// NotFound without a cache entry, so a future run retries
func TestResolveServerErrorNotCached(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if res := c.Resolve("Game C"); res.Status != StatusNotFound {
		t.Fatalf("Resolve() = %v, want not found", res.Status)
	}
	if _, hit := c.store.Lookup("Game C"); hit {
		t.Error("server error was cached, want retryable on a future run")
	}
}

// TestResolveNetworkErrorNotCached verifies connection failures degrade to
// NotFound without a cache entry
func TestResolveNetworkErrorNotCached(t *testing.T) {
	c, server, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	if res := c.Resolve("Game D"); res.Status != StatusNotFound {
		t.Fatalf("Resolve() = %v, want not found", res.Status)
	}
	if _, hit := c.store.Lookup("Game D"); hit {
		t.Error("network error was cached, want retryable on a future run")
	}
}

// TestResolveCacheRoundTrip verifies a fresh client over the same cache file
// reproduces resolutions without any network access
func TestResolveCacheRoundTrip(t *testing.T) {
	c, server, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, searchPayload("2025-03-01 00:00:00"))
	})

	if res := c.Resolve("Game A"); res.Status != StatusFound {
		t.Fatalf("first Resolve() = %v, want found", res.Status)
	}
	server.Close()

	reloaded, err := cache.Open(c.store.Path())
	if err != nil {
		t.Fatalf("failed to reload cache: %v", err)
	}
	c2, err := NewGiantBombClient("test-key", reloaded, log.New(io.Discard))
	if err != nil {
		t.Fatalf("failed to create second client: %v", err)
	}
	c2.searchURL = "http://127.0.0.1:1" // unreachable on purpose

	res := c2.Resolve("game a")
	if res.Status != StatusFound || res.ReleaseDate != "2025-03-01" {
		t.Errorf("reloaded Resolve() = %v %q, want found 2025-03-01", res.Status, res.ReleaseDate)
	}
}

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2025-03-01 00:00:00", "2025-03-01"},
		{"2024-12-01", "2024-12-01"},
		{"", ""},
		{"   ", ""},
		{"soon 00:00:00", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := parseReleaseDate(tt.raw); got != tt.want {
				t.Errorf("parseReleaseDate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusFound, "found"},
		{StatusNotFound, "not found"},
		{StatusSkipped, "skipped"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
