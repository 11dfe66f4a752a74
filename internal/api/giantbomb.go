package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wisnuprasetya/gamedex/internal/cache"
	"github.com/wisnuprasetya/gamedex/internal/models"
)

const (
	giantBombSearchURL = "https://www.giantbomb.com/api/search/"
	giantBombTimeout   = 15 * time.Second
	giantBombUserAgent = "gamedex/1.0"

	// GiantBomb signals "slow down" with 420 instead of the usual 429
	statusEnhanceYourCalm = 420

	// Total attempts per name when the API keeps answering 420. Bounds the
	// worst case to three backoff hours before the name is skipped.
	maxCalmAttempts = 3

	// How long to back off after a 420 before retrying
	calmBackoff = time.Hour
)

// Status classifies the outcome of a single name resolution
type Status int

const (
	// StatusFound means the API returned a usable release date
	StatusFound Status = iota
	// StatusNotFound means the API has no matching record or date; also the
	// fallback for network errors and unexpected HTTP statuses
	StatusNotFound
	// StatusSkipped means 420 persisted through every attempt; never cached,
	// so a future run retries the name
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not found"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Resolution is the three-way result of Resolve. Ordinary failures (420
// exhaustion, missing results, network errors) are folded in here rather than
// surfaced as errors; only a missing API key is fatal, at construction.
type Resolution struct {
	Status      Status
	ReleaseDate string // YYYY-MM-DD, set only for StatusFound
}

// GiantBombClient resolves game names to release dates through the GiantBomb
// search API, respecting the request quota and keeping a persistent cache so
// a name is looked up over the network at most once.
type GiantBombClient struct {
	httpClient *http.Client
	apiKey     string
	searchURL  string
	backoff    time.Duration
	limiter    *RateLimiter
	store      *cache.Store
	logger     *log.Logger
}

// NewGiantBombClient creates a lookup client. An empty API key is a
// configuration error and should abort the batch before any scraping.
func NewGiantBombClient(apiKey string, store *cache.Store, logger *log.Logger) (*GiantBombClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GiantBomb API key not configured (set GIANTBOMB_API_KEY)")
	}
	return &GiantBombClient{
		httpClient: &http.Client{
			Timeout: giantBombTimeout,
		},
		apiKey:    strings.TrimSpace(apiKey),
		searchURL: giantBombSearchURL,
		backoff:   calmBackoff,
		limiter:   NewRateLimiter(logger),
		store:     store,
		logger:    logger,
	}, nil
}

// SetProgress installs a countdown hook for quota and backoff waits
func (c *GiantBombClient) SetProgress(fn ProgressFunc) {
	c.limiter.SetProgress(fn)
}

// RemainingQuota returns how many requests are left in the current window
func (c *GiantBombClient) RemainingQuota() int {
	return c.limiter.Remaining()
}

// Resolve maps a display name to a release date. Cached names return
// immediately with no network call and no quota consumption. Uncached names
// cost one counted request on success; a 420 triggers up to two backoff
// retries before the name is given up as Skipped.
func (c *GiantBombClient) Resolve(name string) Resolution {
	if date, hit := c.store.Lookup(name); hit {
		c.logger.Debug("Cache hit", "name", name, "releaseDate", date)
		if date == "" {
			return Resolution{Status: StatusNotFound}
		}
		return Resolution{Status: StatusFound, ReleaseDate: date}
	}

	for attempt := 1; attempt <= maxCalmAttempts; attempt++ {
		c.limiter.Acquire()

		date, status, err := c.search(name)
		if err != nil {
			// Network failure: treated as no result but NOT cached, so a
			// future run gets to retry the name.
			c.logger.Warn("GiantBomb request failed, treating as no result", "name", name, "err", err)
			return Resolution{Status: StatusNotFound}
		}

		switch {
		case status == statusEnhanceYourCalm:
			c.logger.Warn("HTTP 420 from GiantBomb (rate limit exceeded)",
				"name", name, "attempt", attempt, "maxAttempts", maxCalmAttempts)
			if attempt == maxCalmAttempts {
				c.logger.Error("HTTP 420 persists after final attempt, skipping name", "name", name)
				return Resolution{Status: StatusSkipped}
			}
			c.limiter.Wait(c.backoff, "Rate limit exceeded, backing off before retry")
			c.limiter.Reset()

		case status != http.StatusOK:
			c.logger.Warn("GiantBomb returned unexpected status, treating as no result",
				"name", name, "status", status)
			return Resolution{Status: StatusNotFound}

		default:
			c.limiter.RecordSuccess()
			if err := c.store.Put(name, date); err != nil {
				c.logger.Warn("Failed to persist release date cache", "err", err)
			}
			if date == "" {
				c.logger.Debug("No release date on record", "name", name)
				return Resolution{Status: StatusNotFound}
			}
			c.logger.Debug("Resolved release date", "name", name, "releaseDate", date)
			return Resolution{Status: StatusFound, ReleaseDate: date}
		}
	}

	return Resolution{Status: StatusSkipped}
}

// search issues one GET against the search endpoint. It returns the HTTP
// status so the caller can distinguish 420 from other failures; err is
// reserved for transport and decode problems.
func (c *GiantBombClient) search(name string) (date string, status int, err error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	params.Set("query", name)
	params.Set("resources", "game")
	params.Set("limit", "1")

	req, err := http.NewRequest("GET", c.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", giantBombUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused; body content is irrelevant
		// for non-200 statuses here.
		io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	var search models.GiantBombSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}

	if search.NumberOfTotalResults == 0 || len(search.Results) == 0 {
		return "", resp.StatusCode, nil
	}
	return parseReleaseDate(search.Results[0].OriginalReleaseDate), resp.StatusCode, nil
}

// parseReleaseDate extracts the YYYY-MM-DD part of GiantBomb's
// "YYYY-MM-DD HH:MM:SS" timestamps. Anything unparseable is kept as the raw
// date part rather than dropped; an empty input stays empty.
func parseReleaseDate(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	if t, err := time.Parse("2006-01-02", fields[0]); err == nil {
		return t.Format("2006-01-02")
	}
	return fields[0]
}
