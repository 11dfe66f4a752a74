package api

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// GiantBomb's documented limit: 200 requests per resource per hour
	defaultMaxRequests = 200
	defaultWindow      = time.Hour
	// Minimum spacing between requests to stay under velocity detection
	defaultMinDelay = 2 * time.Second
	// How often the countdown hook fires during a long wait
	countdownInterval = 10 * time.Second
)

// Clock abstracts wall time and sleeping so long waits can be simulated in
// tests without actually sleeping.
type Clock struct {
	Now   func() time.Time
	Sleep func(time.Duration)
}

func systemClock() Clock {
	return Clock{
		Now:   time.Now,
		Sleep: time.Sleep,
	}
}

// ProgressFunc receives countdown updates during a blocking wait
type ProgressFunc func(message string, remaining time.Duration)

// RateLimiter enforces the request quota for a single API resource: at most
// maxRequests counted requests within a fixed window starting at windowStart,
// plus a minimum delay between consecutive requests.
//
// The quota counter and the per-name retry counter in Resolve are deliberately
// independent: the quota resets only on window expiry or an explicit Reset
// after a 420, never per item.
//
// Not safe for concurrent use; the scraper resolves one name at a time.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	minDelay    time.Duration

	count       int       // counted requests in the current window
	windowStart time.Time // zero until the first request
	lastRequest time.Time // issue time of the previous request

	clock    Clock
	progress ProgressFunc
	logger   *log.Logger
}

// NewRateLimiter creates a limiter with the GiantBomb defaults (200/hour,
// 2 second minimum spacing)
func NewRateLimiter(logger *log.Logger) *RateLimiter {
	return &RateLimiter{
		maxRequests: defaultMaxRequests,
		window:      defaultWindow,
		minDelay:    defaultMinDelay,
		clock:       systemClock(),
		logger:      logger,
	}
}

// SetProgress installs a hook that receives countdown updates during quota
// and backoff waits
func (r *RateLimiter) SetProgress(fn ProgressFunc) {
	r.progress = fn
}

// Acquire blocks until a request may be issued: waits out the quota window
// if the counter is exhausted, then enforces the minimum inter-request delay.
// It does not consume quota; call RecordSuccess once the API counted the
// request.
func (r *RateLimiter) Acquire() {
	now := r.clock.Now()

	if r.windowStart.IsZero() {
		r.windowStart = now
	}

	// Window elapsed: reset count and start a fresh window
	if now.Sub(r.windowStart) >= r.window {
		r.count = 0
		r.windowStart = now
	}

	if r.count >= r.maxRequests {
		// One extra second past window expiry so the API's own bookkeeping
		// has definitely rolled over
		wait := r.windowStart.Add(r.window).Sub(now) + time.Second
		r.logger.Warn("Request quota reached, waiting for window reset",
			"quota", r.maxRequests, "wait", wait.Round(time.Second))
		r.Wait(wait, "Request quota reached, waiting for window reset")
		r.count = 0
		r.windowStart = r.clock.Now()
	}

	if !r.lastRequest.IsZero() {
		if since := r.clock.Now().Sub(r.lastRequest); since < r.minDelay {
			r.clock.Sleep(r.minDelay - since)
		}
	}
	r.lastRequest = r.clock.Now()
}

// RecordSuccess counts one request against the current window. Only 200-class
// responses are counted; a 420 resets the window instead.
func (r *RateLimiter) RecordSuccess() {
	r.count++
}

// Reset empties the current window (count=0, windowStart=now). Called after a
// 420 backoff since the API has signalled the old window is burned.
func (r *RateLimiter) Reset() {
	r.count = 0
	r.windowStart = r.clock.Now()
}

// Remaining returns how many counted requests are left in the current window
func (r *RateLimiter) Remaining() int {
	if !r.windowStart.IsZero() && r.clock.Now().Sub(r.windowStart) >= r.window {
		return r.maxRequests
	}
	return r.maxRequests - r.count
}

// Wait blocks for d, surfacing a countdown through the progress hook every
// countdownInterval. All long waits (quota window, 420 backoff) go through
// here so tests can substitute a fast clock.
func (r *RateLimiter) Wait(d time.Duration, message string) {
	remaining := d
	for remaining > 0 {
		if r.progress != nil {
			r.progress(message, remaining)
		}
		step := countdownInterval
		if remaining < step {
			step = remaining
		}
		r.clock.Sleep(step)
		remaining -= step
	}
}

// FormatCountdown renders a duration as "1h 02m 30s" for countdown lines
func FormatCountdown(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
