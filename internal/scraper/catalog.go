package scraper

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/wisnuprasetya/gamedex/internal/api"
	"github.com/wisnuprasetya/gamedex/internal/models"
)

const (
	catalogTimeout = 30 * time.Second
	// The catalog serves reduced markup to obvious bots
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// Upper bound on pagination, matching the catalog's worst observed depth
	defaultMaxPages = 100
)

// Selectors tried in priority order to find the pagination "Next" link
var nextLinkSelectors = []string{
	"li.paginatenext a",
	`a[data-loc-aria="keyArianextpage"]`,
	`a[aria-label="Next page"]`,
	`a[aria-label="Next"]`,
	`button[aria-label="Next page"]`,
}

// CatalogScraper enumerates the paginated Game Pass catalog into a flat list
// of games
type CatalogScraper struct {
	httpClient *http.Client
	maxPages   int
	logger     *log.Logger
}

// NewCatalogScraper creates a scraper with a bounded-timeout HTTP client
func NewCatalogScraper(logger *log.Logger) *CatalogScraper {
	return &CatalogScraper{
		httpClient: &http.Client{
			Timeout: catalogTimeout,
		},
		maxPages: defaultMaxPages,
		logger:   logger,
	}
}

// SetMaxPages overrides the pagination cap
func (s *CatalogScraper) SetMaxPages(n int) {
	if n > 0 {
		s.maxPages = n
	}
}

// Scrape walks the catalog starting at catalogURL, following Next links until
// no new games appear or the page cap is hit. Games are deduplicated by URL.
func (s *CatalogScraper) Scrape(catalogURL string) ([]models.Game, error) {
	var games []models.Game
	seen := make(map[string]bool)

	pageURL := catalogURL
	for page := 1; page <= s.maxPages; page++ {
		doc, err := FetchDocument(s.httpClient, pageURL)
		if err != nil {
			if page == 1 {
				// Nothing scraped yet: an unreachable catalog is fatal
				return nil, fmt.Errorf("failed to fetch catalog page: %w", err)
			}
			s.logger.Warn("Failed to fetch catalog page, stopping pagination", "page", page, "err", err)
			break
		}

		found := s.extractGames(doc, pageURL, seen)
		games = append(games, found...)
		s.logger.Info("Scraped catalog page", "page", page, "newGames", len(found), "total", len(games))

		if len(found) == 0 && page > 1 {
			break
		}

		next := nextPageURL(doc, pageURL)
		if next == "" || next == pageURL {
			break
		}
		pageURL = next
	}

	return games, nil
}

// extractGames pulls every valid game anchor out of a catalog page
func (s *CatalogScraper) extractGames(doc *goquery.Document, pageURL string, seen map[string]bool) []models.Game {
	var games []models.Game
	now := time.Now()

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs := resolveURL(pageURL, href)
		if abs == "" || seen[abs] {
			return
		}

		name := CleanGameName(sel.Text())
		if name == "" {
			// Tiles sometimes carry the name only in the aria-label
			name = CleanGameName(sel.AttrOr("aria-label", ""))
		}
		if !IsValidGameLink(abs, name) {
			return
		}

		seen[abs] = true
		games = append(games, models.Game{
			Name:      name,
			URL:       abs,
			ScrapedAt: now,
		})
	})

	return games
}

// nextPageURL finds the pagination Next link, trying specific selectors first
// and falling back to anchors whose text is exactly "Next"
func nextPageURL(doc *goquery.Document, pageURL string) string {
	for _, selector := range nextLinkSelectors {
		if href, ok := doc.Find(selector).First().Attr("href"); ok {
			return resolveURL(pageURL, href)
		}
	}

	next := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(sel.Text()), "next") {
			if href, ok := sel.Attr("href"); ok {
				next = resolveURL(pageURL, href)
				return false
			}
		}
		return true
	})
	return next
}

// resolveURL makes href absolute against base; returns "" for unusable hrefs
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}

// FetchDocument GETs urlStr with a browser User-Agent and parses the body
func FetchDocument(client *http.Client, urlStr string) (*goquery.Document, error) {
	req, err := http.NewRequest("GET", urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// Resolver maps a game name to a release-date resolution
type Resolver interface {
	Resolve(name string) api.Resolution
}

// EnrichSummary counts per-status outcomes of an enrichment pass
type EnrichSummary struct {
	Resolved int
	NotFound int
	Skipped  int
}

// EnrichGames resolves a release date for every game. When year > 0 the
// result is filtered strictly to that year: games without a resolvable date
// are dropped along with games from other years. Per-item failures never stop
// the batch.
func EnrichGames(games []models.Game, resolver Resolver, year int, logger *log.Logger) ([]models.Game, EnrichSummary) {
	var summary EnrichSummary
	kept := games[:0]

	yearPrefix := ""
	if year > 0 {
		yearPrefix = fmt.Sprintf("%d-", year)
	}

	for i := range games {
		g := games[i]
		res := resolver.Resolve(g.Name)

		switch res.Status {
		case api.StatusFound:
			summary.Resolved++
			g.ReleaseDate = res.ReleaseDate
		case api.StatusNotFound:
			summary.NotFound++
		case api.StatusSkipped:
			summary.Skipped++
		}

		if yearPrefix != "" && !strings.HasPrefix(g.ReleaseDate, yearPrefix) {
			logger.Debug("Filtered out", "name", g.Name, "releaseDate", g.ReleaseDate, "year", year)
			continue
		}
		kept = append(kept, g)
	}

	return kept, summary
}

// SortGames orders games for output: by release date descending when
// enrichment ran, by name otherwise
func SortGames(games []models.Game, byReleaseDate bool) {
	if byReleaseDate {
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].ReleaseDate > games[j].ReleaseDate
		})
		return
	}
	sort.SliceStable(games, func(i, j int) bool {
		return strings.ToLower(games[i].Name) < strings.ToLower(games[j].Name)
	})
}
