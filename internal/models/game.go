package models

import "time"

// Game represents a single catalog entry scraped from the Game Pass listing
type Game struct {
	ID          int64     `json:"-"`
	Name        string    `json:"name"`                   // Display name, cleaned of navigation/subscription text
	URL         string    `json:"url"`                    // Absolute store URL (/games/store/<slug>/<id>)
	ReleaseDate string    `json:"release_date,omitempty"` // YYYY-MM-DD, empty when unresolved
	ScrapedAt   time.Time `json:"scraped_at"`             // When the entry was extracted
}

// ScrapeRun represents one recorded scraper invocation
type ScrapeRun struct {
	ID         int64
	SourceURL  string    // Catalog URL the run started from
	YearFilter int       // Target release year, 0 = no filtering
	GameCount  int       // Number of games kept by the run
	StartedAt  time.Time // When the run started
}
