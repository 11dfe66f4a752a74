package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/wisnuprasetya/gamedex/internal/api"
	"github.com/wisnuprasetya/gamedex/internal/cache"
	"github.com/wisnuprasetya/gamedex/internal/db"
	"github.com/wisnuprasetya/gamedex/internal/models"
	"github.com/wisnuprasetya/gamedex/internal/output"
	"github.com/wisnuprasetya/gamedex/internal/scraper"
	"github.com/wisnuprasetya/gamedex/internal/ui"
)

const (
	defaultCatalogURL = "https://www.xbox.com/en-US/xbox-game-pass/games"
	defaultCachePath  = "release_date_cache.json"
	defaultDBPath     = "gamedex.db"
)

// progressResolver wraps the lookup client to print an in-place counter while
// the batch resolves
type progressResolver struct {
	inner scraper.Resolver
	total int
	done  int
}

func (p *progressResolver) Resolve(name string) api.Resolution {
	p.done++
	ui.PrintProgress(p.done, p.total, name)
	return p.inner.Resolve(name)
}

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	catalogURL := flag.String("url", defaultCatalogURL, "Catalog URL to scrape")
	year := flag.Int("year", 0, "Only keep games released in this year (0 = keep everything; requires a GiantBomb API key)")
	jsonPath := flag.String("json", "gamepass_games.json", "JSON output path")
	csvPath := flag.String("csv", "gamepass_games.csv", "CSV output path")
	cachePath := flag.String("cache", defaultCachePath, "Release-date cache file")
	dbPath := flag.String("db", defaultDBPath, "Path to SQLite history database")
	apiKeyFlag := flag.String("api-key", "", "GiantBomb API key (defaults to GIANTBOMB_API_KEY)")
	maxPages := flag.Int("max-pages", 0, "Cap on catalog pages to walk (0 = default)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	ui.PrintTitle("Game Pass catalog scraper")

	// Configuration problems abort before any scraping; everything after this
	// point degrades per item instead of failing the batch.
	var lookup *api.GiantBombClient
	if *year > 0 {
		apiKey := *apiKeyFlag
		if apiKey == "" {
			apiKey = os.Getenv("GIANTBOMB_API_KEY")
		}

		store, err := cache.Open(*cachePath)
		if err != nil {
			ui.PrintError(fmt.Sprintf("Failed to open release-date cache: %v", err))
			os.Exit(1)
		}
		logger.Info("Loaded release-date cache", "path", store.Path(), "entries", store.Len())

		lookup, err = api.NewGiantBombClient(apiKey, store, logger)
		if err != nil {
			ui.PrintError(err.Error())
			os.Exit(1)
		}
		lookup.SetProgress(ui.PrintCountdown)
	}

	started := time.Now()

	catalog := scraper.NewCatalogScraper(logger)
	catalog.SetMaxPages(*maxPages)

	games, err := catalog.Scrape(*catalogURL)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Scrape failed: %v", err))
		os.Exit(1)
	}
	if len(games) == 0 {
		ui.PrintError("No games were scraped; the catalog markup may have changed")
		os.Exit(1)
	}
	logger.Info("Catalog scrape finished", "games", len(games))

	var summary scraper.EnrichSummary
	if lookup != nil {
		fmt.Println()
		games, summary = scraper.EnrichGames(games, &progressResolver{inner: lookup, total: len(games)}, *year, logger)
		logger.Info("Enrichment finished",
			"kept", len(games), "resolved", summary.Resolved,
			"notFound", summary.NotFound, "skipped", summary.Skipped,
			"quotaRemaining", lookup.RemainingQuota())
	}

	scraper.SortGames(games, lookup != nil)

	if err := output.WriteGamesJSON(*jsonPath, games); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
	if err := output.WriteGamesCSV(*csvPath, games, lookup != nil); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	database, err := db.New(*dbPath)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to open history database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	runID, err := database.RecordRun(models.ScrapeRun{
		SourceURL:  *catalogURL,
		YearFilter: *year,
		StartedAt:  started,
	}, games)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to record run: %v", err))
		os.Exit(1)
	}
	logger.Debug("Recorded run", "runID", runID, "db", *dbPath)

	if lookup != nil {
		ui.PrintSummary(len(games), summary.Resolved, summary.NotFound, summary.Skipped)
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %d games to %s and %s", len(games), *jsonPath, *csvPath))
}
