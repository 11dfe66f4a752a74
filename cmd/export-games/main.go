package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wisnuprasetya/gamedex/internal/db"
)

func main() {
	dbPath := flag.String("db", "gamedex.db", "Path to SQLite history database")
	flag.Parse()

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	runs, err := database.GetRuns()
	if err != nil {
		log.Fatalf("Failed to get runs: %v", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("games-export-%s.md", timestamp)
	f, err := os.Create(filename)
	if err != nil {
		log.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Game Pass Scrape History\n\n")
	fmt.Fprintf(f, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(f, "Total Runs: %d\n\n", len(runs))

	for _, run := range runs {
		fmt.Fprintf(f, "## Run %d (%s)\n\n", run.ID, run.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(f, "- **Source**: %s\n", run.SourceURL)
		if run.YearFilter > 0 {
			fmt.Fprintf(f, "- **Year Filter**: %d\n", run.YearFilter)
		} else {
			fmt.Fprintf(f, "- **Year Filter**: none\n")
		}
		fmt.Fprintf(f, "- **Games**: %d\n\n", run.GameCount)

		games, err := database.GetGames(run.ID)
		if err != nil {
			log.Printf("Failed to get games for run %d: %v", run.ID, err)
			continue
		}

		if len(games) > 0 {
			fmt.Fprintf(f, "| Game | Release Date | URL |\n")
			fmt.Fprintf(f, "|------|--------------|-----|\n")
			for _, g := range games {
				releaseDate := g.ReleaseDate
				if releaseDate == "" {
					releaseDate = "-"
				}
				fmt.Fprintf(f, "| %s | %s | %s |\n", g.Name, releaseDate, g.URL)
			}
			fmt.Fprintf(f, "\n")
		} else {
			fmt.Fprintf(f, "*No games recorded*\n\n")
		}

		fmt.Fprintf(f, "---\n\n")
	}

	fmt.Printf("✓ Exported to %s\n", filename)
}
