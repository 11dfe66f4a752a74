package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wisnuprasetya/gamedex/internal/models"
)

const timestampFormat = "2006-01-02 15:04:05"

// WriteGamesJSON writes the batch as an indented JSON array
func WriteGamesJSON(path string, games []models.Game) error {
	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode games: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteGamesCSV writes the batch as a CSV table. The release_date column is
// only present when enrichment ran.
func WriteGamesCSV(path string, games []models.Game, includeReleaseDate bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"name", "url", "scraped_at"}
	if includeReleaseDate {
		header = []string{"name", "url", "release_date", "scraped_at"}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, g := range games {
		row := []string{g.Name, g.URL, g.ScrapedAt.Format(timestampFormat)}
		if includeReleaseDate {
			row = []string{g.Name, g.URL, g.ReleaseDate, g.ScrapedAt.Format(timestampFormat)}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %q: %w", g.Name, err)
		}
	}

	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WritePageJSON writes extracted page content as one indented JSON document
func WritePageJSON(path string, content models.PageContent) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode page content: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
