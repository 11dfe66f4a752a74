package db

import (
	"database/sql"
	"fmt"

	"github.com/wisnuprasetya/gamedex/internal/models"
)

// RecordRun inserts a scrape run and all its games in one transaction,
// returning the new run id
func (db *DB) RecordRun(run models.ScrapeRun, games []models.Game) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(insertRun, run.SourceURL, run.YearFilter, len(games), formatTimestamp(run.StartedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.Prepare(insertGame)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, g := range games {
		releaseDate := sql.NullString{String: g.ReleaseDate, Valid: g.ReleaseDate != ""}
		if _, err := stmt.Exec(runID, g.Name, g.URL, releaseDate, formatTimestamp(g.ScrapedAt)); err != nil {
			return 0, fmt.Errorf("failed to insert game %q: %w", g.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return runID, nil
}

// GetRuns returns all recorded runs, newest first
func (db *DB) GetRuns() ([]models.ScrapeRun, error) {
	rows, err := db.conn.Query(selectRuns)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetLatestRun returns the most recent run, or nil when the database is empty
func (db *DB) GetLatestRun() (*models.ScrapeRun, error) {
	var r models.ScrapeRun
	var startedAt string

	err := db.conn.QueryRow(selectLatestRun).Scan(
		&r.ID, &r.SourceURL, &r.YearFilter, &r.GameCount, &startedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	r.StartedAt, _ = parseTimestamp(startedAt)
	return &r, nil
}

// GetGames returns the games recorded for a run, ordered by name
func (db *DB) GetGames(runID int64) ([]models.Game, error) {
	rows, err := db.conn.Query(selectGamesByRun, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		var scrapedAt string
		if err := rows.Scan(&g.ID, &g.Name, &g.URL, &g.ReleaseDate, &scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		g.ScrapedAt, _ = parseTimestamp(scrapedAt)
		games = append(games, g)
	}
	return games, rows.Err()
}

func scanRuns(rows *sql.Rows) ([]models.ScrapeRun, error) {
	var runs []models.ScrapeRun
	for rows.Next() {
		var r models.ScrapeRun
		var startedAt string
		if err := rows.Scan(&r.ID, &r.SourceURL, &r.YearFilter, &r.GameCount, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt, _ = parseTimestamp(startedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
