package db

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_url TEXT NOT NULL,
    year_filter INTEGER NOT NULL DEFAULT 0,
    game_count INTEGER NOT NULL DEFAULT 0,
    started_at TEXT NOT NULL
);
`

const createGamesTable = `
CREATE TABLE IF NOT EXISTS games (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    url TEXT NOT NULL,
    release_date TEXT,
    scraped_at TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_games_run ON games(run_id);
CREATE INDEX IF NOT EXISTS idx_games_name ON games(name);
`

const insertRun = `
INSERT INTO runs (source_url, year_filter, game_count, started_at)
VALUES (?, ?, ?, ?)
`

const insertGame = `
INSERT INTO games (run_id, name, url, release_date, scraped_at)
VALUES (?, ?, ?, ?, ?)
`

const selectRuns = `
SELECT id, source_url, year_filter, game_count, started_at
FROM runs
ORDER BY id DESC
`

const selectLatestRun = `
SELECT id, source_url, year_filter, game_count, started_at
FROM runs
ORDER BY id DESC
LIMIT 1
`

const selectGamesByRun = `
SELECT id, name, url, COALESCE(release_date, ''), scraped_at
FROM games
WHERE run_id = ?
ORDER BY name COLLATE NOCASE
`
