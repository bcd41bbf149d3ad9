package main

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// AccountRow represents an account record in the database
type AccountRow struct {
	ID        int64
	Username  string
	PassHash  string
	Guest     bool
	CreatedAt time.Time
}

// StatsRow represents an account's lifetime stats
type StatsRow struct {
	AccountID int64
	Kills     int
	Wins      int
	Matches   int
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		is_guest INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		account_id INTEGER PRIMARY KEY REFERENCES accounts(id),
		kills INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		matches INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		game_name TEXT NOT NULL DEFAULT '',
		winner_name TEXT NOT NULL DEFAULT '',
		ticks INTEGER NOT NULL DEFAULT 0,
		player_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id INTEGER NOT NULL REFERENCES matches(id),
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		kills INTEGER NOT NULL DEFAULT 0,
		won INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, account_id)
	);

	CREATE TABLE IF NOT EXISTS achievements (
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		achievement_id TEXT NOT NULL,
		unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (account_id, achievement_id)
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		account_id INTEGER,
		game_id TEXT,
		data TEXT,
		created_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_match_players_account ON match_players(account_id);
	CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// CreateAccount creates a new account and its stats row, returning the id
func (db *DB) CreateAccount(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO accounts (username, pass_hash) VALUES (?, ?)",
		username, passHash,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = db.conn.Exec("INSERT INTO stats (account_id) VALUES (?)", id)
	return id, err
}

// CreateGuest creates a guest account (no password)
func (db *DB) CreateGuest(username string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO accounts (username, is_guest) VALUES (?, 1)",
		username,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = db.conn.Exec("INSERT INTO stats (account_id) VALUES (?)", id)
	return id, err
}

// GetAccountByUsername returns an account by username, or nil if absent
func (db *DB) GetAccountByUsername(username string) (*AccountRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, is_guest, created_at FROM accounts WHERE username = ?",
		username,
	)
	return scanAccount(row)
}

// GetAccountByID returns an account by id, or nil if absent
func (db *DB) GetAccountByID(id int64) (*AccountRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, is_guest, created_at FROM accounts WHERE id = ?",
		id,
	)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*AccountRow, error) {
	a := &AccountRow{}
	err := row.Scan(&a.ID, &a.Username, &a.PassHash, &a.Guest, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// GetStats returns an account's lifetime stats, or nil if absent
func (db *DB) GetStats(accountID int64) (*StatsRow, error) {
	row := db.conn.QueryRow(
		"SELECT account_id, kills, wins, matches FROM stats WHERE account_id = ?",
		accountID,
	)
	s := &StatsRow{}
	err := row.Scan(&s.AccountID, &s.Kills, &s.Wins, &s.Matches)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// UpdateStats folds one match outcome into lifetime stats
func (db *DB) UpdateStats(accountID int64, kills int, won bool) error {
	winInc := 0
	if won {
		winInc = 1
	}
	_, err := db.conn.Exec(`
		UPDATE stats SET
			kills = kills + ?,
			wins = wins + ?,
			matches = matches + 1
		WHERE account_id = ?`,
		kills, winInc, accountID,
	)
	return err
}

// RecordMatch records a completed game and returns the match id
func (db *DB) RecordMatch(result *MatchResult) (int64, error) {
	res, err := db.conn.Exec(
		`INSERT INTO matches (game_id, game_name, winner_name, ticks, player_count)
		 VALUES (?, ?, ?, ?, ?)`,
		result.GameID, result.GameName, result.WinnerName, result.Ticks, result.PlayerCount,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordMatchPlayer records one account's participation in a match
func (db *DB) RecordMatchPlayer(matchID int64, s AccountStats) error {
	won := 0
	if s.Won {
		won = 1
	}
	_, err := db.conn.Exec(
		"INSERT INTO match_players (match_id, account_id, kills, won) VALUES (?, ?, ?, ?)",
		matchID, s.Account, s.Kills, won,
	)
	return err
}

// UnlockAchievement records an achievement; reports whether it was new
func (db *DB) UnlockAchievement(accountID int64, achievementID string) (bool, error) {
	res, err := db.conn.Exec(
		"INSERT OR IGNORE INTO achievements (account_id, achievement_id) VALUES (?, ?)",
		accountID, achievementID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetAchievements returns the ids of an account's unlocked achievements
func (db *DB) GetAchievements(accountID int64) ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT achievement_id FROM achievements WHERE account_id = ?",
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Leaderboard returns the top non-guest accounts by wins, then kills
func (db *DB) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(`
		SELECT a.username, s.kills, s.wins, s.matches
		FROM stats s JOIN accounts a ON a.id = s.account_id
		WHERE a.is_guest = 0
		ORDER BY s.wins DESC, s.kills DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Kills, &e.Wins, &e.Matches); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Kills    int    `json:"kills"`
	Wins     int    `json:"wins"`
	Matches  int    `json:"matches"`
}

// GetSetting returns a settings value, or "" if unset
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting stores a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM accounts WHERE username = ?", username).Scan(&count)
	return count > 0, err
}
