// Package storage provides SQLite-based persistence for finished matches
// and their replays. Uses the pure-Go modernc.org/sqlite driver to avoid
// CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/inkgrid/internal/multiplayer"
)

// ErrNotFound is returned when a match id is not in the database.
var ErrNotFound = errors.New("match not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished match.
type MatchRecord struct {
	ID           int64
	MatchID      string
	Stage        int
	Players      []string
	Scores       []int
	Winner       int    // seat index, -1 on a draw
	EndReason    string // "completed", "disconnect", ...
	Turns        int
	DurationSecs int
	Replay       []byte // only filled by MatchByID
	CreatedAt    time.Time
}

// WinnerName returns the winning player's name, or "" on a draw.
func (r MatchRecord) WinnerName() string {
	if r.Winner < 0 || r.Winner >= len(r.Players) {
		return ""
	}
	return r.Players[r.Winner]
}

// PlayerStats aggregates every recorded match a player took part in.
type PlayerStats struct {
	Name       string
	Played     int
	Won        int
	BestScore  int
	AvgScore   float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			stage INTEGER NOT NULL,
			winner INTEGER NOT NULL DEFAULT -1,
			end_reason TEXT NOT NULL,
			turns INTEGER NOT NULL DEFAULT 0,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			replay BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS match_players (
			match_id TEXT NOT NULL REFERENCES matches(match_id) ON DELETE CASCADE,
			seat INTEGER NOT NULL,
			name TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (match_id, seat)
		);
		CREATE INDEX IF NOT EXISTS idx_match_players_name ON match_players(name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished match and its players.
// Returns the ID of the inserted record.
func (s *Store) SaveMatch(rec MatchRecord) (int64, error) {
	if len(rec.Players) != len(rec.Scores) {
		return 0, fmt.Errorf("storage: %d players but %d scores", len(rec.Players), len(rec.Scores))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	res, err := tx.Exec(
		`INSERT INTO matches (match_id, stage, winner, end_reason, turns, duration_secs, replay)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID, rec.Stage, rec.Winner, rec.EndReason, rec.Turns, rec.DurationSecs, rec.Replay,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}
	for seat, name := range rec.Players {
		if _, err := tx.Exec(
			"INSERT INTO match_players (match_id, seat, name, score) VALUES (?, ?, ?, ?)",
			rec.MatchID, seat, name, rec.Scores[seat],
		); err != nil {
			return 0, fmt.Errorf("storage: cannot save player %d: %w", seat, err)
		}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit match: %w", err)
	}
	return id, nil
}

const matchColumns = `id, match_id, stage, winner, end_reason, turns, duration_secs, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (MatchRecord, error) {
	var rec MatchRecord
	var createdAt any
	err := row.Scan(&rec.ID, &rec.MatchID, &rec.Stage, &rec.Winner, &rec.EndReason,
		&rec.Turns, &rec.DurationSecs, &createdAt)
	rec.CreatedAt = parseTime(createdAt)
	return rec, err
}

// parseTime handles both time.Time and string datetimes.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func (s *Store) loadPlayers(rec *MatchRecord) error {
	rows, err := s.db.Query(
		"SELECT name, score FROM match_players WHERE match_id = ? ORDER BY seat",
		rec.MatchID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot query players: %w", err)
	}
	defer rows.Close()

	rec.Players, rec.Scores = nil, nil
	for rows.Next() {
		var name string
		var score int
		if err := rows.Scan(&name, &score); err != nil {
			return fmt.Errorf("storage: cannot scan player: %w", err)
		}
		rec.Players = append(rec.Players, name)
		rec.Scores = append(rec.Scores, score)
	}
	return rows.Err()
}

// MatchByID retrieves a match, replay included, by its match ID.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+matchColumns+`, replay FROM matches WHERE match_id = ?`,
		matchID,
	)
	var rec MatchRecord
	var createdAt any
	err := row.Scan(&rec.ID, &rec.MatchID, &rec.Stage, &rec.Winner, &rec.EndReason,
		&rec.Turns, &rec.DurationSecs, &createdAt, &rec.Replay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: %s: %w", matchID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	rec.CreatedAt = parseTime(createdAt)

	if err := s.loadPlayers(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ReplayBlob returns the encoded replay stored with a match.
func (s *Store) ReplayBlob(matchID string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRow("SELECT replay FROM matches WHERE match_id = ?", matchID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: %s: %w", matchID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}
	if len(blob) == 0 {
		return nil, fmt.Errorf("storage: %s has no replay: %w", matchID, ErrNotFound)
	}
	return blob, nil
}

// RecentMatches retrieves the most recent matches, newest first. Replays
// are not loaded.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT `+matchColumns+` FROM matches ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
}

// PlayerMatches retrieves the most recent matches a player took part in.
func (s *Store) PlayerMatches(name string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT `+matchColumns+` FROM matches
		 WHERE match_id IN (SELECT match_id FROM match_players WHERE name = ?)
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		name, limit,
	)
}

func (s *Store) queryMatches(query string, args ...any) ([]MatchRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	var records []MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, rec)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	for i := range records {
		if err := s.loadPlayers(&records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// PlayerStats retrieves aggregated statistics for a player name. A name
// with no matches returns zero stats.
func (s *Store) PlayerStats(name string) (*PlayerStats, error) {
	stats := &PlayerStats{Name: name}
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN m.winner = p.seat THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(p.score), 0),
		        COALESCE(AVG(p.score), 0),
		        MAX(m.created_at)
		 FROM match_players p JOIN matches m ON m.match_id = p.match_id
		 WHERE p.name = ?`,
		name,
	).Scan(&stats.Played, &stats.Won, &stats.BestScore, &stats.AvgScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get player stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)
	return stats, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
// This adapter allows the coordinator to save match results without direct storage dependency.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.SaveMatch(MatchRecord{
		MatchID:      data.MatchID,
		Stage:        data.Stage,
		Players:      data.Players,
		Scores:       data.Scores,
		Winner:       data.Winner,
		EndReason:    data.EndReason,
		Turns:        data.Turns,
		DurationSecs: data.DurationSecs,
		Replay:       data.Replay,
	})
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)
