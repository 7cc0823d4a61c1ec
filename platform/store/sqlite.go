package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/DedS3t/monopoly-engine/app/models"
)

type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; also keeps a :memory: database on a single connection.
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			state TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS game_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			version INTEGER NOT NULL,
			entry TEXT NOT NULL,
			FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_logs_game ON game_logs(game_id, id)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Create(ctx context.Context, g models.GameState) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, version, state) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		g.ID, g.Version, string(data))
	if err != nil {
		return fmt.Errorf("create game %s: %w", g.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrGameExists, g.ID)
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, gameID string) (models.GameState, error) {
	var g models.GameState
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM games WHERE id = ?`, gameID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return g, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if err != nil {
		return g, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if err := json.Unmarshal([]byte(data), &g); err != nil {
		return g, fmt.Errorf("decode game %s: %w", gameID, err)
	}
	return g, nil
}

func (s *SQLite) Save(ctx context.Context, next models.GameState, logs []models.LogEntry) error {
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE games SET version = ?, state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND version = ?`,
		next.Version, string(data), next.ID, next.Version-1)
	if err != nil {
		return fmt.Errorf("save game %s: %w", next.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM games WHERE id = ?`, next.ID).Scan(&exists); err == nil && exists == 0 {
			return fmt.Errorf("%w: %s", ErrGameNotFound, next.ID)
		}
		return fmt.Errorf("%w: %s at version %d", ErrVersionConflict, next.ID, next.Version-1)
	}

	if len(logs) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO game_logs (game_id, version, entry) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, l := range logs {
			entry, err := json.Marshal(l)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, next.ID, next.Version, string(entry)); err != nil {
				return fmt.Errorf("append log: %w", err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLite) Logs(ctx context.Context, gameID string) ([]models.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entry FROM game_logs WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var l models.LogEntry
		if err := json.Unmarshal([]byte(data), &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, gameID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM game_logs WHERE game_id = ?`, gameID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, gameID); err != nil {
		return err
	}
	return tx.Commit()
}

var _ Store = (*SQLite)(nil)
