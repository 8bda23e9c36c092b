package leaderboard

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path and runs
// migrations. ":memory:" is accepted for tests.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: an in-memory database is private to its connection,
	// and SQLite serialises writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			username_key TEXT NOT NULL UNIQUE,
			rewards TEXT NOT NULL DEFAULT '[]',
			total_wins INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_total_wins ON users(total_wins DESC)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const selectUser = `SELECT id, username, rewards, total_wins, created_at, updated_at FROM users`

func (s *SQLiteStore) FindByUsername(ctx context.Context, username string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectUser+` WHERE username_key = ?`, usernameKey(username))
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", username, err)
	}
	return r, nil
}

func (s *SQLiteStore) Create(ctx context.Context, r *Record) error {
	rewards, err := encodeRewards(r.RewardsDiscovered)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, username_key, rewards, total_wins, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Username, usernameKey(r.Username), rewards, r.TotalWins,
		formatTime(r.CreatedAt), formatTime(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create %q: %w", r.Username, err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, r *Record) error {
	rewards, err := encodeRewards(r.RewardsDiscovered)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET rewards = ?, total_wins = ?, updated_at = ? WHERE username_key = ?`,
		rewards, r.TotalWins, formatTime(r.UpdatedAt), usernameKey(r.Username))
	if err != nil {
		return fmt.Errorf("update %q: %w", r.Username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %q: %w", r.Username, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectUser+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		r                Record
		rewards          string
		created, updated string
	)
	if err := sc.Scan(&r.ID, &r.Username, &rewards, &r.TotalWins, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rewards), &r.RewardsDiscovered); err != nil {
		return nil, fmt.Errorf("decode rewards: %w", err)
	}
	if r.RewardsDiscovered == nil {
		r.RewardsDiscovered = []string{}
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &r, nil
}

func encodeRewards(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode rewards: %w", err)
	}
	return string(b), nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
