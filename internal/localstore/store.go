// Package localstore is the on-device persistence for the client app:
// saved exercise events plus the cached user profile, backed by SQLite.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/2beens/fitdice/internal/users"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

var ErrNoProfile = errors.New("no profile stored")

// ExerciseEvent is one completed exercise, as recorded on the device.
type ExerciseEvent struct {
	ID          int64
	Name        string
	Description string
	Duration    string
	Type        string
	Date        string
	CreatedAt   time.Time
}

// DailyCount is the number of events recorded on one day.
type DailyCount struct {
	Date  string
	Count int
}

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS exercise_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration    TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL,
		date        TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_events_date ON exercise_events(date);

	CREATE TABLE IF NOT EXISTS profile (
		id               TEXT PRIMARY KEY,
		username         TEXT NOT NULL,
		email            TEXT NOT NULL DEFAULT '',
		total_exercises  INTEGER NOT NULL DEFAULT 0,
		weekly_exercises INTEGER NOT NULL DEFAULT 0,
		streak           INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// InsertEvent records a completed exercise and returns its id.
func (s *Store) InsertEvent(ctx context.Context, ev ExerciseEvent) (int64, error) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO exercise_events (name, description, duration, type, date, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
		ev.Name, ev.Description, ev.Duration, ev.Type, ev.Date, ev.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return res.LastInsertId()
}

// EventsByDate returns all events recorded on the given day, oldest first.
func (s *Store) EventsByDate(ctx context.Context, date string) ([]ExerciseEvent, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, description, duration, type, date, created_at
			FROM exercise_events
			WHERE date = ?
			ORDER BY id`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []ExerciseEvent
	for rows.Next() {
		var ev ExerciseEvent
		var createdAt string
		if err := rows.Scan(
			&ev.ID, &ev.Name, &ev.Description, &ev.Duration, &ev.Type, &ev.Date, &createdAt,
		); err != nil {
			return nil, err
		}
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			ev.CreatedAt = parsed
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountForDate returns how many events were recorded on the given day.
func (s *Store) CountForDate(ctx context.Context, date string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM exercise_events WHERE date = ?`,
		date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// DailyCounts returns per-day event counts for all recorded days.
func (s *Store) DailyCounts(ctx context.Context) ([]DailyCount, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT date, COUNT(*) FROM exercise_events GROUP BY date`,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily counts: %w", err)
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}

// DeleteAllEvents wipes the whole exercise history.
func (s *Store) DeleteAllEvents(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM exercise_events`); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}

// PutProfile stores the given user as the device profile, replacing any
// previously stored one.
func (s *Store) PutProfile(ctx context.Context, user users.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile`); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO profile (id, username, email, total_exercises, weekly_exercises, streak)
			VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email,
		user.TotalExercises, user.WeeklyExercises, user.Streak,
	); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return tx.Commit()
}

// GetProfile returns the stored device profile, or ErrNoProfile.
func (s *Store) GetProfile(ctx context.Context) (*users.User, error) {
	var user users.User
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, username, email, total_exercises, weekly_exercises, streak FROM profile`,
	).Scan(
		&user.ID, &user.Username, &user.Email,
		&user.TotalExercises, &user.WeeklyExercises, &user.Streak,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &user, nil
}

// DeleteProfile removes the stored device profile, if any.
func (s *Store) DeleteProfile(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profile`); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// DefaultDBPath returns ~/.config/fitdice/fitdice.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "fitdice", "fitdice.db"), nil
}
