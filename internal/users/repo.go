package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fitdice/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, account Account) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", account.ID))

	existing, err := r.GetByUsername(ctx, account.Username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return ErrUserExists
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO users
				(id, username, email, password_hash, total_exercises, weekly_exercises, streak, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		account.ID, account.Username, account.Email, account.PasswordHash,
		account.TotalExercises, account.WeeklyExercises, account.Streak, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, email, total_exercises, weekly_exercises, streak
			FROM users WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found, err := r.rows2users(rows)
	if err != nil {
		return nil, err
	}
	if len(found) != 1 {
		return nil, ErrUserNotFound
	}
	return &found[0], nil
}

// GetByUsername returns the full account record, password hash included,
// for the auth handler to verify credentials against.
func (r *Repo) GetByUsername(ctx context.Context, username string) (_ *Account, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getbyusername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var account Account
	err = r.db.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, total_exercises, weekly_exercises, streak, created_at
			FROM users WHERE username = $1;`,
		username,
	).Scan(
		&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.TotalExercises, &account.WeeklyExercises, &account.Streak, &account.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Search finds users whose username contains the query, case-insensitively.
func (r *Repo) Search(ctx context.Context, query string) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("query", query))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, email, total_exercises, weekly_exercises, streak
			FROM users
			WHERE username ILIKE '%' || $1 || '%'
			ORDER BY username;`,
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return r.rows2users(rows)
}

// Leaderboard returns up to limit users ordered by total exercises, best first.
func (r *Repo) Leaderboard(ctx context.Context, limit int) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.leaderboard")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, email, total_exercises, weekly_exercises, streak
			FROM users
			ORDER BY total_exercises DESC
			LIMIT $1;`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return r.rows2users(rows)
}

func (r *Repo) rows2users(rows pgx.Rows) ([]User, error) {
	var found []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email,
			&u.TotalExercises, &u.WeeklyExercises, &u.Streak,
		); err != nil {
			return nil, err
		}
		found = append(found, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if found == nil {
		found = make([]User, 0)
	}
	return found, nil
}
